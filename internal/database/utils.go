package database

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
)

type MessageMetadata struct {
	TokensUsed int64 `json:"tokens_used"`
	Fallback   bool  `json:"fallback"`
}

func EncodeMetadata(metadata *MessageMetadata) (datatypes.JSON, error) {
	if metadata == nil {
		return nil, nil
	}
	b, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("could not marshal metadata: %w", err)
	}
	return datatypes.JSON(b), nil
}

func DecodeMetadata(raw datatypes.JSON) (*MessageMetadata, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var metadata MessageMetadata
	if err := json.Unmarshal(raw, &metadata); err != nil {
		return nil, fmt.Errorf("invalid metadata JSON: %w", err)
	}
	return &metadata, nil
}
