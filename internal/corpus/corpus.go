// Package corpus loads the documentation chunks that bound every answer the
// assistant gives. The corpus is read once at startup and treated as
// read-only afterwards.
package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"support-chat/internal/storage"

	"gopkg.in/yaml.v2"
)

type DocChunk struct {
	Title   string `json:"title,omitempty" yaml:"title,omitempty"`
	Content string `json:"content" yaml:"content"`
}

func isCorpusFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// Parse decodes a list of chunks, choosing YAML or JSON by file extension.
func Parse(name string, data []byte) ([]DocChunk, error) {
	var chunks []DocChunk
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &chunks); err != nil {
			return nil, fmt.Errorf("error parsing yaml corpus %s: %w", name, err)
		}
	default:
		if err := json.Unmarshal(data, &chunks); err != nil {
			return nil, fmt.Errorf("error parsing json corpus %s: %w", name, err)
		}
	}
	return chunks, nil
}

// LoadFromProvider reads every corpus file under bucket/prefix in listing
// order. A prefix naming a single corpus file loads just that file.
func LoadFromProvider(ctx context.Context, provider storage.Provider, bucket, prefix string) ([]DocChunk, error) {
	var keys []string
	if isCorpusFile(prefix) {
		keys = []string{prefix}
	} else {
		objects, err := provider.ListObjects(ctx, bucket, prefix)
		if err != nil {
			return nil, fmt.Errorf("error listing corpus objects: %w", err)
		}
		for _, obj := range objects {
			if isCorpusFile(obj.Name) {
				keys = append(keys, obj.Name)
			}
		}
	}

	var chunks []DocChunk
	for _, key := range keys {
		data, err := provider.GetObject(ctx, bucket, key)
		if err != nil {
			return nil, fmt.Errorf("error reading corpus object %s: %w", key, err)
		}
		parsed, err := Parse(key, data)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, parsed...)
	}

	return chunks, nil
}

// Load resolves source to a local file, a local directory, or an s3:// uri.
// s3Cfg is only consulted for s3 sources.
func Load(ctx context.Context, source string, s3Cfg *storage.S3ProviderConfig) ([]DocChunk, error) {
	var (
		chunks []DocChunk
		err    error
	)

	if strings.HasPrefix(source, "s3://") {
		bucket, prefix, perr := storage.ParseS3URI(source)
		if perr != nil {
			return nil, perr
		}
		if s3Cfg == nil {
			return nil, fmt.Errorf("s3 corpus source %s requires s3 configuration", source)
		}
		provider, perr := storage.NewS3Provider(s3Cfg)
		if perr != nil {
			return nil, fmt.Errorf("error creating s3 provider: %w", perr)
		}
		chunks, err = LoadFromProvider(ctx, provider, bucket, prefix)
	} else {
		info, serr := os.Stat(source)
		if serr != nil {
			return nil, fmt.Errorf("error reading corpus source %s: %w", source, serr)
		}

		var provider *storage.LocalProvider
		if info.IsDir() {
			provider, err = storage.NewLocalProvider(source)
			if err == nil {
				chunks, err = LoadFromProvider(ctx, provider, "", "")
			}
		} else {
			provider, err = storage.NewLocalProvider(filepath.Dir(source))
			if err == nil {
				chunks, err = LoadFromProvider(ctx, provider, "", filepath.Base(source))
			}
		}
	}
	if err != nil {
		return nil, err
	}

	if len(chunks) == 0 {
		slog.Warn("documentation corpus is empty, every answer will be the fallback", "source", source)
	}
	slog.Info("loaded documentation corpus", "source", source, "chunks", len(chunks))

	return chunks, nil
}
