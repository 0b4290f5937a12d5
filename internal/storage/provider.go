package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
)

type Object struct {
	Name string
	Size int64
}

// Provider is the read/write surface the corpus loader needs from a blob store.
type Provider interface {
	CreateBucket(ctx context.Context, bucket string) error

	GetObject(ctx context.Context, bucket, key string) ([]byte, error)

	PutObject(ctx context.Context, bucket, key string, data io.Reader) error

	ListObjects(ctx context.Context, bucket, prefix string) ([]Object, error)
}

// ParseS3URI splits s3://bucket/prefix into its bucket and prefix.
func ParseS3URI(uri string) (string, string, error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return "", "", fmt.Errorf("invalid s3 uri '%s': must start with s3://", uri)
	}
	bucket, prefix, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("invalid s3 uri '%s': missing bucket", uri)
	}
	return bucket, prefix, nil
}
