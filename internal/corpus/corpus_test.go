package corpus_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"support-chat/internal/corpus"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), os.ModePerm))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestParse_JSON(t *testing.T) {
	chunks, err := corpus.Parse("docs.json", []byte(`[{"title":"Reset","content":"Click forgot password."},{"content":"Refunds take 5 days."}]`))
	require.NoError(t, err)
	assert.Equal(t, []corpus.DocChunk{
		{Title: "Reset", Content: "Click forgot password."},
		{Content: "Refunds take 5 days."},
	}, chunks)
}

func TestParse_YAML(t *testing.T) {
	chunks, err := corpus.Parse("docs.yml", []byte("- content: Plans start at $10.\n- title: Support\n  content: Email support@example.com.\n"))
	require.NoError(t, err)
	assert.Equal(t, []corpus.DocChunk{
		{Content: "Plans start at $10."},
		{Title: "Support", Content: "Email support@example.com."},
	}, chunks)
}

func TestParse_Invalid(t *testing.T) {
	_, err := corpus.Parse("docs.json", []byte(`{"content": "not a list"`))
	assert.Error(t, err)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docs.json")
	writeFile(t, path, `[{"content":"a"},{"content":"b"}]`)

	chunks, err := corpus.Load(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, []corpus.DocChunk{{Content: "a"}, {Content: "b"}}, chunks)
}

func TestLoad_DirectoryInNameOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "02-billing.yaml"), "- content: billing\n")
	writeFile(t, filepath.Join(dir, "01-accounts.json"), `[{"content":"accounts"}]`)
	writeFile(t, filepath.Join(dir, "README.md"), "ignored")

	chunks, err := corpus.Load(context.Background(), dir, nil)
	require.NoError(t, err)
	assert.Equal(t, []corpus.DocChunk{{Content: "accounts"}, {Content: "billing"}}, chunks)
}

func TestLoad_MissingSource(t *testing.T) {
	_, err := corpus.Load(context.Background(), filepath.Join(t.TempDir(), "nope.json"), nil)
	assert.Error(t, err)
}

func TestLoad_S3WithoutConfig(t *testing.T) {
	_, err := corpus.Load(context.Background(), "s3://bucket/docs.json", nil)
	assert.Error(t, err)
}
