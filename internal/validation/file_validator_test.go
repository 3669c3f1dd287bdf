package validation

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator() *FileValidator {
	return NewFileValidator(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestValidateExtension(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name    string
		file    string
		wantErr bool
	}{
		{name: "csv", file: "sales.csv", wantErr: false},
		{name: "xlsx", file: "sales.xlsx", wantErr: false},
		{name: "uppercase extension", file: "SALES.CSV", wantErr: false},
		{name: "text file", file: "sales.txt", wantErr: true},
		{name: "no extension", file: "sales", wantErr: true},
		{name: "excel lock file", file: "~$sales.xlsx", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateExtension(tt.file)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateUpload(t *testing.T) {
	v := newTestValidator()

	assert.NoError(t, v.ValidateUpload("sales.csv", 1024, 10*1024))
	assert.NoError(t, v.ValidateUpload("sales.csv", 1024, 0), "zero limit disables size check")

	err := v.ValidateUpload("sales.csv", 0, 10*1024)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")

	err = v.ValidateUpload("sales.csv", 20*1024, 10*1024)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "size limit")

	assert.Error(t, v.ValidateUpload("sales.pdf", 1024, 10*1024))
}

func TestValidateDatasetFile(t *testing.T) {
	v := newTestValidator()
	dir := t.TempDir()

	good := writeFile(t, dir, "sales.csv", "order_date,sales\n2024-01-01,100\n")
	assert.NoError(t, v.ValidateDatasetFile(good))

	empty := writeFile(t, dir, "empty.csv", "")
	assert.Error(t, v.ValidateDatasetFile(empty))

	wrongExt := writeFile(t, dir, "sales.json", "{}")
	assert.Error(t, v.ValidateDatasetFile(wrongExt))

	assert.Error(t, v.ValidateDatasetFile(filepath.Join(dir, "missing.csv")))
	assert.Error(t, v.ValidateDatasetFile(dir), "directory is not a file")
}

func TestValidateOutputDirectory(t *testing.T) {
	v := newTestValidator()
	dir := filepath.Join(t.TempDir(), "reports", "nested")

	require.NoError(t, v.ValidateOutputDirectory(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestExpandDatasetPaths(t *testing.T) {
	v := newTestValidator()
	dir := t.TempDir()

	b := writeFile(t, dir, "b.csv", "order_date,sales\n")
	a := writeFile(t, dir, "a.xlsx", "not really xlsx but non-empty")
	writeFile(t, dir, "notes.txt", "ignored")

	t.Run("directory expansion", func(t *testing.T) {
		paths, err := v.ExpandDatasetPaths([]string{dir})
		require.NoError(t, err)
		assert.Equal(t, []string{a, b}, paths, "sorted by name, unsupported files skipped")
	})

	t.Run("explicit file", func(t *testing.T) {
		paths, err := v.ExpandDatasetPaths([]string{b})
		require.NoError(t, err)
		assert.Equal(t, []string{b}, paths)
	})

	t.Run("empty directory", func(t *testing.T) {
		_, err := v.ExpandDatasetPaths([]string{t.TempDir()})
		assert.Error(t, err)
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := v.ExpandDatasetPaths([]string{filepath.Join(dir, "missing.csv")})
		assert.Error(t, err)
	})
}
