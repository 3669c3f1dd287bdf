package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// DatasetExtensions lists the file extensions accepted as sales datasets.
var DatasetExtensions = []string{".csv", ".xlsx"}

// FileValidator checks dataset files and upload payloads before they
// reach the pipeline.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateDatasetFile checks that path exists, is readable, and carries a
// supported dataset extension.
func (v *FileValidator) ValidateDatasetFile(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}
	return v.ValidateExtension(path)
}

// ValidateExtension checks that the file name carries a supported dataset
// extension. Temporary Excel lock files (~$...) are rejected.
func (v *FileValidator) ValidateExtension(name string) error {
	base := filepath.Base(name)
	if strings.HasPrefix(base, "~$") {
		v.logger.Warn("Skipping temporary Excel file",
			slog.String("file", name))
		return fmt.Errorf("file %s is a temporary Excel file", name)
	}

	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range DatasetExtensions {
		if ext == allowed {
			return nil
		}
	}
	v.logger.Error("Unsupported dataset file type",
		slog.String("file", name),
		slog.String("extension", ext))
	return fmt.Errorf("file %s is not a supported dataset (extension: %s, want one of %s)",
		name, ext, strings.Join(DatasetExtensions, ", "))
}

// ValidateUpload checks an uploaded payload's declared name and size.
// A zero maxBytes disables the size check.
func (v *FileValidator) ValidateUpload(name string, size int64, maxBytes int64) error {
	if err := v.ValidateExtension(name); err != nil {
		return err
	}
	if size == 0 {
		v.logger.Error("Uploaded file is empty",
			slog.String("file", name))
		return fmt.Errorf("uploaded file %s is empty", name)
	}
	if maxBytes > 0 && size > maxBytes {
		v.logger.Error("Uploaded file exceeds size limit",
			slog.String("file", name),
			slog.Int64("size", size),
			slog.Int64("limit", maxBytes))
		return fmt.Errorf("uploaded file %s exceeds size limit (%d > %d bytes)", name, size, maxBytes)
	}
	return nil
}

// ValidateFile checks if a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return fmt.Errorf("%s is a directory, not a file", path)
	}
	if info.Size() == 0 {
		v.logger.Error("File is empty",
			slog.String("file", path))
		return fmt.Errorf("file %s is empty", path)
	}

	// Check if file is readable by opening it
	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	// Verify it's writable by creating a test file
	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	file.Close()
	os.Remove(testFile)

	return nil
}

// ExpandDatasetPaths resolves each argument to a set of dataset files.
// Directories contribute every supported file they directly contain,
// sorted by name; plain paths are validated as-is.
func (v *FileValidator) ExpandDatasetPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			if err := v.ValidateDatasetFile(arg); err != nil {
				return nil, err
			}
			paths = append(paths, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %s: %w", arg, err)
		}
		found := 0
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			name := filepath.Join(arg, entry.Name())
			if v.ValidateExtension(name) != nil {
				continue
			}
			if err := v.ValidateFile(name); err != nil {
				return nil, err
			}
			paths = append(paths, name)
			found++
		}
		if found == 0 {
			v.logger.Warn("No dataset files found in directory",
				slog.String("directory", arg))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no dataset files to process")
	}
	return paths, nil
}
