package executor

import (
	"fmt"
	"path/filepath"

	"github.com/ashutoshrp06/sitesmith/internal/normalize"
	"github.com/ashutoshrp06/sitesmith/internal/types"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// FileWriter writes whole files on behalf of the model. It is the reliable
// alternative to shell redirection, which breaks on quoting.
type FileWriter struct {
	fs       afero.Fs
	platform normalize.Platform
	baseDir  string
	logger   *zap.Logger
}

// NewFileWriter returns a writer over fs. Relative paths resolve against
// baseDir when it is set.
func NewFileWriter(fs afero.Fs, platform normalize.Platform, baseDir string, logger *zap.Logger) *FileWriter {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if platform == "" {
		platform = normalize.Current()
	}
	return &FileWriter{fs: fs, platform: platform, baseDir: baseDir, logger: logger}
}

// Write replaces the file at path with content, creating parent directories.
func (w *FileWriter) Write(path, content string) types.ExecutionResult {
	if path == "" {
		return types.Failure("file path is empty")
	}

	normalized := normalize.Path(path, w.platform)
	target := normalized
	if w.baseDir != "" && !filepath.IsAbs(target) {
		target = filepath.Join(w.baseDir, target)
	}

	if dir := filepath.Dir(target); dir != "." && dir != "" {
		if err := w.fs.MkdirAll(dir, 0o755); err != nil {
			w.logger.Warn("Failed to create directory", zap.String("dir", dir), zap.Error(err))
			return types.Failure(fmt.Sprintf("create directory %s: %v", dir, err))
		}
	}

	if err := afero.WriteFile(w.fs, target, []byte(content), 0o644); err != nil {
		w.logger.Warn("Failed to write file", zap.String("path", target), zap.Error(err))
		return types.Failure(err.Error())
	}

	w.logger.Info("File written",
		zap.String("path", target),
		zap.Int("bytes", len(content)))

	return types.Success(fmt.Sprintf("Content written to %s", normalized))
}
