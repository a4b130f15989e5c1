package builder

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// candidate is a regular file found under the build root.
type candidate struct {
	FullPath     string
	RelativePath string
}

// traverseDir walks root depth-first in name order and collects every
// non-directory entry. Directories are descended into but never emitted.
func traverseDir(fsys afero.Fs, root string, logger *zap.Logger) ([]candidate, error) {
	var collected []candidate
	if err := walk(fsys, root, root, &collected, logger); err != nil {
		return nil, err
	}
	logger.Debug("Completed directory traversal",
		zap.String("root", root),
		zap.Int("candidates", len(collected)))
	return collected, nil
}

func walk(fsys afero.Fs, root, dir string, collected *[]candidate, logger *zap.Logger) error {
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		logger.Error("Failed to read directory", zap.String("dir", dir), zap.Error(err))
		return &PhaseError{Phase: PhaseLoad, Path: dir, Err: err}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		fullPath := filepath.Join(dir, entry.Name())

		// Stat follows symlinks so linked directories are traversed too.
		info, err := fsys.Stat(fullPath)
		if err != nil {
			logger.Error("Failed to stat path", zap.String("path", fullPath), zap.Error(err))
			return &PhaseError{Phase: PhaseLoad, Path: fullPath, Err: err}
		}

		if info.IsDir() {
			if err := walk(fsys, root, fullPath, collected, logger); err != nil {
				return err
			}
			continue
		}

		relPath, err := filepath.Rel(root, fullPath)
		if err != nil {
			return &PhaseError{Phase: PhaseLoad, Path: fullPath, Err: err}
		}
		*collected = append(*collected, candidate{
			FullPath:     fullPath,
			RelativePath: normalizePath(relPath),
		})
	}
	return nil
}

// normalizePath converts OS-specific separators to forward slashes.
func normalizePath(p string) string {
	return strings.ReplaceAll(filepath.ToSlash(p), `\`, "/")
}
