//go:build !unix

package scanner

import (
	"os"
	"path/filepath"
)

type fileID struct {
	path string
}

func idOf(path string, info os.FileInfo) fileID {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return fileID{path: resolved}
	}
	return fileID{path: filepath.Clean(path)}
}
