//go:build unix

package scanner

import (
	"os"
	"path/filepath"
	"syscall"
)

type fileID struct {
	dev  uint64
	ino  uint64
	path string
}

func idOf(path string, info os.FileInfo) fileID {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return fileID{dev: uint64(st.Dev), ino: uint64(st.Ino)}
	}
	return fileID{path: filepath.Clean(path)}
}
