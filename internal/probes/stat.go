// Package probes holds the concrete adapters behind every
// internal/validate port: the thin, OS-facing layer the core engine is
// deliberately kept ignorant of.
package probes

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/ocochard/cmonit/internal/validate"
)

// FileStat implements validate.StatProbe over the standard library.
type FileStat struct{}

func (FileStat) Lstat(path string) (validate.StatResult, error) {
	fi, err := os.Lstat(path)
	if err != nil {
		return validate.StatResult{}, err
	}
	return toStatResult(fi), nil
}

func (FileStat) Stat(path string) (validate.StatResult, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return validate.StatResult{}, err
	}
	return toStatResult(fi), nil
}

func (FileStat) Realpath(path string) (string, error) {
	return filepath.EvalSymlinks(path)
}

func toStatResult(fi os.FileInfo) validate.StatResult {
	r := validate.StatResult{
		Size:      fi.Size(),
		Mode:      uint32(fi.Mode().Perm()),
		IsDir:     fi.IsDir(),
		IsFifo:    fi.Mode()&os.ModeNamedPipe != 0,
		IsLink:    fi.Mode()&os.ModeSymlink != 0,
		IsRegular: fi.Mode().IsRegular(),
	}
	if sys, ok := fi.Sys().(*syscall.Stat_t); ok {
		r.UID = sys.Uid
		r.GID = sys.Gid
		r.Ino = sys.Ino
		r.Mtime = sys.Mtim.Sec
		r.Ctime = sys.Ctim.Sec
		r.Mode = sys.Mode & 07777
	}
	return r
}

// ContentFile implements validate.ContentProbe over the standard library.
type ContentFile struct{}

func (ContentFile) Open(path string) (io.ReadSeekCloser, error) {
	return os.Open(path)
}

func (ContentFile) IsProcPath(path string) bool {
	return strings.HasPrefix(path, "/proc")
}
