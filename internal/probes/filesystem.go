package probes

import (
	"golang.org/x/sys/unix"

	"github.com/ocochard/cmonit/internal/validate"
)

// Filesystem implements validate.FilesystemProbe via statfs(2).
type Filesystem struct{}

func (Filesystem) Usage(path string) (validate.FilesystemUsage, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return validate.FilesystemUsage{}, err
	}
	return validate.FilesystemUsage{
		Blocks:          int64(st.Blocks),
		BlocksFree:      int64(st.Bavail),
		BlocksFreeTotal: int64(st.Bfree),
		Files:           int64(st.Files),
		FilesFree:       int64(st.Ffree),
		Flags:           int64(st.Flags),
	}, nil
}
