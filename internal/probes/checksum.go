package probes

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"

	"github.com/ocochard/cmonit/internal/model"
)

// Checksum implements validate.ChecksumProbe, streaming the file through
// the requested algorithm rather than loading it whole.
type Checksum struct{}

func (Checksum) Checksum(path string, algo model.HashAlgo) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var h hash.Hash
	switch algo {
	case model.HashMD5:
		h = md5.New()
	case model.HashSHA1:
		h = sha1.New()
	default:
		return "", fmt.Errorf("unknown hash algorithm %v", algo)
	}

	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
