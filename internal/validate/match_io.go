package validate

import (
	"bufio"
	"io"
	"log"
	"strings"

	"github.com/ocochard/cmonit/internal/model"
)

// readNewLines returns the complete lines appended to s.Path since the
// last cycle's read position, advancing s.Info.File.ReadPos to match. A
// line with no trailing newline is left unread -- it is presumed to be a
// partial write still in progress, and is retried next cycle from the
// same offset.
func (e *Engine) readNewLines(s *model.Service) ([]string, error) {
	fi := &s.Info.File

	if e.Content.IsProcPath(s.Path) {
		fi.ReadPos = 0
	} else {
		if fi.Ino != fi.PrevIno || fi.ReadPos > fi.Size {
			fi.ReadPos = 0
		}
		if fi.ReadPos == fi.Size {
			e.debugf("'%s' content match skipped - file size nor inode has not changed since last test", s.Name)
			return nil, nil
		}
	}

	f, err := e.Content.Open(s.Path)
	if err != nil {
		log.Printf("[ERROR] '%s' cannot open file %s: %v", s.Name, s.Path, err)
		return nil, err
	}
	defer f.Close()

	if _, err := f.Seek(fi.ReadPos, io.SeekStart); err != nil {
		log.Printf("[ERROR] '%s' cannot seek file %s: %v", s.Name, s.Path, err)
		return nil, nil
	}

	var lines []string
	r := bufio.NewReader(f)
	for {
		line, length, err := readLineCapped(r, matchLineCap)
		if err != nil {
			if err != io.EOF {
				log.Printf("[ERROR] '%s' cannot read file %s: %v", s.Name, s.Path, err)
			} else if length > 0 {
				e.debugf("'%s' content match: incomplete line read - no new line at end. (retrying next cycle)", s.Name)
			}
			break
		}
		fi.ReadPos += length
		lines = append(lines, line)
	}
	return lines, nil
}

// readLineCapped reads one newline-terminated line, keeping only the
// first cap-1 bytes but still consuming (and counting) any bytes beyond
// the cap up to the next newline. It returns io.EOF when no terminated
// line is available; length reports how many bytes were consumed even on
// error, so the caller can tell "nothing read" from "partial line read".
func readLineCapped(r *bufio.Reader, cap int) (line string, length int64, err error) {
	var buf strings.Builder
	for buf.Len() < cap-1 {
		b, rerr := r.ReadByte()
		if rerr != nil {
			return buf.String(), length, io.EOF
		}
		length++
		if b == '\n' {
			return buf.String(), length, nil
		}
		buf.WriteByte(b)
	}
	for {
		b, rerr := r.ReadByte()
		if rerr != nil {
			return buf.String(), length, io.EOF
		}
		length++
		if b == '\n' {
			return buf.String(), length, nil
		}
	}
}
