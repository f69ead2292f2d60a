package validate

import (
	"fmt"

	"github.com/ocochard/cmonit/internal/model"
)

// checkPerm implements check_perm: spec.md §4.10.
func (e *Engine) checkPerm(s *model.Service) {
	mode := s.Info.Mode & 07777
	if mode != s.Perm.Perm {
		e.Sink.Post(s, model.EventPermission, model.StateFailed, s.Perm.Action,
			fmt.Sprintf("permission test failed for %s -- current permission is %04o", s.Path, mode))
		return
	}
	e.debugf("'%s' permission check succeeded [current permission=%04o]", s.Name, mode)
	e.Sink.Post(s, model.EventPermission, model.StateSucceeded, s.Perm.Action, "permission succeeded")
}

// checkUID implements check_uid: spec.md §4.10.
func (e *Engine) checkUID(s *model.Service) {
	if s.Info.UID != s.UID.UID {
		e.Sink.Post(s, model.EventUid, model.StateFailed, s.UID.Action,
			fmt.Sprintf("uid test failed for %s -- current uid is %d", s.Path, s.Info.UID))
		return
	}
	e.debugf("'%s' uid check succeeded [current uid=%d]", s.Name, s.Info.UID)
	e.Sink.Post(s, model.EventUid, model.StateSucceeded, s.UID.Action, "uid succeeded")
}

// checkGID implements check_gid: spec.md §4.10.
func (e *Engine) checkGID(s *model.Service) {
	if s.Info.GID != s.GID.GID {
		e.Sink.Post(s, model.EventGid, model.StateFailed, s.GID.Action,
			fmt.Sprintf("gid test failed for %s -- current gid is %d", s.Path, s.Info.GID))
		return
	}
	e.debugf("'%s' gid check succeeded [current gid=%d]", s.Name, s.Info.GID)
	e.Sink.Post(s, model.EventGid, model.StateSucceeded, s.GID.Action, "gid succeeded")
}

// checkTimestamp implements check_timestamp: spec.md §4.10. Only the first
// descriptor in the list runs the test_changes branch, matching the
// original's "break" after the first variable-value comparison.
func (e *Engine) checkTimestamp(s *model.Service) {
	now := e.Clock.Now().Unix()

	for _, t := range s.TimestampList {
		if t.TestChanges {
			if t.Timestamp != s.Info.Timestamp {
				t.Timestamp = s.Info.Timestamp
				e.Sink.Post(s, model.EventTimestamp, model.StateChanged, t.Action, fmt.Sprintf("timestamp was changed for %s", s.Path))
			} else {
				e.debugf("'%s' timestamp was not changed for %s", s.Name, s.Path)
				e.Sink.Post(s, model.EventTimestamp, model.StateChangedNot, t.Action, fmt.Sprintf("timestamp was not changed for %s", s.Path))
			}
			break
		}
		if model.Eval(t.Operator, now-s.Info.Timestamp, t.Age) {
			e.Sink.Post(s, model.EventTimestamp, model.StateFailed, t.Action, fmt.Sprintf("timestamp test failed for %s", s.Path))
		} else {
			e.debugf("'%s' timestamp test succeeded for %s", s.Name, s.Path)
			e.Sink.Post(s, model.EventTimestamp, model.StateSucceeded, t.Action, "timestamp succeeded")
		}
	}
}

// checkSize implements check_size: spec.md §4.10.
func (e *Engine) checkSize(s *model.Service) {
	size := s.Info.File.Size
	for _, sl := range s.SizeList {
		if sl.TestChanges {
			if !sl.Initialized {
				sl.Initialized = true
				sl.Size = size
			} else if sl.Size != size {
				e.Sink.Post(s, model.EventSize, model.StateChanged, sl.Action, fmt.Sprintf("size was changed for %s", s.Path))
				sl.Size = size
			} else {
				e.debugf("'%s' size has not changed [current size=%d B]", s.Name, size)
				e.Sink.Post(s, model.EventSize, model.StateChangedNot, sl.Action, fmt.Sprintf("size was not changed for %s", s.Path))
			}
			break
		}
		if model.Eval(sl.Operator, size, sl.Size) {
			e.Sink.Post(s, model.EventSize, model.StateFailed, sl.Action,
				fmt.Sprintf("size test failed for %s -- current size is %d B", s.Path, size))
		} else {
			e.debugf("'%s' size check succeeded [current size=%d B]", s.Name, size)
			e.Sink.Post(s, model.EventSize, model.StateSucceeded, sl.Action, "size succeeded")
		}
	}
}

// checkUptime implements check_uptime: spec.md §4.10.
func (e *Engine) checkUptime(s *model.Service) {
	uptime := s.Info.Process.Uptime
	for _, ul := range s.UptimeList {
		if model.Eval(ul.Operator, uptime, ul.Uptime) {
			e.Sink.Post(s, model.EventUptime, model.StateFailed, ul.Action,
				fmt.Sprintf("uptime test failed for %s -- current uptime is %d seconds", s.Path, uptime))
		} else {
			e.debugf("'%s' uptime check succeeded [current uptime=%d seconds]", s.Name, uptime)
			e.Sink.Post(s, model.EventUptime, model.StateSucceeded, ul.Action, "uptime succeeded")
		}
	}
}

// checkChecksum implements check_checksum: spec.md §4.10.
func (e *Engine) checkChecksum(s *model.Service) {
	cs := s.Checksum
	sum, err := e.Checksum.Checksum(s.Path, cs.Algo)
	if err != nil {
		e.Sink.Post(s, model.EventData, model.StateFailed, s.ActionData, fmt.Sprintf("cannot compute checksum for %s", s.Path))
		return
	}
	e.Sink.Post(s, model.EventData, model.StateSucceeded, s.ActionData, fmt.Sprintf("checksum computed for %s", s.Path))
	s.Info.File.ChecksumHex = sum

	if !cs.Initialized {
		cs.Initialized = true
		cs.Expected = sum
	}

	changed := sum != cs.Expected

	switch {
	case changed && cs.TestChanges:
		e.Sink.Post(s, model.EventChecksum, model.StateChanged, cs.Action, fmt.Sprintf("checksum was changed for %s", s.Path))
		cs.Expected = sum
	case changed:
		e.Sink.Post(s, model.EventChecksum, model.StateFailed, cs.Action, fmt.Sprintf("checksum test failed for %s", s.Path))
	case cs.TestChanges:
		e.debugf("'%s' checksum has not changed", s.Name)
		e.Sink.Post(s, model.EventChecksum, model.StateChangedNot, cs.Action, "checksum has not changed")
	default:
		e.debugf("'%s' has valid checksums", s.Name)
		e.Sink.Post(s, model.EventChecksum, model.StateSucceeded, cs.Action, "checksum succeeded")
	}
}

// matchLineCap is MATCH_LINE_LENGTH: the maximum line length considered by
// the content-match engine, in bytes.
const matchLineCap = 512

// checkMatch implements check_match: spec.md §4.11. It scans new content
// appended to the file since the last cycle's read position, applies the
// ignore list first, then the match list, and finally posts one event per
// match descriptor regardless of whether anything matched this cycle.
func (e *Engine) checkMatch(s *model.Service) {
	lines, err := e.readNewLines(s)
	if err != nil {
		return
	}

	for _, ml := range s.MatchList {
		ml.ResetLog()
	}

	for _, line := range lines {
		ignored := false
		for _, ml := range s.MatchIgnoreList {
			if ml.Matches(line) {
				e.debugf("'%s' Ignore pattern matches on content line", s.Name)
				ignored = true
				break
			}
		}
		if ignored {
			continue
		}
		for _, ml := range s.MatchList {
			if ml.Matches(line) {
				e.debugf("'%s' Pattern match on content line [%s]", s.Name, line)
				ml.AppendLog(line, matchLineCap)
			} else {
				e.debugf("'%s' Pattern doesn't match on content line [%s]", s.Name, line)
			}
		}
	}

	for _, ml := range s.MatchList {
		if ml.HasLog() {
			e.Sink.Post(s, model.EventContent, model.StateChanged, ml.Action, fmt.Sprintf("content match:\n%s", ml.LogString()))
		} else {
			e.Sink.Post(s, model.EventContent, model.StateChangedNot, ml.Action, "content doesn't match")
		}
	}
}
