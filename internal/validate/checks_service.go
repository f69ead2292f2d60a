package validate

import (
	"fmt"

	"github.com/ocochard/cmonit/internal/model"
)

// checkProcess implements check_process: spec.md §4.5 process validator.
func (e *Engine) checkProcess(s *model.Service) bool {
	pid := e.Process.IsRunning(s)
	if pid == 0 {
		e.Sink.Post(s, model.EventNonexist, model.StateFailed, s.ActionNonexist, "process is not running")
		return false
	}
	e.Sink.Post(s, model.EventNonexist, model.StateSucceeded, s.ActionNonexist, fmt.Sprintf("process is running with pid %d", pid))

	// Reset exec/timeout errors if active -- the process is running again,
	// most probably after manual intervention.
	if s.HasErrorBit(model.EventExec) {
		e.Sink.Post(s, model.EventExec, model.StateSucceeded, s.ActionExec, "process is running after previous exec error (slow starting or manually recovered?)")
	}
	if s.HasErrorBit(model.EventTimeout) {
		for _, ar := range s.ActionRateList {
			e.Sink.Post(s, model.EventTimeout, model.StateSucceeded, ar.Action, "process is running after previous restart timeout (manually recovered?)")
		}
	}

	if e.RunDoProcess {
		if e.Process.Sample(s, pid) {
			e.checkProcessState(s)
			e.checkProcessPid(s)
			e.checkProcessPPid(s)
			if len(s.UptimeList) > 0 {
				e.checkUptime(s)
			}
			for _, r := range s.ResourceList {
				e.checkProcessResources(s, r)
			}
		} else {
			e.debugf("'%s' failed to get service data", s.Name)
		}
	}

	for _, p := range s.PortList {
		e.checkConnection(s, p)
	}

	return true
}

// checkFilesystem implements check_filesystem: spec.md §4.6.
func (e *Engine) checkFilesystem(s *model.Service) bool {
	st, err := e.Stat.Lstat(s.Path)
	if err != nil {
		e.Sink.Post(s, model.EventNonexist, model.StateFailed, s.ActionNonexist, "filesystem doesn't exist")
		return false
	}
	path := s.Path
	if st.IsLink {
		real, err := e.Stat.Realpath(s.Path)
		if err != nil {
			e.Sink.Post(s, model.EventNonexist, model.StateFailed, s.ActionNonexist, fmt.Sprintf("filesystem symbolic link error -- %v", err))
			return false
		}
		path = real
		e.Sink.Post(s, model.EventNonexist, model.StateSucceeded, s.ActionNonexist, fmt.Sprintf("filesystem symbolic link %s -> %s", s.Path, path))
		st, err = e.Stat.Stat(path)
		if err != nil {
			e.Sink.Post(s, model.EventNonexist, model.StateFailed, s.ActionNonexist, "filesystem doesn't exist")
			return false
		}
	}
	e.Sink.Post(s, model.EventNonexist, model.StateSucceeded, s.ActionNonexist, "filesystem exists")

	s.Info.Mode = st.Mode
	s.Info.UID = st.UID
	s.Info.GID = st.GID

	usage, err := e.Filesystem.Usage(path)
	if err != nil {
		e.Sink.Post(s, model.EventData, model.StateFailed, s.ActionData, fmt.Sprintf("unable to read filesystem %s state", path))
		return false
	}
	fs := &s.Info.Filesystem
	fs.Blocks, fs.BlocksFree, fs.BlocksFreeTotal = usage.Blocks, usage.BlocksFree, usage.BlocksFreeTotal
	fs.Files, fs.FilesFree = usage.Files, usage.FilesFree
	if fs.FlagsInitialized {
		fs.PrevFlags = fs.Flags
	} else {
		fs.PrevFlags = -1
		fs.FlagsInitialized = true
	}
	fs.Flags = usage.Flags
	if fs.Files > 0 {
		fs.InodePercent = int64(1000 * float64(fs.Files-fs.FilesFree) / float64(fs.Files))
	} else {
		fs.InodePercent = 0
	}
	if fs.Blocks > 0 {
		fs.SpacePercent = int64(1000 * float64(fs.Blocks-fs.BlocksFree) / float64(fs.Blocks))
	} else {
		fs.SpacePercent = 0
	}
	fs.InodeTotal = fs.Files - fs.FilesFree
	fs.SpaceTotal = fs.Blocks - fs.BlocksFreeTotal
	e.Sink.Post(s, model.EventData, model.StateSucceeded, s.ActionData, fmt.Sprintf("succeeded getting filesystem statistic for %s", path))

	if s.Perm != nil {
		e.checkPerm(s)
	}
	if s.UID != nil {
		e.checkUID(s)
	}
	if s.GID != nil {
		e.checkGID(s)
	}
	e.checkFilesystemFlags(s)
	for _, td := range s.FilesystemList {
		e.checkFilesystemResources(s, td)
	}

	return true
}

// checkFile implements check_file: spec.md §4.7.
func (e *Engine) checkFile(s *model.Service) bool {
	st, err := e.Stat.Stat(s.Path)
	if err != nil {
		e.Sink.Post(s, model.EventNonexist, model.StateFailed, s.ActionNonexist, "file doesn't exist")
		return false
	}
	s.Info.Mode = st.Mode
	fi := &s.Info.File
	if fi.Ino != 0 {
		fi.PrevIno = fi.Ino
	}
	fi.Ino = st.Ino
	s.Info.UID = st.UID
	s.Info.GID = st.GID
	fi.Size = st.Size
	s.Info.Timestamp = maxInt64(st.Mtime, st.Ctime)
	e.debugf("'%s' file exists check succeeded", s.Name)
	e.Sink.Post(s, model.EventNonexist, model.StateSucceeded, s.ActionNonexist, "file exist")

	if !st.IsRegular {
		e.Sink.Post(s, model.EventInvalid, model.StateFailed, s.ActionInvalid, "is not a regular file")
		return false
	}
	e.debugf("'%s' is a regular file", s.Name)
	e.Sink.Post(s, model.EventInvalid, model.StateSucceeded, s.ActionInvalid, "is a regular file")

	if s.Checksum != nil {
		e.checkChecksum(s)
	}
	if s.Perm != nil {
		e.checkPerm(s)
	}
	if s.UID != nil {
		e.checkUID(s)
	}
	if s.GID != nil {
		e.checkGID(s)
	}
	if len(s.SizeList) > 0 {
		e.checkSize(s)
	}
	if len(s.TimestampList) > 0 {
		e.checkTimestamp(s)
	}
	if len(s.MatchList) > 0 {
		e.checkMatch(s)
	}

	return true
}

// checkDirectory implements check_directory: spec.md §4.7.
func (e *Engine) checkDirectory(s *model.Service) bool {
	st, err := e.Stat.Stat(s.Path)
	if err != nil {
		e.Sink.Post(s, model.EventNonexist, model.StateFailed, s.ActionNonexist, "directory doesn't exist")
		return false
	}
	s.Info.Mode, s.Info.UID, s.Info.GID = st.Mode, st.UID, st.GID
	s.Info.Timestamp = maxInt64(st.Mtime, st.Ctime)
	e.debugf("'%s' directory exists check succeeded", s.Name)
	e.Sink.Post(s, model.EventNonexist, model.StateSucceeded, s.ActionNonexist, "directory exist")

	if !st.IsDir {
		e.Sink.Post(s, model.EventInvalid, model.StateFailed, s.ActionInvalid, "is not directory")
		return false
	}
	e.debugf("'%s' is directory", s.Name)
	e.Sink.Post(s, model.EventInvalid, model.StateSucceeded, s.ActionInvalid, "is directory")

	if s.Perm != nil {
		e.checkPerm(s)
	}
	if s.UID != nil {
		e.checkUID(s)
	}
	if s.GID != nil {
		e.checkGID(s)
	}
	if len(s.TimestampList) > 0 {
		e.checkTimestamp(s)
	}

	return true
}

// checkFifo implements check_fifo: spec.md §4.7.
func (e *Engine) checkFifo(s *model.Service) bool {
	st, err := e.Stat.Stat(s.Path)
	if err != nil {
		e.Sink.Post(s, model.EventNonexist, model.StateFailed, s.ActionNonexist, "fifo doesn't exist")
		return false
	}
	s.Info.Mode, s.Info.UID, s.Info.GID = st.Mode, st.UID, st.GID
	s.Info.Timestamp = maxInt64(st.Mtime, st.Ctime)
	e.debugf("'%s' fifo exists check succeeded", s.Name)
	e.Sink.Post(s, model.EventNonexist, model.StateSucceeded, s.ActionNonexist, "fifo exist")

	if !st.IsFifo {
		e.Sink.Post(s, model.EventInvalid, model.StateFailed, s.ActionInvalid, "is not fifo")
		return false
	}
	e.debugf("'%s' is fifo", s.Name)
	e.Sink.Post(s, model.EventInvalid, model.StateSucceeded, s.ActionInvalid, "is fifo")

	if s.Perm != nil {
		e.checkPerm(s)
	}
	if s.UID != nil {
		e.checkUID(s)
	}
	if s.GID != nil {
		e.checkGID(s)
	}
	if len(s.TimestampList) > 0 {
		e.checkTimestamp(s)
	}

	return true
}

// checkProgram implements check_program: spec.md §4.8. A program service
// runs to completion on a timer; the handle from the previous invocation
// (if any) is reaped and its exit status evaluated before a new one starts.
func (e *Engine) checkProgram(s *model.Service) bool {
	now := e.Clock.Now()
	prog := s.Program
	if prog == nil {
		e.debugf("'%s' has no program command configured, skipping", s.Name)
		return false
	}
	if prog.Handle != nil {
		status, done := prog.Handle.ExitStatus()
		if !done {
			if now.Sub(prog.Started) > prog.Timeout {
				e.debugf("'%s' program timed out after %s. Killing program with pid %d", s.Name, now.Sub(prog.Started), prog.Handle.Pid())
				_ = prog.Handle.Kill()
				_ = prog.Handle.WaitFor()
				status, _ = prog.Handle.ExitStatus()
			} else {
				e.debugf("'%s' status check deferred - waiting on program to exit", s.Name)
				return true
			}
		}
		prog.ExitStatus = status

		for _, st := range s.StatusList {
			if model.Eval(st.Operator, int64(prog.ExitStatus), int64(st.ExpectedReturn)) {
				msg, err := prog.Handle.ReadStderr(1024)
				if err != nil || len(msg) == 0 {
					msg, _ = prog.Handle.ReadStdout(1024)
				}
				if len(msg) > 0 {
					e.Sink.Post(s, model.EventStatus, model.StateFailed, st.Action, string(msg))
				} else {
					e.Sink.Post(s, model.EventStatus, model.StateFailed, st.Action,
						fmt.Sprintf("'%s' failed with exit status (%d) -- no output from program", s.Path, prog.ExitStatus))
				}
			} else {
				e.debugf("'%s' status check succeeded", s.Name)
				e.Sink.Post(s, model.EventStatus, model.StateSucceeded, st.Action, "status succeeded")
			}
		}
		prog.Handle = nil
	}

	handle, err := e.Command.Start(prog.Command)
	if err != nil {
		e.Sink.Post(s, model.EventStatus, model.StateFailed, s.ActionExec, fmt.Sprintf("failed to execute '%s' -- %v", s.Path, err))
	} else {
		e.Sink.Post(s, model.EventStatus, model.StateSucceeded, s.ActionExec, fmt.Sprintf("'%s' program started", s.Name))
		prog.Handle = handle
		prog.Started = now
	}
	return true
}

// checkRemoteHost implements check_remote_host: spec.md §4.5 remote-host
// validator. An unreachable ICMP probe short-circuits the port list, since
// a dead host makes every connection attempt a foregone conclusion.
func (e *Engine) checkRemoteHost(s *model.Service) bool {
	var lastReachable = true
	var sawPing bool

	for _, icmp := range s.IcmpList {
		switch icmp.Type {
		case model.IcmpEcho:
			seconds, err := e.Icmp.Echo(s.Path, icmp.Timeout, icmp.Count)
			icmp.Response = seconds
			sawPing = true
			switch {
			case err == ErrNoPrivilege:
				icmp.IsAvailable = true
				lastReachable = true
				e.debugf("'%s' icmp ping skipped -- the monit user has no permission to create raw socket, please run monit as root or add privilege for net_icmpaccess", s.Name)
			case err != nil:
				icmp.IsAvailable = false
				lastReachable = false
				e.debugf("'%s' icmp ping failed", s.Name)
				e.Sink.Post(s, model.EventIcmp, model.StateFailed, icmp.Action, "failed ICMP test [Echo Request]")
			default:
				icmp.IsAvailable = true
				lastReachable = true
				e.debugf("'%s' icmp ping succeeded [response time %.3fs]", s.Name, icmp.Response)
				e.Sink.Post(s, model.EventIcmp, model.StateSucceeded, icmp.Action, "succeeded ICMP test [Echo Request]")
			}
		default:
			e.debugf("'%s' error -- unknown ICMP type: [%d]", s.Name, icmp.Type)
			return false
		}
	}

	if sawPing && !lastReachable {
		e.debugf("'%s' icmp ping failed, skipping any port connection tests", s.Name)
		return false
	}

	for _, p := range s.PortList {
		e.checkConnection(s, p)
	}

	return true
}

// checkSystem implements check_system: spec.md §4.9.
func (e *Engine) checkSystem(s *model.Service) bool {
	for _, r := range s.ResourceList {
		e.checkProcessResources(s, r)
	}
	return true
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
