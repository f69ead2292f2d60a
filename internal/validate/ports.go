// Package validate is the validation engine: the cycle driver, the eight
// per-kind service validators, and the test evaluators they compose. It
// never touches procfs, a socket, or a database directly -- every such
// interaction crosses one of the narrow interfaces declared in this file,
// so the engine can be driven and tested without a real host to probe.
package validate

import (
	"io"
	"time"

	"github.com/ocochard/cmonit/internal/model"
)

// EventSink records one test outcome. Implementations own alert dedup
// against the "currently failed" bitmap -- the engine only ever posts.
type EventSink interface {
	Post(s *model.Service, kind model.EventKind, state model.State, action model.ActionBinding, message string)
}

// StatProbe answers existence/type/ownership questions about a path.
type StatProbe interface {
	Lstat(path string) (StatResult, error)
	Stat(path string) (StatResult, error)
	Realpath(path string) (string, error)
}

// StatResult is the subset of stat(2) the engine needs.
type StatResult struct {
	Mode    uint32
	UID     uint32
	GID     uint32
	Size    int64
	Ino     uint64
	Mtime   int64
	Ctime   int64
	IsDir   bool
	IsFifo  bool
	IsLink  bool
	IsRegular bool
}

// ContentProbe opens a path for the content-match engine to scan. It is a
// separate port from StatProbe because content matching reads file bytes
// sequentially across cycles, tracking an offset rather than a snapshot.
type ContentProbe interface {
	Open(path string) (io.ReadSeekCloser, error)
	// IsProcPath reports whether path lives under a pseudo-filesystem
	// (e.g. /proc) where size/inode bookkeeping between cycles is
	// meaningless and the read position must restart at zero every cycle.
	IsProcPath(path string) bool
}

// FilesystemProbe reports usage statistics for the filesystem containing path.
type FilesystemProbe interface {
	Usage(path string) (FilesystemUsage, error)
}

type FilesystemUsage struct {
	Blocks          int64
	BlocksFree      int64
	BlocksFreeTotal int64
	Files           int64
	FilesFree       int64
	Flags           int64
}

// ChecksumProbe computes a file's checksum under the given algorithm,
// returned as lowercase hex.
type ChecksumProbe interface {
	Checksum(path string, algo model.HashAlgo) (string, error)
}

// IcmpProbe sends an ICMP echo and returns the round-trip time in seconds,
// or -1 on failure / -2 when the probe lacks permission to open a raw
// socket (spec.md §4.5 Remote host three-way contract).
type IcmpProbe interface {
	Echo(host string, timeout time.Duration, count int) (seconds float64, err error)
}

// ErrNoPrivilege is returned by IcmpProbe.Echo when the process cannot
// open a raw ICMP socket; check_remote_host maps this to response == -2.
var ErrNoPrivilege = errNoPrivilege{}

type errNoPrivilege struct{}

func (errNoPrivilege) Error() string { return "insufficient privilege for raw ICMP socket" }

// ConnectionProbe opens, readies, and protocol-checks a single socket.
type ConnectionProbe interface {
	// Open dials the destination named by p. The caller is responsible
	// for Close.
	Open(p *model.PortTest) (Socket, error)
}

// Socket is an open, not-yet-verified connection.
type Socket interface {
	IsDatagram() bool
	// Ready blocks until the socket is ready for I/O, or returns an error.
	Ready() error
	// Check runs the named protocol's verification routine. name=="" runs
	// the default check (succeeds as soon as the connection is open).
	Check(name string) error
	LastError() string
	Close() error
}

// ProcessProbe samples the process table.
type ProcessProbe interface {
	// IsRunning resolves the service to a pid, or 0 if it is not running.
	IsRunning(s *model.Service) int
	// Sample refreshes s.Info.Process for the given pid. ok==false means
	// the sample could not be taken and the cycle's process checks must
	// be skipped this cycle (matching update_process_data's bool return).
	Sample(s *model.Service, pid int) (ok bool)
}

// SystemProbe refreshes the shared, cycle-wide SystemInfo snapshot.
type SystemProbe interface {
	Refresh(info *model.SystemInfo) error
}

// CommandRunner starts an external program, returning a live handle.
type CommandRunner interface {
	Start(command []string) (model.ProgramHandle, error)
}

// ServiceController performs start/stop/restart/unmonitor on a
// named service. This is the "process-control subsystem" spec.md §1
// treats as an out-of-scope collaborator.
type ServiceController interface {
	Control(name string, action model.Action) error
}

// Clock abstracts wall-clock time so schedule decisions are testable.
type Clock interface {
	Now() time.Time
}

// CronMatcher reports whether t falls inside the cron schedule spec.
type CronMatcher interface {
	Matches(spec string, t time.Time) (bool, error)
}
