package validate

import (
	"errors"
	"io"
	"time"

	"github.com/ocochard/cmonit/internal/model"
)

// post is one recorded call to fakeSink.Post, for test assertions.
type post struct {
	Service string
	Kind    model.EventKind
	State   model.State
	Message string
}

// fakeSink is a validate.EventSink recorder -- it never dedups, since
// that responsibility belongs to internal/sink, not the core.
type fakeSink struct {
	posts []post
}

func (f *fakeSink) Post(s *model.Service, kind model.EventKind, state model.State, action model.ActionBinding, message string) {
	f.posts = append(f.posts, post{Service: s.Name, Kind: kind, State: state, Message: message})
}

func (f *fakeSink) last() *post {
	if len(f.posts) == 0 {
		return nil
	}
	return &f.posts[len(f.posts)-1]
}

func (f *fakeSink) states(kind model.EventKind) []model.State {
	var out []model.State
	for _, p := range f.posts {
		if p.Kind == kind {
			out = append(out, p.State)
		}
	}
	return out
}

// fakeClock lets tests control e.Clock.Now() deterministically.
type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

// fakeCron reports a fixed answer regardless of spec/time, with an error
// hook for the invalid-spec branch.
type fakeCron struct {
	match bool
	err   error
}

func (c *fakeCron) Matches(spec string, t time.Time) (bool, error) { return c.match, c.err }

// fakeControl records every Control call and can be made to fail.
type fakeControl struct {
	calls []string
	err   error
}

func (c *fakeControl) Control(name string, action model.Action) error {
	c.calls = append(c.calls, name+":"+action.String())
	return c.err
}

// fakeStat answers StatProbe with a canned result or error per path.
type fakeStat struct {
	lstat    map[string]StatResult
	stat     map[string]StatResult
	realpath map[string]string
	err      map[string]error
}

func newFakeStat() *fakeStat {
	return &fakeStat{
		lstat:    map[string]StatResult{},
		stat:     map[string]StatResult{},
		realpath: map[string]string{},
		err:      map[string]error{},
	}
}

func (f *fakeStat) Lstat(path string) (StatResult, error) {
	if err, ok := f.err[path]; ok {
		return StatResult{}, err
	}
	return f.lstat[path], nil
}

func (f *fakeStat) Stat(path string) (StatResult, error) {
	if err, ok := f.err[path]; ok {
		return StatResult{}, err
	}
	return f.stat[path], nil
}

func (f *fakeStat) Realpath(path string) (string, error) {
	return f.realpath[path], nil
}

// fakeFilesystem answers FilesystemProbe with one canned usage.
type fakeFilesystem struct {
	usage FilesystemUsage
	err   error
}

func (f *fakeFilesystem) Usage(path string) (FilesystemUsage, error) { return f.usage, f.err }

// fakeChecksum returns a queue of checksums, one per call, so a test can
// drive a file through several cycles' worth of content.
type fakeChecksum struct {
	sums []string
	i    int
	err  error
}

func (f *fakeChecksum) Checksum(path string, algo model.HashAlgo) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.i >= len(f.sums) {
		return f.sums[len(f.sums)-1], nil
	}
	s := f.sums[f.i]
	f.i++
	return s, nil
}

// fakeContent serves in-memory content through the ContentProbe port,
// tracking nothing itself -- readNewLines owns ReadPos bookkeeping.
type fakeContent struct {
	data     map[string]string
	procPath map[string]bool
}

type readSeekCloser struct{ *reader }

type reader struct {
	data []byte
	pos  int64
}

func (r *reader) Read(p []byte) (int, error) {
	if r.pos >= int64(len(r.data)) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += int64(n)
	return n, nil
}

func (r *reader) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		r.pos = offset
	case io.SeekCurrent:
		r.pos += offset
	case io.SeekEnd:
		r.pos = int64(len(r.data)) + offset
	}
	return r.pos, nil
}

func (r *reader) Close() error { return nil }

func (f *fakeContent) Open(path string) (io.ReadSeekCloser, error) {
	data, ok := f.data[path]
	if !ok {
		return nil, errors.New("no such file")
	}
	return &readSeekCloser{&reader{data: []byte(data)}}, nil
}

func (f *fakeContent) IsProcPath(path string) bool { return f.procPath[path] }

// fakeProcess answers ProcessProbe with a fixed pid and a scripted Sample.
type fakeProcess struct {
	pid        int
	sampleOK   bool
	onSample   func(s *model.Service)
}

func (f *fakeProcess) IsRunning(s *model.Service) int { return f.pid }

func (f *fakeProcess) Sample(s *model.Service, pid int) bool {
	if f.onSample != nil {
		f.onSample(s)
	}
	return f.sampleOK
}

// fakeSystem leaves the passed-in SystemInfo untouched, or applies a hook.
type fakeSystem struct {
	err error
	fn  func(*model.SystemInfo)
}

func (f *fakeSystem) Refresh(info *model.SystemInfo) error {
	if f.fn != nil {
		f.fn(info)
	}
	return f.err
}

// fakeCommand hands out a queue of scripted handles, one Start() call each.
type fakeCommand struct {
	handles []model.ProgramHandle
	errs    []error
	i       int
}

func (f *fakeCommand) Start(argv []string) (model.ProgramHandle, error) {
	idx := f.i
	f.i++
	var err error
	if idx < len(f.errs) {
		err = f.errs[idx]
	}
	if err != nil {
		return nil, err
	}
	if idx < len(f.handles) {
		return f.handles[idx], nil
	}
	return nil, errors.New("no more scripted handles")
}

// fakeHandle is a scripted model.ProgramHandle.
type fakeHandle struct {
	exitStatus int
	done       bool
	stderr     []byte
	stdout     []byte
	killed     bool
}

func (h *fakeHandle) ExitStatus() (int, bool)            { return h.exitStatus, h.done }
func (h *fakeHandle) Pid() int                            { return 4242 }
func (h *fakeHandle) Kill() error                         { h.killed = true; h.done = true; return nil }
func (h *fakeHandle) WaitFor() error                      { return nil }
func (h *fakeHandle) ReadStderr(max int) ([]byte, error)  { return h.stderr, nil }
func (h *fakeHandle) ReadStdout(max int) ([]byte, error)  { return h.stdout, nil }

// fakeIcmp scripts one Echo outcome.
type fakeIcmp struct {
	seconds float64
	err     error
}

func (f *fakeIcmp) Echo(host string, timeout time.Duration, count int) (float64, error) {
	return f.seconds, f.err
}

// fakeConnection hands back sockets from a queue, one per Open() call --
// lets a test script a connection attempt that fails N times then succeeds.
type fakeConnection struct {
	sockets []Socket
	errs    []error
	i       int
}

func (f *fakeConnection) Open(p *model.PortTest) (Socket, error) {
	idx := f.i
	f.i++
	var err error
	if idx < len(f.errs) {
		err = f.errs[idx]
	}
	if err != nil {
		return nil, err
	}
	if idx < len(f.sockets) {
		return f.sockets[idx], nil
	}
	return nil, errors.New("no more scripted sockets")
}

// fakeSocket scripts Ready/Check outcomes for one connection attempt.
type fakeSocket struct {
	datagram  bool
	readyErr  error
	checkErr  error
	lastError string
	closed    bool
}

func (s *fakeSocket) IsDatagram() bool    { return s.datagram }
func (s *fakeSocket) Ready() error        { return s.readyErr }
func (s *fakeSocket) Check(name string) error { return s.checkErr }
func (s *fakeSocket) LastError() string   { return s.lastError }
func (s *fakeSocket) Close() error        { s.closed = true; return nil }

// newTestEngine wires every port to an inert fake, so a test need only
// override the ports it actually exercises.
func newTestEngine() (*Engine, *fakeSink) {
	sink := &fakeSink{}
	e := &Engine{
		Sink:       sink,
		Stat:       newFakeStat(),
		Content:    &fakeContent{data: map[string]string{}, procPath: map[string]bool{}},
		Filesystem: &fakeFilesystem{},
		Checksum:   &fakeChecksum{},
		Icmp:       &fakeIcmp{},
		Connection: &fakeConnection{},
		Process:    &fakeProcess{},
		System:     &fakeSystem{},
		Command:    &fakeCommand{},
		Control:    &fakeControl{},
		Clock:      &fakeClock{now: time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)},
		Cron:       &fakeCron{match: true},
	}
	return e, sink
}
