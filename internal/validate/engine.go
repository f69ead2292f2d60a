package validate

import (
	"log"

	"github.com/ocochard/cmonit/internal/model"
)

// RunState is the process-wide mutable configuration block the original
// called Run -- flags written only at config load or by explicit control
// requests, read by the cycle driver. Modeled as an explicit struct
// passed into the engine rather than a package-level global, per
// spec.md §9's guidance to avoid shared mutable globals in the core.
type RunState struct {
	DoAction bool // at least one scheduled action is pending
	Stopped  bool // checked between services, never mid-validator
}

// Engine bundles the collaborators the cycle driver and validators need.
// cmd/monitd constructs one Engine at startup and calls Run once per poll
// interval; nothing here is safe for concurrent use by two goroutines
// calling Run at once (spec.md §5: the engine is single-threaded within a
// cycle by design).
type Engine struct {
	Sink       EventSink
	Stat       StatProbe
	Content    ContentProbe
	Filesystem FilesystemProbe
	Checksum   ChecksumProbe
	Icmp       IcmpProbe
	Connection ConnectionProbe
	Process    ProcessProbe
	System     SystemProbe
	Command    CommandRunner
	Control    ServiceController
	Clock      Clock
	Cron       CronMatcher

	SystemInfo model.SystemInfo
	Debug      bool

	// RunDoProcess mirrors the original's Run.doprocess: whether process
	// table sampling is available on this platform. Set once at startup.
	RunDoProcess bool
}

func (e *Engine) debugf(format string, args ...interface{}) {
	if e.Debug {
		log.Printf("[DEBUG] "+format, args...)
	}
}
