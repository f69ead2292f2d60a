// Package model defines the data the validation engine reads and writes:
// services, their per-cycle info snapshots, and the test descriptors
// attached to each service. Nothing in this package talks to the OS,
// a database, or a config file -- it is the plain-struct vocabulary the
// rest of the daemon shares, the way parser.MonitStatus is the plain-struct
// vocabulary cmonit's collector and web packages share.
package model

// Kind identifies which of the eight service types a Service represents.
// Exactly one per-kind validator in internal/validate knows how to check
// a given Kind, and only the matching union field of Info is meaningful.
type Kind int

const (
	KindProcess Kind = iota
	KindFile
	KindDirectory
	KindFifo
	KindFilesystem
	KindProgram
	KindHost
	KindSystem
)

func (k Kind) String() string {
	switch k {
	case KindProcess:
		return "process"
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	case KindFifo:
		return "fifo"
	case KindFilesystem:
		return "filesystem"
	case KindProgram:
		return "program"
	case KindHost:
		return "host"
	case KindSystem:
		return "system"
	default:
		return "unknown"
	}
}

// EventKind is the categorical tag on a test outcome. The sink keeps one
// "currently failed" bit per kind per service to decide alert transitions.
type EventKind int

const (
	EventNonexist EventKind = iota
	EventInvalid
	EventData
	EventExec
	EventTimeout
	EventPid
	EventPPid
	EventFsflag
	EventIcmp
	EventConnection
	EventStatus
	EventAction
	EventContent
	EventChecksum
	EventPermission
	EventUid
	EventGid
	EventSize
	EventTimestamp
	EventUptime
	EventResource
)

func (k EventKind) String() string {
	names := [...]string{
		"Nonexist", "Invalid", "Data", "Exec", "Timeout", "Pid", "PPid",
		"Fsflag", "Icmp", "Connection", "Status", "Action", "Content",
		"Checksum", "Permission", "Uid", "Gid", "Size", "Timestamp",
		"Uptime", "Resource",
	}
	if int(k) < 0 || int(k) >= len(names) {
		return "Unknown"
	}
	return names[k]
}

// State is the outcome of a single test.
type State int

const (
	StateSucceeded State = iota
	StateFailed
	StateChanged
	StateChangedNot
)

func (s State) String() string {
	switch s {
	case StateSucceeded:
		return "SUCCEEDED"
	case StateFailed:
		return "FAILED"
	case StateChanged:
		return "CHANGED"
	case StateChangedNot:
		return "CHANGEDNOT"
	default:
		return "UNKNOWN"
	}
}

// Operator is a relational operator used to compare a measured value
// against a configured limit. Values are compared as plain integers --
// percentages are pre-scaled by 10 before Eval ever sees them.
type Operator int

const (
	OpLess Operator = iota
	OpLessEqual
	OpEqual
	OpNotEqual
	OpGreaterEqual
	OpGreater
)

func (o Operator) String() string {
	switch o {
	case OpLess:
		return "<"
	case OpLessEqual:
		return "<="
	case OpEqual:
		return "=="
	case OpNotEqual:
		return "!="
	case OpGreaterEqual:
		return ">="
	case OpGreater:
		return ">"
	default:
		return "?"
	}
}

// Action is a recovery directive bound to an event kind. Dispatch (what
// "alert" or "restart" actually does) lives in the sink/control
// collaborators; the core only carries the label through to Event_post.
type Action int

const (
	ActionIgnore Action = iota
	ActionAlert
	ActionRestart
	ActionStart
	ActionStop
	ActionExec
	ActionUnmonitor
)

func (a Action) String() string {
	switch a {
	case ActionIgnore:
		return "ignore"
	case ActionAlert:
		return "alert"
	case ActionRestart:
		return "restart"
	case ActionStart:
		return "start"
	case ActionStop:
		return "stop"
	case ActionExec:
		return "exec"
	case ActionUnmonitor:
		return "unmonitor"
	default:
		return "unknown"
	}
}

// MonitorFlag tracks a service's monitoring state as a bitmask, matching
// the original's MONITOR_NOT / MONITOR_YES / MONITOR_INIT / MONITOR_WAITING.
// MonitorNot is the zero value: a service with no other bit set is not
// being monitored, exactly like the original's MONITOR_NOT == 0x0.
type MonitorFlag int

const (
	MonitorNot     MonitorFlag = 0
	MonitorYes     MonitorFlag = 1 << 0
	MonitorInit    MonitorFlag = 1 << 1
	MonitorWaiting MonitorFlag = 1 << 2
)

// Enabled reports whether the service is monitored at all (any bit other
// than the implicit MonitorNot zero value is set).
func (m MonitorFlag) Enabled() bool { return m != MonitorNot }

// EveryKind selects how a service's schedule filter decides to skip a cycle.
type EveryKind int

const (
	EveryCycle EveryKind = iota // no skipping -- checked every cycle
	EverySkipCycles
	EveryCron
	EveryNotInCron
)

// Every is the schedule filter bound to a service.
type Every struct {
	Kind        EveryKind
	CycleNumber int // EverySkipCycles: run once every N cycles
	cycleCount  int // internal counter, mutated by check_skip
	CronSpec    string
}

// AdvanceCycle, CycleCount and ResetCycle give check_skip the narrow
// mutation access it needs without exposing the counter field itself --
// mirrors the original's s->every.spec.cycle.counter.
func (e *Every) AdvanceCycle()   { e.cycleCount++ }
func (e *Every) CycleCount() int { return e.cycleCount }
func (e *Every) ResetCycle()     { e.cycleCount = 0 }

// HashAlgo is the checksum algorithm a Checksum descriptor uses.
type HashAlgo int

const (
	HashMD5 HashAlgo = iota
	HashSHA1
)

func (h HashAlgo) HexLen() int {
	if h == HashSHA1 {
		return 40
	}
	return 32
}

// ResourceID selects which measurement a Resource descriptor compares.
type ResourceID int

const (
	ResourceCPUPercent ResourceID = iota
	ResourceTotalCPUPercent
	ResourceCPUUser
	ResourceCPUSystem
	ResourceCPUWait
	ResourceMemPercent
	ResourceMemKbyte
	ResourceSwapPercent
	ResourceSwapKbyte
	ResourceLoad1
	ResourceLoad5
	ResourceLoad15
	ResourceChildren
	ResourceTotalMemKbyte
	ResourceTotalMemPercent
)

// FilesystemResourceID selects inode or space usage for a Filesystem test.
type FilesystemResourceID int

const (
	FilesystemResourceInode FilesystemResourceID = iota
	FilesystemResourceSpace
)

// IcmpType is the kind of ICMP probe requested. Only Echo is defined by
// the original and by this port.
type IcmpType int

const (
	IcmpEcho IcmpType = iota
)
