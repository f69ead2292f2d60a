package config

// ServiceSpec is the declarative, TOML-shaped description of one
// monitored service. The same struct backs every service kind; only the
// sub-tables meaningful for a given `[[process]]`/`[[file]]`/... block
// need be set; the builder in services.go ignores the rest.
type ServiceSpec struct {
	Name string `toml:"name"`
	Path string `toml:"path"`

	Every EverySpec `toml:"every"`

	OnNonexist ActionSpec `toml:"on_nonexist"`
	OnInvalid  ActionSpec `toml:"on_invalid"`
	OnData     ActionSpec `toml:"on_data"`
	OnExec     ActionSpec `toml:"on_exec"`
	OnPid      ActionSpec `toml:"on_pid"`
	OnPPid     ActionSpec `toml:"on_ppid"`
	OnFsflag   ActionSpec `toml:"on_fsflag"`
	OnAction   ActionSpec `toml:"on_action"`

	Perm string `toml:"perm"` // octal, e.g. "0644"
	UID  string `toml:"uid"`
	GID  string `toml:"gid"`

	Size      *ChangeOrLimitSpec `toml:"size"`
	Timestamp *ChangeOrLimitSpec `toml:"timestamp"`
	Uptime    *LimitSpec         `toml:"uptime"`
	Checksum  *ChecksumSpec      `toml:"checksum"`

	Match       []MatchSpec       `toml:"match"`
	MatchIgnore []MatchSpec       `toml:"match_ignore"`
	Status      []StatusSpec      `toml:"status"`
	Resource    []ResourceSpec    `toml:"resource"`
	Filesystem  []FilesystemSpec  `toml:"filesystem_resource"`
	Port        []PortSpec        `toml:"port"`
	Icmp        []IcmpSpec        `toml:"icmp"`
	ActionRate  []ActionRateSpec  `toml:"action_rate"`

	// Program is the command line for a [[program]] service's own
	// check_program execution (not a recovery action).
	Program []string `toml:"program"`
	Timeout string   `toml:"timeout"` // program execution timeout, e.g. "30s"
}

// EverySpec configures a service's schedule filter.
//
//	every = { kind = "cycle" }                 -- default, checked every cycle
//	every = { kind = "skip", cycles = 3 }       -- every 3rd cycle
//	every = { kind = "cron", spec = "*/5 * * * *" }
//	every = { kind = "notincron", spec = "0 9-17 * * 1-5" }
type EverySpec struct {
	Kind   string `toml:"kind"`
	Cycles int    `toml:"cycles"`
	Spec   string `toml:"spec"`
}

// ActionSpec names the action to bind for the failed and succeeded sides
// of one test. Valid values: "ignore", "alert", "restart", "start",
// "stop", "exec", "unmonitor". Empty fields default to "alert"/"alert".
type ActionSpec struct {
	Failed    string `toml:"failed"`
	Succeeded string `toml:"succeeded"`
}

// ChangeOrLimitSpec is a size/timestamp test: either `changes = true` (flag
// any change since the last sample) or an operator/value limit, never
// both, matching SizeTest/TimestampTest's TestChanges-vs-Operator split.
type ChangeOrLimitSpec struct {
	Changes  bool       `toml:"changes"`
	Operator string     `toml:"operator"`
	Value    string     `toml:"value"` // integer (bytes) or duration ("2h") depending on test
	Action   ActionSpec `toml:"action"`
}

// LimitSpec is a plain operator/value limit test (uptime).
type LimitSpec struct {
	Operator string     `toml:"operator"`
	Value    string     `toml:"value"` // duration, e.g. "1h"
	Action   ActionSpec `toml:"action"`
}

// ChecksumSpec configures a file's expected checksum and whether the
// test flags drift from the first computed value instead.
type ChecksumSpec struct {
	Algo     string     `toml:"algo"` // "md5" or "sha1"
	Expected string     `toml:"expected"`
	Changes  bool       `toml:"changes"`
	Action   ActionSpec `toml:"action"`
}

// MatchSpec is one content match-or-ignore line pattern.
type MatchSpec struct {
	Pattern string     `toml:"pattern"`
	Not     bool       `toml:"not"`
	Action  ActionSpec `toml:"action"`
}

// StatusSpec compares a program's exit status (check_program only).
type StatusSpec struct {
	Operator string     `toml:"operator"`
	Value    int        `toml:"value"`
	Action   ActionSpec `toml:"action"`
}

// ResourceSpec is a process- or system-resource limit. Resource names:
// cpu_percent, total_cpu_percent, cpu_user, cpu_system, cpu_wait,
// mem_percent, mem_kbyte, swap_percent, swap_kbyte, load1, load5,
// load15, children, total_mem_kbyte, total_mem_percent.
type ResourceSpec struct {
	Resource string     `toml:"resource"`
	Operator string     `toml:"operator"`
	Limit    string     `toml:"limit"` // plain number; percentages as "85.5"
	Action   ActionSpec `toml:"action"`
}

// FilesystemSpec is an inode- or space-usage limit. Resource is "inode"
// or "space"; exactly one of PercentLimit/AbsoluteLimit should be set.
type FilesystemSpec struct {
	Resource      string     `toml:"resource"`
	Operator      string     `toml:"operator"`
	PercentLimit  string     `toml:"percent_limit"`
	AbsoluteLimit string     `toml:"absolute_limit"`
	Action        ActionSpec `toml:"action"`
}

// PortSpec is a single socket connection + protocol check.
type PortSpec struct {
	Address  string     `toml:"address"` // "host:port" or a unix path
	Network  string     `toml:"network"` // "tcp", "udp", "unix"
	Protocol string     `toml:"protocol"`
	Timeout  string     `toml:"timeout"`
	Retry    int        `toml:"retry"`
	Action   ActionSpec `toml:"action"`
}

// IcmpSpec is a single ICMP echo check.
type IcmpSpec struct {
	Timeout string     `toml:"timeout"`
	Count   int        `toml:"count"`
	Action  ActionSpec `toml:"action"`
}

// ActionRateSpec is a restart-rate quench rule.
type ActionRateSpec struct {
	Count  int        `toml:"count"`
	Cycle  int        `toml:"cycle"`
	Action ActionSpec `toml:"action"`
}
