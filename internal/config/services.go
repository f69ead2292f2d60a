package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ocochard/cmonit/internal/model"
)

// BuildServices turns the parsed TOML document into the persistent
// service list the engine consumes -- the "persistent service list
// construction" collaborator spec.md names, the Go equivalent of the
// original's config-file parser populating its linked Service_T list.
func BuildServices(cfg *Config) ([]*model.Service, error) {
	var out []*model.Service

	groups := []struct {
		kind  model.Kind
		specs []ServiceSpec
	}{
		{model.KindProcess, cfg.Process},
		{model.KindFile, cfg.File},
		{model.KindDirectory, cfg.Directory},
		{model.KindFifo, cfg.Fifo},
		{model.KindFilesystem, cfg.Filesystem},
		{model.KindProgram, cfg.Program},
		{model.KindHost, cfg.Host},
		{model.KindSystem, cfg.System},
	}

	for _, g := range groups {
		for _, spec := range g.specs {
			svc, err := buildService(g.kind, spec)
			if err != nil {
				return nil, fmt.Errorf("service %q: %w", spec.Name, err)
			}
			out = append(out, svc)
		}
	}

	return out, nil
}

func buildService(kind model.Kind, spec ServiceSpec) (*model.Service, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("service name is required")
	}

	s := &model.Service{
		Name:    spec.Name,
		Kind:    kind,
		Path:    spec.Path,
		Monitor: model.MonitorYes | model.MonitorInit,

		ActionNonexist: spec.OnNonexist.bindingOrDefault(),
		ActionInvalid:  spec.OnInvalid.bindingOrDefault(),
		ActionData:     spec.OnData.bindingOrDefault(),
		ActionExec:     spec.OnExec.bindingOrDefault(),
		ActionPid:      spec.OnPid.bindingOrDefault(),
		ActionPPid:     spec.OnPPid.bindingOrDefault(),
		ActionFsflag:   spec.OnFsflag.bindingOrDefault(),
		ActionAction:   spec.OnAction.bindingOrDefault(),
	}

	every, err := buildEvery(spec.Every)
	if err != nil {
		return nil, err
	}
	s.Every = every

	if spec.Perm != "" {
		v, err := strconv.ParseUint(spec.Perm, 8, 32)
		if err != nil {
			return nil, fmt.Errorf("perm %q: %w", spec.Perm, err)
		}
		s.Perm = &model.PermTest{Perm: uint32(v), Action: model.ActionBinding{Failed: model.ActionAlert, Succeeded: model.ActionAlert}}
	}
	if spec.UID != "" {
		v, err := strconv.ParseUint(spec.UID, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("uid %q: %w", spec.UID, err)
		}
		s.UID = &model.UidTest{UID: uint32(v), Action: model.ActionBinding{Failed: model.ActionAlert, Succeeded: model.ActionAlert}}
	}
	if spec.GID != "" {
		v, err := strconv.ParseUint(spec.GID, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("gid %q: %w", spec.GID, err)
		}
		s.GID = &model.GidTest{GID: uint32(v), Action: model.ActionBinding{Failed: model.ActionAlert, Succeeded: model.ActionAlert}}
	}

	if spec.Size != nil {
		t, err := buildSizeTest(*spec.Size)
		if err != nil {
			return nil, fmt.Errorf("size: %w", err)
		}
		s.SizeList = append(s.SizeList, t)
	}
	if spec.Timestamp != nil {
		t, err := buildTimestampTest(*spec.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("timestamp: %w", err)
		}
		s.TimestampList = append(s.TimestampList, t)
	}
	if spec.Uptime != nil {
		t, err := buildUptimeTest(*spec.Uptime)
		if err != nil {
			return nil, fmt.Errorf("uptime: %w", err)
		}
		s.UptimeList = append(s.UptimeList, t)
	}
	if spec.Checksum != nil {
		t, err := buildChecksumTest(*spec.Checksum)
		if err != nil {
			return nil, fmt.Errorf("checksum: %w", err)
		}
		s.Checksum = t
	}

	for _, m := range spec.Match {
		t, err := buildMatchTest(m)
		if err != nil {
			return nil, fmt.Errorf("match: %w", err)
		}
		s.MatchList = append(s.MatchList, t)
	}
	for _, m := range spec.MatchIgnore {
		t, err := buildMatchTest(m)
		if err != nil {
			return nil, fmt.Errorf("match_ignore: %w", err)
		}
		s.MatchIgnoreList = append(s.MatchIgnoreList, t)
	}
	for _, st := range spec.Status {
		op, err := parseOperator(st.Operator)
		if err != nil {
			return nil, fmt.Errorf("status: %w", err)
		}
		s.StatusList = append(s.StatusList, &model.StatusTest{
			Operator: op, ExpectedReturn: st.Value, Action: st.Action.bindingOrDefault(),
		})
	}
	for _, r := range spec.Resource {
		t, err := buildResourceTest(r)
		if err != nil {
			return nil, fmt.Errorf("resource: %w", err)
		}
		s.ResourceList = append(s.ResourceList, t)
	}
	for _, fs := range spec.Filesystem {
		t, err := buildFilesystemTest(fs)
		if err != nil {
			return nil, fmt.Errorf("filesystem_resource: %w", err)
		}
		s.FilesystemList = append(s.FilesystemList, t)
	}
	for _, p := range spec.Port {
		t, err := buildPortTest(p)
		if err != nil {
			return nil, fmt.Errorf("port: %w", err)
		}
		s.PortList = append(s.PortList, t)
	}
	for _, ic := range spec.Icmp {
		t, err := buildIcmpTest(ic)
		if err != nil {
			return nil, fmt.Errorf("icmp: %w", err)
		}
		s.IcmpList = append(s.IcmpList, t)
	}
	for _, ar := range spec.ActionRate {
		s.ActionRateList = append(s.ActionRateList, &model.ActionRateRule{
			Count: ar.Count, Cycle: ar.Cycle, Action: ar.Action.bindingOrDefault(),
		})
	}

	if kind == model.KindProgram {
		if len(spec.Program) == 0 {
			return nil, fmt.Errorf("program requires a non-empty command")
		}
		timeout := 30 * time.Second
		if spec.Timeout != "" {
			d, err := time.ParseDuration(spec.Timeout)
			if err != nil {
				return nil, fmt.Errorf("program timeout %q: %w", spec.Timeout, err)
			}
			timeout = d
		}
		s.Program = &model.ProgramState{Command: spec.Program, Timeout: timeout}
	}

	return s, nil
}

func buildEvery(e EverySpec) (model.Every, error) {
	switch e.Kind {
	case "", "cycle":
		return model.Every{Kind: model.EveryCycle}, nil
	case "skip":
		if e.Cycles <= 0 {
			return model.Every{}, fmt.Errorf("every.skip requires cycles > 0")
		}
		return model.Every{Kind: model.EverySkipCycles, CycleNumber: e.Cycles}, nil
	case "cron":
		if e.Spec == "" {
			return model.Every{}, fmt.Errorf("every.cron requires spec")
		}
		return model.Every{Kind: model.EveryCron, CronSpec: e.Spec}, nil
	case "notincron":
		if e.Spec == "" {
			return model.Every{}, fmt.Errorf("every.notincron requires spec")
		}
		return model.Every{Kind: model.EveryNotInCron, CronSpec: e.Spec}, nil
	default:
		return model.Every{}, fmt.Errorf("unknown every.kind %q", e.Kind)
	}
}

func (a ActionSpec) bindingOrDefault() model.ActionBinding {
	failed := model.ActionAlert
	succeeded := model.ActionAlert
	if a.Failed != "" {
		failed = parseAction(a.Failed)
	}
	if a.Succeeded != "" {
		succeeded = parseAction(a.Succeeded)
	}
	return model.ActionBinding{Failed: failed, Succeeded: succeeded}
}

func parseAction(s string) model.Action {
	switch strings.ToLower(s) {
	case "ignore":
		return model.ActionIgnore
	case "alert":
		return model.ActionAlert
	case "restart":
		return model.ActionRestart
	case "start":
		return model.ActionStart
	case "stop":
		return model.ActionStop
	case "exec":
		return model.ActionExec
	case "unmonitor":
		return model.ActionUnmonitor
	default:
		return model.ActionAlert
	}
}

func parseOperator(s string) (model.Operator, error) {
	switch s {
	case "<":
		return model.OpLess, nil
	case "<=":
		return model.OpLessEqual, nil
	case "==", "=":
		return model.OpEqual, nil
	case "!=":
		return model.OpNotEqual, nil
	case ">=":
		return model.OpGreaterEqual, nil
	case ">":
		return model.OpGreater, nil
	default:
		return 0, fmt.Errorf("unknown operator %q", s)
	}
}

func buildSizeTest(c ChangeOrLimitSpec) (*model.SizeTest, error) {
	if c.Changes {
		return &model.SizeTest{TestChanges: true, Action: c.Action.bindingOrDefault()}, nil
	}
	op, err := parseOperator(c.Operator)
	if err != nil {
		return nil, err
	}
	v, err := strconv.ParseInt(c.Value, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("size value %q: %w", c.Value, err)
	}
	return &model.SizeTest{Operator: op, Size: v, Action: c.Action.bindingOrDefault()}, nil
}

func buildTimestampTest(c ChangeOrLimitSpec) (*model.TimestampTest, error) {
	if c.Changes {
		return &model.TimestampTest{TestChanges: true, Action: c.Action.bindingOrDefault()}, nil
	}
	op, err := parseOperator(c.Operator)
	if err != nil {
		return nil, err
	}
	d, err := time.ParseDuration(c.Value)
	if err != nil {
		return nil, fmt.Errorf("timestamp age %q: %w", c.Value, err)
	}
	return &model.TimestampTest{Operator: op, Age: int64(d.Seconds()), Action: c.Action.bindingOrDefault()}, nil
}

func buildUptimeTest(l LimitSpec) (*model.UptimeTest, error) {
	op, err := parseOperator(l.Operator)
	if err != nil {
		return nil, err
	}
	d, err := time.ParseDuration(l.Value)
	if err != nil {
		return nil, fmt.Errorf("uptime value %q: %w", l.Value, err)
	}
	return &model.UptimeTest{Operator: op, Uptime: int64(d.Seconds()), Action: l.Action.bindingOrDefault()}, nil
}

func buildChecksumTest(c ChecksumSpec) (*model.ChecksumTest, error) {
	algo := model.HashMD5
	switch strings.ToLower(c.Algo) {
	case "", "md5":
		algo = model.HashMD5
	case "sha1":
		algo = model.HashSHA1
	default:
		return nil, fmt.Errorf("unknown checksum algo %q", c.Algo)
	}
	return &model.ChecksumTest{
		Algo: algo, Expected: strings.ToLower(c.Expected), TestChanges: c.Changes,
		Action: c.Action.bindingOrDefault(),
	}, nil
}

func buildMatchTest(m MatchSpec) (*model.MatchTest, error) {
	t := &model.MatchTest{Not: m.Not, Action: m.Action.bindingOrDefault()}
	if re, err := regexp.Compile(m.Pattern); err == nil {
		t.Pattern = re
	} else {
		t.Literal = m.Pattern
	}
	return t, nil
}

var resourceNames = map[string]model.ResourceID{
	"cpu_percent":       model.ResourceCPUPercent,
	"total_cpu_percent": model.ResourceTotalCPUPercent,
	"cpu_user":          model.ResourceCPUUser,
	"cpu_system":        model.ResourceCPUSystem,
	"cpu_wait":          model.ResourceCPUWait,
	"mem_percent":       model.ResourceMemPercent,
	"mem_kbyte":         model.ResourceMemKbyte,
	"swap_percent":      model.ResourceSwapPercent,
	"swap_kbyte":        model.ResourceSwapKbyte,
	"load1":             model.ResourceLoad1,
	"load5":             model.ResourceLoad5,
	"load15":            model.ResourceLoad15,
	"children":          model.ResourceChildren,
	"total_mem_kbyte":   model.ResourceTotalMemKbyte,
	"total_mem_percent": model.ResourceTotalMemPercent,
}

// scaledByTen resource kinds carry a decimal percentage or load average
// in their limit; everything else is a plain integer count or kbyte size.
var scaledByTenResources = map[model.ResourceID]bool{
	model.ResourceCPUPercent:      true,
	model.ResourceTotalCPUPercent: true,
	model.ResourceCPUUser:         true,
	model.ResourceCPUSystem:       true,
	model.ResourceCPUWait:         true,
	model.ResourceMemPercent:      true,
	model.ResourceSwapPercent:     true,
	model.ResourceTotalMemPercent: true,
	model.ResourceLoad1:           true,
	model.ResourceLoad5:           true,
	model.ResourceLoad15:          true,
}

func buildResourceTest(r ResourceSpec) (*model.ResourceTest, error) {
	id, ok := resourceNames[strings.ToLower(r.Resource)]
	if !ok {
		return nil, fmt.Errorf("unknown resource %q", r.Resource)
	}
	op, err := parseOperator(r.Operator)
	if err != nil {
		return nil, err
	}
	limit, err := parseScaledValue(r.Limit, scaledByTenResources[id])
	if err != nil {
		return nil, fmt.Errorf("limit %q: %w", r.Limit, err)
	}
	return &model.ResourceTest{ResourceID: id, Operator: op, Limit: limit, Action: r.Action.bindingOrDefault()}, nil
}

func buildFilesystemTest(fs FilesystemSpec) (*model.FilesystemResourceTest, error) {
	var resource model.FilesystemResourceID
	switch strings.ToLower(fs.Resource) {
	case "inode":
		resource = model.FilesystemResourceInode
	case "space":
		resource = model.FilesystemResourceSpace
	default:
		return nil, fmt.Errorf("unknown filesystem resource %q", fs.Resource)
	}
	op, err := parseOperator(fs.Operator)
	if err != nil {
		return nil, err
	}
	t := &model.FilesystemResourceTest{
		Resource: resource, Operator: op, LimitPercent: -1, LimitAbsolute: -1,
		Action: fs.Action.bindingOrDefault(),
	}
	switch {
	case fs.PercentLimit != "":
		v, err := parseScaledValue(fs.PercentLimit, true)
		if err != nil {
			return nil, fmt.Errorf("percent_limit %q: %w", fs.PercentLimit, err)
		}
		t.LimitPercent = v
	case fs.AbsoluteLimit != "":
		v, err := strconv.ParseInt(fs.AbsoluteLimit, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("absolute_limit %q: %w", fs.AbsoluteLimit, err)
		}
		t.LimitAbsolute = v
	default:
		return nil, fmt.Errorf("filesystem_resource requires percent_limit or absolute_limit")
	}
	return t, nil
}

func buildPortTest(p PortSpec) (*model.PortTest, error) {
	network := p.Network
	if network == "" {
		network = "tcp"
	}
	timeout := 5 * time.Second
	if p.Timeout != "" {
		d, err := time.ParseDuration(p.Timeout)
		if err != nil {
			return nil, fmt.Errorf("timeout %q: %w", p.Timeout, err)
		}
		timeout = d
	}
	retry := p.Retry
	if retry <= 0 {
		retry = 1
	}
	return &model.PortTest{
		Address: p.Address, Network: network, Protocol: p.Protocol,
		Timeout: timeout, Retry: retry, Action: p.Action.bindingOrDefault(),
	}, nil
}

func buildIcmpTest(ic IcmpSpec) (*model.IcmpTest, error) {
	timeout := 5 * time.Second
	if ic.Timeout != "" {
		d, err := time.ParseDuration(ic.Timeout)
		if err != nil {
			return nil, fmt.Errorf("timeout %q: %w", ic.Timeout, err)
		}
		timeout = d
	}
	count := ic.Count
	if count <= 0 {
		count = 1
	}
	return &model.IcmpTest{Type: model.IcmpEcho, Timeout: timeout, Count: count, Action: ic.Action.bindingOrDefault()}, nil
}

// parseScaledValue parses a plain decimal string into the engine's
// scaled-by-ten integer convention when scale is true (a percentage or
// load average like "85.5" becomes 855), or a plain integer otherwise.
func parseScaledValue(s string, scale bool) (int64, error) {
	if !scale {
		return strconv.ParseInt(s, 10, 64)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int64(f * 10), nil
}
