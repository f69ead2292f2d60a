package validate

import (
	"fmt"

	"github.com/ocochard/cmonit/internal/model"
)

// checkProcessState implements check_process_state: spec.md §4.10.
func (e *Engine) checkProcessState(s *model.Service) {
	if s.Info.Process.Zombie {
		e.Sink.Post(s, model.EventData, model.StateFailed, s.ActionData,
			fmt.Sprintf("process with pid %d is a zombie", s.Info.Process.Pid))
		return
	}
	e.debugf("'%s' zombie check succeeded", s.Name)
	e.Sink.Post(s, model.EventData, model.StateSucceeded, s.ActionData, "check process state succeeded")
}

// checkProcessPid implements check_process_pid: spec.md §4.10. PrevPid ==
// -1 means no prior sample exists yet -- nothing to compare against.
func (e *Engine) checkProcessPid(s *model.Service) {
	p := &s.Info.Process
	if p.PrevPid == -1 {
		return
	}
	if p.PrevPid != p.Pid {
		e.Sink.Post(s, model.EventPid, model.StateChanged, s.ActionPid,
			fmt.Sprintf("process PID changed from %d to %d", p.PrevPid, p.Pid))
	} else {
		e.Sink.Post(s, model.EventPid, model.StateChangedNot, s.ActionPid, "process PID has not changed since last cycle")
	}
}

// checkProcessPPid implements check_process_ppid: spec.md §4.10.
func (e *Engine) checkProcessPPid(s *model.Service) {
	p := &s.Info.Process
	if p.PrevPpid == -1 {
		return
	}
	if p.PrevPpid != p.Ppid {
		e.Sink.Post(s, model.EventPPid, model.StateChanged, s.ActionPPid,
			fmt.Sprintf("process PPID changed from %d to %d", p.PrevPpid, p.Ppid))
	} else {
		e.Sink.Post(s, model.EventPPid, model.StateChangedNot, s.ActionPPid, "process PPID has not changed since last cycle")
	}
}

// checkProcessResources implements check_process_resources: spec.md §4.10.
// The same descriptor list is shared by process services (per-process
// counters) and the system service (counters read from the shared
// SystemInfo snapshot); the switch below picks the right source per ID.
func (e *Engine) checkProcessResources(s *model.Service, r *model.ResourceTest) {
	var report string
	okay := true
	initializing := s.Monitor&model.MonitorInit != 0

	switch r.ResourceID {
	case model.ResourceCPUPercent:
		v := s.Info.Process.CPUPercent
		if initializing || v < 0 {
			e.debugf("'%s' cpu usage check skipped (initializing)", s.Name)
			return
		}
		okay, report = evalPercent(r, v, "cpu usage")

	case model.ResourceTotalCPUPercent:
		v := s.Info.Process.TotalCPUPercent
		if initializing || v < 0 {
			e.debugf("'%s' total cpu usage check skipped (initializing)", s.Name)
			return
		}
		okay, report = evalPercent(r, v, "total cpu usage")

	case model.ResourceCPUUser:
		v := e.SystemInfo.TotalCPUUserPercent
		if initializing || v < 0 {
			e.debugf("'%s' cpu user usage check skipped (initializing)", s.Name)
			return
		}
		okay, report = evalPercent(r, v, "cpu user usage")

	case model.ResourceCPUSystem:
		v := e.SystemInfo.TotalCPUSystPercent
		if initializing || v < 0 {
			e.debugf("'%s' cpu system usage check skipped (initializing)", s.Name)
			return
		}
		okay, report = evalPercent(r, v, "cpu system usage")

	case model.ResourceCPUWait:
		v := e.SystemInfo.TotalCPUWaitPercent
		if initializing || v < 0 {
			e.debugf("'%s' cpu wait usage check skipped (initializing)", s.Name)
			return
		}
		okay, report = evalPercent(r, v, "cpu wait usage")

	case model.ResourceMemPercent:
		v := s.Info.Process.MemPercent
		if s.Kind == model.KindSystem {
			v = e.SystemInfo.TotalMemPercent
		}
		okay, report = evalPercent(r, v, "mem usage")

	case model.ResourceMemKbyte:
		v := s.Info.Process.MemKbyte
		if s.Kind == model.KindSystem {
			v = e.SystemInfo.TotalMemKbyte
		}
		okay, report = evalKbyte(r, v, "mem amount")

	case model.ResourceSwapPercent:
		if s.Kind != model.KindSystem {
			return
		}
		okay, report = evalPercent(r, e.SystemInfo.TotalSwapPercent, "swap usage")

	case model.ResourceSwapKbyte:
		if s.Kind != model.KindSystem {
			return
		}
		okay, report = evalKbyte(r, e.SystemInfo.TotalSwapKbyte, "swap amount")

	case model.ResourceLoad1:
		okay, report = evalLoad(r, e.SystemInfo.LoadAvg1, "loadavg(1min)")

	case model.ResourceLoad5:
		okay, report = evalLoad(r, e.SystemInfo.LoadAvg5, "loadavg(5min)")

	case model.ResourceLoad15:
		okay, report = evalLoad(r, e.SystemInfo.LoadAvg15, "loadavg(15min)")

	case model.ResourceChildren:
		v := int64(s.Info.Process.Children)
		if model.Eval(r.Operator, v, r.Limit) {
			okay = false
			report = fmt.Sprintf("children of %d matches resource limit [children%s%d]", v, r.Operator, r.Limit)
		} else {
			report = fmt.Sprintf("children check succeeded [current children=%d]", v)
		}

	case model.ResourceTotalMemKbyte:
		okay, report = evalKbyte(r, s.Info.Process.TotalMemKbyte, "total mem amount")

	case model.ResourceTotalMemPercent:
		okay, report = evalPercent(r, s.Info.Process.TotalMemPercent, "total mem amount")

	default:
		e.debugf("'%s' error -- unknown resource ID: [%d]", s.Name, r.ResourceID)
		return
	}

	if !okay {
		e.Sink.Post(s, model.EventResource, model.StateFailed, r.Action, report)
	} else {
		e.Sink.Post(s, model.EventResource, model.StateSucceeded, r.Action, report)
	}
}

func evalPercent(r *model.ResourceTest, v int64, label string) (bool, string) {
	if model.Eval(r.Operator, v, r.Limit) {
		return false, fmt.Sprintf("%s of %.1f%% matches resource limit [%s%s%.1f%%]", label, float64(v)/10, label, r.Operator, float64(r.Limit)/10)
	}
	return true, fmt.Sprintf("%s check succeeded [current %s=%.1f%%]", label, label, float64(v)/10)
}

func evalKbyte(r *model.ResourceTest, v int64, label string) (bool, string) {
	if model.Eval(r.Operator, v, r.Limit) {
		return false, fmt.Sprintf("%s of %dkB matches resource limit [%s%s%dkB]", label, v, label, r.Operator, r.Limit)
	}
	return true, fmt.Sprintf("%s check succeeded [current %s=%dkB]", label, label, v)
}

func evalLoad(r *model.ResourceTest, v float64, label string) (bool, string) {
	scaled := int64(v * 10)
	if model.Eval(r.Operator, scaled, r.Limit) {
		return false, fmt.Sprintf("%s of %.1f matches resource limit [%s%s%.1f]", label, v, label, r.Operator, float64(r.Limit)/10)
	}
	return true, fmt.Sprintf("%s check succeeded [current %s=%.1f]", label, label, v)
}
