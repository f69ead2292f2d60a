package validate

import (
	"fmt"
	"log"
	"time"

	"github.com/ocochard/cmonit/internal/model"
)

// Run is the cycle driver: validate() from the original. It is called
// once per monitoring cycle and returns the number of services whose
// validator reported a fatal failure this cycle.
func (e *Engine) Run(run *RunState, services []*model.Service) int {
	errorCount := 0

	if err := e.System.Refresh(&e.SystemInfo); err != nil {
		log.Printf("[ERROR] failed to refresh system snapshot: %v", err)
	}
	e.SystemInfo.Collected = e.Clock.Now()

	// At least one action is pending: drain the whole list first so
	// control commands are honored before any test runs this cycle.
	if run.DoAction {
		run.DoAction = false
		for _, s := range services {
			e.doScheduledAction(s)
		}
	}

	now := e.Clock.Now()
	for _, s := range services {
		if run.Stopped {
			break
		}
		if e.doScheduledAction(s) || !s.Monitor.Enabled() || e.checkSkip(s, now) {
			continue
		}
		e.checkTimeout(s) // may disable monitoring via rate quench
		if s.Monitor.Enabled() {
			if !e.dispatch(s) {
				errorCount++
			}
			// Monitoring may have been disabled by a rule fired inside
			// the validator itself, so check again before forcing
			// MONITOR_YES -- clearing MONITOR_INIT so "initializing"
			// skips only apply to the first cycle.
			if s.Monitor.Enabled() {
				s.Monitor = (s.Monitor &^ model.MonitorInit) | model.MonitorYes
			}
		}
		s.Collected = now
	}

	e.resetDepend(services)

	return errorCount
}

// dispatch calls the per-kind validator matching s.Kind.
func (e *Engine) dispatch(s *model.Service) bool {
	switch s.Kind {
	case model.KindProcess:
		return e.checkProcess(s)
	case model.KindFilesystem:
		return e.checkFilesystem(s)
	case model.KindFile:
		return e.checkFile(s)
	case model.KindDirectory:
		return e.checkDirectory(s)
	case model.KindFifo:
		return e.checkFifo(s)
	case model.KindProgram:
		return e.checkProgram(s)
	case model.KindHost:
		return e.checkRemoteHost(s)
	case model.KindSystem:
		return e.checkSystem(s)
	default:
		log.Printf("[ERROR] '%s' has unknown service kind %v", s.Name, s.Kind)
		return false
	}
}

// resetDepend clears the per-cycle dependency-visit marks used by the
// (out-of-scope) dependency chain walker, so next cycle starts fresh.
func (e *Engine) resetDepend(services []*model.Service) {
	for _, s := range services {
		s.Visited = false
	}
}

// checkSkip implements check_skip: spec.md §4.2.
func (e *Engine) checkSkip(s *model.Service, now time.Time) bool {
	if s.Visited {
		e.debugf("'%s' check skipped -- service already handled in a dependency chain", s.Name)
		return true
	}
	switch s.Every.Kind {
	case model.EverySkipCycles:
		s.Every.AdvanceCycle()
		if s.Every.CycleCount() < s.Every.CycleNumber {
			s.Monitor |= model.MonitorWaiting
			e.debugf("'%s' test skipped as current cycle (%d) < every cycle (%d)", s.Name, s.Every.CycleCount(), s.Every.CycleNumber)
			return true
		}
		s.Every.ResetCycle()
	case model.EveryCron:
		match, err := e.Cron.Matches(s.Every.CronSpec, now)
		if err != nil {
			log.Printf("[ERROR] '%s' invalid cron spec %q: %v", s.Name, s.Every.CronSpec, err)
			return true
		}
		if !match {
			s.Monitor |= model.MonitorWaiting
			e.debugf("'%s' test skipped as current time does not match every's cron spec %q", s.Name, s.Every.CronSpec)
			return true
		}
	case model.EveryNotInCron:
		match, err := e.Cron.Matches(s.Every.CronSpec, now)
		if err != nil {
			log.Printf("[ERROR] '%s' invalid cron spec %q: %v", s.Name, s.Every.CronSpec, err)
			return true
		}
		if match {
			s.Monitor |= model.MonitorWaiting
			e.debugf("'%s' test skipped as current time matches every's cron spec \"not %s\"", s.Name, s.Every.CronSpec)
			return true
		}
	}
	s.Monitor &^= model.MonitorWaiting
	return false
}

// checkTimeout implements check_timeout: the restart-rate quench, spec.md §4.3.
func (e *Engine) checkTimeout(s *model.Service) {
	if len(s.ActionRateList) == 0 {
		return
	}
	if s.NStart > 0 {
		s.NCycle++
	}
	max := 0
	for _, ar := range s.ActionRateList {
		if max < ar.Cycle {
			max = ar.Cycle
		}
		if s.NStart >= ar.Count && s.NCycle <= ar.Cycle {
			e.Sink.Post(s, model.EventTimeout, model.StateFailed, ar.Action,
				fmt.Sprintf("service restarted %d times within %d cycle(s)", s.NStart, s.NCycle))
		}
	}
	if s.NCycle > max {
		s.NCycle = 0
		s.NStart = 0
	}
}

// doScheduledAction implements do_scheduled_action, spec.md §4.4. It
// posts Event_Action STATE_CHANGED regardless of whether the control
// collaborator reports success -- the event documents the attempt, not
// the outcome (spec.md §9 Open Questions).
func (e *Engine) doScheduledAction(s *model.Service) bool {
	if s.DoAction == model.ActionIgnore {
		return false
	}
	err := e.Control.Control(s.Name, s.DoAction)
	rv := err == nil
	if err != nil {
		log.Printf("[WARN] '%s' %s action failed: %v", s.Name, s.DoAction, err)
	} else if s.DoAction == model.ActionStart || s.DoAction == model.ActionRestart {
		s.NStart++
	}
	e.Sink.Post(s, model.EventAction, model.StateChanged, s.ActionAction,
		fmt.Sprintf("%s action done", s.DoAction))
	s.DoAction = model.ActionIgnore
	s.Token = ""
	return rv
}
