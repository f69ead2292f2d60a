package sink

import (
	"database/sql"
	"log"
	"sync"

	"github.com/ocochard/cmonit/internal/model"
	"github.com/ocochard/cmonit/internal/validate"
)

// Sink implements validate.EventSink. It always writes a row for a posted
// outcome (the post-unconditional pattern the engine relies on) but only
// dispatches a control action and logs at alert level on a bitmap
// transition -- a first failure, or a recovery from one. Repeated
// identical outcomes are recorded but not re-acted on.
type Sink struct {
	db      *sql.DB
	control validate.ServiceController // nil disables action dispatch (dry-run / unwired daemon)

	mu        sync.Mutex
	incidents []Incident // transitions accumulated since the last Drain
}

// New wraps an already-open event database. control may be nil.
func New(db *sql.DB, control validate.ServiceController) *Sink {
	return &Sink{db: db, control: control}
}

// Drain returns and clears the incidents accumulated since the previous
// call, for cmd/monitd to fold into BuildDigest once per cycle.
func (sk *Sink) Drain() []Incident {
	sk.mu.Lock()
	defer sk.mu.Unlock()
	out := sk.incidents
	sk.incidents = nil
	return out
}

// badState reports whether state represents a problem outcome (the
// "currently failed" side of the bitmap) as opposed to a good one.
func badState(state model.State) bool {
	return state == model.StateFailed || state == model.StateChanged
}

func (sk *Sink) Post(s *model.Service, kind model.EventKind, state model.State, action model.ActionBinding, message string) {
	verb := action.Succeeded
	if badState(state) {
		verb = action.Failed
	}
	_, err := sk.db.Exec(
		`INSERT INTO events (service_name, kind, state, action, message) VALUES (?, ?, ?, ?, ?)`,
		s.Name, kind.String(), state.String(), verb.String(), message,
	)
	if err != nil {
		log.Printf("[ERROR] failed to record event for '%s': %v", s.Name, err)
	}

	wasBad := s.HasErrorBit(kind)
	isBad := badState(state)

	switch {
	case isBad && !wasBad:
		// New problem: transition into the failed bit, alert, and act.
		s.SetErrorBit(kind)
		log.Printf("[ERROR] '%s' %s %s -- %s", s.Name, kind, state, message)
		sk.record(Incident{Service: s.Name, Kind: kind, Recovery: false, Message: message})
		sk.dispatch(s, action.Failed)
	case !isBad && wasBad:
		// Recovery: clear the bit, alert, and act on the recovery binding.
		s.ClearErrorBit(kind)
		log.Printf("[INFO] '%s' %s recovered -- %s", s.Name, kind, message)
		sk.record(Incident{Service: s.Name, Kind: kind, Recovery: true, Message: message})
		sk.dispatch(s, action.Succeeded)
	case isBad && wasBad:
		// Still failing -- logged above via the row insert, no re-alert.
	default:
		// Still fine -- nothing to do.
	}
}

func (sk *Sink) record(inc Incident) {
	sk.mu.Lock()
	sk.incidents = append(sk.incidents, inc)
	sk.mu.Unlock()
}

// dispatch runs the control verb bound to a transition. ActionAlert and
// ActionIgnore are alert-only / no-op by definition -- the log line above
// already covers "alert". ActionExec requires a configured exec command
// that this daemon's service model doesn't carry (only check_program
// services run an external command, and that's on its own schedule, not
// as a recovery hook), so it logs instead of acting.
func (sk *Sink) dispatch(s *model.Service, action model.Action) {
	if sk.control == nil {
		return
	}
	switch action {
	case model.ActionStart, model.ActionStop, model.ActionRestart, model.ActionUnmonitor:
		if err := sk.control.Control(s.Name, action); err != nil {
			log.Printf("[ERROR] control action '%s' failed for '%s': %v", action, s.Name, err)
		} else if action == model.ActionStart || action == model.ActionRestart {
			s.NStart++
		}
	case model.ActionExec:
		log.Printf("[WARN] exec action bound to '%s' has no configured command, skipping", s.Name)
	}
}
