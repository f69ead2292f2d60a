package validate

import (
	"fmt"
	"time"

	"github.com/ocochard/cmonit/internal/model"
)

// portDescription renders a PortTest the way the original's
// Util_portDescription does, for use in report strings.
func portDescription(p *model.PortTest) string {
	if p.Network == "unix" {
		return fmt.Sprintf("unix socket %s", p.Address)
	}
	return fmt.Sprintf("%s://%s [%s]", p.Network, p.Address, p.Protocol)
}

// checkConnection implements check_connection: spec.md §4.12. It opens a
// socket, readies it, and runs the protocol-check routine, retrying the
// whole attempt p.Retry times before giving up. UDP sockets skip the
// ready-wait when a specific protocol check will itself prove readiness,
// since socket_is_ready adds a needless delay in that case.
func (e *Engine) checkConnection(s *model.Service, p *model.PortTest) {
	attempts := p.Retry
	if attempts < 1 {
		attempts = 1
	}

	var report string
	ok := false

	for attempt := 1; attempt <= attempts; attempt++ {
		start := time.Now()
		ok, report = e.attemptConnection(s, p)
		if ok {
			p.Response = time.Since(start).Seconds()
			break
		}
		if attempt < attempts {
			e.debugf("'%s' %s (attempt %d/%d)", s.Name, report, attempt, attempts)
		}
	}

	if !ok {
		p.Response = -1
		p.IsAvailable = false
		e.Sink.Post(s, model.EventConnection, model.StateFailed, p.Action, report)
		return
	}
	p.IsAvailable = true
	e.Sink.Post(s, model.EventConnection, model.StateSucceeded, p.Action, fmt.Sprintf("connection succeeded to %s", portDescription(p)))
}

func (e *Engine) attemptConnection(s *model.Service, p *model.PortTest) (bool, string) {
	socket, err := e.Connection.Open(p)
	if err != nil {
		return false, fmt.Sprintf("failed, cannot open a connection to %s", portDescription(p))
	}
	defer socket.Close()
	e.debugf("'%s' succeeded connecting to %s", s.Name, portDescription(p))

	needsReady := !socket.IsDatagram() || p.Protocol == ""
	if needsReady {
		if err := socket.Ready(); err != nil {
			return false, fmt.Sprintf("connection failed, %s is not ready for i|o -- %v", portDescription(p), err)
		}
	}

	if err := socket.Check(p.Protocol); err != nil {
		return false, fmt.Sprintf("failed protocol test [%s] at %s -- %s", p.Protocol, portDescription(p), socket.LastError())
	}
	e.debugf("'%s' succeeded testing protocol [%s] at %s", s.Name, p.Protocol, portDescription(p))
	return true, ""
}
