package probes

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/ocochard/cmonit/internal/model"
	"github.com/ocochard/cmonit/internal/validate"
)

// ProtocolCheck verifies an application-level exchange over an already
// connected socket. Registered by name in ProtocolChecks.
type ProtocolCheck func(conn net.Conn) error

// ProtocolChecks is the registry of named protocol verification routines.
// An empty name selects the default check, which only proves the
// connection opened.
var ProtocolChecks = map[string]ProtocolCheck{
	"ping": func(conn net.Conn) error {
		if _, err := conn.Write([]byte("PING\r\n")); err != nil {
			return err
		}
		return expectLine(conn, "PONG")
	},
	"http": func(conn net.Conn) error {
		if _, err := conn.Write([]byte("HEAD / HTTP/1.0\r\n\r\n")); err != nil {
			return err
		}
		return expectPrefix(conn, "HTTP/")
	},
}

func expectPrefix(conn net.Conn, prefix string) error {
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return err
	}
	if !strings.HasPrefix(line, prefix) {
		return fmt.Errorf("unexpected response %q", line)
	}
	return nil
}

func expectLine(conn net.Conn, want string) error {
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return err
	}
	if strings.TrimSpace(line) != want {
		return fmt.Errorf("unexpected response %q", line)
	}
	return nil
}

// Connection implements validate.ConnectionProbe over net.Dial.
type Connection struct{}

func (Connection) Open(p *model.PortTest) (validate.Socket, error) {
	conn, err := net.DialTimeout(p.Network, p.Address, p.Timeout)
	if err != nil {
		return nil, err
	}
	return &socket{conn: conn, network: p.Network}, nil
}

type socket struct {
	conn     net.Conn
	network  string
	lastErr  string
}

func (s *socket) IsDatagram() bool { return s.network == "udp" }

func (s *socket) Ready() error {
	s.conn.SetDeadline(time.Now().Add(2 * time.Second))
	one := make([]byte, 1)
	_, err := s.conn.Write(one[:0])
	return err
}

func (s *socket) Check(name string) error {
	if name == "" {
		return nil
	}
	check, ok := ProtocolChecks[name]
	if !ok {
		s.lastErr = fmt.Sprintf("unknown protocol check %q", name)
		return fmt.Errorf(s.lastErr)
	}
	if err := check(s.conn); err != nil {
		s.lastErr = err.Error()
		return err
	}
	return nil
}

func (s *socket) LastError() string { return s.lastErr }

func (s *socket) Close() error { return s.conn.Close() }
