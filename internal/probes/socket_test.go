package probes

import (
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/ocochard/cmonit/internal/model"
)

func TestConnectionOpenTCPSucceeds(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("unexpected error listening: %v", err)
	}
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			conn.Close()
		}
	}()

	p := &model.PortTest{Network: "tcp", Address: ln.Addr().String(), Timeout: time.Second}
	sock, err := (Connection{}).Open(p)
	if err != nil {
		t.Fatalf("unexpected error opening the connection: %v", err)
	}
	defer sock.Close()

	if sock.IsDatagram() {
		t.Error("a tcp socket must not report IsDatagram")
	}
}

func TestConnectionOpenRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("unexpected error listening: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close() // nothing listens here anymore

	p := &model.PortTest{Network: "tcp", Address: addr, Timeout: time.Second}
	if _, err := (Connection{}).Open(p); err == nil {
		t.Fatal("expected an error connecting to a closed port")
	}
}

func TestSocketCheckPingProtocol(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("unexpected error listening: %v", err)
	}
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		line, err := bufio.NewReader(conn).ReadString('\n')
		if err != nil || line != "PING\r\n" {
			return
		}
		conn.Write([]byte("PONG\n"))
	}()

	p := &model.PortTest{Network: "tcp", Address: ln.Addr().String(), Timeout: time.Second}
	sock, err := (Connection{}).Open(p)
	if err != nil {
		t.Fatalf("unexpected error opening the connection: %v", err)
	}
	defer sock.Close()

	if err := sock.Check("ping"); err != nil {
		t.Errorf("expected the ping protocol check to succeed, got %v", err)
	}
}

func TestSocketCheckUnknownProtocolFails(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("unexpected error listening: %v", err)
	}
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			conn.Close()
		}
	}()

	p := &model.PortTest{Network: "tcp", Address: ln.Addr().String(), Timeout: time.Second}
	sock, err := (Connection{}).Open(p)
	if err != nil {
		t.Fatalf("unexpected error opening the connection: %v", err)
	}
	defer sock.Close()

	if err := sock.Check("no-such-protocol"); err == nil {
		t.Fatal("expected an error for an unregistered protocol check")
	}
	if sock.LastError() == "" {
		t.Error("a failed check should record LastError")
	}
}

func TestSocketCheckEmptyNameIsNoop(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("unexpected error listening: %v", err)
	}
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			conn.Close()
		}
	}()

	p := &model.PortTest{Network: "tcp", Address: ln.Addr().String(), Timeout: time.Second}
	sock, err := (Connection{}).Open(p)
	if err != nil {
		t.Fatalf("unexpected error opening the connection: %v", err)
	}
	defer sock.Close()

	if err := sock.Check(""); err != nil {
		t.Errorf("an empty protocol name should only prove the connection opened, got %v", err)
	}
}
