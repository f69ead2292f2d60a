package probes

import (
	"testing"

	"github.com/ocochard/cmonit/internal/model"
)

func TestSystemRefreshNeverErrors(t *testing.T) {
	var info model.SystemInfo
	if err := (System{}).Refresh(&info); err != nil {
		t.Fatalf("Refresh should swallow individual gopsutil failures and never return an error, got %v", err)
	}
}

func TestSystemRefreshPopulatesMemory(t *testing.T) {
	var info model.SystemInfo
	if err := (System{}).Refresh(&info); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.TotalMemKbyte <= 0 {
		t.Errorf("expected a positive total memory reading on a real host, got %d", info.TotalMemKbyte)
	}
}
