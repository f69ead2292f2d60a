package validate

import (
	"testing"

	"github.com/ocochard/cmonit/internal/model"
)

func TestCheckChecksumInitializesThenDetectsChange(t *testing.T) {
	e, sink := newTestEngine()
	cs := e.Checksum.(*fakeChecksum)
	cs.sums = []string{"aaaa", "aaaa", "bbbb"}

	s := &model.Service{Name: "conf", Path: "/etc/app.conf", Checksum: &model.ChecksumTest{TestChanges: true}}

	e.checkChecksum(s) // cycle 1: establishes the baseline -- compares equal to itself
	e.checkChecksum(s) // cycle 2: unchanged
	e.checkChecksum(s) // cycle 3: changed

	got := sink.states(model.EventChecksum)
	want := []model.State{model.StateChangedNot, model.StateChangedNot, model.StateChanged}
	if len(got) != len(want) {
		t.Fatalf("expected %d checksum events after init, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestCheckChecksumFixedExpectedFailsOnMismatch(t *testing.T) {
	e, sink := newTestEngine()
	cs := e.Checksum.(*fakeChecksum)
	cs.sums = []string{"deadbeef"}

	s := &model.Service{Name: "conf", Path: "/etc/app.conf", Checksum: &model.ChecksumTest{
		Initialized: true,
		Expected:    "cafef00d",
	}}
	e.checkChecksum(s)

	got := sink.states(model.EventChecksum)
	if len(got) != 1 || got[0] != model.StateFailed {
		t.Fatalf("expected a single Failed checksum event, got %v", got)
	}
}

func TestCheckChecksumProbeErrorPostsData(t *testing.T) {
	e, sink := newTestEngine()
	cs := e.Checksum.(*fakeChecksum)
	cs.err = errBadSpec

	s := &model.Service{Name: "conf", Path: "/etc/app.conf", Checksum: &model.ChecksumTest{}}
	e.checkChecksum(s)

	data := sink.states(model.EventData)
	if len(data) != 1 || data[0] != model.StateFailed {
		t.Fatalf("a checksum probe error should post a failed Data event, got %v", data)
	}
}

func TestCheckSizeTestChanges(t *testing.T) {
	e, sink := newTestEngine()
	sl := &model.SizeTest{TestChanges: true}
	s := &model.Service{Name: "log", Path: "/var/log/app.log", SizeList: []*model.SizeTest{sl}}

	s.Info.File.Size = 100
	e.checkSize(s) // initializes, no event
	s.Info.File.Size = 100
	e.checkSize(s) // unchanged
	s.Info.File.Size = 250
	e.checkSize(s) // changed

	got := sink.states(model.EventSize)
	want := []model.State{model.StateChangedNot, model.StateChanged}
	if len(got) != len(want) {
		t.Fatalf("expected %d size events, got %d: %v", len(want), len(got), got)
	}
}

func TestCheckSizeLimit(t *testing.T) {
	e, sink := newTestEngine()
	sl := &model.SizeTest{Operator: model.OpGreater, Size: 1000}
	s := &model.Service{Name: "log", SizeList: []*model.SizeTest{sl}}

	s.Info.File.Size = 2000
	e.checkSize(s)

	got := sink.states(model.EventSize)
	if len(got) != 1 || got[0] != model.StateFailed {
		t.Fatalf("a size over the limit should fail, got %v", got)
	}
}

func TestCheckTimestampAgeLimit(t *testing.T) {
	e, sink := newTestEngine()
	now := e.Clock.Now().Unix()
	s := &model.Service{
		Name: "stale",
		TimestampList: []*model.TimestampTest{
			{Operator: model.OpGreater, Age: 3600},
		},
	}
	s.Info.Timestamp = now - 7200 // 2h old, exceeds the 1h limit
	e.checkTimestamp(s)

	got := sink.states(model.EventTimestamp)
	if len(got) != 1 || got[0] != model.StateFailed {
		t.Fatalf("a file older than the age limit should fail, got %v", got)
	}
}

func TestCheckPermUIDGID(t *testing.T) {
	e, sink := newTestEngine()
	s := &model.Service{
		Name: "conf",
		Path: "/etc/app.conf",
		Perm: &model.PermTest{Perm: 0644},
		UID:  &model.UidTest{UID: 0},
		GID:  &model.GidTest{GID: 0},
	}
	s.Info.Mode = 0600
	s.Info.UID = 99
	s.Info.GID = 99

	e.checkPerm(s)
	e.checkUID(s)
	e.checkGID(s)

	if got := sink.states(model.EventPermission); len(got) != 1 || got[0] != model.StateFailed {
		t.Errorf("mismatched permission should fail, got %v", got)
	}
	if got := sink.states(model.EventUid); len(got) != 1 || got[0] != model.StateFailed {
		t.Errorf("mismatched uid should fail, got %v", got)
	}
	if got := sink.states(model.EventGid); len(got) != 1 || got[0] != model.StateFailed {
		t.Errorf("mismatched gid should fail, got %v", got)
	}
}
