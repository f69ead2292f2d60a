package validate

import (
	"testing"

	"github.com/ocochard/cmonit/internal/model"
)

func TestCheckProcessPidNoPriorSampleSkips(t *testing.T) {
	e, sink := newTestEngine()
	s := &model.Service{Name: "svc"}
	s.Info.Process.PrevPid = -1
	s.Info.Process.Pid = 1234
	e.checkProcessPid(s)
	if len(sink.posts) != 0 {
		t.Error("the first sample after a process appears has nothing to compare against and must not post")
	}
}

func TestCheckProcessPidChangedBetweenCycles(t *testing.T) {
	e, sink := newTestEngine()
	s := &model.Service{Name: "svc"}
	s.Info.Process.PrevPid = 100
	s.Info.Process.Pid = 200
	e.checkProcessPid(s)
	got := sink.states(model.EventPid)
	if len(got) != 1 || got[0] != model.StateChanged {
		t.Fatalf("a pid that differs from the previous sample should post Changed, got %v", got)
	}
}

func TestCheckProcessPidUnchanged(t *testing.T) {
	e, sink := newTestEngine()
	s := &model.Service{Name: "svc"}
	s.Info.Process.PrevPid = 100
	s.Info.Process.Pid = 100
	e.checkProcessPid(s)
	got := sink.states(model.EventPid)
	if len(got) != 1 || got[0] != model.StateChangedNot {
		t.Fatalf("an unchanged pid should post ChangedNot, got %v", got)
	}
}

func TestCheckProcessZombie(t *testing.T) {
	e, sink := newTestEngine()
	s := &model.Service{Name: "svc"}
	s.Info.Process.Zombie = true
	e.checkProcessState(s)
	got := sink.states(model.EventData)
	if len(got) != 1 || got[0] != model.StateFailed {
		t.Fatalf("a zombie process should fail the state check, got %v", got)
	}
}

// TestCheckProcessAppearsBetweenCycles exercises the full process
// validator across two cycles the way the engine actually runs it: not
// running, then running with no prior pid sample, matching spec.md's
// "process appears between cycles" worked scenario.
func TestCheckProcessAppearsBetweenCycles(t *testing.T) {
	e, sink := newTestEngine()
	proc := e.Process.(*fakeProcess)
	s := &model.Service{Name: "worker", Kind: model.KindProcess}
	e.RunDoProcess = true

	proc.pid = 0
	ok := e.checkProcess(s)
	if ok {
		t.Fatal("checkProcess should report failure while the process is not running")
	}
	if got := sink.states(model.EventNonexist); len(got) != 1 || got[0] != model.StateFailed {
		t.Fatalf("expected one failed Nonexist event, got %v", got)
	}

	// Process appears: IsRunning now answers with a pid, Sample populates
	// Info, and PrevPid holds the -1 "no prior sample" sentinel a first
	// sample leaves behind, so checkProcessPid must not report a change.
	proc.pid = 4242
	proc.sampleOK = true
	s.Info.Process.PrevPid = -1
	proc.onSample = func(svc *model.Service) {
		svc.Info.Process.Pid = 4242
	}

	ok = e.checkProcess(s)
	if !ok {
		t.Fatal("checkProcess should report success once the process is running")
	}
	if got := sink.states(model.EventNonexist); got[len(got)-1] != model.StateSucceeded {
		t.Fatalf("expected the second Nonexist event to succeed, got %v", got)
	}
	if got := sink.states(model.EventPid); len(got) != 0 {
		t.Errorf("a first-ever pid sample (PrevPid == -1) must not post a Pid event, got %v", got)
	}
}

func TestCheckProcessResourcesChildrenLimit(t *testing.T) {
	e, sink := newTestEngine()
	s := &model.Service{Name: "svc"}
	s.Info.Process.Children = 50
	r := &model.ResourceTest{ResourceID: model.ResourceChildren, Operator: model.OpGreater, Limit: 10}
	e.checkProcessResources(s, r)
	got := sink.states(model.EventResource)
	if len(got) != 1 || got[0] != model.StateFailed {
		t.Fatalf("children over the limit should fail, got %v", got)
	}
}

func TestCheckProcessResourcesSkipsWhileInitializing(t *testing.T) {
	e, sink := newTestEngine()
	s := &model.Service{Name: "svc", Monitor: model.MonitorInit}
	s.Info.Process.CPUPercent = -1
	r := &model.ResourceTest{ResourceID: model.ResourceCPUPercent, Operator: model.OpGreater, Limit: 500}
	e.checkProcessResources(s, r)
	if len(sink.posts) != 0 {
		t.Error("a cpu-percent check during the initializing cycle must not post")
	}
}

func TestCheckProcessResourcesSystemKindUsesSharedSnapshot(t *testing.T) {
	e, sink := newTestEngine()
	e.SystemInfo.TotalMemPercent = 900
	s := &model.Service{Name: "host", Kind: model.KindSystem}
	r := &model.ResourceTest{ResourceID: model.ResourceMemPercent, Operator: model.OpGreater, Limit: 800}
	e.checkProcessResources(s, r)
	got := sink.states(model.EventResource)
	if len(got) != 1 || got[0] != model.StateFailed {
		t.Fatalf("a system-kind mem check should read SystemInfo, not the process union, got %v", got)
	}
}
