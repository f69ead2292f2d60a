package probes

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/ocochard/cmonit/internal/model"
)

// Process implements validate.ProcessProbe over gopsutil's /proc reader.
// A service resolves to a pid either by reading s.Path as a pidfile, or,
// failing that, by matching the process table on its basename -- the two
// strategies Util_isProcessRunning tries in the original.
type Process struct{}

func (Process) IsRunning(s *model.Service) int {
	if pid := pidFromFile(s.Path); pid > 0 && processAlive(pid) {
		return pid
	}
	return pidByMatch(s.Path)
}

func pidFromFile(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0
	}
	return pid
}

func processAlive(pid int) bool {
	ok, err := process.PidExists(int32(pid))
	return err == nil && ok
}

func pidByMatch(path string) int {
	procs, err := process.Processes()
	if err != nil {
		return 0
	}
	base := path
	if i := strings.LastIndex(path, "/"); i >= 0 {
		base = path[i+1:]
	}
	for _, p := range procs {
		name, err := p.Name()
		if err != nil {
			continue
		}
		if name == base {
			return int(p.Pid)
		}
	}
	return 0
}

// Sample implements update_process_data: it refreshes s.Info.Process from
// the process table, shifting the previous pid/ppid into the "_pid"/
// "_ppid" slots the change-detection checks compare against.
func (Process) Sample(s *model.Service, pid int) bool {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return false
	}

	pi := &s.Info.Process
	pi.PrevPid = pi.Pid
	if pi.Pid == 0 {
		pi.PrevPid = -1
	}
	pi.Pid = pid

	ppid, err := p.Ppid()
	if err != nil {
		return false
	}
	pi.PrevPpid = pi.Ppid
	if pi.Ppid == 0 {
		pi.PrevPpid = -1
	}
	pi.Ppid = int(ppid)

	status, err := p.Status()
	pi.Zombie = err == nil && len(status) > 0 && status[0] == "Z"

	if cpuPercent, err := p.CPUPercent(); err == nil {
		pi.CPUPercent = int64(cpuPercent * 10)
	} else {
		pi.CPUPercent = -1
	}
	pi.TotalCPUPercent = pi.CPUPercent

	if memPercent, err := p.MemoryPercent(); err == nil {
		pi.MemPercent = int64(memPercent * 10)
		pi.TotalMemPercent = pi.MemPercent
	}
	if memInfo, err := p.MemoryInfo(); err == nil && memInfo != nil {
		pi.MemKbyte = int64(memInfo.RSS / 1024)
		pi.TotalMemKbyte = pi.MemKbyte
	}

	if children, err := p.Children(); err == nil {
		pi.Children = len(children)
	}

	if createdMs, err := p.CreateTime(); err == nil {
		pi.Uptime = int64(time.Since(time.UnixMilli(createdMs)).Seconds())
	}

	return true
}
