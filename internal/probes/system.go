package probes

import (
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/ocochard/cmonit/internal/model"
)

// System implements validate.SystemProbe, refreshing the shared,
// cycle-wide snapshot every service's system-resource checks read.
type System struct{}

func (System) Refresh(info *model.SystemInfo) error {
	if avg, err := load.Avg(); err == nil {
		info.LoadAvg1 = avg.Load1
		info.LoadAvg5 = avg.Load5
		info.LoadAvg15 = avg.Load15
	}

	if times, err := cpu.Times(false); err == nil && len(times) > 0 {
		t := times[0]
		total := t.User + t.System + t.Idle + t.Iowait + t.Nice + t.Irq + t.Softirq + t.Steal
		if total > 0 {
			info.TotalCPUUserPercent = int64(1000 * t.User / total)
			info.TotalCPUSystPercent = int64(1000 * t.System / total)
			info.TotalCPUWaitPercent = int64(1000 * t.Iowait / total)
		}
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		info.TotalMemKbyte = int64(vm.Total / 1024)
		info.TotalMemPercent = int64(vm.UsedPercent * 10)
	}
	if sm, err := mem.SwapMemory(); err == nil {
		info.TotalSwapKbyte = int64(sm.Total / 1024)
		info.TotalSwapPercent = int64(sm.UsedPercent * 10)
	}

	return nil
}
