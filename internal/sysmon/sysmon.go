// Package sysmon provides system-wide CPU and memory introspection used to
// bound the calibration search space.
package sysmon

import (
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// Stats holds a single snapshot of system-wide resource usage.
type Stats struct {
	CPUPercent float64 // 0.0 .. 100.0
	MemPercent float64 // 0.0 .. 100.0
}

// Resources describes the hardware a calibration run measures on.
type Resources struct {
	// CPUCores is the number of logical cores.
	CPUCores int
	// TotalMemory is the physical RAM in bytes.
	TotalMemory uint64
	// AvailableMemory is the RAM in bytes that can be allocated without swapping.
	AvailableMemory uint64
}

// AvailableKiB returns AvailableMemory expressed in KiB.
func (r Resources) AvailableKiB() uint64 { return r.AvailableMemory / 1024 }

// Probe reports the current Resources. It is a variable type so the
// calibration engine can be fed fixed hardware in tests.
type Probe func() Resources

// Detect reads logical core count and memory figures. Core count falls back
// to runtime.NumCPU and memory to zero when the platform query fails.
func Detect() Resources {
	r := Resources{CPUCores: runtime.NumCPU()}
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		r.CPUCores = n
	}
	if vmem, err := mem.VirtualMemory(); err == nil && vmem != nil {
		r.TotalMemory = vmem.Total
		r.AvailableMemory = vmem.Available
	}
	return r
}

// Sample collects a single system-wide CPU and memory snapshot.
// CPU uses interval=0 (delta since last call). Returns zero values on error.
func Sample() Stats {
	var s Stats
	cpuPcts, err := cpu.Percent(0, false)
	if err == nil && len(cpuPcts) > 0 {
		s.CPUPercent = cpuPcts[0]
	}
	vmem, err := mem.VirtualMemory()
	if err == nil && vmem != nil {
		s.MemPercent = vmem.UsedPercent
	}
	return s
}
