// Package sysinfo captures a snapshot of the host a benchmark run executed
// on, so manifests from different machines stay comparable.
package sysinfo

import (
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/mem"
)

// Environment describes the host at run time.
type Environment struct {
	Hostname string `json:"hostname"`
	OS       string `json:"os"`
	Arch     string `json:"arch"`
	CPUs     int    `json:"cpus"`
	MemoryMB uint64 `json:"memoryMb"`
}

// Collect gathers the host snapshot. Detection failures degrade to zero
// values rather than failing the run.
func Collect() Environment {
	hostname, _ := os.Hostname()
	return Environment{
		Hostname: hostname,
		OS:       runtime.GOOS,
		Arch:     runtime.GOARCH,
		CPUs:     runtime.NumCPU(),
		MemoryMB: detectTotalMemory(),
	}
}

func detectTotalMemory() uint64 {
	v, err := mem.VirtualMemory()
	if err != nil {
		return 0
	}
	return v.Total / 1024 / 1024
}
