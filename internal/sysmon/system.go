// Package sysmon polls host and container runtime metrics and raises
// threshold alerts through the notifier.
package sysmon

import (
	"context"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// SystemMetrics is the host snapshot served by the HTTP API.
type SystemMetrics struct {
	CPUPercent float64     `json:"cpuPercent"`
	Memory     MemoryUsage `json:"memory"`
	Disk       DiskUsage   `json:"disk"`
	Uptime     float64     `json:"uptime"` // seconds since boot
}

type MemoryUsage struct {
	Usage float64 `json:"usage"` // MB
	Total float64 `json:"total"` // MB
}

type DiskUsage struct {
	Usage float64 `json:"usage"` // MB
	Total float64 `json:"total"` // MB
}

const mib = 1024 * 1024

// collectSystem gathers CPU, memory, disk and uptime. The CPU sample spans
// one second.
func collectSystem(ctx context.Context, diskPath string) (SystemMetrics, error) {
	var m SystemMetrics

	percents, err := cpu.PercentWithContext(ctx, time.Second, false)
	if err != nil {
		return m, fmt.Errorf("sysmon: cpu percent: %w", err)
	}
	if len(percents) > 0 {
		m.CPUPercent = percents[0]
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return m, fmt.Errorf("sysmon: virtual memory: %w", err)
	}
	m.Memory = MemoryUsage{
		Usage: roundMB(vm.Used),
		Total: roundMB(vm.Total),
	}

	du, err := disk.UsageWithContext(ctx, resolveDiskPath(diskPath))
	if err != nil {
		return m, fmt.Errorf("sysmon: disk usage: %w", err)
	}
	m.Disk = DiskUsage{
		Usage: roundMB(du.Used),
		Total: roundMB(du.Total),
	}

	bootTime, err := host.BootTimeWithContext(ctx)
	if err != nil {
		return m, fmt.Errorf("sysmon: boot time: %w", err)
	}
	m.Uptime = float64(time.Now().Unix()) - float64(bootTime)

	return m, nil
}

// resolveDiskPath prefers the /host bind mount used in containerised
// deployments, falling back to the root filesystem.
func resolveDiskPath(configured string) string {
	if configured != "" {
		return configured
	}
	if _, err := os.Stat("/host"); err == nil {
		return "/host"
	}
	return "/"
}

func roundMB(bytes uint64) float64 {
	return math.Round(float64(bytes)/mib*100) / 100
}

// formatUptime renders a duration the way container CLIs do: "Up 3 hours".
func formatUptime(seconds float64) string {
	if seconds < 0 {
		return "N/A"
	}
	d := time.Duration(int64(seconds)) * time.Second
	switch {
	case d >= 24*time.Hour:
		return fmt.Sprintf("Up %d days", int(d.Hours())/24)
	case d >= time.Hour:
		return fmt.Sprintf("Up %d hours", int(d.Hours()))
	case d >= time.Minute:
		return fmt.Sprintf("Up %d minutes", int(d.Minutes()))
	default:
		return fmt.Sprintf("Up %d seconds", int(d.Seconds()))
	}
}
