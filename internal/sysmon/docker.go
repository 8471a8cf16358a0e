package sysmon

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"

	"dublimator.xyz/paned/internal/log"
)

// ContainerMetrics is the per-container snapshot served by the HTTP API.
type ContainerMetrics struct {
	ID         string                  `json:"id"`
	Name       string                  `json:"name"`
	State      string                  `json:"state"`
	Uptime     string                  `json:"uptime"`
	CPUPercent float64                 `json:"cpuPercent"`
	Memory     ContainerMemory         `json:"memory"`
	Network    map[string]NetworkStats `json:"network"`
}

type ContainerMemory struct {
	Usage float64 `json:"usage"` // MB
	Limit float64 `json:"limit"` // MB
}

type NetworkStats struct {
	RxBytes   uint64 `json:"rx_bytes"`
	RxPackets uint64 `json:"rx_packets"`
	RxErrors  uint64 `json:"rx_errors"`
	RxDropped uint64 `json:"rx_dropped"`
	TxBytes   uint64 `json:"tx_bytes"`
	TxPackets uint64 `json:"tx_packets"`
	TxErrors  uint64 `json:"tx_errors"`
	TxDropped uint64 `json:"tx_dropped"`
}

// dockerSource reads container stats through the Docker Engine API.
type dockerSource struct {
	cli    *client.Client
	logger log.Logger
}

func newDockerSource() (*dockerSource, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("sysmon: docker client: %w", err)
	}
	return &dockerSource{
		cli:    cli,
		logger: log.GetLogger().WithField("component", "sysmon"),
	}, nil
}

// collect gathers metrics for all running containers. Per-container failures
// are logged and skipped; the slice still carries the rest.
func (d *dockerSource) collect(ctx context.Context) ([]ContainerMetrics, error) {
	containers, err := d.cli.ContainerList(ctx, container.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("sysmon: list containers: %w", err)
	}

	out := make([]ContainerMetrics, 0, len(containers))
	for _, c := range containers {
		m, err := d.collectOne(ctx, c.ID, containerName(c.Names), c.State)
		if err != nil {
			d.logger.WithError(err).WithField("container", c.ID).
				Error("failed to collect container metrics")
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (d *dockerSource) collectOne(ctx context.Context, id, name, state string) (ContainerMetrics, error) {
	m := ContainerMetrics{
		ID:      id,
		Name:    name,
		State:   state,
		Uptime:  "N/A",
		Network: map[string]NetworkStats{},
	}

	resp, err := d.cli.ContainerStatsOneShot(ctx, id)
	if err != nil {
		return m, fmt.Errorf("container stats: %w", err)
	}
	defer resp.Body.Close()

	var stats container.StatsResponse
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return m, fmt.Errorf("decode stats: %w", err)
	}

	m.CPUPercent = math.Round(float64(stats.CPUStats.CPUUsage.TotalUsage)/1e9*100) / 100
	m.Memory = ContainerMemory{
		Usage: roundMB(stats.MemoryStats.Usage),
		Limit: roundMB(stats.MemoryStats.Limit),
	}
	for iface, ns := range stats.Networks {
		m.Network[iface] = NetworkStats{
			RxBytes:   ns.RxBytes,
			RxPackets: ns.RxPackets,
			RxErrors:  ns.RxErrors,
			RxDropped: ns.RxDropped,
			TxBytes:   ns.TxBytes,
			TxPackets: ns.TxPackets,
			TxErrors:  ns.TxErrors,
			TxDropped: ns.TxDropped,
		}
	}

	inspect, err := d.cli.ContainerInspect(ctx, id)
	if err != nil {
		return m, fmt.Errorf("inspect: %w", err)
	}
	if inspect.State != nil && inspect.State.Running {
		if started, err := time.Parse(time.RFC3339Nano, inspect.State.StartedAt); err == nil {
			m.Uptime = formatUptime(time.Since(started).Seconds())
		}
	}
	return m, nil
}

func containerName(names []string) string {
	if len(names) == 0 {
		return ""
	}
	name := names[0]
	if len(name) > 0 && name[0] == '/' {
		name = name[1:]
	}
	return name
}
