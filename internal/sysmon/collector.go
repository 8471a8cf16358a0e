package sysmon

import (
	"context"
	"sync"
	"time"

	"dublimator.xyz/paned/internal/config"
	"dublimator.xyz/paned/internal/log"
	"dublimator.xyz/paned/internal/notify"
)

// Collector polls host and container metrics on a fixed cadence and keeps the
// latest snapshots for the HTTP API. Collection errors never stop the poller.
type Collector struct {
	cfg      config.SysmonConfig
	docker   *dockerSource // nil when container stats are disabled
	notifier *notify.Notifier
	logger   log.Logger

	mu           sync.RWMutex
	latestSystem SystemMetrics
	latestDocker []ContainerMetrics
	prevRunning  map[string]string // container id -> name, for stop detection
}

func NewCollector(cfg config.SysmonConfig, notifier *notify.Notifier) *Collector {
	c := &Collector{
		cfg:          cfg,
		notifier:     notifier,
		logger:       log.GetLogger().WithField("component", "sysmon"),
		latestDocker: []ContainerMetrics{},
		prevRunning:  map[string]string{},
	}
	if cfg.Docker {
		src, err := newDockerSource()
		if err != nil {
			c.logger.WithError(err).Error("docker metrics disabled")
		} else {
			c.docker = src
		}
	}
	return c
}

// Run polls until ctx is cancelled. The first poll happens immediately.
func (c *Collector) Run(ctx context.Context) {
	c.logger.Info("metrics poller started")
	c.poll(ctx)

	ticker := time.NewTicker(c.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.poll(ctx)
		}
	}
}

func (c *Collector) poll(ctx context.Context) {
	sys, err := collectSystem(ctx, c.cfg.DiskPath)
	if err != nil {
		c.logger.WithError(err).Error("failed to collect system metrics")
	} else {
		c.mu.Lock()
		c.latestSystem = sys
		c.mu.Unlock()
		c.raiseSystemAlerts(ctx, sys)
	}

	if c.docker == nil {
		return
	}
	containers, err := c.docker.collect(ctx)
	if err != nil {
		c.logger.WithError(err).Error("failed to collect container metrics")
		return
	}
	c.mu.Lock()
	c.latestDocker = containers
	c.mu.Unlock()
	c.detectStoppedContainers(ctx, containers)
}

// raiseSystemAlerts forwards usage percentages to the notifier, which applies
// the per-alert toggles and thresholds itself.
func (c *Collector) raiseSystemAlerts(ctx context.Context, sys SystemMetrics) {
	if c.notifier == nil {
		return
	}
	if err := c.notifier.NotifyCPU(ctx, sys.CPUPercent); err != nil {
		c.logger.WithError(err).Error("cpu alert failed")
	}
	if sys.Memory.Total > 0 {
		if err := c.notifier.NotifyRAM(ctx, sys.Memory.Usage/sys.Memory.Total*100); err != nil {
			c.logger.WithError(err).Error("ram alert failed")
		}
	}
	if sys.Disk.Total > 0 {
		if err := c.notifier.NotifyStorage(ctx, sys.Disk.Usage/sys.Disk.Total*100); err != nil {
			c.logger.WithError(err).Error("storage alert failed")
		}
	}
}

// detectStoppedContainers diffs the running set against the previous poll and
// alerts on containers that disappeared.
func (c *Collector) detectStoppedContainers(ctx context.Context, containers []ContainerMetrics) {
	running := make(map[string]string, len(containers))
	for _, m := range containers {
		running[m.ID] = m.Name
	}

	if c.notifier != nil {
		for id, name := range c.prevRunning {
			if _, ok := running[id]; !ok {
				if err := c.notifier.NotifyContainerStopped(ctx, name); err != nil {
					c.logger.WithError(err).Error("container stop alert failed")
				}
			}
		}
	}
	c.prevRunning = running
}

// LatestSystem returns the most recent host snapshot.
func (c *Collector) LatestSystem() SystemMetrics {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.latestSystem
}

// LatestContainers returns a copy of the most recent container snapshots.
func (c *Collector) LatestContainers() []ContainerMetrics {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]ContainerMetrics, len(c.latestDocker))
	copy(out, c.latestDocker)
	return out
}
