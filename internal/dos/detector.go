// Package dos implements the network intrusion detector: a packet-driven
// state machine that classifies per-source-IP flows into attack incidents
// with explicit lifecycle, suppresses duplicate notifications and persists
// terminal events.
package dos

import (
	"bytes"
	"context"
	"sync"
	"time"

	"dublimator.xyz/paned/internal/core"
	"dublimator.xyz/paned/internal/log"
	"dublimator.xyz/paned/internal/metrics"
)

// DefaultCleanupInterval is the counter reset cadence in seconds.
const DefaultCleanupInterval = 60

// defaultCallTimeout bounds each persistence write and notification send.
const defaultCallTimeout = 5 * time.Second

// Config carries the detector thresholds. A counter strictly greater than its
// threshold within one reset window opens or reinforces an incident.
type Config struct {
	ThresholdSYN  uint64
	ThresholdHTTP uint64
	ThresholdUDP  uint64

	AttackExpiryTime float64 // seconds of idle time before an incident closes
	CleanupInterval  float64 // seconds between counter resets; 0 = default
}

// PersistSink appends closed incidents to the durable event log.
type PersistSink interface {
	Persist(ctx context.Context, inc Incident) error
}

// NotifySink delivers a non-empty batch of incidents as one human message.
type NotifySink interface {
	Notify(ctx context.Context, batch []Incident) error
}

// Detector owns the counters and the incident registry. The classifier runs
// on the capture goroutine, the reaper on its own 1 Hz loop; one coarse lock
// covers all shared state. Collaborator I/O never happens under the lock.
type Detector struct {
	cfg         Config
	wl          Whitelist
	clk         Clock
	persist     PersistSink
	notify      NotifySink
	callTimeout time.Duration
	logger      log.Logger

	mu       sync.Mutex
	counters *counterSet
	registry *Registry
}

func New(cfg Config, wl Whitelist, clk Clock, persist PersistSink, notify NotifySink) *Detector {
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultCleanupInterval
	}
	return &Detector{
		cfg:         cfg,
		wl:          wl,
		clk:         clk,
		persist:     persist,
		notify:      notify,
		callTimeout: defaultCallTimeout,
		logger:      log.GetLogger().WithField("component", "dos"),
		counters:    newCounterSet(clk.Now()),
		registry:    NewRegistry(),
	}
}

// HandlePacket classifies one decoded packet. It runs on the capture
// goroutine, performs no I/O and never returns an error.
func (d *Detector) HandlePacket(pkt core.Packet) {
	if d.wl.Contains(pkt.SrcIP) {
		metrics.PacketsWhitelistedTotal.Inc()
		return
	}
	ip := pkt.SrcIP.String()
	now := d.clk.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	// Exclusive dispatch chain, first match wins.
	switch {
	case pkt.SYNOnly():
		d.observe(protoSYN, ip, now)
	case pkt.Transport == core.TransportTCP && hasHTTPToken(pkt.Payload):
		d.observe(protoHTTP, ip, now)
	case pkt.Transport == core.TransportUDP:
		d.observe(protoUDP, ip, now)
	}

	if d.counters.resetIfDue(now, d.cfg.CleanupInterval) {
		metrics.CounterResetsTotal.Inc()
		if d.logger.IsDebugEnabled() {
			d.logger.Debug("counters reset")
		}
	}
}

// observe bumps the window counter and opens or reinforces an incident once
// the threshold is crossed. Caller holds the lock.
func (d *Detector) observe(p protocol, ip string, now float64) {
	metrics.PacketsClassifiedTotal.WithLabelValues(p.String()).Inc()

	n := d.counters.bump(p, ip)
	if n <= d.threshold(p) {
		return
	}

	attackType := p.attackType()
	if inc := d.registry.FindActive(ip, attackType); inc != nil {
		d.registry.Update(inc, n, now)
		return
	}
	d.registry.Open(ip, attackType, n, now)
	metrics.IncidentsOpenedTotal.WithLabelValues(attackType).Inc()
	metrics.IncidentRegistrySize.Set(float64(d.registry.Len()))
	d.logger.WithFields(map[string]interface{}{
		"source_ip": ip,
		"type":      attackType,
		"count":     n,
	}).Warn("incident opened")
}

func (d *Detector) threshold(p protocol) uint64 {
	switch p {
	case protoSYN:
		return d.cfg.ThresholdSYN
	case protoHTTP:
		return d.cfg.ThresholdHTTP
	default:
		return d.cfg.ThresholdUDP
	}
}

// hasHTTPToken applies the deliberate L7 heuristic: a lenient ASCII view of
// the TCP payload containing a GET or POST token.
func hasHTTPToken(payload []byte) bool {
	if len(payload) == 0 {
		return false
	}
	return bytes.Contains(payload, []byte("GET")) || bytes.Contains(payload, []byte("POST"))
}

// Run executes the reaper at a 1 s cadence until ctx is cancelled, then
// flushes still-active unannounced incidents as unclosed notifications.
func (d *Detector) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.flushUnnotified()
			return
		case <-ticker.C:
			d.safeReap(ctx)
		}
	}
}

// safeReap shields the host process from a reaper panic.
func (d *Detector) safeReap(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Errorf("reaper panic recovered: %v", r)
		}
	}()
	d.reap(ctx)
}

// reap walks the registry once: it closes expired incidents, persists and
// purges them, and publishes newly-opened ones. The lock is held only for the
// walk itself; persistence and notification run against deadline-bounded
// contexts afterwards.
func (d *Detector) reap(ctx context.Context) {
	now := d.clk.Now()

	d.mu.Lock()
	closed := d.registry.CloseExpired(now, d.cfg.AttackExpiryTime)
	for _, inc := range closed {
		d.counters.zero(protocolForType(inc.Type), inc.SourceIP)
		inc.Notification = true
	}
	opened := d.registry.ClaimUnnotified()

	batch := make([]Incident, 0, len(closed)+len(opened))
	for _, inc := range closed {
		batch = append(batch, *inc)
	}
	for _, inc := range opened {
		batch = append(batch, *inc)
	}
	d.mu.Unlock()

	// Persist every closed incident before it leaves the registry. A write
	// failure is logged and the incident is still purged: re-emitting a
	// record on the next cycle is worse than losing one.
	for _, inc := range closed {
		if err := d.persistOne(ctx, *inc); err != nil {
			metrics.PersistFailuresTotal.Inc()
			d.logger.WithError(err).WithField("source_ip", inc.SourceIP).
				Error("failed to persist incident")
		}
		metrics.IncidentsClosedTotal.WithLabelValues(inc.Type).Inc()
	}

	if len(closed) > 0 {
		d.mu.Lock()
		for _, inc := range closed {
			d.registry.Purge(inc)
		}
		d.mu.Unlock()
	}
	metrics.IncidentRegistrySize.Set(float64(d.Len()))

	if len(batch) > 0 {
		d.notifyBatch(ctx, batch)
	}
}

func (d *Detector) persistOne(ctx context.Context, inc Incident) error {
	callCtx, cancel := context.WithTimeout(ctx, d.callTimeout)
	defer cancel()
	return d.persist.Persist(callCtx, inc)
}

// notifyBatch delivers one batch; failures are logged and never retried. The
// incidents already carry notification = true, so the next cycle does not
// re-publish them.
func (d *Detector) notifyBatch(ctx context.Context, batch []Incident) {
	callCtx, cancel := context.WithTimeout(ctx, d.callTimeout)
	defer cancel()
	if err := d.notify.Notify(callCtx, batch); err != nil {
		metrics.NotifyFailuresTotal.Inc()
		d.logger.WithError(err).Error("failed to send incident notification")
	}
}

// flushUnnotified publishes any active, never-announced incidents on
// shutdown. They are reported as still open and are not persisted; only
// closed incidents reach the event log.
func (d *Detector) flushUnnotified() {
	d.mu.Lock()
	opened := d.registry.ClaimUnnotified()
	batch := make([]Incident, 0, len(opened))
	for _, inc := range opened {
		batch = append(batch, *inc)
	}
	d.mu.Unlock()

	if len(batch) > 0 {
		d.notifyBatch(context.Background(), batch)
	}
}

// Len returns the number of incidents currently in the registry.
func (d *Detector) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.registry.Len()
}

// ActiveIncidents returns copies of the incidents tracked for ip. Used by
// tests and debug surfaces; the in-memory registry is never exposed directly.
func (d *Detector) ActiveIncidents(ip string) []Incident {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.registry.Incidents(ip)
}
