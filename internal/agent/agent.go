// Package agent wires the daemon's components together and owns their
// lifecycle.
package agent

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"dublimator.xyz/paned/internal/api"
	"dublimator.xyz/paned/internal/capture"
	"dublimator.xyz/paned/internal/config"
	"dublimator.xyz/paned/internal/dos"
	"dublimator.xyz/paned/internal/log"
	"dublimator.xyz/paned/internal/metrics"
	"dublimator.xyz/paned/internal/notify"
	"dublimator.xyz/paned/internal/store"
	"dublimator.xyz/paned/internal/sysmon"
)

// Run boots the daemon and blocks until a termination signal arrives. All
// components share one cancellation context; shutdown drains the detector so
// active incidents that were never announced are flushed as unclosed
// notifications.
func Run(cfg *config.Config) error {
	log.Init(cfg.Log)
	logger := log.GetLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	initShutdownListener(cancel)

	settings, err := config.NewSettingsStore(cfg.SettingsFile)
	if err != nil {
		return err
	}
	events := store.NewEventLog(cfg.DataFile)

	var notifier *notify.Notifier
	if cfg.Telegram.BotToken != "" {
		notifier, err = notify.New(cfg.Telegram, settings)
		if err != nil {
			return err
		}
	} else {
		logger.Warn("telegram bot token not configured, alerts disabled")
	}

	var notifySink dos.NotifySink = nopNotifySink{}
	if notifier != nil {
		notifySink = notifier
	}

	detector := dos.New(dos.Config{
		ThresholdSYN:     uint64(cfg.Detector.ThresholdSYN),
		ThresholdHTTP:    uint64(cfg.Detector.ThresholdHTTP),
		ThresholdUDP:     uint64(cfg.Detector.ThresholdUDP),
		AttackExpiryTime: cfg.Detector.AttackExpiryTime.Seconds(),
	}, dos.Whitelist(cfg.Detector.WhitelistNets), dos.SystemClock(), events, notifySink)

	handleType, err := capture.ParseHandleType(cfg.Capture.Type)
	if err != nil {
		return err
	}
	sniffer, err := capture.NewSniffer(handleType, &capture.Options{
		NetworkInterface: cfg.Detector.Interface,
		SnapLen:          cfg.Capture.SnapLen,
		BufferSize:       cfg.Capture.BufferSize,
		Timeout:          cfg.Capture.Timeout,
		Filter:           cfg.Capture.Filter,
		FanoutID:         cfg.Capture.FanoutID,
	}, detector.HandlePacket)
	if err != nil {
		return err
	}

	collector := sysmon.NewCollector(cfg.Sysmon, notifier)
	apiDeps := api.Deps{
		Metrics:   collector,
		Incidents: events,
		Settings:  settings,
	}
	if notifier != nil {
		apiDeps.Notifier = notifier
	}
	apiServer := api.NewServer(cfg.API.Addr(), apiDeps)

	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		metricsServer = metrics.NewServer(cfg.Metrics.Addr, cfg.Metrics.Path)
		if err := metricsServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
	}
	if err := apiServer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start api server: %w", err)
	}
	if err := sniffer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start sniffer: %w", err)
	}

	logger.Info("paned is running")

	wg := &sync.WaitGroup{}
	wg.Add(2)
	go func() {
		defer wg.Done()
		detector.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		collector.Run(ctx)
	}()
	if notifier != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := notifier.RunBot(ctx, events); err != nil {
				logger.WithError(err).Error("telegram bot stopped")
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	_ = apiServer.Stop(context.Background())
	if metricsServer != nil {
		_ = metricsServer.Stop(context.Background())
	}
	sniffer.Wait()
	wg.Wait()

	logger.Info("paned stopped")
	return nil
}

func initShutdownListener(cancel context.CancelFunc) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-signals
		cancel()
	}()
}

// nopNotifySink swallows batches when no chat transport is configured.
type nopNotifySink struct{}

func (nopNotifySink) Notify(ctx context.Context, batch []dos.Incident) error {
	log.GetLogger().WithField("incidents", len(batch)).Debug("notification batch dropped (no transport)")
	return nil
}
