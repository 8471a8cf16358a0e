package capture

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/gopacket/afpacket"
	"github.com/google/gopacket/pcap"

	"dublimator.xyz/paned/internal/core"
	"dublimator.xyz/paned/internal/log"
	"dublimator.xyz/paned/internal/metrics"
)

// PacketHandler consumes decoded packets. It runs on the capture goroutine
// and must not block on I/O.
type PacketHandler func(pkt core.Packet)

// Sniffer owns one capture handle and the read loop feeding its handler.
type Sniffer struct {
	options *Options
	handler PacketHandler

	handle  Handle
	decoder *core.Decoder
	done    chan struct{}
}

func NewSniffer(t HandleType, options *Options, handler PacketHandler) (*Sniffer, error) {
	handle, err := NewHandle(t, options)
	if err != nil {
		return nil, err
	}
	return &Sniffer{
		options: options,
		handler: handler,
		handle:  handle,
		decoder: core.NewDecoder(),
		done:    make(chan struct{}),
	}, nil
}

// Start opens the handle and launches the read loop. The loop stops when ctx
// is cancelled or the handle returns a non-timeout error.
func (s *Sniffer) Start(ctx context.Context) error {
	if err := s.handle.Open(); err != nil {
		return fmt.Errorf("failed to open capture handle: %w", err)
	}

	iface := s.options.NetworkInterface
	log.GetLogger().
		WithField("interface", iface).
		WithField("type", string(s.handle.Type())).
		Info("packet capture started")

	go func() {
		defer close(s.done)
		defer s.handle.Close()

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			data, _, err := s.handle.ReadPacket()
			if err != nil {
				if isTimeout(err) {
					continue
				}
				log.GetLogger().WithError(err).Error("capture read failed, stopping sniffer")
				return
			}

			metrics.CapturePacketsTotal.WithLabelValues(iface).Inc()

			pkt, ok, decErr := s.decoder.Decode(data)
			if decErr != nil {
				metrics.DecodeErrorsTotal.Inc()
				if log.GetLogger().IsDebugEnabled() {
					log.GetLogger().WithError(decErr).Debug("packet decode error")
				}
			}
			if !ok {
				continue
			}
			s.handler(pkt)
		}
	}()
	return nil
}

// Wait blocks until the read loop has exited.
func (s *Sniffer) Wait() {
	<-s.done
}

func isTimeout(err error) bool {
	if errors.Is(err, afpacket.ErrTimeout) || errors.Is(err, pcap.NextErrorTimeoutExpired) {
		return true
	}
	var ne interface{ Timeout() bool }
	if errors.As(err, &ne) {
		return ne.Timeout()
	}
	return false
}
