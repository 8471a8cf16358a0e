package capture

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/afpacket"
)

// afpacketHandle captures through an AF_PACKET TPacket v3 ring.
type afpacketHandle struct {
	tpacket *afpacket.TPacket
	options *Options
}

func newAFPacketHandle(options *Options) Handle {
	if options == nil {
		options = DefaultOptions()
	}
	return &afpacketHandle{options: options}
}

func (h *afpacketHandle) Open() error {
	iface, err := net.InterfaceByName(h.options.NetworkInterface)
	if err != nil {
		return fmt.Errorf("failed to get interface %s: %w", h.options.NetworkInterface, err)
	}

	frameSize, blockSize, numBlocks, err := computeFrameSizeAndBlocks(h.options)
	if err != nil {
		return fmt.Errorf("failed to compute frame size and blocks: %w", err)
	}

	tpacket, err := afpacket.NewTPacket(
		afpacket.OptInterface(iface.Name),
		afpacket.OptFrameSize(frameSize),
		afpacket.OptBlockSize(blockSize),
		afpacket.OptNumBlocks(numBlocks),
		afpacket.OptPollTimeout(time.Duration(h.options.Timeout)*time.Millisecond),
		afpacket.SocketRaw,
		afpacket.TPacketVersion3,
	)
	if err != nil {
		return fmt.Errorf("failed to create TPacket: %w", err)
	}
	h.tpacket = tpacket

	if h.options.FanoutID > 0 {
		if err := tpacket.SetFanout(afpacket.FanoutHashWithDefrag, h.options.FanoutID); err != nil {
			return fmt.Errorf("failed to set fanout: %w", err)
		}
	}

	if h.options.Filter != "" {
		rawBpf, err := compileBPF(h.options.Filter, h.options.SnapLen)
		if err != nil {
			return err
		}
		if err := tpacket.SetBPF(rawBpf); err != nil {
			return fmt.Errorf("failed to set BPF filter: %w", err)
		}
	}

	return nil
}

// computeFrameSizeAndBlocks sizes the TPacket ring from the snap length and
// the configured buffer budget.
func computeFrameSizeAndBlocks(options *Options) (frameSize int, blockSize int, numBlocks int, err error) {
	pageSize := os.Getpagesize()
	if options.SnapLen < pageSize {
		frameSize = pageSize / (pageSize / options.SnapLen)
	} else {
		frameSize = (options.SnapLen/pageSize + 1) * pageSize
	}
	blockSize = frameSize * 128
	numBlocks = options.BufferSize / blockSize

	if numBlocks < 1 {
		return 0, 0, 0, fmt.Errorf("buffer size too small for frame size %d", frameSize)
	}
	return frameSize, blockSize, numBlocks, nil
}

func (h *afpacketHandle) ReadPacket() (data []byte, ci gopacket.CaptureInfo, err error) {
	if h.tpacket == nil {
		return nil, ci, fmt.Errorf("handle not opened")
	}
	return h.tpacket.ReadPacketData()
}

func (h *afpacketHandle) Close() error {
	if h.tpacket != nil {
		h.tpacket.Close()
		h.tpacket = nil
	}
	return nil
}

func (h *afpacketHandle) Type() HandleType {
	return TypeAFPacket
}
