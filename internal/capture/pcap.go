package capture

import (
	"fmt"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"
)

// pcapHandle captures through libpcap. Slower than AF_PACKET but portable;
// useful in containers without CAP_NET_RAW ring-buffer privileges.
type pcapHandle struct {
	handle  *pcap.Handle
	options *Options
}

func newPCAPHandle(options *Options) Handle {
	if options == nil {
		options = DefaultOptions()
	}
	return &pcapHandle{options: options}
}

func (h *pcapHandle) Open() error {
	handle, err := pcap.OpenLive(
		h.options.NetworkInterface,
		int32(h.options.SnapLen),
		true,
		time.Duration(h.options.Timeout)*time.Millisecond,
	)
	if err != nil {
		return fmt.Errorf("failed to open pcap handle on %s: %w", h.options.NetworkInterface, err)
	}

	if h.options.Filter != "" {
		if err := handle.SetBPFFilter(h.options.Filter); err != nil {
			handle.Close()
			return fmt.Errorf("failed to set BPF filter: %w", err)
		}
	}

	h.handle = handle
	return nil
}

func (h *pcapHandle) ReadPacket() (data []byte, ci gopacket.CaptureInfo, err error) {
	if h.handle == nil {
		return nil, ci, fmt.Errorf("handle not opened")
	}
	return h.handle.ReadPacketData()
}

func (h *pcapHandle) Close() error {
	if h.handle != nil {
		h.handle.Close()
		h.handle = nil
	}
	return nil
}

func (h *pcapHandle) Type() HandleType {
	return TypePCAP
}
