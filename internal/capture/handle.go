// Package capture implements packet capture handles and the sniffer loop that
// feeds decoded packets to the detector.
package capture

import (
	"fmt"
	"strings"

	"github.com/google/gopacket"
)

// HandleType selects the capture backend.
type HandleType string

const (
	TypeAFPacket HandleType = "afpacket"
	TypePCAP     HandleType = "pcap"
)

// Handle is a capture backend bound to one network interface.
type Handle interface {
	// Open binds the handle to the interface described by its options.
	Open() error

	// ReadPacket blocks until the next frame or the poll timeout.
	ReadPacket() ([]byte, gopacket.CaptureInfo, error)

	// Close releases the underlying socket.
	Close() error

	// Type returns the backend type.
	Type() HandleType
}

// ParseHandleType converts a config string to a HandleType.
func ParseHandleType(s string) (HandleType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "afpacket", "af_packet", "af-packet":
		return TypeAFPacket, nil
	case "pcap":
		return TypePCAP, nil
	default:
		return "", fmt.Errorf("unknown capture type: %q", s)
	}
}

// NewHandle creates an unopened handle of the given type.
func NewHandle(t HandleType, options *Options) (Handle, error) {
	switch t {
	case TypeAFPacket:
		return newAFPacketHandle(options), nil
	case TypePCAP:
		return newPCAPHandle(options), nil
	default:
		return nil, fmt.Errorf("unsupported capture type: %s", t)
	}
}
