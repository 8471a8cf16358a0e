// Package core defines the decoded packet model with zero external
// dependencies beyond the decoder itself.
package core

import "net/netip"

// Transport tags the L4 variant of a decoded packet.
type Transport uint8

const (
	TransportOther Transport = iota
	TransportTCP
	TransportUDP
)

// TCP flag bits as they appear on the wire.
const (
	FlagFIN uint8 = 1 << iota
	FlagSYN
	FlagRST
	FlagPSH
	FlagACK
	FlagURG
)

// Packet is the result of decoding one captured frame. It is parsed exactly
// once; consumers branch on Transport and never reach back into raw layers.
type Packet struct {
	SrcIP     netip.Addr
	Transport Transport
	TCPFlags  uint8  // populated for TransportTCP only
	Payload   []byte // TCP payload, nil when absent
}

// SYNOnly reports whether the packet is a TCP segment with exactly the SYN
// flag set.
func (p Packet) SYNOnly() bool {
	return p.Transport == TransportTCP && p.TCPFlags == FlagSYN
}
