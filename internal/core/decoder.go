package core

import (
	"net/netip"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// Decoder parses raw Ethernet frames into Packet values. It reuses its layer
// buffers between calls and is therefore not safe for concurrent use; each
// capture goroutine owns one.
type Decoder struct {
	parser  *gopacket.DecodingLayerParser
	decoded []gopacket.LayerType

	eth     layers.Ethernet
	dot1q   layers.Dot1Q
	ip4     layers.IPv4
	tcp     layers.TCP
	udp     layers.UDP
	payload gopacket.Payload
}

func NewDecoder() *Decoder {
	d := &Decoder{}
	d.parser = gopacket.NewDecodingLayerParser(layers.LayerTypeEthernet,
		&d.eth, &d.dot1q, &d.ip4, &d.tcp, &d.udp, &d.payload)
	d.parser.IgnoreUnsupported = true
	d.decoded = make([]gopacket.LayerType, 0, 6)
	return d
}

// Decode parses data into a Packet. ok is false when the frame carries no
// IPv4 layer; err is non-nil only for malformed input within a recognised
// layer. Callers treat both as a silent drop on the hot path.
func (d *Decoder) Decode(data []byte) (pkt Packet, ok bool, err error) {
	err = d.parser.DecodeLayers(data, &d.decoded)

	hasIP := false
	for _, lt := range d.decoded {
		switch lt {
		case layers.LayerTypeIPv4:
			hasIP = true
			addr, addrOK := netip.AddrFromSlice(d.ip4.SrcIP)
			if !addrOK {
				return Packet{}, false, err
			}
			pkt.SrcIP = addr.Unmap()
		case layers.LayerTypeTCP:
			pkt.Transport = TransportTCP
			pkt.TCPFlags = tcpFlags(&d.tcp)
		case layers.LayerTypeUDP:
			pkt.Transport = TransportUDP
		case gopacket.LayerTypePayload:
			if pkt.Transport == TransportTCP {
				pkt.Payload = d.payload
			}
		}
	}
	if !hasIP {
		return Packet{}, false, err
	}
	return pkt, true, err
}

func tcpFlags(tcp *layers.TCP) uint8 {
	var f uint8
	if tcp.FIN {
		f |= FlagFIN
	}
	if tcp.SYN {
		f |= FlagSYN
	}
	if tcp.RST {
		f |= FlagRST
	}
	if tcp.PSH {
		f |= FlagPSH
	}
	if tcp.ACK {
		f |= FlagACK
	}
	if tcp.URG {
		f |= FlagURG
	}
	return f
}
