package dos

// Attack type labels as they appear in incident records and notifications.
const (
	AttackSYNFlood  = "SYN Flood"
	AttackHTTPFlood = "HTTP Flood"
	AttackUDPFlood  = "UDP Flood"
)

// Incident records one contiguous attack episode from one source IP of one
// protocol class. Field order matters: the persisted JSON carries exactly
// these seven fields in this order, timestamps as numbers.
type Incident struct {
	SourceIP       string  `json:"sourceIp"`
	TimeStart      float64 `json:"timeStart"`
	TimeLastPacket float64 `json:"timeLastPacket"`
	Notification   bool    `json:"notification"`
	Status         bool    `json:"status"`
	Type           string  `json:"type"`
	Count          uint64  `json:"count"`
}
