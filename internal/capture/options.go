package capture

// Options configures a capture handle.
type Options struct {
	NetworkInterface string
	SnapLen          int    // capture length in bytes
	BufferSize       int    // ring buffer size in bytes
	Timeout          int    // poll timeout in milliseconds
	Filter           string // optional BPF filter
	FanoutID         uint16
}

// DefaultOptions returns the default capture options.
func DefaultOptions() *Options {
	return &Options{
		SnapLen:    65536,
		BufferSize: 32 * 1024 * 1024,
		Timeout:    1000,
	}
}
