package dos

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCounterBumpIsMonotonicWithinWindow(t *testing.T) {
	c := newCounterSet(0)

	var prev uint64
	for i := 0; i < 500; i++ {
		n := c.bump(protoSYN, "10.0.0.1")
		assert.Greater(t, n, prev)
		prev = n
	}
	assert.Equal(t, uint64(500), c.counts[protoSYN]["10.0.0.1"])
}

func TestCounterCellsAreIndependent(t *testing.T) {
	c := newCounterSet(0)

	c.bump(protoSYN, "10.0.0.1")
	c.bump(protoHTTP, "10.0.0.1")
	c.bump(protoHTTP, "10.0.0.1")
	c.bump(protoUDP, "10.0.0.2")

	assert.Equal(t, uint64(1), c.counts[protoSYN]["10.0.0.1"])
	assert.Equal(t, uint64(2), c.counts[protoHTTP]["10.0.0.1"])
	assert.Equal(t, uint64(0), c.counts[protoUDP]["10.0.0.1"])
	assert.Equal(t, uint64(1), c.counts[protoUDP]["10.0.0.2"])
}

func TestCounterResetClearsAllMaps(t *testing.T) {
	c := newCounterSet(0)
	c.bump(protoSYN, "10.0.0.1")
	c.bump(protoHTTP, "10.0.0.2")
	c.bump(protoUDP, "10.0.0.3")

	assert.False(t, c.resetIfDue(59, 60), "window not elapsed yet")
	assert.Equal(t, 0.0, c.lastReset)

	assert.True(t, c.resetIfDue(60, 60))
	assert.Equal(t, 60.0, c.lastReset)
	for p := protocol(0); p < protocolCount; p++ {
		assert.Empty(t, c.counts[p])
	}
}

func TestCounterResetIgnoresClockSkew(t *testing.T) {
	c := newCounterSet(100)
	c.bump(protoSYN, "10.0.0.1")

	// A clock running backwards is treated as zero elapsed time.
	assert.False(t, c.resetIfDue(30, 60))
	assert.Equal(t, 100.0, c.lastReset)
	assert.Equal(t, uint64(1), c.counts[protoSYN]["10.0.0.1"])
}

func TestCounterZeroKeepsCell(t *testing.T) {
	c := newCounterSet(0)
	c.bump(protoUDP, "10.0.0.1")
	c.bump(protoUDP, "10.0.0.1")

	c.zero(protoUDP, "10.0.0.1")
	n, ok := c.counts[protoUDP]["10.0.0.1"]
	assert.True(t, ok)
	assert.Equal(t, uint64(0), n)

	// Zeroing an absent cell does not create one.
	c.zero(protoSYN, "10.0.0.9")
	_, ok = c.counts[protoSYN]["10.0.0.9"]
	assert.False(t, ok)
}

func TestProtocolAttackTypeMapping(t *testing.T) {
	assert.Equal(t, AttackSYNFlood, protoSYN.attackType())
	assert.Equal(t, AttackHTTPFlood, protoHTTP.attackType())
	assert.Equal(t, AttackUDPFlood, protoUDP.attackType())

	for p := protocol(0); p < protocolCount; p++ {
		assert.Equal(t, p, protocolForType(p.attackType()))
	}
}
