package dos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryOpenAndFindActive(t *testing.T) {
	r := NewRegistry()

	require.Nil(t, r.FindActive("10.0.0.1", AttackSYNFlood))

	inc := r.Open("10.0.0.1", AttackSYNFlood, 101, 5)
	assert.Equal(t, "10.0.0.1", inc.SourceIP)
	assert.Equal(t, 5.0, inc.TimeStart)
	assert.Equal(t, 5.0, inc.TimeLastPacket)
	assert.True(t, inc.Status)
	assert.False(t, inc.Notification)
	assert.Equal(t, uint64(101), inc.Count)

	assert.Same(t, inc, r.FindActive("10.0.0.1", AttackSYNFlood))
	assert.Nil(t, r.FindActive("10.0.0.1", AttackHTTPFlood))
	assert.Nil(t, r.FindActive("10.0.0.2", AttackSYNFlood))
	assert.Equal(t, 1, r.Len())
}

func TestRegistryUpdate(t *testing.T) {
	r := NewRegistry()
	inc := r.Open("10.0.0.1", AttackUDPFlood, 401, 1)

	r.Update(inc, 450, 2.5)
	assert.Equal(t, uint64(450), inc.Count)
	assert.Equal(t, 2.5, inc.TimeLastPacket)
	assert.Equal(t, 1.0, inc.TimeStart, "timeStart never moves")
}

func TestRegistryCloseExpired(t *testing.T) {
	r := NewRegistry()
	stale := r.Open("10.0.0.1", AttackSYNFlood, 101, 0)
	fresh := r.Open("10.0.0.2", AttackSYNFlood, 150, 8)

	closed := r.CloseExpired(12, 10)
	require.Len(t, closed, 1)
	assert.Same(t, stale, closed[0])
	assert.False(t, stale.Status)
	assert.False(t, stale.Notification)
	assert.True(t, fresh.Status)

	// Closed incidents remain until purged so they can be persisted first.
	assert.Equal(t, 2, r.Len())
}

func TestRegistryClaimUnnotified(t *testing.T) {
	r := NewRegistry()
	a := r.Open("10.0.0.1", AttackSYNFlood, 101, 0)
	b := r.Open("10.0.0.1", AttackHTTPFlood, 201, 0)
	b.Notification = true

	claimed := r.ClaimUnnotified()
	require.Len(t, claimed, 1)
	assert.Same(t, a, claimed[0])
	assert.True(t, a.Notification)

	assert.Empty(t, r.ClaimUnnotified(), "second claim returns nothing")
}

func TestRegistryPurge(t *testing.T) {
	r := NewRegistry()
	first := r.Open("10.0.0.1", AttackSYNFlood, 101, 0)
	second := r.Open("10.0.0.1", AttackHTTPFlood, 201, 0)

	r.Purge(first)
	assert.Equal(t, 1, r.Len())
	require.Len(t, r.incidents["10.0.0.1"], 1)
	assert.Same(t, second, r.incidents["10.0.0.1"][0])

	// Removing the last incident drops the IP key entirely.
	r.Purge(second)
	assert.Equal(t, 0, r.Len())
	_, ok := r.incidents["10.0.0.1"]
	assert.False(t, ok)
}

func TestRegistryUniquenessAfterReopen(t *testing.T) {
	r := NewRegistry()
	first := r.Open("10.0.0.1", AttackSYNFlood, 101, 0)
	first.Status = false

	// A closed incident does not block a new active one of the same type.
	second := r.Open("10.0.0.1", AttackSYNFlood, 120, 20)
	assert.Same(t, second, r.FindActive("10.0.0.1", AttackSYNFlood))

	active := 0
	for _, inc := range r.incidents["10.0.0.1"] {
		if inc.Status && inc.Type == AttackSYNFlood {
			active++
		}
	}
	assert.Equal(t, 1, active)
}
