package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHandleType(t *testing.T) {
	cases := []struct {
		in   string
		want HandleType
	}{
		{"afpacket", TypeAFPacket},
		{"AF_PACKET", TypeAFPacket},
		{"af-packet", TypeAFPacket},
		{" pcap ", TypePCAP},
	}
	for _, tc := range cases {
		got, err := ParseHandleType(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}

	_, err := ParseHandleType("xdp")
	assert.Error(t, err)
}

func TestNewHandle(t *testing.T) {
	h, err := NewHandle(TypeAFPacket, nil)
	require.NoError(t, err)
	assert.Equal(t, TypeAFPacket, h.Type())

	h, err = NewHandle(TypePCAP, nil)
	require.NoError(t, err)
	assert.Equal(t, TypePCAP, h.Type())

	_, err = NewHandle(HandleType("bogus"), nil)
	assert.Error(t, err)
}

func TestReadBeforeOpenFails(t *testing.T) {
	h, err := NewHandle(TypeAFPacket, nil)
	require.NoError(t, err)
	_, _, err = h.ReadPacket()
	assert.Error(t, err)
}

func TestComputeFrameSizeAndBlocks(t *testing.T) {
	opts := DefaultOptions()
	frameSize, blockSize, numBlocks, err := computeFrameSizeAndBlocks(opts)
	require.NoError(t, err)
	assert.Greater(t, frameSize, 0)
	assert.Equal(t, frameSize*128, blockSize)
	assert.GreaterOrEqual(t, numBlocks, 1)

	opts.BufferSize = 1
	_, _, _, err = computeFrameSizeAndBlocks(opts)
	assert.Error(t, err)
}
