package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileBPF(t *testing.T) {
	ins, err := compileBPF("tcp or udp", 65536)
	require.NoError(t, err)
	assert.NotEmpty(t, ins)
}

func TestCompileBPFInvalidFilter(t *testing.T) {
	_, err := compileBPF("definitely not bpf", 65536)
	assert.Error(t, err)
}
