package notify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dublimator.xyz/paned/internal/dos"
)

func testIncident(ip, attackType string, active bool) dos.Incident {
	return dos.Incident{
		SourceIP:       ip,
		TimeStart:      1700000000,
		TimeLastPacket: 1700000010,
		Notification:   true,
		Status:         active,
		Type:           attackType,
		Count:          512,
	}
}

func TestRenderIncident(t *testing.T) {
	text := renderIncident(testIncident("203.0.113.7", dos.AttackSYNFlood, true))

	assert.Contains(t, text, "Attack type: SYN Flood")
	assert.Contains(t, text, "Source IP: 203.0.113.7")
	assert.Contains(t, text, "Packets: 512")
	assert.Contains(t, text, "Status: Active")
	assert.True(t, strings.HasPrefix(text, incidentSeparator))
	assert.True(t, strings.HasSuffix(text, incidentSeparator))
}

func TestRenderIncidentClosedStatus(t *testing.T) {
	text := renderIncident(testIncident("203.0.113.7", dos.AttackUDPFlood, false))
	assert.Contains(t, text, "Status: Closed")
}

func TestRenderBatchSingleMessage(t *testing.T) {
	batch := []dos.Incident{
		testIncident("203.0.113.7", dos.AttackSYNFlood, true),
		testIncident("203.0.113.8", dos.AttackHTTPFlood, false),
	}

	parts := renderIncidentBatch(batch, telegramMessageLimit)
	require.Len(t, parts, 1)
	assert.True(t, strings.HasPrefix(parts[0], "⚠️ Attack detected"))
	assert.Equal(t, 2, strings.Count(parts[0], "Attack type:"))
}

func TestRenderBatchSplitsOnLimit(t *testing.T) {
	batch := make([]dos.Incident, 60)
	for i := range batch {
		batch[i] = testIncident("203.0.113.7", dos.AttackSYNFlood, true)
	}

	parts := renderIncidentBatch(batch, 1000)
	require.Greater(t, len(parts), 1)

	total := 0
	for _, part := range parts {
		assert.LessOrEqual(t, len(part), 1000)
		assert.True(t, strings.HasPrefix(part, "⚠️ Attack detected"))
		total += strings.Count(part, "Attack type:")
	}
	assert.Equal(t, len(batch), total, "no incident is lost by splitting")
}

func TestRenderReportEmpty(t *testing.T) {
	parts := renderIncidentReport(nil, telegramMessageLimit)
	require.Len(t, parts, 1)
	assert.Equal(t, "No data", parts[0])
}

func TestRenderReportWithRecords(t *testing.T) {
	records := []dos.Incident{testIncident("203.0.113.7", dos.AttackSYNFlood, false)}
	parts := renderIncidentReport(records, telegramMessageLimit)
	require.Len(t, parts, 1)
	assert.True(t, strings.HasPrefix(parts[0], "Incident report"))
	assert.Contains(t, parts[0], "SYN Flood")
}
