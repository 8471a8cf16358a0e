package notify

import (
	"fmt"
	"strings"
	"time"

	"dublimator.xyz/paned/internal/dos"
)

const incidentSeparator = "------------------------"

// renderIncident formats one incident block.
func renderIncident(inc dos.Incident) string {
	status := "Closed"
	if inc.Status {
		status = "Active"
	}
	started := time.Unix(0, int64(inc.TimeStart*float64(time.Second))).
		Format("02.01.2006 15:04:05")

	var b strings.Builder
	b.WriteString(incidentSeparator + "\n")
	fmt.Fprintf(&b, "Attack type: %s\n", inc.Type)
	fmt.Fprintf(&b, "Source IP: %s\n", inc.SourceIP)
	fmt.Fprintf(&b, "Packets: %d\n", inc.Count)
	fmt.Fprintf(&b, "Started: %s\n", started)
	fmt.Fprintf(&b, "Status: %s\n", status)
	b.WriteString(incidentSeparator)
	return b.String()
}

// renderIncidentBatch renders a batch under a single header, splitting into
// multiple messages on incident boundaries when limit would be exceeded.
func renderIncidentBatch(batch []dos.Incident, limit int) []string {
	const header = "⚠️ Attack detected"

	var parts []string
	current := header
	for _, inc := range batch {
		block := renderIncident(inc)
		if len(current)+len(block)+1 > limit && current != header {
			parts = append(parts, current)
			current = header
		}
		current += "\n" + block
	}
	if current != header {
		parts = append(parts, current)
	}
	return parts
}

// renderIncidentReport renders the on-demand /get_dos_data report.
func renderIncidentReport(records []dos.Incident, limit int) []string {
	const header = "Incident report"

	if len(records) == 0 {
		return []string{"No data"}
	}
	var parts []string
	current := header
	for _, inc := range records {
		block := renderIncident(inc)
		if len(current)+len(block)+1 > limit && current != header {
			parts = append(parts, current)
			current = header
		}
		current += "\n" + block
	}
	if current != header {
		parts = append(parts, current)
	}
	return parts
}
