package dos

// Registry maps source IPs to their ordered incident lists. At most one
// incident per (ip, type) is active at any time. The registry is not locked
// itself; the owning detector serialises access.
type Registry struct {
	incidents map[string][]*Incident
	size      int
}

func NewRegistry() *Registry {
	return &Registry{incidents: make(map[string][]*Incident)}
}

// FindActive returns the unique active incident for (ip, attackType), or nil.
func (r *Registry) FindActive(ip, attackType string) *Incident {
	for _, inc := range r.incidents[ip] {
		if inc.Status && inc.Type == attackType {
			return inc
		}
	}
	return nil
}

// Open appends a new active incident. The caller has verified that no active
// incident of this type exists for the IP.
func (r *Registry) Open(ip, attackType string, count uint64, now float64) *Incident {
	inc := &Incident{
		SourceIP:       ip,
		TimeStart:      now,
		TimeLastPacket: now,
		Notification:   false,
		Status:         true,
		Type:           attackType,
		Count:          count,
	}
	r.incidents[ip] = append(r.incidents[ip], inc)
	r.size++
	return inc
}

// Update refreshes an active incident with the current counter value.
func (r *Registry) Update(inc *Incident, count uint64, now float64) {
	inc.Count = count
	inc.TimeLastPacket = now
}

// CloseExpired transitions every active incident idle for at least expiry
// seconds to closed and returns them. Closed incidents stay in the registry
// until Purge so the caller can persist them first.
func (r *Registry) CloseExpired(now, expiry float64) []*Incident {
	var closed []*Incident
	for _, list := range r.incidents {
		for _, inc := range list {
			if inc.Status && now-inc.TimeLastPacket >= expiry {
				inc.Status = false
				inc.Notification = false
				closed = append(closed, inc)
			}
		}
	}
	return closed
}

// ClaimUnnotified marks every active, not-yet-announced incident as notified
// and returns them for publication.
func (r *Registry) ClaimUnnotified() []*Incident {
	var claimed []*Incident
	for _, list := range r.incidents {
		for _, inc := range list {
			if inc.Status && !inc.Notification {
				inc.Notification = true
				claimed = append(claimed, inc)
			}
		}
	}
	return claimed
}

// Purge removes inc from its per-IP list, deleting the IP key when the list
// becomes empty.
func (r *Registry) Purge(inc *Incident) {
	list := r.incidents[inc.SourceIP]
	for i, candidate := range list {
		if candidate == inc {
			list = append(list[:i], list[i+1:]...)
			r.size--
			break
		}
	}
	if len(list) == 0 {
		delete(r.incidents, inc.SourceIP)
		return
	}
	r.incidents[inc.SourceIP] = list
}

// Len returns the total number of incidents currently held.
func (r *Registry) Len() int {
	return r.size
}

// Incidents returns copies of all incidents for ip in insertion order.
func (r *Registry) Incidents(ip string) []Incident {
	list := r.incidents[ip]
	out := make([]Incident, len(list))
	for i, inc := range list {
		out[i] = *inc
	}
	return out
}
