// Package recovery decides whether an alert notification has since been
// followed by the service returning to OK.
package recovery

import (
	"github.com/wtc-cli/wtc/internal/types"
)

// IsRecovered reports whether healthy contains a service with the same host
// and service display names whose last state change is strictly later than
// the notification. Host notifications have no service display name and only
// match healthy records with an empty one.
//
// This is a linear scan; the healthy set is capped at 500 entries per source.
func IsRecovered(n types.NotificationRecord, healthy []types.ServiceHealthRecord) bool {
	service := n.ServiceName()
	for _, h := range healthy {
		if h.HostDisplayName == n.HostDisplayName &&
			h.ServiceDisplayName == service &&
			h.LastStateChange.Unix > n.Timestamp.Unix {
			return true
		}
	}
	return false
}

// Annotate sets the Recovered flag on every notification in place and
// returns how many were marked.
func Annotate(notifications []types.NotificationRecord, healthy []types.ServiceHealthRecord) int {
	recovered := 0
	for i := range notifications {
		notifications[i].Recovered = IsRecovered(notifications[i], healthy)
		if notifications[i].Recovered {
			recovered++
		}
	}
	return recovered
}
