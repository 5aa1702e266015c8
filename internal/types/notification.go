package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// State is the notification state reported by Icinga ("0".."3"). Values
// outside that range are kept verbatim.
type State string

const (
	StateOK       State = "0"
	StateWarning  State = "1"
	StateCritical State = "2"
	StateUnknown  State = "3"
)

// Label returns the human readable state name, or the raw value when the
// state is not one of the known ones.
func (s State) Label() string {
	switch s {
	case StateOK:
		return "OK"
	case StateWarning:
		return "WARNING"
	case StateCritical:
		return "CRITICAL"
	case StateUnknown:
		return "UNKNOWN"
	default:
		return string(s)
	}
}

// UnmarshalJSON accepts both JSON strings and numbers.
func (s *State) UnmarshalJSON(data []byte) error {
	raw, err := looseString(data)
	if err != nil {
		return fmt.Errorf("notification state: %w", err)
	}
	*s = State(raw)
	return nil
}

// Timestamp is a unix timestamp in seconds. Icinga Web 2 serialises numeric
// columns as strings, so both forms are accepted. Valid is false when the
// field was null or missing.
type Timestamp struct {
	Unix  int64
	Valid bool
}

// NewTimestamp returns a valid Timestamp.
func NewTimestamp(unix int64) Timestamp {
	return Timestamp{Unix: unix, Valid: true}
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	raw, err := looseString(data)
	if err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if raw == "" {
		*t = Timestamp{}
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// some backends emit "1700000000.0"
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil {
			return fmt.Errorf("timestamp %q: %w", raw, err)
		}
		v = int64(f)
	}
	*t = NewTimestamp(v)
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(t.Unix, 10)), nil
}

// NotificationRecord is one alert notification as returned by
// /monitoring/list/notifications, plus the fields derived during aggregation.
type NotificationRecord struct {
	HostName           string    `json:"host_name"`
	HostDisplayName    string    `json:"host_display_name"`
	ServiceDescription *string   `json:"service_description"`
	ServiceDisplayName *string   `json:"service_display_name"`
	State              State     `json:"notification_state"`
	Timestamp          Timestamp `json:"notification_timestamp"`
	ContactName        *string   `json:"notification_contact_name"`
	Output             string    `json:"notification_output,omitempty"`

	// Derived, never part of the wire payload.
	Source    string `json:"-"`
	URL       string `json:"-"`
	Recovered bool   `json:"-"`
}

// ServiceName returns the service display name, or "" for host notifications.
func (n NotificationRecord) ServiceName() string {
	if n.ServiceDisplayName == nil {
		return ""
	}
	return *n.ServiceDisplayName
}

// ServiceHealthRecord is a service currently in OK state, as returned by
// /monitoring/list/services?service_state=0.
type ServiceHealthRecord struct {
	HostDisplayName    string    `json:"host_display_name"`
	ServiceDisplayName string    `json:"service_display_name"`
	LastStateChange    Timestamp `json:"service_last_state_change"`
}

// looseString unwraps a JSON string, number or null into its textual form.
func looseString(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return "", nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return strings.TrimSpace(s), nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}
