// Package view projects the merged notification list onto what the operator
// sees: contact filtering, truncation and 1-based selection.
package view

import (
	"fmt"
	"regexp"
	"time"

	"github.com/wtc-cli/wtc/internal/types"
)

// TimestampLayout is how notification times are shown
const TimestampLayout = "2006-01-02 15:04:05"

// CompileContactFilter compiles a contact name filter. The expression only
// has to match at the start of the contact name, not the whole of it.
func CompileContactFilter(pattern string) (*regexp.Regexp, error) {
	if _, err := regexp.Compile(pattern); err != nil {
		return nil, fmt.Errorf("invalid contact filter %q: %w", pattern, err)
	}
	return regexp.Compile(`^(?:` + pattern + `)`)
}

// View is the filtered, truncated sequence shown in one refresh
type View struct {
	records []types.NotificationRecord
}

// Project keeps the records whose contact name is set and matches filter,
// in input order, up to limit entries. A nil filter matches every contact;
// limit <= 0 means no limit.
func Project(records []types.NotificationRecord, filter *regexp.Regexp, limit int) View {
	out := make([]types.NotificationRecord, 0, min(len(records), max(limit, 0)))
	for _, r := range records {
		if limit > 0 && len(out) >= limit {
			break
		}
		if r.ContactName == nil {
			continue
		}
		if filter != nil && !filter.MatchString(*r.ContactName) {
			continue
		}
		out = append(out, r)
	}
	return View{records: out}
}

// Len returns the number of displayed records
func (v View) Len() int {
	return len(v.records)
}

// Records returns the displayed records in display order
func (v View) Records() []types.NotificationRecord {
	return v.records
}

// Select resolves a 1-based display index. Anything outside 1..Len is
// reported as not found.
func (v View) Select(index int) (types.NotificationRecord, bool) {
	if index < 1 || index > len(v.records) {
		return types.NotificationRecord{}, false
	}
	return v.records[index-1], true
}

// Row is one line of the rendered table
type Row struct {
	Index     int
	Timestamp string
	State     types.State
	Recovered bool
	Host      string
	Service   string
	URL       string
}

// StateLabel returns the state name shown in the table
func (r Row) StateLabel() string {
	return r.State.Label()
}

// RecoveredLabel returns "True" or "False"
func (r Row) RecoveredLabel() string {
	if r.Recovered {
		return "True"
	}
	return "False"
}

// Rows converts the view to presentation rows, formatting timestamps in loc.
func (v View) Rows(loc *time.Location) []Row {
	if loc == nil {
		loc = time.Local
	}
	rows := make([]Row, len(v.records))
	for i, r := range v.records {
		rows[i] = Row{
			Index:     i + 1,
			Timestamp: FormatTimestamp(r.Timestamp.Unix, loc),
			State:     r.State,
			Recovered: r.Recovered,
			Host:      r.HostName,
			Service:   r.ServiceName(),
			URL:       r.URL,
		}
	}
	return rows
}

// FormatTimestamp renders a unix timestamp as "YYYY-MM-DD HH:MM:SS"
func FormatTimestamp(unix int64, loc *time.Location) string {
	return time.Unix(unix, 0).In(loc).Format(TimestampLayout)
}
