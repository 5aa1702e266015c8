package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateLabel(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateOK, "OK"},
		{StateWarning, "WARNING"},
		{StateCritical, "CRITICAL"},
		{StateUnknown, "UNKNOWN"},
		{State("99"), "99"},
		{State(""), ""},
	}
	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.Label())
		})
	}
}

func TestNotificationRecordDecodesStringAndNumberFields(t *testing.T) {
	payload := `[
		{"host_name":"h1","host_display_name":"H1","service_description":"disk","service_display_name":"Disk",
		 "notification_state":"2","notification_timestamp":"1700000000","notification_contact_name":"alice"},
		{"host_name":"h2","host_display_name":"H2","service_description":null,"service_display_name":null,
		 "notification_state":1,"notification_timestamp":1700000100,"notification_contact_name":null}
	]`

	var got []NotificationRecord
	require.NoError(t, json.Unmarshal([]byte(payload), &got))
	require.Len(t, got, 2)

	assert.Equal(t, StateCritical, got[0].State)
	assert.Equal(t, NewTimestamp(1700000000), got[0].Timestamp)
	require.NotNil(t, got[0].ContactName)
	assert.Equal(t, "alice", *got[0].ContactName)
	assert.Equal(t, "Disk", got[0].ServiceName())

	assert.Equal(t, StateWarning, got[1].State)
	assert.Equal(t, int64(1700000100), got[1].Timestamp.Unix)
	assert.Nil(t, got[1].ServiceDescription)
	assert.Nil(t, got[1].ContactName)
	assert.Equal(t, "", got[1].ServiceName())
}

func TestTimestampMissingOrNullIsInvalid(t *testing.T) {
	var rec NotificationRecord
	require.NoError(t, json.Unmarshal([]byte(`{"host_name":"h"}`), &rec))
	assert.False(t, rec.Timestamp.Valid)

	require.NoError(t, json.Unmarshal([]byte(`{"notification_timestamp":null}`), &rec))
	assert.False(t, rec.Timestamp.Valid)
}

func TestTimestampRejectsGarbage(t *testing.T) {
	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
	assert.Error(t, json.Unmarshal([]byte(`{}`), &ts))
}

func TestTimestampAcceptsFloatString(t *testing.T) {
	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte(`"1700000000.0"`), &ts))
	assert.Equal(t, NewTimestamp(1700000000), ts)
}
