package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInstant(t *testing.T) {
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input string
	}{
		{"rfc3339", "2024-01-01T00:00:00Z"},
		{"naive iso", "2024-01-01T00:00:00"},
		{"naive iso with micros", "2024-01-01T00:00:00.000000"},
		{"http date", "Mon, 01 Jan 2024 00:00:00 GMT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInstant(tt.input)
			require.NoError(t, err)
			assert.True(t, want.Equal(got.Time), "got %v", got.Time)
		})
	}

	_, err := ParseInstant("yesterday")
	assert.Error(t, err)
}

func TestEmailRecordDecode(t *testing.T) {
	body := `[{"id":1,"status":"sent","recipient":"a@b.com","subject":"Hi","key_name":null,"timestamp":"2024-01-01T00:00:00Z"}]`

	var records []EmailRecord
	require.NoError(t, json.Unmarshal([]byte(body), &records))
	require.Len(t, records, 1)

	assert.Equal(t, StatusSent, records[0].Status)
	assert.Nil(t, records[0].KeyName)
	assert.Equal(t, "Unknown", records[0].KeyNameOr("Unknown"))
	assert.Equal(t, 2024, records[0].Timestamp.Year())
}

func TestEmailRecordDecodeBadTimestamp(t *testing.T) {
	body := `[
		{"id":1,"status":"sent","recipient":"a@b.com","subject":"Hi","timestamp":"not a date"},
		{"id":2,"status":"sent","recipient":"c@d.com","subject":"Yo","timestamp":1704067200},
		{"id":3,"status":"sent","recipient":"e@f.com","subject":"Hey","timestamp":{"when":"now"}},
		{"id":4,"status":"sent","recipient":"g@h.com","subject":"Ok","timestamp":"2024-01-01T00:00:00Z"}
	]`

	var records []EmailRecord
	require.NoError(t, json.Unmarshal([]byte(body), &records))
	require.Len(t, records, 4)

	assert.True(t, records[0].Timestamp.IsZero())
	assert.Equal(t, 2024, records[1].Timestamp.Year())
	assert.True(t, records[2].Timestamp.IsZero())
	assert.Equal(t, 2024, records[3].Timestamp.Year())
}

func TestAPIKeyRecordDecode(t *testing.T) {
	body := `[
		{"id":7,"name":"prod","key_token":"rk_live_abcd...","created_at":"2024-02-03T04:05:06.123456","last_used":null},
		{"id":"k-9","name":"dev","key_token":"rk_live_...","created_at":null,"last_used":"2024-02-04T00:00:00Z"}
	]`

	var keys []APIKeyRecord
	require.NoError(t, json.Unmarshal([]byte(body), &keys))
	require.Len(t, keys, 2)

	assert.Equal(t, KeyID("7"), keys[0].ID)
	require.NotNil(t, keys[0].CreatedAt)
	assert.Nil(t, keys[0].LastUsed)

	assert.Equal(t, KeyID("k-9"), keys[1].ID)
	assert.Nil(t, keys[1].CreatedAt)
	require.NotNil(t, keys[1].LastUsed)
}

func TestInstantMarshalJSON(t *testing.T) {
	i := NewInstant(time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC))
	data, err := json.Marshal(i)
	require.NoError(t, err)
	assert.Equal(t, `"2024-05-06T07:08:09Z"`, string(data))

	data, err = json.Marshal(Instant{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestKeyIDRejectsObjects(t *testing.T) {
	var id KeyID
	assert.Error(t, json.Unmarshal([]byte(`{"x":1}`), &id))
}
