package filter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiowebux/relaydash/internal/types"
)

var testEmails = []types.EmailRecord{
	{Status: "sent", Recipient: "a@b.com", Subject: "Hi"},
	{Status: "failed", Recipient: "c@d.com", Subject: "Yo"},
}

func TestQueryRun(t *testing.T) {
	tests := []struct {
		name       string
		expression string
		want       string
	}{
		{"projection", "[].recipient", "[\n  \"a@b.com\",\n  \"c@d.com\"\n]"},
		{"filter", "[?status=='failed'].subject", "[\n  \"Yo\"\n]"},
		{"function", "length(@)", "2"},
		{"null result", "[0].missing", "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Compile(tt.expression)
			require.NoError(t, err)
			assert.False(t, q.IsShell())

			got, err := q.Run(context.Background(), testEmails)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompile(t *testing.T) {
	q, err := Compile("   ")
	require.NoError(t, err)
	assert.Nil(t, q)

	_, err = Compile("[?")
	assert.Error(t, err)

	_, err = Compile("$( )")
	assert.Error(t, err)

	q, err = Compile(" [].name ")
	require.NoError(t, err)
	assert.Equal(t, "[].name", q.String())
}

func TestShellQuery(t *testing.T) {
	q, err := Compile("$(cat)")
	require.NoError(t, err)
	require.True(t, q.IsShell())

	got, err := q.Run(context.Background(), map[string]int{"total": 3})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total": 3}`, got)
}

func TestShellQueryFailure(t *testing.T) {
	q, err := Compile("$(echo nope >&2; exit 3)")
	require.NoError(t, err)

	_, err = q.Run(context.Background(), testEmails)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
}

func TestMatchKeys(t *testing.T) {
	keys := []types.APIKeyRecord{
		{ID: "1", Name: "production"},
		{ID: "2", Name: "staging"},
		{ID: "3", Name: "ci-runner"},
	}

	assert.Equal(t, keys, MatchKeys(keys, ""))

	matched := MatchKeys(keys, "prod")
	require.Len(t, matched, 1)
	assert.Equal(t, types.KeyID("1"), matched[0].ID)

	assert.Empty(t, MatchKeys(keys, "zzz"))
}

func TestFilterEmailsByStatus(t *testing.T) {
	emails := []types.EmailRecord{
		{Status: "sent", Recipient: "a"},
		{Status: "failed", Recipient: "b"},
		{Status: "pending", Recipient: "c"},
	}

	assert.Len(t, FilterEmailsByStatus(emails, nil), 3)

	got := FilterEmailsByStatus(emails, []string{"FAILED", "pending"})
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Recipient)
	assert.Equal(t, "c", got[1].Recipient)
}
