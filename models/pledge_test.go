package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPledge_UnmarshalJSON(t *testing.T) {
	t.Run("current format", func(t *testing.T) {
		line := `{"username":"alice","type":"provided","amount_pi":12.5,"amount_php_at_time":250.75,"created":"2024-01-15T10:00:00.123456","status":"accepted","code":"AB12CD3"}`

		var p Pledge
		require.NoError(t, json.Unmarshal([]byte(line), &p))

		assert.Equal(t, "AB12CD3", p.Code)
		assert.Equal(t, "alice", p.Username)
		assert.Equal(t, PledgeKindProvided, p.Kind)
		assert.Equal(t, 12.5, p.AmountPi)
		assert.Equal(t, 250.75, p.AmountPHPAtTime)
		assert.Equal(t, PledgeStatusAccepted, p.Status)
		assert.Equal(t, time.Date(2024, 1, 15, 10, 0, 0, 123456000, time.UTC), p.CreatedAt)
	})

	t.Run("legacy amount and missing status", func(t *testing.T) {
		line := `{"username":"bob","type":"requested","amount":3,"amount_php_at_time":0,"created":"2024-02-01T00:00:00","code":"ZZZZZZZ"}`

		var p Pledge
		require.NoError(t, json.Unmarshal([]byte(line), &p))

		assert.Equal(t, 3.0, p.AmountPi)
		assert.Equal(t, PledgeStatusPending, p.Status)
	})

	t.Run("rfc3339 timestamp", func(t *testing.T) {
		line := `{"username":"bob","type":"requested","amount_pi":1,"created":"2024-02-01T08:00:00+08:00","code":"X"}`

		var p Pledge
		require.NoError(t, json.Unmarshal([]byte(line), &p))

		assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), p.CreatedAt)
	})

	t.Run("bad timestamp is rejected", func(t *testing.T) {
		line := `{"username":"bob","type":"requested","amount_pi":1,"created":"yesterday","code":"X"}`

		var p Pledge
		assert.Error(t, json.Unmarshal([]byte(line), &p))
	})
}

func TestPledge_RoundTripKeepsLedgerFields(t *testing.T) {
	p := Pledge{
		Code:            "QWERTY1",
		Username:        "carol",
		Kind:            PledgeKindRequested,
		AmountPi:        7,
		AmountPHPAtTime: 140.5,
		CreatedAt:       time.Date(2024, 3, 3, 3, 3, 3, 0, time.UTC),
		Status:          PledgeStatusPending,
	}

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Equal(t, "requested", fields["type"])
	assert.Equal(t, "2024-03-03T03:03:03", fields["created"])
	assert.NotContains(t, fields, "amount")

	var back Pledge
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, p, back)
}

func TestPledge_Accept(t *testing.T) {
	p := &Pledge{Status: PledgeStatusPending}

	assert.True(t, p.Accept())
	assert.Equal(t, PledgeStatusAccepted, p.Status)
	assert.False(t, p.Accept())
	assert.Equal(t, PledgeStatusAccepted, p.Status)
}

func TestPledgeKind_Valid(t *testing.T) {
	assert.True(t, PledgeKindProvided.Valid())
	assert.True(t, PledgeKindRequested.Valid())
	assert.False(t, PledgeKind("donated").Valid())
	assert.False(t, PledgeKind("").Valid())
}
