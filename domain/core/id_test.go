package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Fatalf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Fatalf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}
}

func TestParseRunID(t *testing.T) {
	id := NewRunID()
	parsed, err := ParseRunID(" " + id.String() + " ")
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseRunID("")
	assert.Error(t, err)
	_, err = ParseRunID("not-a-uuid")
	assert.Error(t, err)
}

func TestErrorHelpers(t *testing.T) {
	err := NewMalformedObservationError(3, "total", "is missing")
	assert.ErrorIs(t, err, ErrMalformedObservation)
	assert.True(t, IsInputError(err))
	assert.Contains(t, err.Error(), `record 3: field "total" is missing`)

	assert.True(t, IsInputError(NewUnknownGeneError("GAG")))
	assert.False(t, IsInputError(NewDegenerateTableError(1, -1, 0, 0)))
	assert.True(t, IsNotFoundError(ErrRunNotFound))
}

func TestHashShort(t *testing.T) {
	h := NewHash([]byte("[]"))
	assert.Len(t, h.String(), 64)
	assert.Equal(t, h.String()[:12], h.Short())
	assert.Equal(t, "abc", Hash("abc").Short())
}

func TestTimestampJSON(t *testing.T) {
	ts := NewTimestamp(time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC))
	data, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-01T12:30:00Z"`, string(data))

	var back Timestamp
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, ts.Time().Equal(back.Time()))
	assert.Equal(t, "2024-03-01T12:30:00Z", back.String())
}
