package sharing

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forward-data/multiplicity.report/internal/geom"
)

func TestNewEventFrameBlank(t *testing.T) {
	ev := NewEventFrame()
	assert.Equal(t, 51200, ev.NStrips())
	assert.Equal(t, InvalidMult, ev.Multiplicity(1, geom.Inner, 0, 0))
	assert.Equal(t, InvalidMult, ev.Multiplicity(3, geom.Outer, 39, 255))
}

func TestEventFrameSetGet(t *testing.T) {
	ev := NewEventFrame()
	ev.SetMultiplicity(2, geom.Outer, 17, 100, 0.75)
	ev.SetEta(2, geom.Outer, 17, 100, -2.1)
	ev.SetPhi(2, geom.Outer, 17, 100, 157.5)

	assert.Equal(t, 0.75, ev.Multiplicity(2, geom.Outer, 17, 100))
	assert.Equal(t, -2.1, ev.Eta(2, geom.Outer, 17, 100))
	assert.Equal(t, 157.5, ev.Phi(2, geom.Outer, 17, 100))
	// Neighbors stay untouched.
	assert.Equal(t, InvalidMult, ev.Multiplicity(2, geom.Outer, 17, 101))
}

func TestEventFrameOutOfRange(t *testing.T) {
	ev := NewEventFrame()
	testCases := []struct {
		name   string
		det    uint16
		ring   geom.Ring
		sector uint16
		strip  uint16
	}{
		{"no detector 4", 4, geom.Inner, 0, 0},
		{"detector 1 has no outer ring", 1, geom.Outer, 0, 0},
		{"sector past inner range", 2, geom.Inner, 20, 0},
		{"strip past outer range", 3, geom.Outer, 0, 256},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, InvalidMult, ev.Multiplicity(tc.det, tc.ring, tc.sector, tc.strip))
			assert.Equal(t, 0.0, ev.Eta(tc.det, tc.ring, tc.sector, tc.strip))

			// Writes to bad addresses are dropped, not misplaced.
			ev.SetMultiplicity(tc.det, tc.ring, tc.sector, tc.strip, 9.9)
		})
	}
	assert.Equal(t, InvalidMult, ev.Multiplicity(1, geom.Inner, 0, 0))
}

func TestEventFrameJSONRoundTrip(t *testing.T) {
	ev := NewEventFrame()
	ev.AngleCorrected = true
	ev.VertexZ = 3.7
	ev.SetMultiplicity(1, geom.Inner, 4, 200, 1.25)
	ev.SetEta(1, geom.Inner, 4, 200, 3.4)
	ev.SetPhi(1, geom.Inner, 4, 200, 81.0)

	data, err := json.Marshal(ev)
	require.NoError(t, err)

	var back EventFrame
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.AngleCorrected)
	assert.Equal(t, 3.7, back.VertexZ)
	assert.Equal(t, 1.25, back.Multiplicity(1, geom.Inner, 4, 200))
	assert.Equal(t, 3.4, back.Eta(1, geom.Inner, 4, 200))
	if diff := cmp.Diff(ev.rings, back.rings); diff != "" {
		t.Errorf("frame mismatch (-want +got):\n%s", diff)
	}
}

func TestEventFrameUnmarshalMissingRing(t *testing.T) {
	ev := NewEventFrame()
	data, err := json.Marshal(ev)
	require.NoError(t, err)

	var full frameJSON
	require.NoError(t, json.Unmarshal(data, &full))
	delete(full.Rings, "2O")
	data, err = json.Marshal(full)
	require.NoError(t, err)

	var back EventFrame
	err = json.Unmarshal(data, &back)
	assert.ErrorIs(t, err, ErrEmptyEvent)
}

func TestEventFrameUnmarshalShortRing(t *testing.T) {
	ev := NewEventFrame()
	data, err := json.Marshal(ev)
	require.NoError(t, err)

	var full frameJSON
	require.NoError(t, json.Unmarshal(data, &full))
	full.Rings["1I"] = full.Rings["1I"][:100]
	data, err = json.Marshal(full)
	require.NoError(t, err)

	var back EventFrame
	assert.ErrorIs(t, json.Unmarshal(data, &back), ErrEmptyEvent)
}
