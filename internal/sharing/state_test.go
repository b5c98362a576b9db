package sharing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHitClassString(t *testing.T) {
	testCases := []struct {
		class HitClass
		want  string
	}{
		{ClassNone, "none"},
		{ClassSingle, "single"},
		{ClassDouble, "double"},
		{ClassTriple, "triple"},
		{HitClass(99), "none"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, tc.class.String())
	}
}

func TestCountsAdd(t *testing.T) {
	c := Counts{Single: 1, Double: 2}
	c.add(Counts{Single: 3, Triple: 4})
	assert.Equal(t, Counts{Single: 4, Double: 2, Triple: 4}, c)
}

func TestMergeStateTransitions(t *testing.T) {
	var st mergeState
	assert.Equal(t, stateIdle, st.kind)

	st.deferSum(1.4, true)
	assert.Equal(t, stateDeferred, st.kind)
	assert.Equal(t, 1.4, st.pending)
	assert.True(t, st.twoLow)

	// Consuming drops the pending sum; only the skip marker survives.
	st.consume()
	assert.Equal(t, mergeState{kind: stateConsumed}, st)

	st.deferSum(0.9, false)
	st.reset()
	assert.Equal(t, mergeState{}, st)
}

func TestMergeStateDeferOverwrites(t *testing.T) {
	var st mergeState
	st.deferSum(2.0, true)
	st.deferSum(0.5, false)
	assert.Equal(t, mergeState{kind: stateDeferred, pending: 0.5}, st)
}
