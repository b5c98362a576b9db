package sharing

// HitClass is the multiplicity classification of a merged signal.
type HitClass uint8

const (
	// ClassNone marks a strip that produced no classified signal.
	ClassNone HitClass = iota
	// ClassSingle is a full deposit contained in one strip.
	ClassSingle
	// ClassDouble is a deposit shared across two adjacent strips.
	ClassDouble
	// ClassTriple is a deposit shared across three adjacent strips.
	ClassTriple
)

func (c HitClass) String() string {
	switch c {
	case ClassSingle:
		return "single"
	case ClassDouble:
		return "double"
	case ClassTriple:
		return "triple"
	}
	return "none"
}

// Counts tallies hit classifications over one event.
type Counts struct {
	Single int `json:"single"`
	Double int `json:"double"`
	Triple int `json:"triple"`
}

func (c *Counts) add(o Counts) {
	c.Single += o.Single
	c.Double += o.Double
	c.Triple += o.Triple
}

// mergeStateKind tags the lookahead state carried between strips of one
// sector scan.
type mergeStateKind uint8

const (
	// stateIdle: no decision pending.
	stateIdle mergeStateKind = iota
	// stateDeferred: a two-strip candidate sum awaits the third-strip
	// decision at the next iteration.
	stateDeferred
	// stateConsumed: the current strip was already folded into the
	// previous strip's merge and must be skipped.
	stateConsumed
)

// mergeState is the one-slot lookahead state of the sector scan. The
// pending sum and the two-low flag only exist while deferred; every
// transition rebuilds the struct so stale values cannot leak across
// decisions.
type mergeState struct {
	kind    mergeStateKind
	pending float64
	twoLow  bool
}

func (st *mergeState) reset() {
	*st = mergeState{}
}

// deferSum parks a two-strip candidate until the next strip decides between
// double and triple. twoLow records that both candidates sat below the high
// cut.
func (st *mergeState) deferSum(sum float64, twoLow bool) {
	*st = mergeState{kind: stateDeferred, pending: sum, twoLow: twoLow}
}

// consume marks the next strip as already merged into the current one.
func (st *mergeState) consume() {
	*st = mergeState{kind: stateConsumed}
}
