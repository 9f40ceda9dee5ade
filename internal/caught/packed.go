package caught

const (
	// MaxID is the highest national id tracked.
	MaxID = 1025

	statesPerWord = 16
	bitsPerState  = 2
	stateMask     = 1<<bitsPerState - 1

	// WordCount is the length of the packed array.
	WordCount = (MaxID + statesPerWord - 1) / statesPerWord
)

type packed []uint32

func newPacked() packed {
	return make(packed, WordCount)
}

func position(id int) (word int, shift uint) {
	slot := id - 1
	return slot / statesPerWord, uint(slot%statesPerWord) * bitsPerState
}

// raw returns the stored bit pattern, including the reserved one.
func (p packed) raw(id int) State {
	word, shift := position(id)
	return State(p[word] >> shift & stateMask)
}

func (p packed) get(id int) State {
	s := p.raw(id)
	if s == reserved {
		return None
	}
	return s
}

func (p packed) set(id int, s State) {
	word, shift := position(id)
	p[word] = p[word]&^(stateMask<<shift) | uint32(s)<<shift
}

func (p packed) clone() packed {
	out := make(packed, len(p))
	copy(out, p)
	return out
}

// fill sets every tracked id to s; bits past MaxID stay zero.
func (p packed) fill(s State) {
	for id := 1; id <= MaxID; id++ {
		p.set(id, s)
	}
}

// clearPadding zeroes the slots past MaxID in the last word.
func (p packed) clearPadding() {
	for id := MaxID + 1; id <= WordCount*statesPerWord; id++ {
		p.set(id, None)
	}
}

// sanitize maps reserved slots to None and clears the padding, so a dirty
// persisted value is never written back as read.
func (p packed) sanitize() {
	for id := 1; id <= MaxID; id++ {
		if p.raw(id) == reserved {
			p.set(id, None)
		}
	}
	p.clearPadding()
}
