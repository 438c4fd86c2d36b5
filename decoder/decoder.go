// Package decoder implements the fountain-coded UR decoder session
// (spec.md §4.6): reassembling a message from a lossy, out-of-order,
// duplicate-tolerant stream of UR text parts via LT peeling.
package decoder

import (
	"hash/crc32"
	"sync"

	"github.com/foundationdevices/passport-ur/bytewords"
	"github.com/foundationdevices/passport-ur/common/config"
	"github.com/foundationdevices/passport-ur/fountain"
	"github.com/foundationdevices/passport-ur/urerr"
	"github.com/foundationdevices/passport-ur/urtext"
)

// state is the decoder's lifecycle: Empty -> Receiving -> Complete. Any
// parameter mismatch or corruption forces a transition back to Empty. The
// session is not held in a separate tainted state: the next part received
// latches a new session whether or not Clear was called.
type state int

const (
	stateEmpty state = iota
	stateReceiving
	stateComplete
)

// mixedPart is one reduced-but-unsolved part living in the bounded ring.
type mixedPart struct {
	indexes []int
	payload []byte
}

// Session is an exclusively-owned decoder. It holds three conceptually
// statically-sized buffers mirroring spec.md §5: the reassembled-message
// buffer, the mixed-part ring (capacity config.MixedParts), and the
// received-fragment bitmap.
type Session struct {
	mu sync.Mutex

	state state

	urType     string
	seqLen     int
	messageLen uint32
	checksum   uint32
	fragLen    uint32

	solved      [][]byte
	solvedCount int
	solvedMask  []bool

	ring      []mixedPart
	ringStart int

	estimate float64
}

// New returns an empty decoder session.
func New() *Session {
	return &Session{}
}

// IsEmpty reports whether the session has never latched parameters, or
// was returned to Empty by Clear or a tainting error.
func (d *Session) IsEmpty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state == stateEmpty
}

// IsComplete reports whether every source index has been solved.
func (d *Session) IsComplete() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state == stateComplete
}

// Clear resets the session to Empty, discarding any in-progress message.
func (d *Session) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reset()
}

// reset clears every field except the mutex, which the caller holds.
func (d *Session) reset() {
	d.state = stateEmpty
	d.urType = ""
	d.seqLen = 0
	d.messageLen = 0
	d.checksum = 0
	d.fragLen = 0
	d.solved = nil
	d.solvedCount = 0
	d.solvedMask = nil
	d.ring = nil
	d.ringStart = 0
	d.estimate = 0
}

// URType returns the latched UR type, if any.
func (d *Session) URType() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == stateEmpty {
		return "", false
	}
	return d.urType, true
}

// EstimatedPercentComplete returns a monotone non-decreasing progress
// estimate in [0.0, 1.0] (spec.md §4.6).
func (d *Session) EstimatedPercentComplete() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.estimate
}

// PercentCompleteInt returns EstimatedPercentComplete truncated to a
// 0-100 integer, for callers (e.g. an FFI boundary or a progress bar) that
// want a display-ready value instead of a float.
func (d *Session) PercentCompleteInt() int {
	return int(d.EstimatedPercentComplete() * 100)
}

// Message returns the assembled message once complete, or false if the
// session has not yet reached Complete.
func (d *Session) Message() ([]byte, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != stateComplete {
		return nil, false
	}
	return d.assemble(), true
}

func (d *Session) assemble() []byte {
	full := make([]byte, uint32(d.seqLen)*d.fragLen)
	for i, frag := range d.solved {
		copy(full[uint32(i)*d.fragLen:], frag)
	}
	return full[:d.messageLen]
}

// Receive parses and folds one UR text frame into the session. A
// single-part frame is decoded and completes the session immediately. A
// multi-part frame latches session parameters on first receipt (or is
// checked for consistency against the latch) and is fed to the peeling
// engine.
func (d *Session) Receive(urText string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	u, err := urtext.Parse(urText)
	if err != nil {
		return err
	}

	payload, err := bytewords.Decode(u.BytewordsBody, bytewords.StyleMinimal)
	if err != nil {
		return err
	}

	if !u.MultiPart {
		return d.receiveSinglePart(u.Type, payload)
	}
	return d.receiveMultiPart(u.Type, payload)
}

func (d *Session) receiveSinglePart(urType string, payload []byte) error {
	if d.state != stateEmpty {
		return urerr.New(urerr.NotMultiPart, "session is already receiving or complete; call Clear before starting a new message")
	}
	d.urType = urType
	d.messageLen = uint32(len(payload))
	d.seqLen = 1
	d.solved = [][]byte{payload}
	d.solvedCount = 1
	d.fragLen = uint32(len(payload))
	d.estimate = 1.0
	d.state = stateComplete
	return nil
}

func (d *Session) receiveMultiPart(urType string, cborPart []byte) error {
	part, err := fountain.DecodePart(cborPart)
	if err != nil {
		return err
	}
	if err := fountain.CheckSeqLen(part.SeqLen); err != nil {
		d.taint()
		return err
	}

	if d.state == stateEmpty {
		d.latch(urType, part)
	} else if err := d.checkConsistency(urType, part); err != nil {
		d.taint()
		return err
	}

	if int(part.SeqNum) <= d.seqLen && d.solvedMask[part.SeqNum-1] {
		// Duplicate pure part: idempotent, no state change beyond the
		// latch/consistency check already performed.
		return nil
	}

	d.fold(part)
	d.updateEstimate()
	if d.solvedCount == d.seqLen {
		if err := d.finish(); err != nil {
			d.taint()
			return err
		}
	}
	return nil
}

func (d *Session) latch(urType string, part fountain.Part) {
	d.urType = urType
	d.seqLen = int(part.SeqLen)
	d.messageLen = part.MessageLen
	d.checksum = part.Checksum
	d.fragLen = part.FragmentLen
	d.solved = make([][]byte, d.seqLen)
	d.solvedMask = make([]bool, d.seqLen)
	d.ring = make([]mixedPart, 0, config.MixedParts)
	d.state = stateReceiving
}

func (d *Session) checkConsistency(urType string, part fountain.Part) error {
	if urType != d.urType {
		return urerr.New(urerr.TypeMismatch, "ur type does not match the latched session")
	}
	if int(part.SeqLen) != d.seqLen || part.MessageLen != d.messageLen || part.Checksum != d.checksum || part.FragmentLen != d.fragLen {
		return urerr.New(urerr.ParameterMismatch, "part parameters do not match the latched session")
	}
	return nil
}

func (d *Session) taint() {
	d.reset()
}

// fold runs one iteration of the peeling algorithm (spec.md §4.6): reduce
// the incoming part against solved fragments, solve it immediately if it
// collapses to degree 1, otherwise enqueue it in the bounded mixed-part
// ring, evicting the oldest entry if full.
func (d *Session) fold(part fountain.Part) {
	var indexes []int
	if int(part.SeqNum) <= d.seqLen {
		indexes = []int{int(part.SeqNum) - 1}
	} else {
		sampler := fountain.NewSampler(d.seqLen)
		indexes = sampler.ChooseFragmentIndexes(d.checksum, part.SeqNum)
	}

	payload := make([]byte, len(part.Payload))
	copy(payload, part.Payload)

	indexes = d.reduce(indexes, payload)
	if len(indexes) == 0 {
		return
	}
	if len(indexes) == 1 {
		d.solveCascade(indexes[0], payload)
		return
	}
	d.enqueue(mixedPart{indexes: indexes, payload: payload})
}

// reduce XORs out every already-solved index from payload/indexes in
// place, returning the surviving index set.
func (d *Session) reduce(indexes []int, payload []byte) []int {
	surviving := indexes[:0]
	for _, idx := range indexes {
		if d.solvedMask[idx] {
			fountain.XORInto(payload, d.solved[idx])
			continue
		}
		surviving = append(surviving, idx)
	}
	return surviving
}

// solvedFragment is one entry on solveCascade's worklist.
type solvedFragment struct {
	index   int
	payload []byte
}

// solveCascade stores a newly solved fragment, then reduces every queued
// mixed part against it; any part that collapses to degree 1 as a result
// is appended to the worklist and solved in turn, so one fold call can
// cascade through any number of newly-determined fragments without
// recursing over the ring (recursive re-entry would race the ring
// mutation each stack frame performs on return).
func (d *Session) solveCascade(index int, payload []byte) {
	pending := []solvedFragment{{index, payload}}
	for len(pending) > 0 {
		cur := pending[0]
		pending = pending[1:]
		if d.solvedMask[cur.index] {
			continue
		}
		d.solved[cur.index] = cur.payload
		d.solvedMask[cur.index] = true
		d.solvedCount++

		remaining := d.ring[:0]
		for _, mp := range d.ring {
			idx := d.reduce(mp.indexes, mp.payload)
			if len(idx) == 0 {
				continue
			}
			if len(idx) == 1 {
				pending = append(pending, solvedFragment{idx[0], mp.payload})
				continue
			}
			mp.indexes = idx
			remaining = append(remaining, mp)
		}
		d.ring = remaining
	}
}

// enqueue inserts a reduced, still-mixed part into the ring, evicting the
// oldest entry under capacity pressure (spec.md §4.6 step 4).
func (d *Session) enqueue(mp mixedPart) {
	if len(d.ring) >= config.MixedParts {
		d.ring = d.ring[1:]
	}
	d.ring = append(d.ring, mp)
}

// updateEstimate recomputes the monotone progress estimate: solved
// fragments count fully, and a small optimism factor credits partial
// progress for queued mixed parts without ever double counting past 1.0
// or regressing across calls.
func (d *Session) updateEstimate() {
	const epsilon = 0.05
	raw := float64(d.solvedCount) / float64(d.seqLen) * (1 + epsilon)
	if raw > 1.0 {
		raw = 1.0
	}
	if raw > d.estimate {
		d.estimate = raw
	}
}

func (d *Session) finish() error {
	full := d.assemble()
	if crc32.ChecksumIEEE(full) != d.checksum {
		return urerr.New(urerr.CorruptMessage, "assembled message crc32 does not match the latched checksum")
	}
	d.state = stateComplete
	d.estimate = 1.0
	return nil
}
