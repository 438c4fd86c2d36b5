// Package encoder implements the fountain-coded UR encoder session
// (spec.md §4.5): fragment a typed message once, then emit an unbounded
// stream of UR text parts on demand.
package encoder

import (
	"sync"

	"github.com/foundationdevices/passport-ur/bytewords"
	"github.com/foundationdevices/passport-ur/common/config"
	"github.com/foundationdevices/passport-ur/fountain"
	"github.com/foundationdevices/passport-ur/registry"
	"github.com/foundationdevices/passport-ur/urerr"
	"github.com/foundationdevices/passport-ur/urtext"
)

// Session is an exclusively-owned encoder: start it once with a message,
// then call NextPart repeatedly. It has no internal thread of control and
// blocks on nothing.
//
// The mixed-fragment scratch buffer is owned by the session and reused
// across calls rather than reallocated. That reuse is the one piece of the
// embedded target's no-allocation buffer discipline (spec.md §4.5) this
// host-side implementation actually preserves; NextPart still allocates on
// the CBOR-encode and bytewords-render path on every call (see DESIGN.md,
// "Zero-allocation deviation") - the mutex exists only to catch concurrent
// misuse early, not to guard a heapless fast path.
type Session struct {
	mu sync.Mutex

	urType    string
	fragments [][]byte
	fragLen   uint32
	messageLen uint32
	checksum  uint32
	seqLen    int
	seqNum    uint32

	sampler *fountain.Sampler
	scratch []byte
}

// New returns an unstarted session.
func New() *Session {
	return &Session{}
}

// Start latches a fresh message onto the session, CBOR-encoding v through
// the registry and splitting it into fountain fragments. maxFragmentLen
// (capped at config.MaxFragmentLen) bounds the per-part payload size: the
// message is split into N = ceil(len/maxFragmentLen) fragments of
// ceil(len/N) bytes each, and Start fails with TooManySequences if N
// exceeds MaxSequenceCount.
func (s *Session) Start(urType string, v registry.Value, maxFragmentLen uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	message, err := registry.Encode(v)
	if err != nil {
		return err
	}
	return s.startRaw(urType, message, maxFragmentLen)
}

// StartRaw is the same as Start but bypasses the registry, for callers
// (tooling, tests) that already hold a pre-serialized message.
func (s *Session) StartRaw(urType string, message []byte, maxFragmentLen uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startRaw(urType, message, maxFragmentLen)
}

func (s *Session) startRaw(urType string, message []byte, maxFragmentLen uint32) error {
	if maxFragmentLen == 0 {
		return urerr.New(urerr.ParameterMismatch, "max_fragment_len must be >= 1")
	}
	if len(message) == 0 {
		return urerr.New(urerr.ParameterMismatch, "message must be non-empty")
	}

	_, seqLen := chooseFragmentLen(uint32(len(message)), maxFragmentLen)
	if seqLen > config.MaxSequenceCount {
		return urerr.New(urerr.TooManySequences, "message does not fit within the compile-time sequence-count bound")
	}

	s.urType = urType
	s.messageLen = uint32(len(message))
	s.checksum = crc32Of(message)
	s.fragLen = fountain.FragmentLen(uint32(len(message)), uint32(seqLen))
	s.seqLen = seqLen
	s.seqNum = 0
	s.fragments = fountain.SplitMessage(message, seqLen)
	s.sampler = fountain.NewSampler(seqLen)
	s.scratch = make([]byte, s.fragLen)
	return nil
}

// chooseFragmentLen caps maxFragmentLen at config.MaxFragmentLen and
// returns that length together with the fragment count it gives for
// messageLen. It never exceeds the cap; startRaw rejects a count above
// MaxSequenceCount.
func chooseFragmentLen(messageLen, maxFragmentLen uint32) (fragLen uint32, seqLen int) {
	if maxFragmentLen > config.MaxFragmentLen {
		maxFragmentLen = config.MaxFragmentLen
	}
	fragLen = maxFragmentLen
	n := (messageLen + fragLen - 1) / fragLen
	if n == 0 {
		n = 1
	}
	return fragLen, int(n)
}

// IsSinglePart reports whether the latched message fits in exactly one
// fragment, in which case NextPart emits the indexless single-part form.
func (s *Session) IsSinglePart() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seqLen == 1
}

// URType returns the type string latched by Start.
func (s *Session) URType() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.urType
}

// NextPart advances the session and returns the next UR text frame. It
// never blocks and never terminates on its own - the fountain stream is
// open-ended by design (spec.md Non-goals).
func (s *Session) NextPart() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seqLen == 0 {
		return "", urerr.New(urerr.ParameterMismatch, "session has not been started")
	}

	s.seqNum++

	if s.seqLen == 1 {
		// The single-part form carries the message itself, not a fountain part.
		body := bytewords.Encode(s.fragments[0], bytewords.StyleMinimal)
		u := urtext.UR{Type: s.urType, MultiPart: false, BytewordsBody: body}
		return u.Emit(), nil
	}

	var payload []byte
	if int(s.seqNum) <= s.seqLen {
		payload = s.fragments[s.seqNum-1]
	} else {
		indexes := s.sampler.ChooseFragmentIndexes(s.checksum, s.seqNum)
		for i := range s.scratch {
			s.scratch[i] = 0
		}
		for _, idx := range indexes {
			fountain.XORInto(s.scratch, s.fragments[idx])
		}
		payload = s.scratch
	}

	part := fountain.Part{
		SeqNum:     s.seqNum,
		SeqLen:     uint32(s.seqLen),
		MessageLen: s.messageLen,
		Checksum:   s.checksum,
		Payload:    payload,
	}
	cborPart, err := fountain.EncodePart(part)
	if err != nil {
		return "", err
	}
	body := bytewords.Encode(cborPart, bytewords.StyleMinimal)

	u := urtext.UR{Type: s.urType, MultiPart: true, Seq: s.seqNum, Total: uint32(s.seqLen), BytewordsBody: body}
	return u.Emit(), nil
}
