// Package fountain implements the fountain-coded multi-part engine at the
// heart of this codec (spec.md §3, §4.3, §4.4): the part wire shape, the
// robust-soliton degree sampler, and the deterministic fragment chooser
// both the encoder and decoder drive off of.
package fountain

import (
	"encoding/binary"

	"github.com/fxamacker/cbor/v2"

	"github.com/foundationdevices/passport-ur/common/config"
	"github.com/foundationdevices/passport-ur/urerr"
)

// Part is a single fountain block as received or emitted on the wire
// (spec.md §3). FragmentLen is not transmitted - it is derivable from
// MessageLen and SeqLen (spec.md §6) - but is kept on the in-memory struct
// for convenience.
type Part struct {
	SeqNum      uint32
	SeqLen      uint32
	MessageLen  uint32
	Checksum    uint32
	FragmentLen uint32
	Payload     []byte
}

// wireShape is the CBOR array shape of a part on the wire: exactly the
// five fields spec.md §6 lists (fragment_len is derived, not carried).
type wireShape struct {
	_           struct{} `cbor:",toarray"`
	SeqNum      uint32
	SeqLen      uint32
	MessageLen  uint32
	Checksum    uint32
	Payload     []byte
}

// FragmentLen returns ceil(messageLen / seqLen), the padded length every
// source fragment (and therefore every mixed payload) has.
func FragmentLen(messageLen, seqLen uint32) uint32 {
	if seqLen == 0 {
		return 0
	}
	return (messageLen + seqLen - 1) / seqLen
}

// EncodePart serializes a Part to its wire CBOR array form.
func EncodePart(p Part) ([]byte, error) {
	ws := wireShape{
		SeqNum:     p.SeqNum,
		SeqLen:     p.SeqLen,
		MessageLen: p.MessageLen,
		Checksum:   p.Checksum,
		Payload:    p.Payload,
	}
	return cbor.Marshal(ws)
}

// DecodePart parses a wire-format fountain part. It does not check
// fragment_len against the caller's bound - callers that need
// TooManySequences semantics call CheckSeqLen separately before latching
// session parameters, matching the decoder's "reject before latch" rule
// (spec.md §4.6, E5).
func DecodePart(data []byte) (Part, error) {
	var ws wireShape
	if err := cbor.Unmarshal(data, &ws); err != nil {
		return Part{}, urerr.Wrap(urerr.MalformedPart, "fountain part is not a well-formed cbor array", err)
	}
	if ws.SeqNum == 0 || ws.SeqLen == 0 {
		return Part{}, urerr.New(urerr.MalformedPart, "seq_num and seq_len must be >= 1")
	}
	fragLen := FragmentLen(ws.MessageLen, ws.SeqLen)
	if uint32(len(ws.Payload)) != fragLen {
		return Part{}, urerr.New(urerr.MalformedPart, "payload length does not match ceil(message_len/seq_len)")
	}
	return Part{
		SeqNum:      ws.SeqNum,
		SeqLen:      ws.SeqLen,
		MessageLen:  ws.MessageLen,
		Checksum:    ws.Checksum,
		FragmentLen: fragLen,
		Payload:     ws.Payload,
	}, nil
}

// CheckSeqLen reports the TooManySequences error the decoder must raise
// before latching session parameters (spec.md E5).
func CheckSeqLen(seqLen uint32) error {
	if seqLen > config.MaxSequenceCount {
		return urerr.New(urerr.TooManySequences, "seq_len exceeds the compile-time sequence-count bound")
	}
	return nil
}

// seedKey mixes (checksum, seq_num) into the 32-byte key that seeds the
// degree/index PRNG (spec.md §4.4 step 1). Both words are big-endian, the
// construction reference implementations must match bit-for-bit for
// interoperability; see DESIGN.md for the exact derivation used here.
func seedKey(checksum, seqNum uint32) [32]byte {
	var msg [8]byte
	binary.BigEndian.PutUint32(msg[0:4], checksum)
	binary.BigEndian.PutUint32(msg[4:8], seqNum)
	return sha256Sum(msg[:])
}
