package decoder

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foundationdevices/passport-ur/bytewords"
	"github.com/foundationdevices/passport-ur/common/config"
	"github.com/foundationdevices/passport-ur/encoder"
	"github.com/foundationdevices/passport-ur/fountain"
	"github.com/foundationdevices/passport-ur/urerr"
	"github.com/foundationdevices/passport-ur/urtext"
)

func TestSinglePartRoundTrip(t *testing.T) {
	enc := encoder.New()
	message := []byte("all-zero placeholder message replaced with real bytes")
	require.NoError(t, enc.StartRaw("bytes", message, 4096))
	part, err := enc.NextPart()
	require.NoError(t, err)

	dec := New()
	require.NoError(t, dec.Receive(part))
	require.True(t, dec.IsComplete())
	got, ok := dec.Message()
	require.True(t, ok)
	assert.Equal(t, message, got)
}

func TestSinglePartAfterCompleteRequiresClear(t *testing.T) {
	enc := encoder.New()
	require.NoError(t, enc.StartRaw("bytes", []byte("first message"), 4096))
	part, err := enc.NextPart()
	require.NoError(t, err)

	dec := New()
	require.NoError(t, dec.Receive(part))
	require.True(t, dec.IsComplete())

	enc2 := encoder.New()
	require.NoError(t, enc2.StartRaw("bytes", []byte("second message"), 4096))
	part2, err := enc2.NextPart()
	require.NoError(t, err)

	err = dec.Receive(part2)
	require.Error(t, err)
	kind, ok := urerr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, urerr.NotMultiPart, kind)

	got, ok := dec.Message()
	require.True(t, ok)
	assert.Equal(t, []byte("first message"), got, "a completed session must not be silently overwritten without Clear")

	dec.Clear()
	require.NoError(t, dec.Receive(part2))
	got, ok = dec.Message()
	require.True(t, ok)
	assert.Equal(t, []byte("second message"), got)
}

func TestMultiPartRoundTripInOrder(t *testing.T) {
	enc := encoder.New()
	message := make([]byte, 1000)
	rand.New(rand.NewSource(1)).Read(message)
	require.NoError(t, enc.StartRaw("psbt", message, 60))

	dec := New()
	for !dec.IsComplete() {
		part, err := enc.NextPart()
		require.NoError(t, err)
		require.NoError(t, dec.Receive(part))
	}
	got, ok := dec.Message()
	require.True(t, ok)
	assert.Equal(t, message, got)
}

func TestMultiPartRoundTripShuffledPureParts(t *testing.T) {
	enc := encoder.New()
	message := make([]byte, 500)
	rand.New(rand.NewSource(2)).Read(message)
	require.NoError(t, enc.StartRaw("bytes", message, 60))

	var parts []string
	for len(parts) < 50 {
		p, err := enc.NextPart()
		require.NoError(t, err)
		parts = append(parts, p)
	}

	rng := rand.New(rand.NewSource(3))
	rng.Shuffle(len(parts), func(i, j int) { parts[i], parts[j] = parts[j], parts[i] })

	dec := New()
	for _, p := range parts {
		if dec.IsComplete() {
			break
		}
		require.NoError(t, dec.Receive(p))
	}
	got, ok := dec.Message()
	require.True(t, ok)
	assert.Equal(t, message, got)
}

func TestDuplicatePartsAreIdempotent(t *testing.T) {
	enc := encoder.New()
	message := make([]byte, 200)
	rand.New(rand.NewSource(4)).Read(message)
	require.NoError(t, enc.StartRaw("bytes", message, 60))

	part1, err := enc.NextPart()
	require.NoError(t, err)

	dec := New()
	require.NoError(t, dec.Receive(part1))
	before := dec.EstimatedPercentComplete()
	require.NoError(t, dec.Receive(part1))
	after := dec.EstimatedPercentComplete()
	assert.Equal(t, before, after)
}

func TestEstimatedPercentCompleteIsMonotone(t *testing.T) {
	enc := encoder.New()
	message := make([]byte, 2000)
	rand.New(rand.NewSource(5)).Read(message)
	require.NoError(t, enc.StartRaw("bytes", message, 80))

	dec := New()
	last := 0.0
	for i := 0; i < 60 && !dec.IsComplete(); i++ {
		part, err := enc.NextPart()
		require.NoError(t, err)
		require.NoError(t, dec.Receive(part))
		cur := dec.EstimatedPercentComplete()
		assert.GreaterOrEqual(t, cur, last)
		last = cur
	}
}

func TestParameterMismatchTaintsSessionUntilClear(t *testing.T) {
	dec := New()

	partA := fountain.Part{SeqNum: 1, SeqLen: 4, MessageLen: 40, Checksum: 1, Payload: make([]byte, 10)}
	sendPart(t, dec, "bytes", partA)
	require.False(t, dec.IsEmpty())

	partB := fountain.Part{SeqNum: 2, SeqLen: 5, MessageLen: 40, Checksum: 1, Payload: make([]byte, 8)}
	err := sendPartErr(t, dec, "bytes", partB)
	require.Error(t, err)
	kind, ok := urerr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, urerr.ParameterMismatch, kind)
	assert.True(t, dec.IsEmpty())

	dec.Clear()
	assert.True(t, dec.IsEmpty())
}

func TestTypeMismatchTaintsSession(t *testing.T) {
	dec := New()
	partA := fountain.Part{SeqNum: 1, SeqLen: 4, MessageLen: 40, Checksum: 1, Payload: make([]byte, 10)}
	sendPart(t, dec, "bytes", partA)

	partB := fountain.Part{SeqNum: 2, SeqLen: 4, MessageLen: 40, Checksum: 1, Payload: make([]byte, 10)}
	err := sendPartErr(t, dec, "psbt", partB)
	require.Error(t, err)
	kind, _ := urerr.KindOf(err)
	assert.Equal(t, urerr.TypeMismatch, kind)
}

func TestTooManySequencesRejectedBeforeLatch(t *testing.T) {
	dec := New()
	seqLen := uint32(config.MaxSequenceCount + 1)
	messageLen := uint32(4000)
	part := fountain.Part{
		SeqNum:     1,
		SeqLen:     seqLen,
		MessageLen: messageLen,
		Checksum:   1,
		Payload:    make([]byte, fountain.FragmentLen(messageLen, seqLen)),
	}
	err := sendPartErr(t, dec, "bytes", part)
	require.Error(t, err)
	kind, _ := urerr.KindOf(err)
	assert.Equal(t, urerr.TooManySequences, kind)
	assert.True(t, dec.IsEmpty())
}

func TestCorruptMessageDetectedOnFinalChecksum(t *testing.T) {
	dec := New()
	message := []byte("0123456789abcdef")
	part := fountain.Part{SeqNum: 1, SeqLen: 1, MessageLen: uint32(len(message)), Checksum: 0xffffffff, Payload: message}
	err := sendPartErr(t, dec, "bytes", part)
	require.Error(t, err)
	kind, _ := urerr.KindOf(err)
	assert.Equal(t, urerr.CorruptMessage, kind)
}

// sendPart/sendPartErr wrap a fountain.Part as a UR text frame and feed it
// to the decoder, the way a real transport would.
func sendPart(t *testing.T, dec *Session, urType string, p fountain.Part) {
	t.Helper()
	require.NoError(t, sendPartErr(t, dec, urType, p))
}

func sendPartErr(t *testing.T, dec *Session, urType string, p fountain.Part) error {
	t.Helper()
	cborPart, err := fountain.EncodePart(p)
	require.NoError(t, err)
	body := bytewords.Encode(cborPart, bytewords.StyleMinimal)
	u := urtext.UR{Type: urType, MultiPart: true, Seq: p.SeqNum, Total: p.SeqLen, BytewordsBody: body}
	return dec.Receive(u.Emit())
}
