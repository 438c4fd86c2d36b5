package fountain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartWireRoundTrip(t *testing.T) {
	p := Part{
		SeqNum:     3,
		SeqLen:     12,
		MessageLen: 120,
		Checksum:   0xdeadbeef,
		Payload:    make([]byte, FragmentLen(120, 12)),
	}
	for i := range p.Payload {
		p.Payload[i] = byte(i)
	}

	data, err := EncodePart(p)
	require.NoError(t, err)

	got, err := DecodePart(data)
	require.NoError(t, err)
	assert.Equal(t, p.SeqNum, got.SeqNum)
	assert.Equal(t, p.SeqLen, got.SeqLen)
	assert.Equal(t, p.MessageLen, got.MessageLen)
	assert.Equal(t, p.Checksum, got.Checksum)
	assert.Equal(t, p.Payload, got.Payload)
	assert.EqualValues(t, FragmentLen(120, 12), got.FragmentLen)
}

func TestDecodePartRejectsPayloadLengthMismatch(t *testing.T) {
	p := Part{SeqNum: 1, SeqLen: 4, MessageLen: 40, Checksum: 1, Payload: []byte{1, 2, 3}}
	data, err := EncodePart(p)
	require.NoError(t, err)
	_, err = DecodePart(data)
	require.Error(t, err)
}

func TestSamplerPureFragmentsAreDegreeOne(t *testing.T) {
	s := NewSampler(8)
	for seq := 1; seq <= 8; seq++ {
		idx := s.ChooseFragmentIndexes(0x1234, uint32(seq))
		require.Len(t, idx, 1)
		assert.Equal(t, seq-1, idx[0])
	}
}

func TestSamplerDeterministic(t *testing.T) {
	s := NewSampler(20)
	a := s.ChooseFragmentIndexes(0xcafef00d, 55)
	b := s.ChooseFragmentIndexes(0xcafef00d, 55)
	assert.Equal(t, a, b)
}

func TestSamplerIndexesWithinRangeAndDistinct(t *testing.T) {
	s := NewSampler(16)
	for seq := uint32(17); seq < 200; seq++ {
		idx := s.ChooseFragmentIndexes(0x99, seq)
		seen := map[int]bool{}
		for _, i := range idx {
			require.GreaterOrEqual(t, i, 0)
			require.Less(t, i, 16)
			require.False(t, seen[i], "duplicate index in mix")
			seen[i] = true
		}
	}
}

func TestSamplerDifferentSeqNumsUsuallyDiffer(t *testing.T) {
	s := NewSampler(32)
	distinctDegreeSeen := map[int]bool{}
	for seq := uint32(33); seq < 233; seq++ {
		distinctDegreeSeen[s.Degree(0x42, seq)] = true
	}
	// Over 200 draws against a 32-fragment message we expect more than one
	// distinct degree to show up; a constant-degree sampler would be a bug.
	assert.Greater(t, len(distinctDegreeSeen), 1)
}

func TestMixPureFragmentRecoversItself(t *testing.T) {
	msg := []byte("the quick brown fox jumps over the lazy dog, twice over")
	frags := SplitMessage(msg, 6)
	mixed := Mix(frags, []int{2})
	assert.Equal(t, frags[2], mixed)
}

func TestMixXorIsReversibleByXoringBack(t *testing.T) {
	msg := make([]byte, 64)
	for i := range msg {
		msg[i] = byte(i * 7)
	}
	frags := SplitMessage(msg, 4)

	mixed := Mix(frags, []int{0, 1, 2, 3})
	reduced := make([]byte, len(mixed))
	copy(reduced, mixed)
	XORInto(reduced, frags[0])
	XORInto(reduced, frags[1])
	XORInto(reduced, frags[2])
	assert.Equal(t, frags[3], reduced)
}
