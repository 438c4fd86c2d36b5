package urtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSinglePart(t *testing.T) {
	u, err := Parse("ur:bytes/aeaeaeae")
	require.NoError(t, err)
	assert.Equal(t, "bytes", u.Type)
	assert.False(t, u.MultiPart)
	assert.Equal(t, "aeaeaeae", u.BytewordsBody)
	assert.Equal(t, "ur:bytes/aeaeaeae", u.Emit())
}

func TestParseMultiPart(t *testing.T) {
	u, err := Parse("UR:PSBT/3-12/aeaeaeae")
	require.NoError(t, err)
	assert.Equal(t, "psbt", u.Type)
	assert.True(t, u.MultiPart)
	assert.EqualValues(t, 3, u.Seq)
	assert.EqualValues(t, 12, u.Total)
	assert.Equal(t, "ur:psbt/3-12/aeaeaeae", u.Emit())
}

func TestParseMultiPartSeqBeyondTotal(t *testing.T) {
	// Mixed parts keep incrementing seq past total forever.
	u, err := Parse("ur:bytes/40-12/aeaeaeae")
	require.NoError(t, err)
	assert.EqualValues(t, 40, u.Seq)
	assert.EqualValues(t, 12, u.Total)
}

func TestParseRejectsBadScheme(t *testing.T) {
	_, err := Parse("urn:bytes/aeaeaeae")
	require.Error(t, err)
}

func TestParseRejectsBadType(t *testing.T) {
	cases := []string{
		"ur:/aeaeaeae",
		"ur:Bytes!/aeaeaeae",
		"ur:-bytes/aeaeaeae",
		"ur:thisidentifieristoolongtobevalidforanyregisteredtype/aeaeaeae",
	}
	for _, c := range cases {
		_, err := Parse(c)
		assert.Error(t, err, c)
	}
}

func TestParseRejectsZeroIndices(t *testing.T) {
	cases := []string{
		"ur:bytes/0-12/aeaeaeae",
		"ur:bytes/3-0/aeaeaeae",
		"ur:bytes/03-12/aeaeaeae",
	}
	for _, c := range cases {
		_, err := Parse(c)
		assert.Error(t, err, c)
	}
}

func TestParseRejectsEmptyBody(t *testing.T) {
	_, err := Parse("ur:bytes/")
	require.Error(t, err)

	_, err = Parse("ur:bytes/3-12/")
	require.Error(t, err)
}

func TestParseCaseInsensitiveOnInput(t *testing.T) {
	u, err := Parse("UR:HDKEY/AEAEAEAE")
	require.NoError(t, err)
	assert.Equal(t, "hdkey", u.Type)
	assert.Equal(t, "aeaeaeae", u.BytewordsBody)
}
