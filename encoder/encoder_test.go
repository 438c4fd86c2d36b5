package encoder

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSinglePartEmitsIndexlessForm(t *testing.T) {
	s := New()
	require.NoError(t, s.StartRaw("bytes", []byte("hello world"), 1024))
	require.True(t, s.IsSinglePart())

	part, err := s.NextPart()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(part, "ur:bytes/"))
	assert.False(t, strings.Contains(part[len("ur:bytes/"):], "-"))
}

func TestMultiPartEmitsIncreasingSeqNum(t *testing.T) {
	s := New()
	message := make([]byte, 300)
	for i := range message {
		message[i] = byte(i)
	}
	require.NoError(t, s.StartRaw("bytes", message, 50))
	require.False(t, s.IsSinglePart())

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		part, err := s.NextPart()
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(part, "ur:bytes/"))
		assert.False(t, seen[part], "each seq_num should produce a distinct frame")
		seen[part] = true
	}
}

func TestNextPartBeforeStartErrors(t *testing.T) {
	s := New()
	_, err := s.NextPart()
	require.Error(t, err)
}

func TestStartRejectsEmptyMessage(t *testing.T) {
	s := New()
	err := s.StartRaw("bytes", nil, 100)
	require.Error(t, err)
}

// TestNextPartAllocationBudget is a regression guard for NextPart's
// allocation count, not a zero-allocation proof: this host-side session
// does not honor the embedded target's heapless-buffer contract (see
// DESIGN.md, "Zero-allocation deviation") - the CBOR encode and bytewords
// render each allocate. The bound below only catches an accidental
// allocation-count regression (e.g. losing the scratch-buffer reuse this
// session does provide).
func TestNextPartAllocationBudget(t *testing.T) {
	s := New()
	message := make([]byte, 400)
	require.NoError(t, s.StartRaw("bytes", message, 40))

	allocs := testing.AllocsPerRun(50, func() {
		if _, err := s.NextPart(); err != nil {
			t.Fatal(err)
		}
	})
	assert.LessOrEqual(t, allocs, float64(10), "NextPart allocation count regressed")
}

func TestScratchBufferIsReusedNotAliased(t *testing.T) {
	s := New()
	message := make([]byte, 400)
	require.NoError(t, s.StartRaw("bytes", message, 40))

	// Drain the pure parts so the next calls are mixed parts sharing the
	// scratch buffer.
	for i := 0; i < s.seqLen; i++ {
		_, err := s.NextPart()
		require.NoError(t, err)
	}
	first, err := s.NextPart()
	require.NoError(t, err)
	second, err := s.NextPart()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
