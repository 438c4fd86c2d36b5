// Package bytewords implements the bijective byte <-> four-letter-word
// encoding described in spec.md §4.1: a fixed 256-word lexicon indexed by
// byte value, a trailing 4-byte CRC32 checksum, and two emission styles
// (standard, full words hyphen-joined; minimal, first+last letter only,
// concatenated with no separator).
package bytewords

import (
	"hash/crc32"
	"strings"

	"github.com/foundationdevices/passport-ur/urerr"
)

// Style selects how encoded words are rendered on the wire.
type Style int

const (
	StyleStandard Style = iota
	StyleMinimal
)

var wordIndex map[string]byte
var minimalIndex map[[2]byte]byte

func init() {
	wordIndex = make(map[string]byte, 256)
	minimalIndex = make(map[[2]byte]byte, 256)
	for i, w := range lexicon {
		wordIndex[w] = byte(i)
		minimalIndex[[2]byte{w[0], w[len(w)-1]}] = byte(i)
	}
}

// Encode renders payload plus its CRC32 trailer as a bytewords string. It is
// total - every byte slice has a valid encoding.
func Encode(payload []byte, style Style) string {
	full := appendChecksum(payload)

	switch style {
	case StyleMinimal:
		var b strings.Builder
		b.Grow(len(full) * 2)
		for _, by := range full {
			w := lexicon[by]
			b.WriteByte(w[0])
			b.WriteByte(w[len(w)-1])
		}
		return b.String()
	default:
		words := make([]string, len(full))
		for i, by := range full {
			words[i] = lexicon[by]
		}
		return strings.Join(words, "-")
	}
}

// Decode parses a bytewords string, validates its CRC32 trailer, and
// returns the original payload (the trailer itself is stripped).
func Decode(s string, style Style) ([]byte, error) {
	full, err := decodeFull(s, style)
	if err != nil {
		return nil, err
	}
	return splitChecksum(full)
}

// Validate performs the same structural and checksum checks as Decode and
// reports only whether they pass. It still decodes into a temporary buffer,
// which it discards.
func Validate(s string, style Style) bool {
	full, err := decodeFull(s, style)
	if err != nil {
		return false
	}
	_, err = splitChecksum(full)
	return err == nil
}

func decodeFull(s string, style Style) ([]byte, error) {
	switch style {
	case StyleMinimal:
		return decodeMinimal(s)
	default:
		return decodeStandard(s)
	}
}

func decodeMinimal(s string) ([]byte, error) {
	if len(s) == 0 || len(s)%2 != 0 {
		return nil, urerr.New(urerr.TruncatedInput, "minimal bytewords length must be even and non-zero")
	}
	out := make([]byte, len(s)/2)
	for i := 0; i < len(out); i++ {
		f, l := s[2*i], s[2*i+1]
		if !isLower(f) || !isLower(l) {
			return nil, urerr.New(urerr.InvalidCharacter, "bytewords must be lowercase ascii")
		}
		by, ok := minimalIndex[[2]byte{f, l}]
		if !ok {
			return nil, urerr.New(urerr.InvalidWord, "no lexicon word matches letter pair")
		}
		out[i] = by
	}
	return out, nil
}

func decodeStandard(s string) ([]byte, error) {
	if s == "" {
		return nil, urerr.New(urerr.TruncatedInput, "empty bytewords string")
	}
	parts := strings.Split(s, "-")
	out := make([]byte, len(parts))
	for i, p := range parts {
		if len(p) != 4 {
			return nil, urerr.New(urerr.InvalidWord, "standard-style words must be 4 letters")
		}
		for j := 0; j < 4; j++ {
			if !isLower(p[j]) {
				return nil, urerr.New(urerr.InvalidCharacter, "bytewords must be lowercase ascii")
			}
		}
		by, ok := wordIndex[p]
		if !ok {
			return nil, urerr.New(urerr.InvalidWord, "unrecognized word: "+p)
		}
		out[i] = by
	}
	return out, nil
}

func isLower(b byte) bool {
	return b >= 'a' && b <= 'z'
}

// appendChecksum appends the big-endian CRC32 (IEEE, reflected, init/final
// 0xFFFFFFFF - the stdlib default table) over payload.
func appendChecksum(payload []byte) []byte {
	sum := crc32.ChecksumIEEE(payload)
	full := make([]byte, len(payload)+4)
	copy(full, payload)
	full[len(payload)+0] = byte(sum >> 24)
	full[len(payload)+1] = byte(sum >> 16)
	full[len(payload)+2] = byte(sum >> 8)
	full[len(payload)+3] = byte(sum)
	return full
}

func splitChecksum(full []byte) ([]byte, error) {
	if len(full) < 4 {
		return nil, urerr.New(urerr.TruncatedInput, "decoded bytewords shorter than a checksum trailer")
	}
	payload := full[:len(full)-4]
	trailer := full[len(full)-4:]
	want := crc32.ChecksumIEEE(payload)
	got := uint32(trailer[0])<<24 | uint32(trailer[1])<<16 | uint32(trailer[2])<<8 | uint32(trailer[3])
	if want != got {
		return nil, urerr.New(urerr.ChecksumMismatchFrame, "bytewords crc32 trailer mismatch")
	}
	return payload, nil
}
