// Package urtext parses and emits the textual UR wire frame described in
// spec.md §4.2/§6:
//
//	single-part:  ur:<type>/<bytewords>
//	multi-part:   ur:<type>/<seq>-<total>/<bytewords>
package urtext

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/foundationdevices/passport-ur/common/config"
	"github.com/foundationdevices/passport-ur/urerr"
)

const scheme = "ur:"

// UR is a parsed frame: a type string plus either a single-part body or a
// multi-part (seq, total) pair and body.
type UR struct {
	Type        string
	MultiPart   bool
	Seq         uint32
	Total       uint32
	BytewordsBody string
}

// Parse validates and decomposes a UR text frame. Input is accepted
// case-insensitively (the caller's transport may uppercase for a QR
// alphabet); Type is always normalized to lowercase.
func Parse(s string) (UR, error) {
	lower := strings.ToLower(s)
	if !strings.HasPrefix(lower, scheme) {
		return UR{}, urerr.New(urerr.InvalidScheme, "missing ur: scheme prefix")
	}
	rest := lower[len(scheme):]

	typeEnd := strings.IndexByte(rest, '/')
	if typeEnd < 0 {
		return UR{}, urerr.New(urerr.InvalidBody, "missing body after type")
	}
	typ := rest[:typeEnd]
	if err := validateType(typ); err != nil {
		return UR{}, err
	}
	remainder := rest[typeEnd+1:]

	// Multi-part bodies have a second "/" separating "<seq>-<total>" from
	// the bytewords body; single-part bodies do not.
	if idx := strings.IndexByte(remainder, '/'); idx >= 0 {
		indices := remainder[:idx]
		body := remainder[idx+1:]
		seq, total, err := parseIndices(indices)
		if err != nil {
			return UR{}, err
		}
		if body == "" {
			return UR{}, urerr.New(urerr.InvalidBody, "empty bytewords body")
		}
		return UR{Type: typ, MultiPart: true, Seq: seq, Total: total, BytewordsBody: body}, nil
	}

	if remainder == "" {
		return UR{}, urerr.New(urerr.InvalidBody, "empty bytewords body")
	}
	return UR{Type: typ, MultiPart: false, BytewordsBody: remainder}, nil
}

// Emit renders a UR back to its lowercase textual form.
func (u UR) Emit() string {
	if !u.MultiPart {
		return fmt.Sprintf("%s%s/%s", scheme, u.Type, u.BytewordsBody)
	}
	return fmt.Sprintf("%s%s/%d-%d/%s", scheme, u.Type, u.Seq, u.Total, u.BytewordsBody)
}

func validateType(typ string) error {
	if typ == "" || len(typ) > config.MaxURTypeLen {
		return urerr.New(urerr.InvalidType, "type must be 1.."+strconv.Itoa(config.MaxURTypeLen)+" characters")
	}
	if !isTypeStart(typ[0]) {
		return urerr.New(urerr.InvalidType, "type must start with [a-z0-9]")
	}
	for i := 1; i < len(typ); i++ {
		if !isTypeChar(typ[i]) {
			return urerr.New(urerr.InvalidType, "type may only contain [a-z0-9-]")
		}
	}
	return nil
}

func isTypeStart(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}

func isTypeChar(b byte) bool {
	return isTypeStart(b) || b == '-'
}

func parseIndices(s string) (seq, total uint32, err error) {
	dash := strings.IndexByte(s, '-')
	if dash < 0 {
		return 0, 0, urerr.New(urerr.InvalidIndices, "missing '-' between seq and total")
	}
	seqStr, totalStr := s[:dash], s[dash+1:]

	seq, err1 := parseU32NoLeadingZero(seqStr)
	total, err2 := parseU32NoLeadingZero(totalStr)
	if err1 != nil || err2 != nil {
		return 0, 0, urerr.New(urerr.InvalidIndices, "seq/total must be decimal u32 without leading zeros")
	}
	if seq == 0 || total == 0 {
		return 0, 0, urerr.New(urerr.InvalidIndices, "seq and total must be >= 1")
	}
	// Note: seq is allowed to exceed total - total is the source-fragment
	// count N, and the fountain stream keeps emitting degree>=2 mixed
	// parts with seq_num > N indefinitely (spec.md §3/§4.5).
	if !isMultiPartCounter(seqStr, totalStr) {
		return 0, 0, urerr.New(urerr.InvalidIndices, "malformed seq/total digits")
	}
	return seq, total, nil
}

// isMultiPartCounter repeats the non-empty check parseU32NoLeadingZero
// already enforces on both counters; it exists so a future relaxation of
// the grammar only touches one place.
func isMultiPartCounter(seqStr, totalStr string) bool {
	return seqStr != "" && totalStr != ""
}

func parseU32NoLeadingZero(s string) (uint32, error) {
	if s == "" {
		return 0, fmt.Errorf("empty")
	}
	if len(s) > 1 && s[0] == '0' {
		return 0, fmt.Errorf("leading zero")
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("non-digit")
		}
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}
