// Package urerr defines the flat, non-overlapping error kinds used across
// the UR codec (spec.md §7). The teacher's common/util/error.go modeled
// errors as a handful of package-level fmt.Errorf sentinels; here each error
// carries its own Kind and message instead of living in a shared scratch
// buffer, per spec.md DESIGN NOTES ("Global-state UR errors").
package urerr

import "fmt"

// Kind enumerates the error categories a caller can switch on.
type Kind int

const (
	_ Kind = iota

	// Text-frame parse failures (urtext). Reject part, keep session.
	NotUtf8
	InvalidScheme
	InvalidType
	InvalidIndices
	InvalidBody

	// Bytewords layer. Reject part, keep session.
	InvalidCharacter
	InvalidWord
	InvalidBytewords
	ChecksumMismatchFrame
	TruncatedInput

	// CBOR / fountain-part layer. Reject part, keep session.
	MalformedPart
	MalformedCbor

	// Session-tainting errors: the decoder drops its latched session and
	// returns to Empty.
	ParameterMismatch
	TypeMismatch
	TooManySequences
	CorruptMessage

	// Multi-part decoder received a single-part UR. Recoverable - the
	// caller can retry via the single-part path.
	NotMultiPart

	// Recognized grammar, unknown registry type. Caller-visible, does not
	// taint the session.
	Unsupported
)

func (k Kind) String() string {
	switch k {
	case NotUtf8:
		return "NotUtf8"
	case InvalidScheme:
		return "InvalidScheme"
	case InvalidType:
		return "InvalidType"
	case InvalidIndices:
		return "InvalidIndices"
	case InvalidBody:
		return "InvalidBody"
	case InvalidCharacter:
		return "InvalidCharacter"
	case InvalidWord:
		return "InvalidWord"
	case InvalidBytewords:
		return "InvalidBytewords"
	case ChecksumMismatchFrame:
		return "ChecksumMismatchFrame"
	case TruncatedInput:
		return "TruncatedInput"
	case MalformedPart:
		return "MalformedPart"
	case MalformedCbor:
		return "MalformedCbor"
	case ParameterMismatch:
		return "ParameterMismatch"
	case TypeMismatch:
		return "TypeMismatch"
	case TooManySequences:
		return "TooManySequences"
	case CorruptMessage:
		return "CorruptMessage"
	case NotMultiPart:
		return "NotMultiPart"
	case Unsupported:
		return "Unsupported"
	default:
		return "Unknown"
	}
}

// Taints reports whether an error of this kind makes the owning decoder
// session drop its latched parameters and return to Empty. The next part
// received then starts a new session; no call to Clear is needed first.
func (k Kind) Taints() bool {
	switch k {
	case ParameterMismatch, TypeMismatch, TooManySequences, CorruptMessage:
		return true
	default:
		return false
	}
}

// Error is the owned, self-contained error type every package in this
// module returns. It never reaches into shared/global storage, so reading
// one Error can never invalidate another - unlike the scratch-buffer design
// the firmware source uses (see spec.md DESIGN NOTES).
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Message, e.Cause.Error())
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is allows errors.Is(err, urerr.New(Kind, "")) style comparisons on Kind
// alone.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// KindOf extracts the Kind from any error produced by this package, or
// false if err was not one of ours.
func KindOf(err error) (Kind, bool) {
	e, ok := err.(*Error)
	if !ok {
		return 0, false
	}
	return e.Kind, true
}
