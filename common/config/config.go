// Package config holds the compile-time capacities that bound every buffer
// in the codec. These are part of the public contract: changing them changes
// what messages the decoder can receive (spec.md DESIGN NOTES, "Heapless
// containers").
package config

const (
	// MaxMessageLen is the reassembled-message size this configuration is
	// sized for; ~24 KiB comfortably covers a large multisig PSBT. The
	// decoder does not check an incoming part's message_len against it.
	MaxMessageLen = 24 * 1024

	// MaxSequenceCount bounds the number of source fragments a single
	// message can be split into. It is a power of two; the decoder tracks
	// received fragments in a []bool of seq_len entries, not a bitmap.
	MaxSequenceCount = 128

	// MixedParts is the capacity of the decoder's mixed-part ring (K in
	// spec.md §5/§4.6). When full, the oldest entry is evicted (FIFO) -
	// see DESIGN NOTES "Open question - mixed-part ring eviction policy".
	MixedParts = 8

	// MaxFragmentLen bounds a single fragment/part payload.
	MaxFragmentLen = 1024

	// MaxURTypeLen is the longest recognized UR type string
	// ("x-passport-response").
	MaxURTypeLen = 19

	// SinglePartLimit is the largest CBOR-encoded message length eligible
	// for the no-index single-part UR form (N == 1 fragment).
	SinglePartLimit = MaxFragmentLen
)
