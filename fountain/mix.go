package fountain

// SplitMessage divides message into seqLen equal fragments of
// ceil(len(message)/seqLen) bytes, zero-padding the final fragment
// (spec.md §4.3).
func SplitMessage(message []byte, seqLen int) [][]byte {
	fragLen := int(FragmentLen(uint32(len(message)), uint32(seqLen)))
	fragments := make([][]byte, seqLen)
	for i := 0; i < seqLen; i++ {
		frag := make([]byte, fragLen)
		start := i * fragLen
		if start < len(message) {
			end := start + fragLen
			if end > len(message) {
				end = len(message)
			}
			copy(frag, message[start:end])
		}
		fragments[i] = frag
	}
	return fragments
}

// Mix XORs together the source fragments at the given indexes, producing
// the payload for a fountain part of that degree.
func Mix(fragments [][]byte, indexes []int) []byte {
	out := make([]byte, len(fragments[0]))
	for _, idx := range indexes {
		XORInto(out, fragments[idx])
	}
	return out
}

// XORInto computes dst ^= src in place. Both slices must share the same
// length; callers only ever XOR same-length fragments together.
func XORInto(dst, src []byte) {
	for i := range dst {
		dst[i] ^= src[i]
	}
}
