package encoder

import "hash/crc32"

func crc32Of(message []byte) uint32 {
	return crc32.ChecksumIEEE(message)
}
