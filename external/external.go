// Package external declares the boundary between the codec and the
// surrounding device firmware: flash-backed persistence, the hardware
// random source, secp256k1 signing, and firmware-update verification. The
// codec itself never touches hardware directly; it is handed
// implementations of these interfaces by whatever binds it to a board (or,
// off-device, to a simulator or test double).
package external

import "io"

// FlashStorage is a byte-addressable, sector-erasable NOR flash region,
// generalized from the board's SPI-NOR driver (foundation_flash_read,
// foundation_flash_write, foundation_flash_sector_erase,
// foundation_flash_block_erase). Reads and writes are offset-relative to
// the region this FlashStorage was bound to, not absolute device
// addresses.
type FlashStorage interface {
	ReadAt(offset uint32, data []byte) error
	WriteAt(offset uint32, data []byte) error

	// EraseSector erases the smallest eraseable unit containing offset.
	EraseSector(offset uint32) error
	// EraseBlock erases the larger eraseable unit containing offset.
	EraseBlock(offset uint32) error

	// IsBusy reports whether a prior write or erase is still in flight.
	IsBusy() (bool, error)
	// WaitDone blocks until a prior write or erase completes.
	WaitDone() error
}

// RandSource is a cryptographically secure byte source, generalized from
// PassportRng (the board's avalanche-noise, MCU-RNG, and hardware-RNG
// blend). It is an io.Reader so it composes with anything expecting one
// (e.g. as the entropy source for key generation).
type RandSource interface {
	io.Reader
}

// Signer performs secp256k1 Schnorr signing and public-key tweaking for
// the device's private key material, generalized from
// foundation_secp256k1_schnorr_sign and foundation_secp256k1_add_tweak.
// Implementations must never let the secret key leave the boundary they
// are built on.
type Signer interface {
	// SignSchnorr signs a 32-byte message hash, returning a 64-byte
	// signature.
	SignSchnorr(messageHash [32]byte) ([64]byte, error)

	// AddTweak adds a tweak to a 32-byte x-only public key, returning the
	// tweaked 32-byte x-only public key.
	AddTweak(xOnlyPubKey, tweak [32]byte) ([32]byte, error)
}

// FirmwareVerifyResult is the outcome of a firmware header or signature
// check, mirroring the FirmwareResult enum returned across the board's
// firmware-verification boundary.
type FirmwareVerifyResult int

const (
	FirmwareResultInvalidHeader FirmwareVerifyResult = iota
	FirmwareResultTooOld
	FirmwareResultHeaderOK
	FirmwareResultSignaturesOK
	FirmwareResultBadSignature
	FirmwareResultMissingUserPublicKey
)

// FirmwareHeader is the parsed, caller-relevant subset of a verified
// update header.
type FirmwareHeader struct {
	Version        string
	SignedByUser   bool
	Timestamp      uint32
}

// FirmwareVerifier checks firmware update headers and signatures before a
// device accepts an update, generalized from
// foundation_firmware_verify_update_header and
// foundation_firmware_verify_update_signatures.
type FirmwareVerifier interface {
	// VerifyUpdateHeader parses and validates header, rejecting it if its
	// timestamp predates currentTimestamp.
	VerifyUpdateHeader(header []byte, currentTimestamp uint32) (FirmwareHeader, FirmwareVerifyResult, error)

	// VerifyUpdateSignatures re-validates the header and checks its
	// signature(s) against hash, optionally requiring a user-supplied
	// public key for a user-signed update.
	VerifyUpdateSignatures(header []byte, currentTimestamp uint32, hash [32]byte, userPublicKey *[64]byte) (FirmwareVerifyResult, error)
}
