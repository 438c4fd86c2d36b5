// Package registry implements the CBOR value layer: the fixed set of
// message types this codec recognizes (spec.md §4.7) and the translation
// between their CBOR wire shape and a typed Go value.
//
// Types outside this enumerated set are not an error in themselves - they
// report Unsupported and leave the caller free to retry at a lower layer
// (e.g. treat the body as opaque bytes) without tainting any session.
package registry

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/foundationdevices/passport-ur/urerr"
)

// Value is any registry-recognized message payload.
type Value interface {
	// URType returns the lowercase UR type string this value encodes as.
	URType() string
}

// Bytes is an opaque byte string, passed through untouched.
type Bytes []byte

func (Bytes) URType() string { return "bytes" }

// PSBT is an opaque BIP-174 Partially Signed Bitcoin Transaction. The
// registry never inspects its contents.
type PSBT []byte

func (PSBT) URType() string { return "psbt" }

// CoinInfo identifies the coin type and network an HDKey belongs to,
// mirroring the crypto-coin-info shape used by the wider UR ecosystem.
type CoinInfo struct {
	Type    *uint32 `cbor:"1,omitempty"`
	Network *uint32 `cbor:"2,omitempty"`
}

// PathComponent is one step of a BIP-32 derivation path.
type PathComponent struct {
	Index    uint32
	Hardened bool
}

// KeyPath is a BIP-32 derivation path plus the fingerprint/depth of the
// key it was derived from.
type KeyPath struct {
	Components        []PathComponent
	SourceFingerprint *uint32
	Depth             *uint8
}

type keyPathCBOR struct {
	Components        []pathComponentCBOR `cbor:"1"`
	SourceFingerprint *uint32             `cbor:"2,omitempty"`
	Depth             *uint8              `cbor:"3,omitempty"`
}

// pathComponentCBOR mirrors the crypto-keypath wire pair of (index,
// hardened) values per component.
type pathComponentCBOR struct {
	_        struct{} `cbor:",toarray"`
	Index    uint32
	Hardened bool
}

// HDKey is an extended Bitcoin key: public or private key material plus
// its derivation metadata (spec.md §4.7).
type HDKey struct {
	IsPrivate          *bool
	KeyData            []byte // 33 bytes
	ChainCode          []byte // 32 bytes
	UseInfo            *CoinInfo
	Origin             *KeyPath
	ParentFingerprint  *uint32
}

func (*HDKey) URType() string { return "hdkey" }

type hdkeyCBOR struct {
	IsPrivate         *bool         `cbor:"2,omitempty"`
	KeyData           []byte        `cbor:"3,omitempty"`
	ChainCode         []byte        `cbor:"4,omitempty"`
	UseInfo           *CoinInfo     `cbor:"5,omitempty"`
	Origin            *keyPathCBOR  `cbor:"6,omitempty"`
	ParentFingerprint *uint32       `cbor:"8,omitempty"`
}

// SCVChallenge is the side-channel-verification challenge issued to a
// Passport device.
type SCVChallenge struct {
	ID        []byte // 32 bytes
	Signature []byte // 64 bytes
}

// PassportRequest is the vendor-specific request resource (spec.md §4.7).
type PassportRequest struct {
	TransactionID          []byte // 16 bytes, a UUID
	SCVChallenge           *SCVChallenge
	PassportModel          bool
	PassportFirmwareVersion bool
}

func (*PassportRequest) URType() string { return "x-passport-request" }

type passportRequestCBOR struct {
	TransactionID           []byte        `cbor:"1"`
	SCVChallenge            *scvChallengeCBOR `cbor:"2,omitempty"`
	PassportModel           bool          `cbor:"3"`
	PassportFirmwareVersion bool          `cbor:"4"`
}

type scvChallengeCBOR struct {
	ID        []byte `cbor:"1"`
	Signature []byte `cbor:"2"`
}

// PassportModel enumerates the known device model identifiers a
// PassportResponse may report.
type PassportModel int

const (
	PassportModelUnspecified PassportModel = iota
	PassportModelFounders
	PassportModelBatch2
)

func (m PassportModel) String() string {
	switch m {
	case PassportModelFounders:
		return "founders"
	case PassportModelBatch2:
		return "batch2"
	default:
		return "unspecified"
	}
}

// SCVSolution is the four-word side-channel-verification solution a
// Passport returns in response to a challenge.
type SCVSolution struct {
	Word1, Word2, Word3, Word4 string
}

// PassportResponse is the vendor-specific response resource (spec.md
// §4.7).
type PassportResponse struct {
	TransactionID           []byte // 16 bytes
	SCVSolution             *SCVSolution
	PassportModel           *PassportModel
	PassportFirmwareVersion *string
}

func (*PassportResponse) URType() string { return "x-passport-response" }

type passportResponseCBOR struct {
	TransactionID           []byte            `cbor:"1"`
	SCVSolution             *scvSolutionCBOR  `cbor:"2,omitempty"`
	PassportModel           *string           `cbor:"3,omitempty"`
	PassportFirmwareVersion *string           `cbor:"4,omitempty"`
}

type scvSolutionCBOR struct {
	Word1 string `cbor:"1"`
	Word2 string `cbor:"2"`
	Word3 string `cbor:"3"`
	Word4 string `cbor:"4"`
}

// FromUR decodes cborBytes as the named type. An unrecognized type
// reports Unsupported; malformed CBOR for a recognized type reports
// MalformedCbor.
func FromUR(urType string, cborBytes []byte) (Value, error) {
	switch urType {
	case "bytes":
		var b []byte
		if err := cbor.Unmarshal(cborBytes, &b); err != nil {
			return nil, urerr.Wrap(urerr.MalformedCbor, "bytes is not a cbor byte string", err)
		}
		return Bytes(b), nil

	case "psbt":
		var b []byte
		if err := cbor.Unmarshal(cborBytes, &b); err != nil {
			return nil, urerr.Wrap(urerr.MalformedCbor, "psbt is not a cbor byte string", err)
		}
		return PSBT(b), nil

	case "hdkey":
		return decodeHDKey(cborBytes)

	case "x-passport-request":
		return decodePassportRequest(cborBytes)

	case "x-passport-response":
		return decodePassportResponse(cborBytes)

	default:
		return nil, urerr.New(urerr.Unsupported, "unrecognized ur type: "+urType)
	}
}

// Encode serializes v to its CBOR wire shape.
func Encode(v Value) ([]byte, error) {
	switch t := v.(type) {
	case Bytes:
		return cbor.Marshal([]byte(t))
	case PSBT:
		return cbor.Marshal([]byte(t))
	case *HDKey:
		return encodeHDKey(t)
	case *PassportRequest:
		return encodePassportRequest(t)
	case *PassportResponse:
		return encodePassportResponse(t)
	default:
		return nil, urerr.New(urerr.Unsupported, "value does not belong to the registry")
	}
}

func decodeHDKey(data []byte) (*HDKey, error) {
	var w hdkeyCBOR
	if err := cbor.Unmarshal(data, &w); err != nil {
		return nil, urerr.Wrap(urerr.MalformedCbor, "malformed hdkey", err)
	}
	k := &HDKey{
		IsPrivate:         w.IsPrivate,
		KeyData:           w.KeyData,
		ChainCode:         w.ChainCode,
		UseInfo:           w.UseInfo,
		ParentFingerprint: w.ParentFingerprint,
	}
	if w.Origin != nil {
		k.Origin = &KeyPath{
			SourceFingerprint: w.Origin.SourceFingerprint,
			Depth:             w.Origin.Depth,
		}
		for _, c := range w.Origin.Components {
			k.Origin.Components = append(k.Origin.Components, PathComponent{Index: c.Index, Hardened: c.Hardened})
		}
	}
	return k, nil
}

func encodeHDKey(k *HDKey) ([]byte, error) {
	w := hdkeyCBOR{
		IsPrivate:         k.IsPrivate,
		KeyData:           k.KeyData,
		ChainCode:         k.ChainCode,
		UseInfo:           k.UseInfo,
		ParentFingerprint: k.ParentFingerprint,
	}
	if k.Origin != nil {
		w.Origin = &keyPathCBOR{
			SourceFingerprint: k.Origin.SourceFingerprint,
			Depth:             k.Origin.Depth,
		}
		for _, c := range k.Origin.Components {
			w.Origin.Components = append(w.Origin.Components, pathComponentCBOR{Index: c.Index, Hardened: c.Hardened})
		}
	}
	return cbor.Marshal(w)
}

func decodePassportRequest(data []byte) (*PassportRequest, error) {
	var w passportRequestCBOR
	if err := cbor.Unmarshal(data, &w); err != nil {
		return nil, urerr.Wrap(urerr.MalformedCbor, "malformed x-passport-request", err)
	}
	if len(w.TransactionID) != 16 {
		return nil, urerr.New(urerr.MalformedCbor, "transaction_id must be a 16-byte uuid")
	}
	r := &PassportRequest{
		TransactionID:           w.TransactionID,
		PassportModel:           w.PassportModel,
		PassportFirmwareVersion: w.PassportFirmwareVersion,
	}
	if w.SCVChallenge != nil {
		r.SCVChallenge = &SCVChallenge{ID: w.SCVChallenge.ID, Signature: w.SCVChallenge.Signature}
	}
	return r, nil
}

func encodePassportRequest(r *PassportRequest) ([]byte, error) {
	w := passportRequestCBOR{
		TransactionID:           r.TransactionID,
		PassportModel:           r.PassportModel,
		PassportFirmwareVersion: r.PassportFirmwareVersion,
	}
	if r.SCVChallenge != nil {
		w.SCVChallenge = &scvChallengeCBOR{ID: r.SCVChallenge.ID, Signature: r.SCVChallenge.Signature}
	}
	return cbor.Marshal(w)
}

func decodePassportResponse(data []byte) (*PassportResponse, error) {
	var w passportResponseCBOR
	if err := cbor.Unmarshal(data, &w); err != nil {
		return nil, urerr.Wrap(urerr.MalformedCbor, "malformed x-passport-response", err)
	}
	if len(w.TransactionID) != 16 {
		return nil, urerr.New(urerr.MalformedCbor, "transaction_id must be a 16-byte uuid")
	}
	resp := &PassportResponse{
		TransactionID:           w.TransactionID,
		PassportFirmwareVersion: w.PassportFirmwareVersion,
	}
	if w.SCVSolution != nil {
		resp.SCVSolution = &SCVSolution{
			Word1: w.SCVSolution.Word1,
			Word2: w.SCVSolution.Word2,
			Word3: w.SCVSolution.Word3,
			Word4: w.SCVSolution.Word4,
		}
	}
	if w.PassportModel != nil {
		model, err := parsePassportModel(*w.PassportModel)
		if err != nil {
			return nil, err
		}
		resp.PassportModel = &model
	}
	return resp, nil
}

func encodePassportResponse(r *PassportResponse) ([]byte, error) {
	w := passportResponseCBOR{
		TransactionID:           r.TransactionID,
		PassportFirmwareVersion: r.PassportFirmwareVersion,
	}
	if r.SCVSolution != nil {
		w.SCVSolution = &scvSolutionCBOR{
			Word1: r.SCVSolution.Word1,
			Word2: r.SCVSolution.Word2,
			Word3: r.SCVSolution.Word3,
			Word4: r.SCVSolution.Word4,
		}
	}
	if r.PassportModel != nil {
		s := r.PassportModel.String()
		w.PassportModel = &s
	}
	return cbor.Marshal(w)
}

func parsePassportModel(s string) (PassportModel, error) {
	switch s {
	case "founders":
		return PassportModelFounders, nil
	case "batch2":
		return PassportModelBatch2, nil
	default:
		return PassportModelUnspecified, urerr.New(urerr.MalformedCbor, "unrecognized passport_model: "+s)
	}
}
