// Package bridge implements the host-application bridge (spec.md §3,
// "Out of scope ... the host-application bridge that shuttles buffers
// across the FFI boundary"): an HTTP control API, generalized from the
// teacher's daemon/control server, that lets a workstation application
// drive encoder/decoder sessions against a connected device without
// linking the core codec directly.
package bridge

import (
	"strings"
	"sync"

	"github.com/satori/go.uuid"

	"github.com/foundationdevices/passport-ur/common/version"
)

// DeviceIdentity is what the bridge knows about a paired device, the
// bridge-level analogue of the teacher's PairingSecret - minus the
// symmetric-key exchange, which this codec has no use for since transport
// is an animated QR code, not a network link.
type DeviceIdentity struct {
	DeviceName      string `json:"device_name"`
	FirmwareVersion string `json:"firmware_version"`
	Model           string `json:"model"`
	sync.Mutex
}

// DeriveID returns a stable identifier for this device identity, derived
// the same way the teacher derived a pairing UUID from a public key: by
// hashing an identifying value. Here that value is the device name plus
// firmware version, since there is no workstation public key in this
// protocol.
func (d *DeviceIdentity) DeriveID() uuid.UUID {
	d.Lock()
	defer d.Unlock()
	seed := strings.Join([]string{d.DeviceName, d.FirmwareVersion}, "\x00")
	return uuid.NewV5(uuid.NamespaceOID, seed)
}

func (d *DeviceIdentity) SetFirmwareVersion(v string) error {
	if _, err := version.ParseFirmwareVersion(v); err != nil {
		return err
	}
	d.Lock()
	defer d.Unlock()
	d.FirmwareVersion = v
	return nil
}

func (d *DeviceIdentity) GetFirmwareVersion() string {
	d.Lock()
	defer d.Unlock()
	return d.FirmwareVersion
}

// pairingOptions mirrors the shape of a pairing request the control API
// accepts to register a newly connected device.
type pairingOptions struct {
	DeviceName      string `json:"device_name"`
	FirmwareVersion string `json:"firmware_version"`
	Model           string `json:"model"`
}

func newDeviceIdentity(opts pairingOptions) *DeviceIdentity {
	name := opts.DeviceName
	if name == "" {
		name = hostMachineName()
	}
	return &DeviceIdentity{
		DeviceName:      name,
		FirmwareVersion: opts.FirmwareVersion,
		Model:           opts.Model,
	}
}
