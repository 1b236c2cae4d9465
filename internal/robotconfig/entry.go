package robotconfig

import (
	"net/netip"
	"strings"

	"github.com/mkrall/vectorcfg/internal/observable"
)

// Property names published through the change notification mechanism.
// Handlers registered with Entry.OnChange receive these.
const (
	PropIPAddress     = "IPAddress"
	PropRemoteHost    = "RemoteHost"
	PropHasRemoteHost = "HasRemoteHost"
)

// Entry is one robot's persisted connection and credential profile.
//
// The serial number is fixed at construction and keys the entry's section
// in the backing file. IPAddress and RemoteHost are observable: connection
// establishment code subscribes via OnChange to pick up address or routing
// changes without re-reading the file. The certificate field holds the PEM
// content in memory; on disk it lives in a separate file and the backing
// file stores only the path.
type Entry struct {
	observable.Entity

	serialNumber string
	robotName    string
	guid         string
	certificate  string
	ipAddress    netip.Addr
	remoteHost   string
}

// NewEntry creates an Entry for the given robot serial number.
// The serial number is immutable afterwards; required fields are checked
// by Validate when the entry is persisted, not here, so partially built
// entries can exist in memory.
func NewEntry(serialNumber string) *Entry {
	return &Entry{serialNumber: serialNumber}
}

// SerialNumber returns the robot's stable identifier.
func (e *Entry) SerialNumber() string {
	return e.serialNumber
}

// RobotName returns the human-readable label, form "Vector-XXXX".
func (e *Entry) RobotName() string {
	return e.robotName
}

// SetRobotName sets the human-readable label.
func (e *Entry) SetRobotName(name string) {
	e.robotName = name
}

// GUID returns the authentication token assigned at robot registration.
func (e *Entry) GUID() string {
	return e.guid
}

// SetGUID sets the authentication token.
func (e *Entry) SetGUID(guid string) {
	e.guid = guid
}

// Certificate returns the PEM-encoded TLS certificate content.
func (e *Entry) Certificate() string {
	return e.certificate
}

// SetCertificate sets the PEM-encoded TLS certificate content.
// This only changes the in-memory copy; whether it ever reaches disk is
// governed by the store's certificate materialization policy.
func (e *Entry) SetCertificate(pem string) {
	e.certificate = pem
}

// IPAddress returns the last known network address. The zero Addr means
// no address is known.
func (e *Entry) IPAddress() netip.Addr {
	return e.ipAddress
}

// SetIPAddress updates the last known network address, notifying
// subscribers on change. Returns true if the value changed.
func (e *Entry) SetIPAddress(addr netip.Addr) bool {
	return observable.SetField(&e.Entity, &e.ipAddress, addr, PropIPAddress)
}

// ClearIPAddress forgets the last known network address.
func (e *Entry) ClearIPAddress() bool {
	return e.SetIPAddress(netip.Addr{})
}

// RemoteHost returns the explicit "host[:port]" override used instead of
// the direct LAN address, or "" when none is set.
func (e *Entry) RemoteHost() string {
	return e.remoteHost
}

// SetRemoteHost updates the remote host override, notifying subscribers on
// change. HasRemoteHost re-fires its own notification whenever the value
// changes, so observers of the derived flag alone still see the update.
// Returns true if the value changed.
func (e *Entry) SetRemoteHost(host string) bool {
	changed := observable.SetField(&e.Entity, &e.remoteHost, host, PropRemoteHost)
	if changed {
		e.RaiseChanged(PropHasRemoteHost)
	}
	return changed
}

// HasRemoteHost reports whether a remote host override is set, ignoring
// surrounding whitespace.
func (e *Entry) HasRemoteHost() bool {
	return strings.TrimSpace(e.remoteHost) != ""
}

// Validate checks the fields required for persistence: serial number,
// robot name, GUID, and certificate content. It returns a validation
// ConfigError naming every missing field, or nil when the entry can be
// saved. The store calls this before every write; it is never invoked on
// mutation.
func (e *Entry) Validate() error {
	var missing []string
	if e.serialNumber == "" {
		missing = append(missing, "serialNumber")
	}
	if e.robotName == "" {
		missing = append(missing, "robotName")
	}
	if e.guid == "" {
		missing = append(missing, "guid")
	}
	if e.certificate == "" {
		missing = append(missing, "certificate")
	}
	if len(missing) > 0 {
		return NewValidationError(e.serialNumber, missing)
	}
	return nil
}
