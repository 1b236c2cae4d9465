package robotconfig

import (
	"fmt"
	"net/netip"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/ini.v1"
)

// Recognized section keys. Anything else found in a section is preserved
// verbatim across a read-modify-write cycle, for compatibility with
// configuration files shared with other tools.
const (
	keyGUID   = "guid"
	keyName   = "name"
	keyIP     = "ip"
	keyCert   = "cert"
	keyRemote = "remote"
)

// certFileName derives the deterministic certificate file name for a robot.
func certFileName(robotName, serialNumber string) string {
	return fmt.Sprintf("%s-%s.cert", robotName, serialNumber)
}

// decodeSection materializes one Entry from its section in the backing
// file. The section name is the serial number. The cert key holds a file
// path; the decoded Entry carries that file's contents instead. A missing
// or unreadable certificate fails the whole section rather than producing
// an entry with no credential.
func decodeSection(fs afero.Fs, sec *ini.Section) (*Entry, error) {
	entry := NewEntry(sec.Name())
	entry.robotName = sec.Key(keyName).String()
	entry.guid = sec.Key(keyGUID).String()

	// Absence of the ip key is not a failure; a present but unparsable
	// value is.
	if sec.HasKey(keyIP) {
		raw := sec.Key(keyIP).String()
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			loadErr := NewLoadError(fmt.Sprintf("invalid ip address %q", raw), err)
			loadErr.SerialNumber = sec.Name()
			return nil, loadErr
		}
		entry.ipAddress = addr
	}

	if !sec.HasKey(keyCert) || sec.Key(keyCert).String() == "" {
		loadErr := NewLoadError("section has no certificate path", nil)
		loadErr.SerialNumber = sec.Name()
		return nil, loadErr
	}
	certPath := sec.Key(keyCert).String()
	pem, err := afero.ReadFile(fs, certPath)
	if err != nil {
		loadErr := NewLoadError("cannot read certificate file", err)
		loadErr.SerialNumber = sec.Name()
		loadErr.Path = certPath
		return nil, loadErr
	}
	entry.certificate = string(pem)

	if sec.HasKey(keyRemote) {
		entry.remoteHost = sec.Key(keyRemote).String()
	}

	return entry, nil
}

// encodeSection writes entry into its section in place. guid and name are
// written unconditionally; ip and remote are written when set and the key
// is deleted when unset, so clearing a value removes the line rather than
// writing an empty string.
//
// The certificate path is derived once, the first time the section is
// written, as {baseDir}/{robotName}-{serialNumber}.cert; a section that
// already names a path keeps it, so re-saving a profile never moves its
// certificate file.
//
// Certificate materialization is write-once: the in-memory PEM content is
// written only when no file exists at the resolved path. An existing file
// is never overwritten unless forceCert is set, so a certificate rotated
// outside this process survives a save with a stale in-memory copy.
func encodeSection(fs afero.Fs, entry *Entry, baseDir string, sec *ini.Section, forceCert bool) error {
	sec.Key(keyGUID).SetValue(entry.guid)
	sec.Key(keyName).SetValue(entry.robotName)

	certPath := ""
	if sec.HasKey(keyCert) {
		certPath = sec.Key(keyCert).String()
	}
	if certPath == "" {
		certPath = filepath.Join(baseDir, certFileName(entry.robotName, entry.serialNumber))
		sec.Key(keyCert).SetValue(certPath)
	}

	if entry.ipAddress.IsValid() {
		sec.Key(keyIP).SetValue(entry.ipAddress.String())
	} else {
		sec.DeleteKey(keyIP)
	}

	if entry.HasRemoteHost() {
		sec.Key(keyRemote).SetValue(strings.TrimSpace(entry.remoteHost))
	} else {
		sec.DeleteKey(keyRemote)
	}

	exists, err := afero.Exists(fs, certPath)
	if err != nil {
		return NewIOError("cannot stat certificate file", certPath, err)
	}
	if !exists || forceCert {
		if err := afero.WriteFile(fs, certPath, []byte(entry.certificate), 0o600); err != nil {
			return NewIOError("cannot write certificate file", certPath, err)
		}
	}

	return nil
}
