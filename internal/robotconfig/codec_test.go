package robotconfig

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"gopkg.in/ini.v1"
)

// loadSection parses content and returns the named section.
func loadSection(t *testing.T, content, name string) *ini.Section {
	t.Helper()
	file, err := ini.Load([]byte(content))
	if err != nil {
		t.Fatalf("ini.Load() error = %v", err)
	}
	sec, err := file.GetSection(name)
	if err != nil {
		t.Fatalf("GetSection(%q) error = %v", name, err)
	}
	return sec
}

func TestDecodeSection(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/certs/Vector-E5S6-00e20142.cert", []byte("PEM..."), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	content := `[00e20142]
guid=g1
name=Vector-E5S6
cert=/certs/Vector-E5S6-00e20142.cert
ip=192.168.1.57
remote=relay.example.com:443
`
	sec := loadSection(t, content, "00e20142")

	entry, err := decodeSection(fs, sec)
	if err != nil {
		t.Fatalf("decodeSection() error = %v", err)
	}

	if entry.SerialNumber() != "00e20142" {
		t.Errorf("SerialNumber() = %q, want 00e20142", entry.SerialNumber())
	}
	if entry.RobotName() != "Vector-E5S6" {
		t.Errorf("RobotName() = %q, want Vector-E5S6", entry.RobotName())
	}
	if entry.GUID() != "g1" {
		t.Errorf("GUID() = %q, want g1", entry.GUID())
	}
	// The cert key round-trips by content, not by path.
	if entry.Certificate() != "PEM..." {
		t.Errorf("Certificate() = %q, want PEM...", entry.Certificate())
	}
	if got := entry.IPAddress().String(); got != "192.168.1.57" {
		t.Errorf("IPAddress() = %q, want 192.168.1.57", got)
	}
	if entry.RemoteHost() != "relay.example.com:443" {
		t.Errorf("RemoteHost() = %q, want relay.example.com:443", entry.RemoteHost())
	}
}

func TestDecodeSectionOptionalKeysAbsent(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/certs/a.cert", []byte("PEM..."), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	content := "[00e20142]\nguid=g1\nname=Vector-E5S6\ncert=/certs/a.cert\n"
	sec := loadSection(t, content, "00e20142")

	entry, err := decodeSection(fs, sec)
	if err != nil {
		t.Fatalf("decodeSection() error = %v", err)
	}
	// Absence of ip/remote is not a failure; the fields stay unset.
	if entry.IPAddress().IsValid() {
		t.Error("IPAddress() valid for section without ip key")
	}
	if entry.HasRemoteHost() {
		t.Error("HasRemoteHost() = true for section without remote key")
	}
}

func TestDecodeSectionBadIP(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/certs/a.cert", []byte("PEM..."), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	content := "[00e20142]\nguid=g1\nname=Vector-E5S6\ncert=/certs/a.cert\nip=not-an-address\n"
	sec := loadSection(t, content, "00e20142")

	_, err := decodeSection(fs, sec)
	if !IsLoadError(err) {
		t.Fatalf("decodeSection() error = %v, want load error", err)
	}
}

func TestDecodeSectionMissingCertFile(t *testing.T) {
	content := "[00e20142]\nguid=g1\nname=Vector-E5S6\ncert=/nope/missing.cert\n"
	sec := loadSection(t, content, "00e20142")

	_, err := decodeSection(afero.NewMemMapFs(), sec)
	if !IsLoadError(err) {
		t.Fatalf("decodeSection() error = %v, want load error", err)
	}
	cfgErr := err.(*ConfigError)
	if cfgErr.SerialNumber != "00e20142" {
		t.Errorf("SerialNumber = %q, want 00e20142", cfgErr.SerialNumber)
	}
	if cfgErr.Unwrap() == nil {
		t.Error("load error does not wrap the underlying I/O failure")
	}
}

func TestDecodeSectionNoCertKey(t *testing.T) {
	content := "[00e20142]\nguid=g1\nname=Vector-E5S6\n"
	sec := loadSection(t, content, "00e20142")

	_, err := decodeSection(afero.NewMemMapFs(), sec)
	if !IsLoadError(err) {
		t.Fatalf("decodeSection() error = %v, want load error", err)
	}
}

func TestEncodeSectionDerivesStableCertPath(t *testing.T) {
	fs := afero.NewMemMapFs()
	file := ini.Empty()
	entry := validEntry("00e20142")

	sec := file.Section("00e20142")
	if err := encodeSection(fs, entry, "/base", sec, false); err != nil {
		t.Fatalf("encodeSection() error = %v", err)
	}

	want := filepath.Join("/base", "Vector-E5S6-00e20142.cert")
	if got := sec.Key("cert").String(); got != want {
		t.Errorf("cert = %q, want %q", got, want)
	}

	// Re-encoding with a different base directory keeps the original
	// path; the certificate file never moves.
	if err := encodeSection(fs, entry, "/elsewhere", sec, false); err != nil {
		t.Fatalf("encodeSection() error = %v", err)
	}
	if got := sec.Key("cert").String(); got != want {
		t.Errorf("cert after re-encode = %q, want %q", got, want)
	}
}

func TestEncodeSectionRemovesUnsetKeys(t *testing.T) {
	fs := afero.NewMemMapFs()
	file := ini.Empty()

	entry := validEntry("00e20142")
	entry.SetRemoteHost("relay.example.com:443")
	sec := file.Section("00e20142")
	if err := encodeSection(fs, entry, "/base", sec, false); err != nil {
		t.Fatalf("encodeSection() error = %v", err)
	}
	if !sec.HasKey("remote") {
		t.Fatal("remote key absent after encoding a set remote host")
	}

	// Clearing the value removes the key rather than writing "".
	entry.SetRemoteHost("")
	if err := encodeSection(fs, entry, "/base", sec, false); err != nil {
		t.Fatalf("encodeSection() error = %v", err)
	}
	if sec.HasKey("remote") {
		t.Error("remote key still present after clearing the remote host")
	}
	if sec.HasKey("ip") {
		t.Error("ip key present for an entry with no address")
	}
}

func TestEncodeSectionWhitespaceRemoteIsUnset(t *testing.T) {
	fs := afero.NewMemMapFs()
	file := ini.Empty()

	entry := validEntry("00e20142")
	entry.SetRemoteHost("   ")
	sec := file.Section("00e20142")
	if err := encodeSection(fs, entry, "/base", sec, false); err != nil {
		t.Fatalf("encodeSection() error = %v", err)
	}
	if sec.HasKey("remote") {
		t.Error("remote key written for a whitespace-only value")
	}
}

func TestEncodeSectionMaterializesCertificateOnce(t *testing.T) {
	fs := afero.NewMemMapFs()
	file := ini.Empty()
	entry := validEntry("00e20142")
	sec := file.Section("00e20142")

	if err := encodeSection(fs, entry, "/base", sec, false); err != nil {
		t.Fatalf("encodeSection() error = %v", err)
	}
	certPath := sec.Key("cert").String()
	data, err := afero.ReadFile(fs, certPath)
	if err != nil {
		t.Fatalf("ReadFile(%q) error = %v", certPath, err)
	}
	if string(data) != "PEM..." {
		t.Errorf("certificate file = %q, want PEM...", data)
	}

	// A stale in-memory copy must not clobber the file on re-save: the
	// on-disk certificate may have been rotated by another tool.
	entry.SetCertificate("ROTATED-STALE")
	if err := encodeSection(fs, entry, "/base", sec, false); err != nil {
		t.Fatalf("encodeSection() error = %v", err)
	}
	data, _ = afero.ReadFile(fs, certPath)
	if string(data) != "PEM..." {
		t.Errorf("certificate file overwritten: got %q, want PEM...", data)
	}

	// forceCert is the explicit opt-in to overwrite.
	if err := encodeSection(fs, entry, "/base", sec, true); err != nil {
		t.Fatalf("encodeSection() error = %v", err)
	}
	data, _ = afero.ReadFile(fs, certPath)
	if string(data) != "ROTATED-STALE" {
		t.Errorf("certificate file = %q, want ROTATED-STALE after force", data)
	}
}

func TestEncodeSectionPreservesUnknownKeys(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := "[00e20142]\nguid=old\nname=Vector-E5S6\ncustom_flag=keepme\n"
	file, err := ini.Load([]byte(content))
	if err != nil {
		t.Fatalf("ini.Load() error = %v", err)
	}
	sec := file.Section("00e20142")

	entry := validEntry("00e20142")
	if err := encodeSection(fs, entry, "/base", sec, false); err != nil {
		t.Fatalf("encodeSection() error = %v", err)
	}

	var out strings.Builder
	if _, err := file.WriteTo(&out); err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}
	if !strings.Contains(out.String(), "custom_flag") {
		t.Errorf("unknown key dropped on re-encode:\n%s", out.String())
	}
	if got := sec.Key("guid").String(); got != "g1" {
		t.Errorf("guid = %q, want g1", got)
	}
}
