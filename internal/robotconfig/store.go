package robotconfig

import (
	"bytes"
	"errors"
	"iter"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"gopkg.in/ini.v1"

	"github.com/mkrall/vectorcfg/internal/logging"
)

const (
	// defaultDirName is the per-user configuration directory created under
	// the user profile directory.
	defaultDirName = ".anki_vector"
	// defaultFileName is the backing file name inside defaultDirName.
	defaultFileName = "sdk_config.ini"
)

func init() {
	// Write sections as "key=value" without alignment padding, matching
	// the format the SDK tools exchange.
	ini.PrettyFormat = false
}

// Store provides collection-level read/write operations over one backing
// configuration file. It holds no long-lived state: each operation opens,
// reads or writes, and closes the file within the call.
//
// The store performs no file locking. Two processes saving the same path
// concurrently race at OS file-replace granularity and the loser's changes
// are lost; the file is normally touched by a single interactive tool at a
// time, so this is accepted. Callers needing multi-process safety must add
// advisory locking around the read-modify-write sequence themselves.
type Store struct {
	// Fs is the filesystem used for all reads and writes.
	// Defaults to the OS filesystem; tests point it at a scratch root.
	Fs afero.Fs

	// UserHomeDir resolves the user profile directory for DefaultPath.
	// Defaults to os.UserHomeDir.
	UserHomeDir func() (string, error)

	// ForceCertificate overwrites an existing certificate file with the
	// entry's in-memory content on save. Off by default: certificates
	// rotated outside this process must not be clobbered by a stale
	// in-memory copy.
	ForceCertificate bool

	// Logger receives debug-level operation traces.
	// Defaults to the package logger (silent unless enabled).
	Logger *zap.Logger
}

// NewStore creates a Store with default dependencies.
func NewStore() *Store {
	return &Store{
		Fs:          afero.NewOsFs(),
		UserHomeDir: os.UserHomeDir,
		Logger:      logging.GetLogger(),
	}
}

// DefaultPath returns the conventional backing file location,
// <user profile directory>/.anki_vector/sdk_config.ini.
func (s *Store) DefaultPath() (string, error) {
	home, err := s.UserHomeDir()
	if err != nil {
		return "", NewIOError("cannot determine user profile directory", "", err)
	}
	return filepath.Join(home, defaultDirName, defaultFileName), nil
}

// LoadAll returns a lazy, restartable sequence of the entries in the
// backing file, in section order. Each range over the sequence re-reads
// the file. A missing file yields an empty sequence — a fresh installation
// simply has no configuration yet. Any failure, including a single
// undecodable section, is yielded once as the error value and terminates
// the sequence: a half-loaded registry with some robots silently missing
// is worse than an explicit failure.
func (s *Store) LoadAll(path string) iter.Seq2[*Entry, error] {
	return func(yield func(*Entry, error) bool) {
		file, err := s.loadFile(path)
		if err != nil {
			yield(nil, err)
			return
		}
		for _, sec := range file.Sections() {
			if sec.Name() == ini.DefaultSection {
				continue
			}
			entry, err := decodeSection(s.Fs, sec)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(entry, nil) {
				return
			}
		}
	}
}

// Load reads every entry from the backing file eagerly.
func (s *Store) Load(path string) ([]*Entry, error) {
	var entries []*Entry
	for entry, err := range s.LoadAll(path) {
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	s.logger().Debug("configuration loaded",
		zap.String("path", path),
		zap.Int("entries", len(entries)),
	)
	return entries, nil
}

// LoadDefault returns the first entry in the backing file, or nil if the
// file is missing or empty.
func (s *Store) LoadDefault(path string) (*Entry, error) {
	for entry, err := range s.LoadAll(path) {
		return entry, err
	}
	return nil, nil
}

// AddOrUpdate merges one entry into the backing file: the entry's section
// is updated in place if the serial number already exists, appended
// otherwise. All other sections are left untouched — this operation never
// deletes anything. Use Save to prune.
func (s *Store) AddOrUpdate(path string, entry *Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	if err := s.ensureDir(path); err != nil {
		return err
	}
	file, err := s.loadFile(path)
	if err != nil {
		return err
	}
	sec := file.Section(entry.SerialNumber())
	if err := encodeSection(s.Fs, entry, filepath.Dir(path), sec, s.ForceCertificate); err != nil {
		return err
	}
	if err := s.writeFile(path, file); err != nil {
		return err
	}
	s.logger().Debug("entry saved",
		zap.String("path", path),
		zap.String("serial", entry.SerialNumber()),
	)
	return nil
}

// Save writes the given entries and removes every section whose serial
// number is not among them (replace-all). Saving an empty slice empties
// the store. This is the only deletion path, and it operates purely on
// section presence, never on field-level diffs.
//
// Every entry is validated before any byte reaches disk, so one invalid
// entry in a batch cannot corrupt the file. The write itself is a single
// full-file replace via a temporary file; it is not atomic with respect to
// the certificate files written alongside it.
func (s *Store) Save(path string, entries []*Entry) error {
	if err := validateAll(entries); err != nil {
		return err
	}
	if err := s.ensureDir(path); err != nil {
		return err
	}
	file, err := s.loadFile(path)
	if err != nil {
		return err
	}

	baseDir := filepath.Dir(path)
	keep := make(map[string]bool, len(entries))
	for _, entry := range entries {
		sec := file.Section(entry.SerialNumber())
		if err := encodeSection(s.Fs, entry, baseDir, sec, s.ForceCertificate); err != nil {
			return err
		}
		keep[entry.SerialNumber()] = true
	}

	for _, name := range file.SectionStrings() {
		if name == ini.DefaultSection || keep[name] {
			continue
		}
		file.DeleteSection(name)
		s.logger().Debug("section removed", zap.String("serial", name))
	}

	if err := s.writeFile(path, file); err != nil {
		return err
	}
	s.logger().Debug("configuration saved",
		zap.String("path", path),
		zap.Int("entries", len(entries)),
	)
	return nil
}

// validateAll checks every entry and rejects duplicate serial numbers
// within the batch. All failures are reported together.
func validateAll(entries []*Entry) error {
	var errs []error
	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		if err := entry.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if seen[entry.SerialNumber()] {
			errs = append(errs, &ConfigError{
				Type:         ErrTypeValidation,
				Message:      "duplicate serial number in batch",
				SerialNumber: entry.SerialNumber(),
			})
			continue
		}
		seen[entry.SerialNumber()] = true
	}
	return errors.Join(errs...)
}

// ensureDir creates the backing file's directory if missing.
func (s *Store) ensureDir(path string) error {
	dir := filepath.Dir(path)
	if err := s.Fs.MkdirAll(dir, 0o700); err != nil {
		return NewIOError("cannot create configuration directory", dir, err)
	}
	return nil
}

// loadFile reads and parses the backing file. A missing file is an empty
// store, not an error.
func (s *Store) loadFile(path string) (*ini.File, error) {
	exists, err := afero.Exists(s.Fs, path)
	if err != nil {
		return nil, NewIOError("cannot stat configuration file", path, err)
	}
	if !exists {
		return ini.Empty(), nil
	}
	data, err := afero.ReadFile(s.Fs, path)
	if err != nil {
		return nil, NewIOError("cannot read configuration file", path, err)
	}
	file, err := ini.Load(data)
	if err != nil {
		loadErr := NewLoadError("cannot parse configuration file", err)
		loadErr.Path = path
		return nil, loadErr
	}
	return file, nil
}

// writeFile serializes the file and replaces the target via a temporary
// file and rename, so a crash mid-write cannot leave a torn file behind.
func (s *Store) writeFile(path string, file *ini.File) error {
	var buf bytes.Buffer
	if _, err := file.WriteTo(&buf); err != nil {
		return NewIOError("cannot serialize configuration", path, err)
	}
	tmpPath := path + ".tmp"
	if err := afero.WriteFile(s.Fs, tmpPath, buf.Bytes(), 0o600); err != nil {
		return NewIOError("cannot write temporary configuration file", tmpPath, err)
	}
	if err := s.Fs.Rename(tmpPath, path); err != nil {
		_ = s.Fs.Remove(tmpPath)
		return NewIOError("cannot replace configuration file", path, err)
	}
	return nil
}

func (s *Store) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return logging.GetLogger()
}
