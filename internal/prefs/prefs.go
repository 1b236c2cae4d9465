package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	appName    = "vector-cfg"
	configFile = "config.yaml"
)

var (
	// Global preferences instance (loaded lazily)
	globalPrefs     *Preferences
	globalPrefsOnce sync.Once
	globalPrefsErr  error

	// Mutex for thread-safe file operations
	fileMutex sync.Mutex
)

// Preferences represents tool-side settings for the vector-cfg CLI.
// Robot credentials never live here; they belong to the robot
// configuration store. This file only holds conveniences for the tool
// itself.
type Preferences struct {
	Version int `yaml:"version"`

	// DefaultSerial is the robot used when a command omits --serial.
	DefaultSerial string `yaml:"default_serial,omitempty"`

	// StorePath overrides the robot configuration store location.
	// Empty means the conventional ~/.anki_vector/sdk_config.ini.
	StorePath string `yaml:"store_path,omitempty"`

	// OutputFormat selects list/show rendering ("table" or "json").
	OutputFormat string `yaml:"output_format,omitempty"`
}

// NewPreferences creates a Preferences with default values.
func NewPreferences() *Preferences {
	return &Preferences{
		Version:      1,
		OutputFormat: "table",
	}
}

// GetConfigDir returns the OS-appropriate configuration directory for the tool.
// This follows platform conventions:
//   - Linux: $XDG_CONFIG_HOME/vector-cfg or $HOME/.config/vector-cfg
//   - macOS: $HOME/.config/vector-cfg (following XDG convention on macOS)
//   - Windows: %LOCALAPPDATA%\vector-cfg
func GetConfigDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "windows":
		// Windows: Use LOCALAPPDATA
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			// Fallback to USERPROFILE\AppData\Local if LOCALAPPDATA not set
			userProfile := os.Getenv("USERPROFILE")
			if userProfile == "" {
				return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
			}
			baseDir = filepath.Join(userProfile, "AppData", "Local", appName)
		} else {
			baseDir = filepath.Join(localAppData, appName)
		}

	case "darwin":
		// macOS: Use $HOME/.config/vector-cfg (following modern XDG convention)
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		baseDir = filepath.Join(homeDir, ".config", appName)

	default:
		// Linux and other Unix-like systems: Use XDG_CONFIG_HOME or $HOME/.config
		xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfigHome != "" {
			baseDir = filepath.Join(xdgConfigHome, appName)
		} else {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("cannot determine home directory: %w", err)
			}
			baseDir = filepath.Join(homeDir, ".config", appName)
		}
	}

	return baseDir, nil
}

// GetConfigPath returns the full path to the preferences file.
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFile), nil
}

// ensureConfigDir ensures the configuration directory exists.
// Creates the directory with appropriate permissions if it doesn't exist.
func ensureConfigDir() error {
	configDir, err := GetConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}

	// Create directory with user-only permissions (0700)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return nil
}

// Load loads the preferences from disk.
// If the file doesn't exist, returns new default preferences.
// Thread-safe - multiple calls will return the same instance.
func Load() (*Preferences, error) {
	globalPrefsOnce.Do(func() {
		globalPrefs, globalPrefsErr = loadFromDisk()
	})
	return globalPrefs, globalPrefsErr
}

// loadFromDisk performs the actual file loading.
func loadFromDisk() (*Preferences, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}

	// Check if preferences file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// Preferences don't exist - return new defaults
		return NewPreferences(), nil
	}

	// Read preferences file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences file: %w", err)
	}

	return parse(data)
}

// parse decodes and validates the on-disk preferences document.
func parse(data []byte) (*Preferences, error) {
	var p Preferences
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse preferences file: %w", err)
	}

	// Validate version
	if p.Version != 1 {
		return nil, fmt.Errorf("unsupported preferences version: %d (expected 1)", p.Version)
	}

	if p.OutputFormat == "" {
		p.OutputFormat = "table"
	}

	return &p, nil
}

// Save saves the preferences to disk.
// Performs an atomic write to prevent corruption on crash.
func (p *Preferences) Save() error {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	// Ensure config directory exists
	if err := ensureConfigDir(); err != nil {
		return fmt.Errorf("failed to ensure config directory exists: %w", err)
	}

	configPath, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	// Add header comment
	header := []byte(`# vector-cfg preferences
# Tool-side settings only. Robot credentials (GUIDs, certificates) are
# stored in the robot configuration store, not here.
#
# Location: ` + configPath + `

`)
	data = append(header, data...)

	// Write to temporary file first (atomic write)
	tmpPath := configPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary preferences file: %w", err)
	}

	// Atomic rename (this is atomic on all platforms)
	if err := os.Rename(tmpPath, configPath); err != nil {
		// Clean up temp file on error
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save preferences file: %w", err)
	}

	return nil
}

// Reload reloads the preferences from disk, discarding any in-memory
// changes. This is useful for reading changes made by another process.
func Reload() (*Preferences, error) {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	// Reset the global instance
	globalPrefsOnce = sync.Once{}
	return Load()
}
