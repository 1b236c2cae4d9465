// Package prefs provides user preference management for the vector-cfg CLI.
//
// This package manages a YAML file of tool-side settings: the default robot
// serial, an optional override for the robot configuration store location,
// and the preferred output format. The file lives in the platform config
// directory.
//
// # Preferences File Location
//
// The preferences file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/vector-cfg/config.yaml or $HOME/.config/vector-cfg/config.yaml
//   - macOS: $HOME/.config/vector-cfg/config.yaml
//   - Windows: %LOCALAPPDATA%\vector-cfg\config.yaml
//
// # Security
//
// IMPORTANT: This package NEVER stores robot credentials. GUIDs and TLS
// certificates belong to the robot configuration store
// (~/.anki_vector/sdk_config.ini and its certificate files).
//
// # Thread Safety
//
// The global instance uses sync.Once for safe initialization across
// goroutines. File operations are protected by a mutex to ensure atomic
// writes.
package prefs
