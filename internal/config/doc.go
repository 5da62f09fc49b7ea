// SPDX-License-Identifier: MPL-2.0

// Package config loads magimod settings using Viper with CUE as the file format.
//
// The file is looked up at $XDG_CONFIG_HOME/magimod/config.cue on Linux,
// ~/Library/Application Support/magimod/config.cue on macOS and
// %APPDATA%\magimod\config.cue on Windows, then ./config.cue. It is validated
// against the embedded #Config schema (config_schema.cue) before its values
// are merged over the defaults.
package config
