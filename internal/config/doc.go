// SPDX-License-Identifier: MPL-2.0

// Package config loads the rootindex configuration using Viper with CUE as the
// file format.
//
// The file is rootindex.cue in the platform configuration directory
// ($XDG_CONFIG_HOME/rootindex on Linux, ~/Library/Application Support/rootindex
// on macOS, %APPDATA%\rootindex on Windows) or in the current directory. It is
// validated against the embedded schema (config_schema.cue). Environment
// variables prefixed with ROOTINDEX_ override file values, and .env files are
// loaded into the environment first.
package config
