// SPDX-License-Identifier: MPL-2.0

// Package config handles hvpack configuration using Viper with CUE as the file format.
//
// Configuration is looked up in order: an explicit --config path, the user config
// directory (hvpack/config.cue under $XDG_CONFIG_HOME, ~/Library/Application Support
// or %APPDATA%), then hvpack.config.cue in the project root. When none exists the
// built-in defaults describe the standard HoloViews checkout layout. Every value
// can be overridden through HVPACK_* environment variables (HVPACK_PROJECT_DOC_DIR,
// HVPACK_VERSION_PROBE, ...).
//
// Files are validated against the embedded CUE schema (config_schema.cue) before
// they are merged into Viper.
package config
