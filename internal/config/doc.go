// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package config provides loading and typed accessors for snapdiff's user
// configuration. The configuration is a YAML document located in the user's
// configuration directory, typically:
//   - Linux/macOS: $XDG_CONFIG_HOME/snapdiff.yaml or $HOME/.config/snapdiff.yaml
//   - Windows: %APPDATA%/snapdiff.yaml
//
// SNAPDIFF_CFG_FILE overrides the location. Keys are addressed with dotted
// paths (e.g. "journal.s3.bucket").
package config
