// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"fmt"
	"strings"
)

// Mode selects the dispatch strategy.
type Mode int32

const (
	None Mode = iota
	Sync
	Async
)

// ValidModes lists the textual modes accepted by ParseMode.
var ValidModes = []string{"none", "sync", "async"}

func (m Mode) String() string {
	if m >= None && m <= Async {
		return ValidModes[m]
	}
	return fmt.Sprintf("mode(%d)", int32(m))
}

// ParseMode parses "none", "sync" or "async", case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return None, nil
	case "sync":
		return Sync, nil
	case "async":
		return Async, nil
	}
	return None, fmt.Errorf("invalid dispatch mode %q: must be one of %v", s, ValidModes)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if m < None || m > Async {
		return nil, fmt.Errorf("invalid dispatch mode %d", int32(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so modes decode from YAML
// and JSON documents.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
