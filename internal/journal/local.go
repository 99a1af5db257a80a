// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package journal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tfctl/snapdiff/internal/log"
)

// Dir resolves the base journal directory.
// Precedence:
//  1. SNAPDIFF_JOURNAL_DIR, if set and non-empty
//  2. os.UserCacheDir()/snapdiff/journal
//
// Returns ("", false) if a base cannot be resolved (treat as disabled).
func Dir() (string, bool) {
	if d, ok := os.LookupEnv("SNAPDIFF_JOURNAL_DIR"); ok && d != "" {
		return d, true
	}
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "snapdiff", "journal"), true
	}
	return "", false
}

// Enabled returns true unless SNAPDIFF_JOURNAL explicitly disables it
// ("0"/"false").
func Enabled() bool {
	enabled, _ := os.LookupEnv("SNAPDIFF_JOURNAL")
	return enabled == "" || (enabled != "0" && enabled != "false")
}

// Local is a directory sink. Each entry is a file named by Entry.Name.
type Local struct {
	Base string
}

// NewLocal returns a Local sink rooted at base, or at Dir() when base is
// empty. The directory is created. A nil sink and no error means local
// journaling is disabled or no base could be resolved.
func NewLocal(base string) (*Local, error) {
	if !Enabled() {
		log.Debug("local journal disabled")
		return nil, nil
	}
	if base == "" {
		var ok bool
		if base, ok = Dir(); !ok {
			return nil, nil
		}
	}
	if err := os.MkdirAll(base, 0o755); err != nil { //nolint:mnd
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}
	log.Debugf("journal dir: path=%s", base)
	return &Local{Base: base}, nil
}

// Write stores e beneath Base.
func (l *Local) Write(ctx context.Context, e Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := e.Marshal()
	if err != nil {
		return err
	}
	p := filepath.Join(l.Base, e.Name())
	if err := os.WriteFile(p, data, os.FileMode(0o600)); err != nil { //nolint:mnd
		return fmt.Errorf("failed to write journal entry: %w", err)
	}
	log.Debugf("journal write: seq=%d, tx=%s, path=%s", e.Seq, e.TransactionID, p)
	return nil
}

// Read returns the entry recorded with seq.
func (l *Local) Read(seq uint64) (*Entry, bool) {
	matches, err := filepath.Glob(filepath.Join(l.Base, fmt.Sprintf("%08d-*.json", seq)))
	if err != nil || len(matches) == 0 {
		return nil, false
	}
	e, err := readEntry(matches[0])
	if err != nil {
		log.WithError(err).Warnf("unreadable journal entry %s", matches[0])
		return nil, false
	}
	return e, true
}

// LastSeq returns the highest sequence number among the entry files beneath
// Base, 0 when there are none.
func (l *Local) LastSeq() uint64 {
	dirEntries, err := os.ReadDir(l.Base)
	if err != nil {
		return 0
	}
	var last uint64
	for _, de := range dirEntries {
		prefix, _, ok := strings.Cut(de.Name(), "-")
		if de.IsDir() || !ok || !strings.HasSuffix(de.Name(), ".json") {
			continue
		}
		if n, err := strconv.ParseUint(prefix, 10, 64); err == nil && n > last {
			last = n
		}
	}
	return last
}

// List returns every entry beneath Base in sequence order. Files that are
// not journal entries are skipped.
func (l *Local) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(l.Base)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal: %w", err)
	}

	var entries []Entry
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".json") {
			continue
		}
		e, err := readEntry(filepath.Join(l.Base, de.Name()))
		if err != nil {
			log.WithError(err).Warnf("skipping journal file %s", de.Name())
			continue
		}
		entries = append(entries, *e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Seq < entries[j].Seq
	})
	return entries, nil
}

// Purge removes entries older than the provided number of hours.
// If hours <= 0 it is a no-op.
func (l *Local) Purge(hours int) error {
	if hours <= 0 {
		log.Debug("journal purge disabled")
		return nil
	}

	maxAge := time.Duration(hours) * time.Hour
	if err := filepath.Walk(l.Base, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			if os.IsNotExist(walkErr) {
				return nil
			}
			return walkErr
		}
		if info == nil {
			return nil
		}
		if !info.IsDir() && time.Since(info.ModTime()) > maxAge {
			if err := os.Remove(path); err == nil {
				log.Debugf("removed journal file %s", path)
			} else {
				log.WithError(err).Warnf("failed to remove journal file %s", path)
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("failed to purge journal: %w", err)
	}
	return nil
}

func readEntry(path string) (*Entry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var e Entry
	if err := json.Unmarshal(bytes.TrimSpace(b), &e); err != nil {
		return nil, fmt.Errorf("failed to parse journal entry: %w", err)
	}
	return &e, nil
}
