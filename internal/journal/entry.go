// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package journal

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Entry is one journaled diff set. Payload holds the diff JSON exactly as
// the store published it.
type Entry struct {
	Seq           uint64          `json:"seq"`
	TransactionID string          `json:"tx"`
	ActionID      string          `json:"action"`
	Payload       json.RawMessage `json:"diff"`
}

// Sink receives journal entries.
type Sink interface {
	Write(ctx context.Context, e Entry) error
}

// Key is the clear-text identity of an entry.
func (e Entry) Key() string {
	return fmt.Sprintf("%d/%s/%s", e.Seq, e.TransactionID, e.ActionID)
}

// Name is the file or object name for an entry. The sequence prefix keeps
// names in recording order.
func (e Entry) Name() string {
	return fmt.Sprintf("%08d-%s.json", e.Seq, encodeKey(e.Key())[:16])
}

// Marshal renders the entry. An empty payload, which the store publishes
// when a diff cannot be encoded, is written as null.
func (e Entry) Marshal() ([]byte, error) {
	if len(e.Payload) == 0 {
		e.Payload = json.RawMessage("null")
	}
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal journal entry: %w", err)
	}
	return b, nil
}

// sha256 returns a 32-byte digest.
func encodeKey(input string) string {
	h := sha256.New()
	h.Write([]byte(input))
	return hex.EncodeToString(h.Sum(nil))
}
