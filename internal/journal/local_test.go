// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package journal

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDir_WithSNAPDIFF_JOURNAL_DIR verifies Dir() respects
// SNAPDIFF_JOURNAL_DIR with highest priority.
func TestDir_WithSNAPDIFF_JOURNAL_DIR(t *testing.T) {
	customDir := t.TempDir()
	t.Setenv("SNAPDIFF_JOURNAL_DIR", customDir)

	result, ok := Dir()

	assert.True(t, ok)
	assert.Equal(t, customDir, result)
}

// TestDir_WithoutSNAPDIFF_JOURNAL_DIR verifies the fallback beneath
// os.UserCacheDir.
func TestDir_WithoutSNAPDIFF_JOURNAL_DIR(t *testing.T) {
	t.Setenv("SNAPDIFF_JOURNAL_DIR", "")

	result, ok := Dir()

	if ok {
		assert.True(t, filepath.IsAbs(result))
		assert.Equal(t, "journal", filepath.Base(result))
		assert.Equal(t, "snapdiff", filepath.Base(filepath.Dir(result)))
	}
}

func TestEnabled(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected bool
	}{
		{"empty string", "", true},
		{"1", "1", true},
		{"true", "true", true},
		{"0", "0", false},
		{"false", "false", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SNAPDIFF_JOURNAL", tt.value)
			assert.Equal(t, tt.expected, Enabled())
		})
	}
}

func TestNewLocal_CreatesDirectory(t *testing.T) {
	t.Setenv("SNAPDIFF_JOURNAL", "")
	base := filepath.Join(t.TempDir(), "nested", "journal")

	l, err := NewLocal(base)

	require.NoError(t, err)
	require.NotNil(t, l)
	info, err := os.Stat(base)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewLocal_UsesDir(t *testing.T) {
	base := t.TempDir()
	t.Setenv("SNAPDIFF_JOURNAL", "")
	t.Setenv("SNAPDIFF_JOURNAL_DIR", base)

	l, err := NewLocal("")

	require.NoError(t, err)
	require.NotNil(t, l)
	assert.Equal(t, base, l.Base)
}

func TestNewLocal_Disabled(t *testing.T) {
	t.Setenv("SNAPDIFF_JOURNAL", "false")

	l, err := NewLocal(t.TempDir())

	assert.NoError(t, err)
	assert.Nil(t, l)
}

func TestLocal_WriteRead(t *testing.T) {
	l := &Local{Base: t.TempDir()}
	e := Entry{Seq: 7, TransactionID: "tx-1", ActionID: "set", Payload: json.RawMessage(`{"count":5}`)}

	require.NoError(t, l.Write(context.Background(), e))

	p := filepath.Join(l.Base, e.Name())
	info, err := os.Stat(p)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, ok := l.Read(7)
	require.True(t, ok)
	assert.Equal(t, e.TransactionID, got.TransactionID)
	assert.Equal(t, e.ActionID, got.ActionID)
	assert.JSONEq(t, `{"count":5}`, string(got.Payload))

	_, ok = l.Read(8)
	assert.False(t, ok)
}

func TestLocal_WriteEmptyPayload(t *testing.T) {
	l := &Local{Base: t.TempDir()}

	require.NoError(t, l.Write(context.Background(), Entry{Seq: 1, TransactionID: "tx"}))

	b, err := os.ReadFile(filepath.Join(l.Base, Entry{Seq: 1, TransactionID: "tx"}.Name()))
	require.NoError(t, err)
	assert.JSONEq(t, `{"seq":1,"tx":"tx","action":"","diff":null}`, string(b))
}

func TestLocal_WriteCancelled(t *testing.T) {
	l := &Local{Base: t.TempDir()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := l.Write(ctx, Entry{Seq: 1})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocal_ListInSequenceOrder(t *testing.T) {
	l := &Local{Base: t.TempDir()}
	ctx := context.Background()
	for _, seq := range []uint64{3, 1, 12, 2} {
		require.NoError(t, l.Write(ctx, Entry{Seq: seq, TransactionID: "tx", Payload: json.RawMessage(`{}`)}))
	}
	require.NoError(t, os.WriteFile(filepath.Join(l.Base, "README"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(l.Base, "broken.json"), []byte("{"), 0o600))

	entries, err := l.List()

	require.NoError(t, err)
	var seqs []uint64
	for _, e := range entries {
		seqs = append(seqs, e.Seq)
	}
	assert.Equal(t, []uint64{1, 2, 3, 12}, seqs)
}

func TestLocal_ListMissingBase(t *testing.T) {
	l := &Local{Base: filepath.Join(t.TempDir(), "missing")}

	_, err := l.List()

	assert.Error(t, err)
}

func TestLocal_PurgeRemovesOldFiles(t *testing.T) {
	l := &Local{Base: t.TempDir()}
	ctx := context.Background()
	require.NoError(t, l.Write(ctx, Entry{Seq: 1, Payload: json.RawMessage(`{}`)}))
	require.NoError(t, l.Write(ctx, Entry{Seq: 2, Payload: json.RawMessage(`{}`)}))

	old := filepath.Join(l.Base, Entry{Seq: 1}.Name())
	past := time.Now().Add(-3 * time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	require.NoError(t, l.Purge(2))

	_, err := os.Stat(old)
	assert.True(t, os.IsNotExist(err))
	_, ok := l.Read(2)
	assert.True(t, ok)
}

func TestLocal_PurgeDisabled(t *testing.T) {
	l := &Local{Base: t.TempDir()}
	require.NoError(t, l.Write(context.Background(), Entry{Seq: 1, Payload: json.RawMessage(`{}`)}))

	assert.NoError(t, l.Purge(0))

	_, ok := l.Read(1)
	assert.True(t, ok)
}

func TestEntryName(t *testing.T) {
	e := Entry{Seq: 42, TransactionID: "tx", ActionID: "a"}

	name := e.Name()

	assert.Regexp(t, `^00000042-[0-9a-f]{16}\.json$`, name)
	assert.Equal(t, name, e.Name())
	assert.NotEqual(t, name, Entry{Seq: 42, TransactionID: "other", ActionID: "a"}.Name())
}

func TestEncodeKey(t *testing.T) {
	got := encodeKey("hello")

	assert.Len(t, got, 64)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", got)
}
