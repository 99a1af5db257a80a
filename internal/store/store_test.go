// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package store

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tfctl/snapdiff/internal/differ"
	"github.com/tfctl/snapdiff/internal/dispatch"
	"github.com/tfctl/snapdiff/internal/leaf"
	"github.com/tfctl/snapdiff/internal/snapshot"
)

type item struct {
	Label string `json:"label"`
}

type model struct {
	Count  int    `json:"count"`
	Label  string `json:"label,omitempty"`
	Nested *item  `json:"nested,omitempty"`
	Array  []item `json:"array,omitempty"`
}

func setCount(n int) func(model) model {
	return func(m model) model {
		m.Count = n
		return m
	}
}

func tx(id, action string) *Transaction {
	return &Transaction{ID: id, ActionID: action}
}

// summary renders a diff map as path -> "kind value" for compact asserts.
func summary(m differ.Map) map[string]string {
	out := map[string]string{}
	for p, c := range m {
		out[p] = c.Kind.String() + " " + c.Value.String()
	}
	return out
}

func TestSyncDiffVisibleOnReturn(t *testing.T) {
	s := New(model{Count: 0, Label: "Foo"}, WithMode(dispatch.Sync))

	s.Dispatch(tx("tx-1", "increment"), setCount(5))

	set, ok := s.DiffSets().Latest()
	require.True(t, ok)
	assert.Equal(t, map[string]string{"count": "changed 5"}, summary(set.Changes))
	assert.Equal(t, "tx-1", set.TransactionID)
	assert.Equal(t, "increment", set.ActionID)
	assert.Equal(t, "tx-1 increment {count: changed ⇒ 5}", set.LogLine())

	payload, ok := s.DiffJSON().Latest()
	require.True(t, ok)
	assert.Equal(t, `{"count":5}`, string(payload))

	assert.Equal(t, 5, s.Model().Count)
	assert.Equal(t, "5", s.Snapshot()["count"].String())
	assert.True(t, s.Audit().Contains("tx-1"))
}

func TestAsyncPreservesOrder(t *testing.T) {
	s := New(model{Label: "Foo"}, WithMode(dispatch.Async))
	defer s.Close()

	var mu sync.Mutex
	var ids []string
	var payloads []string
	s.DiffSets().Subscribe(func(d DiffSet) {
		mu.Lock()
		ids = append(ids, d.TransactionID)
		mu.Unlock()
	})
	s.DiffJSON().Subscribe(func(b []byte) {
		mu.Lock()
		payloads = append(payloads, string(b))
		mu.Unlock()
	})

	const n = 50
	for i := 1; i <= n; i++ {
		s.Dispatch(tx(fmt.Sprintf("tx-%02d", i), "increment"), setCount(i))
	}
	s.Wait()

	require.Len(t, ids, n)
	for i := 1; i <= n; i++ {
		assert.Equal(t, fmt.Sprintf("tx-%02d", i), ids[i-1])
		assert.Equal(t, fmt.Sprintf(`{"count":%d}`, i), payloads[i-1], "each diff is against the previous state")
	}
	assert.Equal(t, n, s.Audit().Len())
}

func TestSwitchToSyncAfterQueuedAsync(t *testing.T) {
	var once sync.Once
	entered := make(chan struct{})
	gate := make(chan struct{})
	gated := func(m any) (snapshot.Snapshot, error) {
		if mm, ok := m.(model); ok && mm.Count == 1 {
			once.Do(func() { close(entered) })
			<-gate
		}
		return snapshot.Flatten(m)
	}

	s := New(model{}, WithMode(dispatch.Async), WithFlattener(gated))
	defer s.Close()

	var mu sync.Mutex
	var lines []string
	s.DiffSets().Subscribe(func(d DiffSet) {
		mu.Lock()
		lines = append(lines, d.LogLine())
		mu.Unlock()
	})

	s.Dispatch(tx("tx-1", "set"), setCount(1))
	<-entered
	s.Dispatch(tx("tx-2", "set"), setCount(2))
	s.SetMode(dispatch.Sync)

	done := make(chan struct{})
	go func() {
		s.Dispatch(tx("tx-3", "set"), setCount(3))
		close(done)
	}()
	close(gate)
	<-done

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"tx-1 set {count: changed ⇒ 1}",
		"tx-2 set {count: changed ⇒ 2}",
		"tx-3 set {count: changed ⇒ 3}",
	}, lines)
	assert.Equal(t, 3, s.Model().Count)
	assert.Equal(t, "3", s.Snapshot()["count"].String())
}

func TestNoneNeverPublishes(t *testing.T) {
	s := New(model{Count: 0, Label: "Foo"}, WithMode(dispatch.None))

	published := 0
	s.DiffSets().Subscribe(func(DiffSet) { published++ })
	s.DiffJSON().Subscribe(func([]byte) { published++ })

	s.Dispatch(tx("tx-1", "increment"), setCount(5))
	s.Wait()

	assert.Equal(t, 0, published)
	assert.Nil(t, s.Snapshot(), "snapshot never initialised")
	assert.Equal(t, 0, s.Audit().Len())
	assert.Equal(t, 5, s.Model().Count, "mutation still applied")
}

func TestNilTransactionSkipsDiff(t *testing.T) {
	s := New(model{Count: 0})

	s.Dispatch(nil, setCount(3))

	_, ok := s.DiffSets().Latest()
	assert.False(t, ok)
	assert.Equal(t, "0", s.Snapshot()["count"].String(), "snapshot unchanged")
}

func TestSwitchFromNoneSeedsFromOldModel(t *testing.T) {
	s := New(model{Count: 0, Label: "Foo"}, WithMode(dispatch.None))
	s.Dispatch(tx("tx-1", "increment"), setCount(1))

	s.SetMode(dispatch.Sync)
	s.Dispatch(tx("tx-2", "increment"), setCount(2))

	set, ok := s.DiffSets().Latest()
	require.True(t, ok)
	assert.Equal(t, map[string]string{"count": "changed 2"}, summary(set.Changes))
	assert.False(t, s.Audit().Contains("tx-1"))
	assert.True(t, s.Audit().Contains("tx-2"))
}

func TestAddRemoveAndNulledFields(t *testing.T) {
	s := New(model{Count: 1, Nested: &item{Label: "n"}})

	s.Dispatch(tx("tx-1", "restructure"), func(m model) model {
		m.Nested = nil
		m.Array = []item{{Label: "a"}}
		return m
	})

	set, _ := s.DiffSets().Latest()
	assert.Equal(t, map[string]string{
		"nested.label":  `removed "n"`,
		"array.0.label": `added "a"`,
	}, summary(set.Changes))

	payload, _ := s.DiffJSON().Latest()
	assert.Equal(t, `{"array.0.label":"a","nested.label":null}`, string(payload))
}

func TestEmptyDiffStillPublished(t *testing.T) {
	s := New(model{Count: 1})
	s.Dispatch(tx("tx-1", "noop"), func(m model) model { return m })

	set, ok := s.DiffSets().Latest()
	require.True(t, ok)
	assert.Empty(t, set.Changes)
	payload, _ := s.DiffJSON().Latest()
	assert.Equal(t, "{}", string(payload))
}

func TestFlattenFailureIsSwallowed(t *testing.T) {
	calls := 0
	failing := func(m any) (snapshot.Snapshot, error) {
		calls++
		if calls > 1 {
			return nil, errors.New("flattener broke")
		}
		return snapshot.Flatten(m)
	}
	s := New(model{Count: 1}, WithFlattener(failing))

	assert.NotPanics(t, func() {
		s.Dispatch(tx("tx-1", "increment"), setCount(2))
	})
	_, ok := s.DiffSets().Latest()
	assert.False(t, ok)
	assert.Equal(t, "1", s.Snapshot()["count"].String())
	assert.Equal(t, 2, s.Model().Count)
}

func TestUnencodableLeafDegradesJSON(t *testing.T) {
	calls := 0
	flattener := func(m any) (snapshot.Snapshot, error) {
		calls++
		if calls == 1 {
			return snapshot.Flatten(m)
		}
		return snapshot.Snapshot{"bad": leaf.InvalidValue(errors.New("unencodable"))}, nil
	}
	s := New(model{Count: 1}, WithFlattener(flattener))

	s.Dispatch(tx("tx-1", "corrupt"), setCount(2))

	set, ok := s.DiffSets().Latest()
	require.True(t, ok, "diff set still published")
	assert.Equal(t, differ.Added, set.Changes["bad"].Kind)
	assert.Equal(t, differ.Removed, set.Changes["count"].Kind)

	payload, ok := s.DiffJSON().Latest()
	require.True(t, ok)
	assert.Empty(t, payload)
	assert.True(t, s.Audit().Contains("tx-1"))
}

func TestObserveFromExternalStore(t *testing.T) {
	s := New(map[string]any{"count": 0, "label": "Foo"})

	s.Observe(tx("ext-1", "set"), map[string]any{"count": 0, "label": "Foo"}, map[string]any{"count": 5, "label": "Foo"})

	set, ok := s.DiffSets().Latest()
	require.True(t, ok)
	assert.Equal(t, map[string]string{"count": "changed 5"}, summary(set.Changes))
	assert.Equal(t, 0, s.Model()["count"], "Observe does not touch the held model")
}

func TestConcurrentSyncDispatch(t *testing.T) {
	s := New(model{})

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				s.Dispatch(tx(fmt.Sprintf("g%d-%d", g, i), "bump"), func(m model) model {
					m.Count++
					return m
				})
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, 200, s.Model().Count)
	assert.Equal(t, "200", s.Snapshot()["count"].String())
	assert.Equal(t, 200, s.Audit().Len())
}

func TestAuditCapacityOption(t *testing.T) {
	s := New(model{}, WithAuditCapacity(2))
	for i := 1; i <= 3; i++ {
		s.Dispatch(tx(fmt.Sprintf("tx-%d", i), "bump"), setCount(i))
	}
	assert.Equal(t, []string{"tx-2", "tx-3"}, s.Audit().IDs())
}

func TestSubscriberMayReadModel(t *testing.T) {
	s := New(model{})
	var seen int
	s.DiffSets().Subscribe(func(DiffSet) { seen = s.Model().Count })

	s.Dispatch(tx("tx-1", "bump"), setCount(9))
	assert.Equal(t, 9, seen)
}
