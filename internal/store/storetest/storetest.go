// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

// Package storetest provides transaction doubles for unit tests of services
// that thread store.Tx handles through in-memory repositories.
package storetest

import (
	"context"
	"sync"

	"github.com/ringdex/ringdex/internal/store"
)

// Tx is an opaque transaction handle. Its Querier methods are never called by
// in-memory repositories; calling them panics.
type Tx struct {
	store.Querier
	ID int
}

// Transactor records every transaction it opens and how it ended.
type Transactor struct {
	mu         sync.Mutex
	next       int
	Begun      []*Tx
	Committed  []*Tx
	RolledBack []*Tx

	// OnCommit, when set, is called before a commit and may veto it.
	OnCommit func(tx *Tx) error
}

// InTransaction implements store.Transactor.
func (t *Transactor) InTransaction(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	t.mu.Lock()
	t.next++
	tx := &Tx{ID: t.next}
	t.Begun = append(t.Begun, tx)
	t.mu.Unlock()

	if err := fn(ctx, tx); err != nil {
		t.end(tx, false)
		return err
	}
	if t.OnCommit != nil {
		if err := t.OnCommit(tx); err != nil {
			t.end(tx, false)
			return err
		}
	}
	t.end(tx, true)
	return nil
}

func (t *Transactor) end(tx *Tx, committed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if committed {
		t.Committed = append(t.Committed, tx)
		return
	}
	t.RolledBack = append(t.RolledBack, tx)
}

var _ store.Transactor = (*Transactor)(nil)
