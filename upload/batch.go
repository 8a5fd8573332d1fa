// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// ErrIO is returned by Batch.Wait when any save failed.
var ErrIO = errors.New("file persistence failed")

// Batch runs the file saves of one submission in the background so the
// form can keep streaming. Wait must be called before the submission is
// persisted.
type Batch struct {
	store Store
	group *errgroup.Group
	ctx   context.Context
	names []string
}

func NewBatch(ctx context.Context, store Store) *Batch {
	g, ctx := errgroup.WithContext(ctx)
	return &Batch{store: store, group: g, ctx: ctx}
}

// Save schedules data to be written under name.
func (b *Batch) Save(name string, data []byte) {
	b.names = append(b.names, name)
	b.group.Go(func() error {
		if err := b.store.Save(b.ctx, name, data); err != nil {
			slog.Error("failed to save file", "name", name, "error", err)
			return err
		}
		return nil
	})
}

// Names lists scheduled names in scheduling order.
func (b *Batch) Names() []string {
	return b.names
}

// Wait blocks until every scheduled save finished.
func (b *Batch) Wait() error {
	if err := b.group.Wait(); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}
