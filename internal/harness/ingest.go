// Copyright (c) 2026 The OpenZipkin Authors
// SPDX-License-Identifier: Apache-2.0

package harness

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// DefaultChunkSize bounds how many records a single write call may
// carry. Oversized batches overrun the backend's outstanding-request
// budget and surface as pool-exhaustion errors.
const DefaultChunkSize = 100

// Ingestor writes an ordered batch of records in contiguous chunks.
// Chunks are written strictly one at a time, and the batch settles
// after every chunk so a later chunk can never race ahead of an
// earlier, not-yet-visible one when both are read back in one test.
type Ingestor[T any] struct {
	// Write submits one chunk to the backend. Failures are fatal and
	// never retried: masking a real write failure would defeat the
	// test's purpose.
	Write func(ctx context.Context, chunk []T) error
	// Settle blocks until the chunk's writes are visible, normally
	// (*Barrier).Await.
	Settle    func(ctx context.Context) error
	ChunkSize int // defaults to DefaultChunkSize
	Logger    *zap.Logger
}

// Ingest writes records in ceil(len/chunkSize) sequential chunks,
// settling after each. An empty batch issues no writes.
func (i *Ingestor[T]) Ingest(ctx context.Context, records []T) error {
	size := i.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}
	for start := 0; start < len(records); start += size {
		end := min(start+size, len(records))
		if err := i.Write(ctx, records[start:end]); err != nil {
			return fmt.Errorf("write chunk [%d:%d): %w", start, end, err)
		}
		if i.Logger != nil {
			i.Logger.Debug("Chunk written", zap.Int("start", start), zap.Int("size", end-start))
		}
		if err := i.Settle(ctx); err != nil {
			return fmt.Errorf("settle after chunk [%d:%d): %w", start, end, err)
		}
	}
	return nil
}
