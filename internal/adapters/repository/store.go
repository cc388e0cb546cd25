// Package repository holds the in-memory room store.
package repository

import (
	"context"

	"github.com/okian/teampicker/internal/domain/room"
)

// Store maps room identities to room aggregates.
//
// The store guards its own index only. A returned *room.Room must be used by
// one goroutine at a time; the dispatcher guarantees that by routing every
// command for a room to the same shard.
type Store interface {
	// GetOrCreate returns the room for id, creating an empty one if needed.
	GetOrCreate(ctx context.Context, id string) *room.Room
	// Lookup returns the room for id or ErrNotFound.
	Lookup(ctx context.Context, id string) (*room.Room, error)
	// Delete forgets a room. Deleting an unknown room is a no-op.
	Delete(ctx context.Context, id string)
	// RecordSize stores the participant count of a room for reporting.
	RecordSize(ctx context.Context, id string, n int)
	// Count returns the number of rooms.
	Count(ctx context.Context) int
	// Participants returns the last recorded participant total.
	Participants(ctx context.Context) int
	// IDs returns the room identities in sorted order.
	IDs(ctx context.Context) []string
}
