/*
Copyright FreshBlocks. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package cardstore provides durable storage of business network cards
// over a generic document-collection boundary.
package cardstore

import (
	"context"

	"github.com/brendonion/fresh-blocks/pkg/card"
	"github.com/pkg/errors"
)

// ErrCardDataNotFound indicates the collection holds no record for the
// requested card name.
var ErrCardDataNotFound = errors.New("card record not found")

// Collection is the document-store boundary the card store persists
// through. Records are keyed by card name. The backing store is expected
// to serialize conflicting writes for the same key; the card store adds
// no locking of its own.
type Collection interface {
	// FindOne returns the record stored under cardName, or
	// ErrCardDataNotFound.
	FindOne(ctx context.Context, cardName string) (*card.Record, error)

	// Find returns every stored record. The snapshot may be stale the
	// instant it is returned.
	Find(ctx context.Context) ([]*card.Record, error)

	// Insert stores a record under its card name. Inserting over an
	// existing name replaces the old record (last write wins).
	Insert(ctx context.Context, record *card.Record) error

	// Remove deletes the record stored under cardName, or returns
	// ErrCardDataNotFound if there is none.
	Remove(ctx context.Context, cardName string) error
}
