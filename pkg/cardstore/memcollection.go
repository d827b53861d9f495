/*
Copyright FreshBlocks. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package cardstore

import (
	"context"
	"sync"

	"github.com/brendonion/fresh-blocks/pkg/card"
)

// MemCollection holds card records in memory. It is safe for concurrent
// use and is intended for tests and ephemeral deployments.
type MemCollection struct {
	lock    sync.RWMutex
	records map[string]card.Record
}

// NewMemCollection creates an empty in-memory collection.
func NewMemCollection() *MemCollection {
	return &MemCollection{records: make(map[string]card.Record, 10)}
}

// FindOne returns the record stored under cardName.
func (m *MemCollection) FindOne(ctx context.Context, cardName string) (*card.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.lock.RLock()
	defer m.lock.RUnlock()
	if record, ok := m.records[cardName]; ok {
		return &record, nil
	}
	return nil, ErrCardDataNotFound
}

// Find returns every stored record.
func (m *MemCollection) Find(ctx context.Context) ([]*card.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.lock.RLock()
	defer m.lock.RUnlock()
	records := make([]*card.Record, 0, len(m.records))
	for name := range m.records {
		record := m.records[name]
		records = append(records, &record)
	}
	return records, nil
}

// Insert stores a record under its card name, replacing any existing one.
func (m *MemCollection) Insert(ctx context.Context, record *card.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.lock.Lock()
	defer m.lock.Unlock()
	m.records[record.CardName] = *record
	return nil
}

// Remove deletes the record stored under cardName.
func (m *MemCollection) Remove(ctx context.Context, cardName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.lock.Lock()
	defer m.lock.Unlock()
	if _, ok := m.records[cardName]; !ok {
		return ErrCardDataNotFound
	}
	delete(m.records, cardName)
	return nil
}
