/*
Copyright FreshBlocks. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package cardstore

import (
	"context"
	"fmt"

	"github.com/brendonion/fresh-blocks/pkg/card"
	"github.com/brendonion/fresh-blocks/pkg/common/errors/status"
	"github.com/brendonion/fresh-blocks/pkg/common/logging"
	"github.com/pkg/errors"
)

var logger = logging.NewLogger("cardstore")

// Store manages persistence of business network cards through a
// document collection. It is safe for concurrent use.
type Store struct {
	collection Collection
}

// New creates a card store over the given collection.
func New(collection Collection) *Store {
	return &Store{collection: collection}
}

// Get returns the card stored under name. A missing record and an
// unreachable backing store both surface as CardNotFound: callers only
// need to know the card is unusable. A record that cannot be decoded
// surfaces as MalformedCard.
func (s *Store) Get(ctx context.Context, name string) (*card.Card, error) {
	logger.Debugf("retrieving card %s", name)
	record, err := s.collection.FindOne(ctx, name)
	if err != nil {
		return nil, cardNotFound(name, err)
	}
	return card.Decode(record)
}

// Put upserts a card under name. An existing record is removed first,
// then the new record is inserted. The pair is not atomic: a crash
// between the two can transiently leave the store empty for that name.
func (s *Store) Put(ctx context.Context, name string, c *card.Card) error {
	logger.Debugf("putting card %s", name)
	record, err := card.Encode(c)
	if err != nil {
		return err
	}
	record.CardName = name

	if _, err := s.collection.FindOne(ctx, name); err == nil {
		if err := s.collection.Remove(ctx, name); err != nil && errors.Cause(err) != ErrCardDataNotFound {
			return errors.WithMessage(err, "remove of existing card record failed")
		}
	}
	return errors.WithMessage(s.collection.Insert(ctx, record), "insert of card record failed")
}

// Delete removes the card stored under name. It fails with CardNotFound
// when there is no record or the backing store errs.
func (s *Store) Delete(ctx context.Context, name string) error {
	logger.Debugf("deleting card %s", name)
	if err := s.collection.Remove(ctx, name); err != nil {
		return cardNotFound(name, err)
	}
	return nil
}

// Has reports whether a card is stored under name. It is best effort:
// collection errors collapse to false, so false is not a strict
// guarantee of absence.
func (s *Store) Has(ctx context.Context, name string) bool {
	_, err := s.collection.FindOne(ctx, name)
	if err != nil && errors.Cause(err) != ErrCardDataNotFound {
		logger.Warnf("existence check for card %s failed: %s", name, err)
	}
	return err == nil
}

// GetAll returns every decodable card keyed by name, together with the
// names of records that were skipped because they failed to decode.
// A bad record never aborts the listing.
func (s *Store) GetAll(ctx context.Context) (map[string]*card.Card, []string, error) {
	logger.Debug("getting all cards from store")
	records, err := s.collection.Find(ctx)
	if err != nil {
		return nil, nil, errors.WithMessage(err, "listing of card records failed")
	}

	cards := make(map[string]*card.Card, len(records))
	var skipped []string
	for _, record := range records {
		c, err := card.Decode(record)
		if err != nil {
			logger.Warnf("skipping undecodable card record %s: %s", record.CardName, err)
			skipped = append(skipped, record.CardName)
			continue
		}
		cards[c.Name] = c
	}
	return cards, skipped, nil
}

func cardNotFound(name string, cause error) error {
	s := status.New(status.StoreStatus, status.CardNotFound.ToInt32(),
		fmt.Sprintf("the business network card %q does not exist", name), []interface{}{cause})
	return s
}
