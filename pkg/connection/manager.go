/*
Copyright FreshBlocks. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package connection

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/brendonion/fresh-blocks/pkg/card"
	"github.com/brendonion/fresh-blocks/pkg/cardstore"
	"github.com/brendonion/fresh-blocks/pkg/common/errors/status"
	"github.com/brendonion/fresh-blocks/pkg/common/logging"
	"github.com/brendonion/fresh-blocks/pkg/ledger"
	"github.com/pkg/errors"
)

var logger = logging.NewLogger("connection")

// Manager orchestrates card import, connection establishment and
// identity issuance. It owns one card store for its entire lifetime and
// is the sole entry point other components use.
type Manager struct {
	store           *cardstore.Store
	client          ledger.Client
	businessNetwork string
	profileTemplate json.RawMessage
}

// ManagerOption describes a functional parameter for the NewManager
// constructor.
type ManagerOption func(*Manager) error

// WithBusinessNetwork sets the business network newly imported cards are
// scoped to.
func WithBusinessNetwork(name string) ManagerOption {
	return func(m *Manager) error {
		m.businessNetwork = name
		return nil
	}
}

// WithProfileTemplate sets the connection-profile document stamped onto
// newly imported cards. The template is configuration, not a constant:
// environments vary topology without code changes.
func WithProfileTemplate(profile json.RawMessage) ManagerOption {
	return func(m *Manager) error {
		if !json.Valid(profile) {
			return errors.New("connection profile template is not valid JSON")
		}
		m.profileTemplate = profile
		return nil
	}
}

// NewManager creates a connection manager over the given store and
// ledger client. A business network name and a profile template are
// required.
func NewManager(store *cardstore.Store, client ledger.Client, opts ...ManagerOption) (*Manager, error) {
	m := &Manager{store: store, client: client}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, errors.WithMessage(err, "failed to create connection manager")
		}
	}
	if m.businessNetwork == "" {
		return nil, errors.New("business network name is required")
	}
	if len(m.profileTemplate) == 0 {
		return nil, errors.New("connection profile template is required")
	}
	return m, nil
}

// CreateConnection opens a new connection to the business network for
// the named card. The card is read first: an unknown card fails with
// CardNotFound before any network call is attempted. Network-side
// failures surface as ConnectionError.
func (m *Manager) CreateConnection(ctx context.Context, cardName string) (*Connection, error) {
	c, err := m.store.Get(ctx, cardName)
	if err != nil {
		return nil, err
	}

	conn := newConnection(cardName)
	session, err := m.client.Connect(ctx, c)
	if err != nil {
		conn.abort()
		logger.Errorf("connection to business network for card %s failed: %s", cardName, err)
		return nil, networkError(err, status.ConnectionError, "connect for card \""+cardName+"\" failed")
	}
	conn.complete(session)
	logger.Infof("connected to business network %s as %s", conn.definition.Name(), c.UserName)
	return conn, nil
}

// ImportNewCard constructs a card from the configured profile template,
// the given name and enrollment secret, and persists it. An existing
// card of the same name is replaced.
func (m *Manager) ImportNewCard(ctx context.Context, cardName string, enrollmentSecret string) error {
	name := strings.TrimSpace(cardName)
	c := card.New(name, enrollmentSecret, m.businessNetwork, m.profileTemplate)
	logger.Infof("importing new card %s", name)
	return m.store.Put(ctx, name, c)
}

// ImportCard persists an already-constructed card under the given name,
// replacing any existing card. This bypasses the profile template: the
// card's full content is supplied by the caller, typically a
// pre-provisioned administrative identity decoded from an archive.
func (m *Manager) ImportCard(ctx context.Context, cardName string, c *card.Card) error {
	name := strings.TrimSpace(cardName)
	imported := *c
	imported.Name = name
	logger.Infof("importing card %s for user %s", name, c.UserName)
	return m.store.Put(ctx, name, &imported)
}

// GetCard returns the raw card stored under cardName without opening a
// connection.
func (m *Manager) GetCard(ctx context.Context, cardName string) (*card.Card, error) {
	return m.store.Get(ctx, cardName)
}
