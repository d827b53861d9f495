/*
Copyright FreshBlocks. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package connection establishes authenticated business network sessions
// from identity cards and drives the identity lifecycle through them.
package connection

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/brendonion/fresh-blocks/pkg/common/errors/status"
	"github.com/brendonion/fresh-blocks/pkg/ledger"
	"github.com/pkg/errors"
	grpcstatus "google.golang.org/grpc/status"
)

// Connection states. Disconnected is terminal: a connection is never
// reconnected once closed.
const (
	stateDisconnected int32 = iota
	stateConnecting
	stateConnected
)

// A Connection wraps one open ledger session plus the parsed network
// definition used to build and interpret ledger-native resources.
// A Connection is owned exclusively by the caller that created it and is
// not safe for unsynchronized concurrent use. Failing to call Disconnect
// leaks a network session.
type Connection struct {
	cardName   string
	session    ledger.Session
	definition ledger.Definition
	state      int32
}

func newConnection(cardName string) *Connection {
	return &Connection{cardName: cardName, state: stateConnecting}
}

func (c *Connection) complete(session ledger.Session) {
	c.session = session
	c.definition = session.Definition()
	atomic.StoreInt32(&c.state, stateConnected)
}

func (c *Connection) abort() {
	atomic.StoreInt32(&c.state, stateDisconnected)
}

// CardName returns the name of the card that authorized this connection.
// The connection references the card but does not own it: revoking or
// deleting the card does not close the connection.
func (c *Connection) CardName() string {
	return c.cardName
}

func (c *Connection) checkConnected() error {
	if atomic.LoadInt32(&c.state) != stateConnected {
		return status.New(status.ClientStatus, status.NotConnected.ToInt32(),
			"connection for card \""+c.cardName+"\" is not open", nil)
	}
	return nil
}

// SerializeToJSON converts a ledger-native resource into a structured
// document using the network definition's serializer.
func (c *Connection) SerializeToJSON(resource ledger.Resource) (json.RawMessage, error) {
	if err := c.checkConnected(); err != nil {
		return nil, err
	}
	document, err := c.definition.Serializer().ToJSON(resource)
	if err != nil {
		return nil, serializationError(err)
	}
	return document, nil
}

// SerializeFromJSON converts a structured document back into a
// ledger-native resource. It fails with SerializationError on shape
// mismatch.
func (c *Connection) SerializeFromJSON(document json.RawMessage) (ledger.Resource, error) {
	if err := c.checkConnected(); err != nil {
		return nil, err
	}
	resource, err := c.definition.Serializer().FromJSON(document)
	if err != nil {
		return nil, serializationError(err)
	}
	return resource, nil
}

// Query executes a named, pre-registered query against current ledger
// state. Read-only; no ordering guarantee relative to concurrent writes
// beyond what the network provides.
func (c *Connection) Query(ctx context.Context, name string, params map[string]interface{}) ([]json.RawMessage, error) {
	if err := c.checkConnected(); err != nil {
		return nil, err
	}
	results, err := c.session.Query(ctx, name, params)
	if err != nil {
		return nil, networkError(err, status.ConnectionError, "query \""+name+"\" failed")
	}
	return results, nil
}

// SubmitTransaction submits a transaction for execution and commit by
// the network. It may block until the network acknowledges, subject to
// the network's own timeout configuration: timeouts surface as
// TransactionTimeout, endorsement or validation rejections as
// TransactionRejected carrying the network's reason.
func (c *Connection) SubmitTransaction(ctx context.Context, resource ledger.Resource) error {
	if err := c.checkConnected(); err != nil {
		return err
	}
	if err := c.session.SubmitTransaction(ctx, resource); err != nil {
		return networkError(err, status.TransactionRejected, "transaction submit failed")
	}
	return nil
}

// GetIdentity scans the full identity registry for a matching logical
// name. It returns nil, not an error, when no identity matches. The scan
// is linear: no index is assumed to exist on the network side.
func (c *Connection) GetIdentity(ctx context.Context, identityName string) (*ledger.Identity, error) {
	if err := c.checkConnected(); err != nil {
		return nil, err
	}
	registry, err := c.session.IdentityRegistry(ctx)
	if err != nil {
		return nil, networkError(err, status.ConnectionError, "identity registry lookup failed")
	}
	identities, err := registry.GetAll(ctx)
	if err != nil {
		return nil, networkError(err, status.ConnectionError, "identity registry listing failed")
	}
	for i := range identities {
		if identities[i].Name == identityName {
			return &identities[i], nil
		}
	}
	return nil, nil
}

// RevokeIdentity marks the given identity as revoked on the network.
// Treat as at-most-once: whether the network tolerates double revocation
// is not guaranteed.
func (c *Connection) RevokeIdentity(ctx context.Context, identity *ledger.Identity) error {
	if err := c.checkConnected(); err != nil {
		return err
	}
	if err := c.session.RevokeIdentity(ctx, identity); err != nil {
		return networkError(err, status.ConnectionError, "revocation of identity \""+identity.Name+"\" failed")
	}
	return nil
}

// ParticipantRegistry returns the named participant registry of the
// connected network.
func (c *Connection) ParticipantRegistry(ctx context.Context, name string) (ledger.ParticipantRegistry, error) {
	if err := c.checkConnected(); err != nil {
		return nil, err
	}
	registry, err := c.session.ParticipantRegistry(ctx, name)
	if err != nil {
		return nil, networkError(err, status.ConnectionError, "participant registry lookup failed")
	}
	return registry, nil
}

// IssueIdentity issues a new network identity bound to the given
// participant and returns the one-time enrollment secret.
func (c *Connection) IssueIdentity(ctx context.Context, participantID string, identityName string) (*ledger.Issuance, error) {
	if err := c.checkConnected(); err != nil {
		return nil, err
	}
	issuance, err := c.session.IssueIdentity(ctx, participantID, identityName)
	if err != nil {
		return nil, networkError(err, status.ConnectionError, "issuance of identity \""+identityName+"\" failed")
	}
	return issuance, nil
}

// Disconnect releases the underlying session. Disconnecting an already
// disconnected connection is a no-op, so the session is released exactly
// once no matter how many times callers disconnect.
func (c *Connection) Disconnect(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&c.state, stateConnected, stateDisconnected) {
		return nil
	}
	return errors.WithMessage(c.session.Close(ctx), "session close failed")
}

func serializationError(cause error) error {
	return status.New(status.ClientStatus, status.SerializationError.ToInt32(),
		cause.Error(), []interface{}{cause})
}

// networkError classifies a failure reported by the ledger client.
// Timeouts, whether surfaced as a context deadline or a gRPC status, are
// always recognized as TransactionTimeout; an error already carrying a
// status passes through; anything else gets the fallback code.
func networkError(err error, fallback status.Code, msg string) error {
	cause := errors.Cause(err)
	if cause == context.DeadlineExceeded {
		return status.New(status.NetworkStatus, status.TransactionTimeout.ToInt32(), msg+": "+err.Error(), nil)
	}
	if s, ok := status.FromError(err); ok {
		return s
	}
	if grpcErr, ok := grpcstatus.FromError(cause); ok {
		return status.NewFromGRPCStatus(grpcErr)
	}
	return status.New(status.NetworkStatus, fallback.ToInt32(), msg+": "+err.Error(), []interface{}{err})
}
