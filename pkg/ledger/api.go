/*
Copyright FreshBlocks. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package ledger defines the boundary to the external ledger client.
// Everything here is an already-provided collaborator: the subsystem
// builds sessions from identity cards and drives the identity lifecycle
// through these interfaces, but does not implement consensus, contract
// execution or the wire protocol itself.
package ledger

import (
	"context"
	"encoding/json"

	"github.com/brendonion/fresh-blocks/pkg/card"
)

// Client opens authenticated sessions against a business network.
type Client interface {
	// Connect establishes a session using the card's credentials and
	// connection profile.
	Connect(ctx context.Context, c *card.Card) (Session, error)
}

// Session is one live, authenticated connection to a business network.
// A session is not safe for unsynchronized concurrent use.
type Session interface {
	// Definition returns the parsed business network definition this
	// session is bound to.
	Definition() Definition

	// Query executes a named, pre-registered query against current ledger
	// state. Read-only.
	Query(ctx context.Context, name string, params map[string]interface{}) ([]json.RawMessage, error)

	// SubmitTransaction submits a transaction for execution and commit.
	// May block until the network acknowledges, subject to the network's
	// own timeout configuration.
	SubmitTransaction(ctx context.Context, resource Resource) error

	// ParticipantRegistry returns the named participant registry.
	ParticipantRegistry(ctx context.Context, name string) (ParticipantRegistry, error)

	// IdentityRegistry returns the network's identity registry.
	IdentityRegistry(ctx context.Context) (IdentityRegistry, error)

	// IssueIdentity issues a new network identity bound to the given
	// participant and returns its one-time enrollment secret.
	IssueIdentity(ctx context.Context, participantID string, identityName string) (*Issuance, error)

	// RevokeIdentity marks the given identity as revoked on the network.
	RevokeIdentity(ctx context.Context, identity *Identity) error

	// Close releases the session.
	Close(ctx context.Context) error
}

// Definition is the parsed business network definition used to build and
// interpret ledger-native resources.
type Definition interface {
	Name() string
	Serializer() Serializer
	Factory() Factory
}

// Serializer converts between ledger-native resources and structured
// documents.
type Serializer interface {
	ToJSON(resource Resource) (json.RawMessage, error)
	FromJSON(document json.RawMessage) (Resource, error)
}

// Factory builds ledger-native resources for a business network.
type Factory interface {
	NewResource(namespace, resourceType, identifier string) Resource
	NewConcept(namespace, conceptType string) Resource
	NewRelationship(namespace, resourceType, identifier string) Resource
}

// Resource is a ledger-native object: a participant, asset, concept,
// relationship or transaction.
type Resource interface {
	Namespace() string
	Type() string
	Identifier() string
	Field(name string) (interface{}, bool)
	SetField(name string, value interface{})
}

// Identity is an entry in the network's identity registry.
type Identity struct {
	// Name is the logical identity name.
	Name string
	// Issuer identifies the authority that issued the identity.
	Issuer string
	// Certificate is the identity's credential material, if exposed.
	Certificate string
	// State is the registry-side lifecycle state (e.g. ISSUED, REVOKED).
	State string
}

// Issuance is the result of issuing a new network identity.
type Issuance struct {
	// UserID is the enrollment id of the issued identity.
	UserID string
	// UserSecret is the one-time enrollment secret.
	UserSecret string
}

// ParticipantRegistry is the network-side directory of registered
// participants.
type ParticipantRegistry interface {
	// Add registers a new participant resource.
	Add(ctx context.Context, resource Resource) error
	// Exists reports whether a participant with the given identifier is
	// registered.
	Exists(ctx context.Context, identifier string) (bool, error)
}

// IdentityRegistry is the network-side directory of issued identities.
// No index is assumed: lookups are linear scans over GetAll.
type IdentityRegistry interface {
	GetAll(ctx context.Context) ([]Identity, error)
}
