/*
Copyright FreshBlocks. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package mocks provides an in-memory ledger client used by tests.
// Failures are scripted through the exported error fields.
package mocks

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/brendonion/fresh-blocks/pkg/card"
	"github.com/brendonion/fresh-blocks/pkg/ledger"
	"github.com/hashicorp/go-uuid"
	"github.com/pkg/errors"
)

// MockClient is a scripted in-memory ledger.Client.
type MockClient struct {
	// ConnectErr, when set, makes every Connect attempt fail.
	ConnectErr error

	// IssueErr, when set, is copied onto every new session so that
	// identity issuance fails.
	IssueErr error

	lock         sync.Mutex
	sessions     []*MockSession
	identities   []ledger.Identity
	participants map[string]ledger.Resource
}

// NewClient creates a mock ledger client.
func NewClient() *MockClient {
	return &MockClient{participants: make(map[string]ledger.Resource)}
}

// Connect opens a scripted session bound to the card's business network.
func (c *MockClient) Connect(ctx context.Context, cd *card.Card) (ledger.Session, error) {
	if c.ConnectErr != nil {
		return nil, c.ConnectErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	session := &MockSession{
		client:     c,
		definition: &MockDefinition{name: cd.BusinessNetwork},
		IssueErr:   c.IssueErr,
	}
	c.sessions = append(c.sessions, session)
	return session, nil
}

// Sessions returns every session ever opened, closed ones included.
func (c *MockClient) Sessions() []*MockSession {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]*MockSession{}, c.sessions...)
}

// AddIdentity seeds the shared identity registry.
func (c *MockClient) AddIdentity(id ledger.Identity) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.identities = append(c.identities, id)
}

// Identities returns a copy of the shared identity registry.
func (c *MockClient) Identities() []ledger.Identity {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]ledger.Identity{}, c.identities...)
}

// MockSession is a scripted in-memory ledger.Session.
type MockSession struct {
	client     *MockClient
	definition *MockDefinition

	// scripted failures
	QueryErr    error
	SubmitErr   error
	RegistryErr error
	IssueErr    error
	RevokeErr   error
	CloseErr    error

	// QueryResults is returned by Query when QueryErr is nil.
	QueryResults []json.RawMessage

	lock      sync.Mutex
	closed    bool
	submitted []ledger.Resource
	revoked   []string
}

// Definition returns the session's business network definition.
func (s *MockSession) Definition() ledger.Definition {
	return s.definition
}

// Query returns the scripted results.
func (s *MockSession) Query(ctx context.Context, name string, params map[string]interface{}) ([]json.RawMessage, error) {
	if s.QueryErr != nil {
		return nil, s.QueryErr
	}
	return s.QueryResults, nil
}

// SubmitTransaction records the submitted resource.
func (s *MockSession) SubmitTransaction(ctx context.Context, resource ledger.Resource) error {
	if s.SubmitErr != nil {
		return s.SubmitErr
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.submitted = append(s.submitted, resource)
	return nil
}

// Submitted returns every resource submitted through this session.
func (s *MockSession) Submitted() []ledger.Resource {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]ledger.Resource{}, s.submitted...)
}

// ParticipantRegistry returns the client-wide participant registry.
func (s *MockSession) ParticipantRegistry(ctx context.Context, name string) (ledger.ParticipantRegistry, error) {
	if s.RegistryErr != nil {
		return nil, s.RegistryErr
	}
	return &mockParticipantRegistry{client: s.client}, nil
}

// IdentityRegistry returns the client-wide identity registry.
func (s *MockSession) IdentityRegistry(ctx context.Context) (ledger.IdentityRegistry, error) {
	if s.RegistryErr != nil {
		return nil, s.RegistryErr
	}
	return &mockIdentityRegistry{client: s.client}, nil
}

// IssueIdentity issues an identity with a random one-time secret and
// records it in the client-wide registry.
func (s *MockSession) IssueIdentity(ctx context.Context, participantID string, identityName string) (*ledger.Issuance, error) {
	if s.IssueErr != nil {
		return nil, s.IssueErr
	}
	secret, err := uuid.GenerateUUID()
	if err != nil {
		return nil, errors.Wrap(err, "secret generation failed")
	}
	s.client.AddIdentity(ledger.Identity{
		Name:   identityName,
		Issuer: "mock-ca",
		State:  "ISSUED",
	})
	return &ledger.Issuance{UserID: identityName, UserSecret: secret}, nil
}

// RevokeIdentity records the revocation.
func (s *MockSession) RevokeIdentity(ctx context.Context, identity *ledger.Identity) error {
	if s.RevokeErr != nil {
		return s.RevokeErr
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.revoked = append(s.revoked, identity.Name)
	return nil
}

// Revoked returns the names of identities revoked through this session.
func (s *MockSession) Revoked() []string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]string{}, s.revoked...)
}

// Close releases the session.
func (s *MockSession) Close(ctx context.Context) error {
	if s.CloseErr != nil {
		return s.CloseErr
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.closed = true
	return nil
}

// Closed reports whether Close was called.
func (s *MockSession) Closed() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.closed
}

// Participants returns the resources added to the client-wide
// participant registry. Registrations survive the session that made them.
func (s *MockSession) Participants() map[string]ledger.Resource {
	c := s.client
	c.lock.Lock()
	defer c.lock.Unlock()
	participants := make(map[string]ledger.Resource, len(c.participants))
	for id, resource := range c.participants {
		participants[id] = resource
	}
	return participants
}

type mockParticipantRegistry struct {
	client *MockClient
}

func (r *mockParticipantRegistry) Add(ctx context.Context, resource ledger.Resource) error {
	r.client.lock.Lock()
	defer r.client.lock.Unlock()
	r.client.participants[resource.Identifier()] = resource
	return nil
}

func (r *mockParticipantRegistry) Exists(ctx context.Context, identifier string) (bool, error) {
	r.client.lock.Lock()
	defer r.client.lock.Unlock()
	_, ok := r.client.participants[identifier]
	return ok, nil
}

type mockIdentityRegistry struct {
	client *MockClient
}

func (r *mockIdentityRegistry) GetAll(ctx context.Context) ([]ledger.Identity, error) {
	return r.client.Identities(), nil
}

// MockDefinition is an in-memory ledger.Definition.
type MockDefinition struct {
	name string
}

// Name returns the business network name.
func (d *MockDefinition) Name() string {
	return d.name
}

// Serializer returns a JSON serializer over mock resources.
func (d *MockDefinition) Serializer() ledger.Serializer {
	return &mockSerializer{}
}

// Factory returns a factory producing mock resources.
func (d *MockDefinition) Factory() ledger.Factory {
	return &mockFactory{}
}

type resourceDocument struct {
	Namespace  string                 `json:"$namespace"`
	Type       string                 `json:"$type"`
	Identifier string                 `json:"$identifier,omitempty"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
}

type mockSerializer struct{}

func (s *mockSerializer) ToJSON(resource ledger.Resource) (json.RawMessage, error) {
	mr, ok := resource.(*MockResource)
	if !ok {
		return nil, errors.Errorf("unknown resource implementation %T", resource)
	}
	return json.Marshal(resourceDocument{
		Namespace:  mr.NS,
		Type:       mr.Kind,
		Identifier: mr.ID,
		Fields:     mr.Fields,
	})
}

func (s *mockSerializer) FromJSON(document json.RawMessage) (ledger.Resource, error) {
	var doc resourceDocument
	if err := json.Unmarshal(document, &doc); err != nil {
		return nil, errors.Wrap(err, "document is not a resource")
	}
	if doc.Namespace == "" || doc.Type == "" {
		return nil, errors.New("document is missing $namespace or $type")
	}
	return &MockResource{NS: doc.Namespace, Kind: doc.Type, ID: doc.Identifier, Fields: doc.Fields}, nil
}

type mockFactory struct{}

func (f *mockFactory) NewResource(namespace, resourceType, identifier string) ledger.Resource {
	return &MockResource{NS: namespace, Kind: resourceType, ID: identifier}
}

func (f *mockFactory) NewConcept(namespace, conceptType string) ledger.Resource {
	return &MockResource{NS: namespace, Kind: conceptType}
}

func (f *mockFactory) NewRelationship(namespace, resourceType, identifier string) ledger.Resource {
	return &MockResource{NS: namespace, Kind: resourceType, ID: identifier, Relationship: true}
}

// MockResource is a simple in-memory ledger.Resource.
type MockResource struct {
	NS           string
	Kind         string
	ID           string
	Relationship bool
	Fields       map[string]interface{}
}

// Namespace returns the resource namespace.
func (r *MockResource) Namespace() string { return r.NS }

// Type returns the resource type.
func (r *MockResource) Type() string { return r.Kind }

// Identifier returns the resource identifier.
func (r *MockResource) Identifier() string { return r.ID }

// Field returns a named field value.
func (r *MockResource) Field(name string) (interface{}, bool) {
	value, ok := r.Fields[name]
	return value, ok
}

// SetField sets a named field value.
func (r *MockResource) SetField(name string, value interface{}) {
	if r.Fields == nil {
		r.Fields = make(map[string]interface{})
	}
	r.Fields[name] = value
}
