/*
Copyright FreshBlocks. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package connection

import "github.com/brendonion/fresh-blocks/pkg/ledger"

// Namespace is the model namespace of the business network.
const Namespace = "org.freshblocks"

// Model type names within the namespace.
const (
	ParticipantUser = "User"
)

// User carries the participant fields of the network's User model.
type User struct {
	Email     string
	FirstName string
	LastName  string
}

// ModelFactory builds ledger-native resources for the business network's
// model using a connection's network definition.
type ModelFactory struct {
	definition ledger.Definition
}

// NewModelFactory creates a factory over the given connection. The
// factory is only usable while the connection stays open.
func NewModelFactory(conn *Connection) *ModelFactory {
	return &ModelFactory{definition: conn.definition}
}

// CreateUser creates a new User participant resource. The email is the
// resource identifier, as declared in the network's model file.
func (f *ModelFactory) CreateUser(user *User) ledger.Resource {
	resource := f.definition.Factory().NewResource(Namespace, ParticipantUser, user.Email)
	resource.SetField("firstName", user.FirstName)
	resource.SetField("lastName", user.LastName)
	return resource
}

// EditUser updates an existing User participant resource in place and
// returns it for saving.
func (f *ModelFactory) EditUser(resource ledger.Resource, user *User) ledger.Resource {
	resource.SetField("firstName", user.FirstName)
	resource.SetField("lastName", user.LastName)
	return resource
}

// CreateConcept creates a new concept of the given type.
func (f *ModelFactory) CreateConcept(conceptType string) ledger.Resource {
	return f.definition.Factory().NewConcept(Namespace, conceptType)
}

// CreateRelationship creates a relationship pointing at an asset or
// participant of the given type.
func (f *ModelFactory) CreateRelationship(resourceType, identifier string) ledger.Resource {
	return f.definition.Factory().NewRelationship(Namespace, resourceType, identifier)
}
