/*
Copyright FreshBlocks. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package card defines the business network identity card and its
// persisted record form.
package card

import "encoding/json"

// CurrentVersion is the card-format version assigned to newly created cards.
const CurrentVersion = 1

// Card is the in-memory representation of one user's access credentials
// for a business network.
type Card struct {
	// Name is the unique identifier of the card, used as the store key.
	Name string
	// UserName is the logical identity name known to the network.
	UserName string
	// BusinessNetwork is the network this card authorizes access to.
	BusinessNetwork string
	// ConnectionProfile describes the network topology needed to reach the
	// ledger endpoints. It is opaque to this subsystem: stored and replayed,
	// never interpreted.
	ConnectionProfile json.RawMessage
	// EnrollmentSecret is one-time credential material exchanged for a
	// durable session identity.
	EnrollmentSecret string
	// Roles are the role strings granted to this identity, in order.
	Roles []string
	// Version is the card-format version, set at creation.
	Version int
}

// New creates a card for the given name and enrollment secret using the
// supplied connection profile and business network.
func New(name, secret, businessNetwork string, profile json.RawMessage) *Card {
	return &Card{
		Name:              name,
		UserName:          name,
		BusinessNetwork:   businessNetwork,
		ConnectionProfile: profile,
		EnrollmentSecret:  secret,
		Version:           CurrentVersion,
	}
}
