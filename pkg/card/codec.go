/*
Copyright FreshBlocks. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package card

import (
	"encoding/json"

	"github.com/brendonion/fresh-blocks/pkg/common/errors/status"
	"github.com/pkg/errors"
)

// Record is the persisted form of a Card. The connection profile and the
// roles are stored as serialized text. Decoding then re-encoding any
// stored record reproduces byte-identical serialized fields.
type Record struct {
	CardName          string `json:"cardName"`
	UserName          string `json:"userName"`
	BusinessNetwork   string `json:"businessNetwork"`
	ConnectionProfile string `json:"connectionProfile"`
	EnrollmentSecret  string `json:"enrollmentSecret"`
	Roles             string `json:"roles"`
	Version           int    `json:"version"`
}

// Encode serializes a card into its record form.
func Encode(c *Card) (*Record, error) {
	if c == nil {
		return nil, errors.New("card is nil")
	}
	roles, err := json.Marshal(c.Roles)
	if err != nil {
		return nil, errors.Wrap(err, "marshal of card roles failed")
	}
	return &Record{
		CardName:          c.Name,
		UserName:          c.UserName,
		BusinessNetwork:   c.BusinessNetwork,
		ConnectionProfile: string(c.ConnectionProfile),
		EnrollmentSecret:  c.EnrollmentSecret,
		Roles:             string(roles),
		Version:           c.Version,
	}, nil
}

// Decode parses a record back into a card. It fails with a MalformedCard
// status if the stored text is not valid structured data.
func Decode(r *Record) (*Card, error) {
	if r == nil {
		return nil, errors.New("record is nil")
	}
	if !json.Valid([]byte(r.ConnectionProfile)) {
		return nil, status.New(status.StoreStatus, status.MalformedCard.ToInt32(),
			"stored connection profile for card \""+r.CardName+"\" is not valid JSON", nil)
	}
	var roles []string
	if err := json.Unmarshal([]byte(r.Roles), &roles); err != nil {
		return nil, status.New(status.StoreStatus, status.MalformedCard.ToInt32(),
			"stored roles for card \""+r.CardName+"\" are not valid JSON", []interface{}{err})
	}
	return &Card{
		Name:              r.CardName,
		UserName:          r.UserName,
		BusinessNetwork:   r.BusinessNetwork,
		ConnectionProfile: json.RawMessage(r.ConnectionProfile),
		EnrollmentSecret:  r.EnrollmentSecret,
		Roles:             roles,
		Version:           r.Version,
	}, nil
}
