/*
Copyright FreshBlocks. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package connection

import (
	"context"
	"testing"

	"github.com/brendonion/fresh-blocks/pkg/card"
	"github.com/brendonion/fresh-blocks/pkg/cardstore"
	"github.com/brendonion/fresh-blocks/pkg/common/errors/status"
	"github.com/brendonion/fresh-blocks/pkg/ledger/mocks"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issuanceRequest() *IssuanceRequest {
	participant := &mocks.MockResource{NS: Namespace, Kind: ParticipantUser, ID: "alice@example.com"}
	participant.SetField("firstName", "Alice")
	return &IssuanceRequest{
		AdminCardName: "admin@freshblocks",
		CardName:      "alice",
		RegistryName:  ParticipantUser,
		Participant:   participant,
		IdentityName:  "alice@example.com",
	}
}

func issuanceSetup(t *testing.T) (*Manager, *mocks.MockClient, *cardstore.Store) {
	manager, client, store := testSetup(t)
	require.NoError(t, manager.ImportNewCard(context.Background(), "admin@freshblocks", "adminpw"))
	return manager, client, store
}

func TestIssueIdentity(t *testing.T) {
	ctx := context.Background()
	manager, client, store := issuanceSetup(t)

	result, err := manager.IssueIdentity(ctx, issuanceRequest())
	require.NoError(t, err)
	assert.Equal(t, []IssuanceStep{
		StepConnectAdmin,
		StepRegisterParticipant,
		StepIssueIdentity,
		StepImportCard,
		StepDisconnectAdmin,
	}, result.Completed)
	assert.NotEmpty(t, result.Secret)

	// the new card carries the one-time secret from the network
	c, err := store.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, result.Secret, c.EnrollmentSecret)

	session := client.Sessions()[0]
	assert.True(t, session.Closed())
	assert.Contains(t, session.Participants(), "alice@example.com")
	assert.Len(t, client.Identities(), 1)
}

func TestIssueIdentityUnknownAdminCard(t *testing.T) {
	manager, client, _ := testSetup(t)

	result, err := manager.IssueIdentity(context.Background(), issuanceRequest())
	assert.True(t, status.IsCode(err, status.CardNotFound))
	assert.Empty(t, result.Completed)
	assert.Empty(t, client.Sessions())
}

func TestIssueIdentityAbortsOnIssueFailure(t *testing.T) {
	ctx := context.Background()
	manager, client, store := issuanceSetup(t)

	client.IssueErr = errors.New("CA unavailable")

	result, err := manager.IssueIdentity(ctx, issuanceRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "identity issuance aborted at step issue-identity")
	assert.Equal(t, []IssuanceStep{StepConnectAdmin, StepRegisterParticipant}, result.Completed)

	// no rollback: the participant registered in step 2 stays registered
	session := client.Sessions()[0]
	assert.Contains(t, session.Participants(), "alice@example.com")
	// the aborted sequence still releases the administrative session
	assert.True(t, session.Closed())
	// and no card was imported for the user
	assert.False(t, store.Has(ctx, "alice"))
}

func TestIssueIdentityAbortsOnImportFailure(t *testing.T) {
	ctx := context.Background()
	client := mocks.NewClient()
	collection := &insertFailingCollection{MemCollection: cardstore.NewMemCollection()}
	store := cardstore.New(collection)
	manager, err := NewManager(store, client,
		WithBusinessNetwork("freshblocks"),
		WithProfileTemplate(testProfile))
	require.NoError(t, err)

	require.NoError(t, manager.ImportNewCard(ctx, "admin@freshblocks", "adminpw"))
	collection.failInserts = true

	result, err := manager.IssueIdentity(ctx, issuanceRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "identity issuance aborted at step import-card")
	assert.Equal(t, []IssuanceStep{
		StepConnectAdmin,
		StepRegisterParticipant,
		StepIssueIdentity,
	}, result.Completed)
	// the issued secret is still reported so the caller can compensate
	assert.NotEmpty(t, result.Secret)
	assert.True(t, client.Sessions()[0].Closed())
}

func TestIssueIdentityRejectsDuplicateParticipant(t *testing.T) {
	ctx := context.Background()
	manager, client, store := issuanceSetup(t)

	_, err := manager.IssueIdentity(ctx, issuanceRequest())
	require.NoError(t, err)

	// same participant under a different card and identity name
	req := issuanceRequest()
	req.CardName = "alice2"
	req.IdentityName = "alice2@example.com"

	result, err := manager.IssueIdentity(ctx, req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "identity issuance aborted at step register-participant")
	assert.Contains(t, err.Error(), "already registered")
	assert.Equal(t, []IssuanceStep{StepConnectAdmin}, result.Completed)

	// nothing was written: no second identity, no second card
	assert.Len(t, client.Identities(), 1)
	assert.False(t, store.Has(ctx, "alice2"))

	sessions := client.Sessions()
	assert.True(t, sessions[len(sessions)-1].Closed())
}

func TestIssueIdentityRequiresParticipant(t *testing.T) {
	manager, _, _ := issuanceSetup(t)
	req := issuanceRequest()
	req.Participant = nil

	_, err := manager.IssueIdentity(context.Background(), req)
	assert.Error(t, err)
}

type insertFailingCollection struct {
	*cardstore.MemCollection
	failInserts bool
}

func (c *insertFailingCollection) Insert(ctx context.Context, record *card.Record) error {
	if c.failInserts {
		return errors.New("store unreachable")
	}
	return c.MemCollection.Insert(ctx, record)
}
