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
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManagerValidation(t *testing.T) {
	store := cardstore.New(cardstore.NewMemCollection())

	_, err := NewManager(store, nil, WithProfileTemplate(testProfile))
	assert.EqualError(t, err, "business network name is required")

	_, err = NewManager(store, nil, WithBusinessNetwork("freshblocks"))
	assert.EqualError(t, err, "connection profile template is required")

	_, err = NewManager(store, nil,
		WithBusinessNetwork("freshblocks"),
		WithProfileTemplate([]byte("{not json")))
	assert.Error(t, err)
}

func TestCreateConnectionUnknownCard(t *testing.T) {
	manager, client, _ := testSetup(t)

	_, err := manager.CreateConnection(context.Background(), "nobody")
	assert.True(t, status.IsCode(err, status.CardNotFound))

	// the store miss must short-circuit before any network call
	assert.Empty(t, client.Sessions())
}

func TestCreateConnectionNetworkFailure(t *testing.T) {
	ctx := context.Background()
	manager, client, _ := testSetup(t)
	require.NoError(t, manager.ImportNewCard(ctx, "alice", "secret123"))
	client.ConnectErr = errors.New("peers unreachable")

	_, err := manager.CreateConnection(ctx, "alice")
	assert.True(t, status.IsCode(err, status.ConnectionError))
}

func TestImportNewCardUsesTemplate(t *testing.T) {
	ctx := context.Background()
	manager, _, store := testSetup(t)
	require.NoError(t, manager.ImportNewCard(ctx, "  alice  ", "secret123"))

	c, err := store.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", c.Name)
	assert.Equal(t, "freshblocks", c.BusinessNetwork)
	assert.Equal(t, "secret123", c.EnrollmentSecret)
	assert.Equal(t, testProfile, c.ConnectionProfile)
	assert.Equal(t, card.CurrentVersion, c.Version)
}

func TestImportNewCardReplaces(t *testing.T) {
	ctx := context.Background()
	manager, _, store := testSetup(t)
	require.NoError(t, manager.ImportNewCard(ctx, "alice", "first"))
	require.NoError(t, manager.ImportNewCard(ctx, "alice", "second"))

	c, err := store.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "second", c.EnrollmentSecret)
}

func TestImportCardKeepsContent(t *testing.T) {
	ctx := context.Background()
	manager, _, _ := testSetup(t)

	admin := &card.Card{
		Name:              "ignored",
		UserName:          "admin",
		BusinessNetwork:   "freshblocks",
		ConnectionProfile: testProfile,
		EnrollmentSecret:  "adminpw",
		Roles:             []string{"PeerAdmin", "ChannelAdmin"},
		Version:           card.CurrentVersion,
	}
	require.NoError(t, manager.ImportCard(ctx, "admin@freshblocks", admin))

	c, err := manager.GetCard(ctx, "admin@freshblocks")
	require.NoError(t, err)
	assert.Equal(t, "admin@freshblocks", c.Name)
	assert.Equal(t, "admin", c.UserName)
	assert.Equal(t, []string{"PeerAdmin", "ChannelAdmin"}, c.Roles)

	// the caller's card is not mutated
	assert.Equal(t, "ignored", admin.Name)
}

func TestDisconnectLeavesCardRetrievable(t *testing.T) {
	ctx := context.Background()
	manager, client, _ := testSetup(t)
	require.NoError(t, manager.ImportNewCard(ctx, "alice", "secret123"))

	conn, err := manager.CreateConnection(ctx, "alice")
	require.NoError(t, err)
	require.NoError(t, conn.Disconnect(ctx))
	assert.True(t, client.Sessions()[0].Closed())

	c, err := manager.GetCard(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", c.Name)
}
