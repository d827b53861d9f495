/*
Copyright FreshBlocks. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package cards

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/brendonion/fresh-blocks/pkg/card"
	"github.com/brendonion/fresh-blocks/pkg/cardstore"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testProfile = json.RawMessage(`{"name":"hlfv1","peers":{"peer0.org1.example.com":{"url":"grpc://localhost:7051"}}}`)

type testEnv struct {
	storePath   string
	archivePath string
	configPath  string
}

func setupEnv(t *testing.T) *testEnv {
	dir := t.TempDir()
	env := &testEnv{
		storePath:   filepath.Join(dir, "cards.db"),
		archivePath: filepath.Join(dir, "admin.card"),
		configPath:  filepath.Join(dir, "freshblocks.yaml"),
	}

	archive, err := card.ToArchive(&card.Card{
		Name:              "admin",
		UserName:          "admin",
		BusinessNetwork:   "freshblocks",
		ConnectionProfile: testProfile,
		EnrollmentSecret:  "adminpw",
		Roles:             []string{"PeerAdmin", "ChannelAdmin"},
		Version:           card.CurrentVersion,
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(env.archivePath, archive, 0600))

	configYAML := fmt.Sprintf(`
store:
  path: %s
network:
  name: freshblocks
  admin-card-name: admin@freshblocks.card
  admin-card-archive: %s
  profile:
    name: hlfv1
`, env.storePath, env.archivePath)
	require.NoError(t, os.WriteFile(env.configPath, []byte(configYAML), 0600))
	return env
}

func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	root := &cobra.Command{Use: "freshblocks"}
	root.PersistentFlags().String("config", e.configPath, "path of the configuration file")
	root.AddCommand(Cmd())

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func (e *testEnv) storedCard(t *testing.T, name string) (*card.Card, error) {
	collection, err := cardstore.OpenSQLiteCollection(e.storePath)
	require.NoError(t, err)
	defer collection.Close()
	return cardstore.New(collection).Get(context.Background(), name)
}

func TestImportBootstrapsAdminCard(t *testing.T) {
	env := setupEnv(t)

	// no archive argument: the configured admin card is imported under
	// the configured admin card name
	_, err := env.run(t, "cards", "import")
	require.NoError(t, err)

	c, err := env.storedCard(t, "admin@freshblocks.card")
	require.NoError(t, err)
	assert.Equal(t, "admin", c.UserName)
	assert.Equal(t, "adminpw", c.EnrollmentSecret)
}

func TestImportExplicitArchive(t *testing.T) {
	env := setupEnv(t)

	_, err := env.run(t, "cards", "import", env.archivePath, "--name", "alice")
	require.NoError(t, err)

	c, err := env.storedCard(t, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", c.Name)
	assert.Equal(t, "admin", c.UserName)
}

func TestImportExplicitArchiveDefaultsToArchivedUser(t *testing.T) {
	env := setupEnv(t)

	_, err := env.run(t, "cards", "import", env.archivePath)
	require.NoError(t, err)

	_, err = env.storedCard(t, "admin")
	require.NoError(t, err)
}

func TestListShowsImportedCards(t *testing.T) {
	env := setupEnv(t)
	_, err := env.run(t, "cards", "import")
	require.NoError(t, err)

	out, err := env.run(t, "cards", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "admin@freshblocks.card")
	assert.Contains(t, out, "user=admin")
}

func TestRemoveCard(t *testing.T) {
	env := setupEnv(t)
	_, err := env.run(t, "cards", "import")
	require.NoError(t, err)

	_, err = env.run(t, "cards", "remove", "admin@freshblocks.card")
	require.NoError(t, err)

	_, err = env.storedCard(t, "admin@freshblocks.card")
	assert.Error(t, err)
}
