/*
Copyright FreshBlocks. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package cards implements the card management commands of the
// freshblocks tool.
package cards

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/brendonion/fresh-blocks/pkg/card"
	"github.com/brendonion/fresh-blocks/pkg/cardstore"
	"github.com/brendonion/fresh-blocks/pkg/config"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// Cmd returns the Cobra command for card management.
func Cmd() *cobra.Command {
	cardsCmd := &cobra.Command{
		Use:   "cards",
		Short: "Manage business network cards",
	}
	cardsCmd.AddCommand(listCmd(), importCmd(), removeCmd())
	return cardsCmd
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	return config.Load(configPath)
}

func openStore(cfg *config.Config) (*cardstore.Store, func(), error) {
	collection, err := cardstore.OpenSQLiteCollection(cfg.Store.Path)
	if err != nil {
		return nil, nil, err
	}
	return cardstore.New(collection), func() { _ = collection.Close() }, nil
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the stored cards",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			store, release, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer release()

			cards, skipped, err := store.GetAll(context.Background())
			if err != nil {
				return err
			}
			names := make([]string, 0, len(cards))
			for name := range cards {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				c := cards[name]
				fmt.Fprintf(cmd.OutOrStdout(), "%s\tuser=%s\tnetwork=%s\tversion=%d\n",
					name, c.UserName, c.BusinessNetwork, c.Version)
			}
			for _, name := range skipped {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: skipped undecodable card record %q\n", name)
			}
			return nil
		},
	}
}

func importCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "import [archive-file]",
		Short: "Import a card from a card archive",
		Long: `Import a card from a card archive. With no archive argument the
configured administrative card (network.admin-card-archive) is imported
under the configured admin card name, bootstrapping the store.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			archivePath := cfg.Network.AdminCardArchive
			bootstrap := len(args) == 0
			if !bootstrap {
				archivePath = args[0]
			}
			if archivePath == "" {
				return errors.New("no archive file given and network.admin-card-archive is not configured")
			}

			data, err := os.ReadFile(archivePath)
			if err != nil {
				return errors.Wrapf(err, "read of card archive %s failed", archivePath)
			}
			imported, err := card.FromArchive(data)
			if err != nil {
				return err
			}
			if name == "" {
				if bootstrap {
					name = cfg.Network.AdminCardName
				}
				if name == "" {
					name = imported.Name
				}
			}
			imported.Name = name

			store, release, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer release()

			if err := store.Put(context.Background(), name, imported); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported card %q for user %s\n", name, imported.UserName)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "card name to import under (defaults to the configured admin card name, then the archived user name)")
	return cmd
}

func removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <card-name>",
		Short: "Remove a stored card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			store, release, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer release()

			if err := store.Delete(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed card %q\n", args[0])
			return nil
		},
	}
}
