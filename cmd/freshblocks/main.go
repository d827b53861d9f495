/*
Copyright FreshBlocks. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// freshblocks is the operator tool for the business network card store:
// it bootstraps the administrative card from an archive and inspects the
// persisted cards.
package main

import (
	"fmt"
	"os"

	"github.com/brendonion/fresh-blocks/cmd/freshblocks/cards"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "freshblocks",
		Short: "FreshBlocks business network tooling",
	}
	rootCmd.PersistentFlags().String("config", "freshblocks.yaml", "path of the configuration file")
	rootCmd.AddCommand(cards.Cmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
