// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlaceHub Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the PlaceHub CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "placehub",
		Short: "PlaceHub - a places sharing backend",
		Long: `PlaceHub is the backend for a places application: authenticated users
create, update, and delete location records that stay cross-referenced
to their owning user.`,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewStatusCmd())

	return cmd
}
