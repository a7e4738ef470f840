// Package project implements the project subcommands: registration, the
// unscoped listing, and the scoped show/update/delete operations.
package project

import (
	"github.com/spf13/cobra"
)

// Cmd returns the project parent command
func Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Register and manage projects",
	}

	cmd.AddCommand(RegisterCmd())
	cmd.AddCommand(ListCmd())
	cmd.AddCommand(ShowCmd())
	cmd.AddCommand(UpdateCmd())
	cmd.AddCommand(DeleteCmd())

	return cmd
}
