package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wavelang/wavec/internal/stdmanifest"
)

// newStdCmd groups install/update under `wavec std`, spec §6.1's
// "install std"/"update std" restructured as a subcommand family (see
// SPEC_FULL.md §6.5). Both only validate a local std tree's manifest.json
// (spec §6.4); the git-based sync that populates the tree is an external
// collaborator this core does not perform.
func newStdCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "std",
		Short: "Manage the standard library tree",
	}
	cmd.AddCommand(newStdInstallCmd())
	cmd.AddCommand(newStdUpdateCmd())
	return cmd
}

func newStdInstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install <dir>",
		Short: "Validate and install a standard library tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return stdSync(args[0], "install")
		},
	}
}

func newStdUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update <dir>",
		Short: "Validate and update an existing standard library tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return stdSync(args[0], "update")
		},
	}
}

func stdSync(dir, verb string) error {
	m, err := stdmanifest.Validate(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		return fmt.Errorf("std %s aborted", verb)
	}
	fmt.Printf("%s manifest %q validated, std tree at %s is ready to %s\n", green("✓"), m.Name, dir, verb)
	fmt.Fprintf(stderrOut, "%s fetching upstream sources is delegated to an external git-based sync, not performed by this core\n", yellow("Note"))
	return nil
}
