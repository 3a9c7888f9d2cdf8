package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newBuildCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "build <file>",
		Short: "Compile a Wave source file to a native executable, or an object file with -o",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(args[0], output)
		},
	}
	cmd.Flags().StringVarP(&output, "o", "o", "", "write the object file to this path instead of compiling to an executable")
	return cmd
}

// runBuild lowers path to textual IR and, per spec §6, either writes it to
// the -o path (standing in for the object file this core's IR is the
// boundary output of) or prints it in place of a linked executable.
// Backend object/executable emission and linker invocation are external
// collaborators this core never calls.
func runBuild(path, output string) error {
	tgt, err := resolveTarget()
	if err != nil {
		return err
	}

	res, diag, err := compileFile(path, tgt)
	if diag != nil {
		fmt.Fprint(os.Stderr, diag.String())
		return fmt.Errorf("compilation failed")
	}
	if err != nil {
		return err
	}

	modes := debugWaveModes(opts.debugWave)
	if len(modes) > 0 {
		dumpDebugWave(modes, res)
	}

	if len(opts.link) > 0 || len(opts.libPaths) > 0 {
		fmt.Fprintf(stderrOut, "%s --link/-L are recorded but not acted on: linker invocation is delegated to an external tool\n", yellow("Note"))
	}

	if output == "" {
		fmt.Printf("%s compiled %s (%s); linking to a native executable is delegated to an external tool, printing IR instead\n", green("✓"), path, optLevel())
		fmt.Println(res.ir)
		return nil
	}

	if err := os.WriteFile(output, []byte(res.ir), 0o644); err != nil {
		return fmt.Errorf("cannot write %s: %w", output, err)
	}
	fmt.Println(output)
	return nil
}
