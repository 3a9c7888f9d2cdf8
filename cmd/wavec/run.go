package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <file>",
		Short: "Compile and execute a Wave source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(args[0], "run")
		},
	}
}

func newImgCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "img <file>",
		Short: "Compile a Wave source file to a bootable image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(args[0], "img")
		},
	}
}

// runPipeline drives compileFile for the run/img commands, both of which
// terminate at this core's boundary output (textual IR): executing the
// result or booting it as an image is delegated to an external toolchain
// this core does not invoke.
func runPipeline(path, mode string) error {
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

	switch mode {
	case "run":
		fmt.Printf("%s compiled %s (%s); execution is delegated to an external runtime, printing IR instead\n", green("✓"), path, optLevel())
	case "img":
		fmt.Printf("%s compiled %s (%s); image assembly and QEMU boot are delegated to external tooling, printing IR instead\n", green("✓"), path, optLevel())
	}
	fmt.Println(res.ir)
	return nil
}
