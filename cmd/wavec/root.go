package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/wavelang/wavec/internal/target"
)

var (
	// Version info, set by ldflags during build.
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"

	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()

	stderrOut io.Writer = os.Stderr
)

// optFlags holds the root command's persistent flags, shared by every
// subcommand regardless of where on the command line they appear.
type optFlags struct {
	o0, o1, o2, o3, os_, oz, ofast bool
	debugWave                      string
	link                           []string
	libPaths                       []string
	targetName                     string
}

var opts optFlags

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "wavec",
		Short:         "Ahead-of-time compiler for the Wave systems language",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, BuildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate(fmt.Sprintf("%s\n%s\n", bold("wavec "+Version), "commit "+Commit+", built "+BuildTime))

	pf := root.PersistentFlags()
	pf.BoolVar(&opts.o0, "O0", false, "optimize: no optimization")
	pf.BoolVar(&opts.o1, "O1", false, "optimize: level 1")
	pf.BoolVar(&opts.o2, "O2", false, "optimize: level 2")
	pf.BoolVar(&opts.o3, "O3", false, "optimize: level 3")
	pf.BoolVar(&opts.os_, "Os", false, "optimize: favor size")
	pf.BoolVar(&opts.oz, "Oz", false, "optimize: favor size aggressively")
	pf.BoolVar(&opts.ofast, "Ofast", false, "optimize: aggressive, may break strict semantics")
	pf.StringVar(&opts.debugWave, "debug-wave", "", "comma-combination of tokens,ast,ir,mc,hex,all")
	pf.StringArrayVar(&opts.link, "link", nil, "link against a native library")
	pf.StringArrayVarP(&opts.libPaths, "L", "L", nil, "add a library search path")
	pf.StringVar(&opts.targetName, "target", "", "target triple name (defaults to the host target)")

	root.AddCommand(newRunCmd())
	root.AddCommand(newImgCmd())
	root.AddCommand(newBuildCmd())
	root.AddCommand(newStdCmd())

	return root
}

// optLevel normalizes whichever -O flag was passed to the single flag the
// IR-pass pipeline selects on, per spec §6.2. -O3 is the default when none
// was given, matching the teacher's convention of a sensible default
// rather than an error for an unset choice.
func optLevel() string {
	switch {
	case opts.o0:
		return "-O0"
	case opts.o1:
		return "-O1"
	case opts.o2:
		return "-O2"
	case opts.os_:
		return "-Os"
	case opts.oz:
		return "-Oz"
	case opts.ofast:
		return "-O3"
	default:
		return "-O3"
	}
}

func resolveTarget() (*target.Spec, error) {
	if opts.targetName == "" {
		return target.Default()
	}
	return target.Lookup(opts.targetName)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}
}
