package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/signadot/cfgtree"
	"github.com/signadot/cfgtree/cfglog"
	"github.com/signadot/cfgtree/encode"
)

var (
	flagSource      string
	flagDestination string
	flagMaxCycles   int
	flagOut         string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <file>",
	Short: "Compose, resolve, and print a configuration document as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&flagSource, "source", "/", "Node path to extract from the resolved tree")
	resolveCmd.Flags().StringVar(&flagDestination, "destination", "/", "Node path to relocate the extracted subtree under")
	resolveCmd.Flags().IntVar(&flagMaxCycles, "max-cycles", 0, "Resolver iteration cap (0 uses the package default)")
	resolveCmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
}

func runResolve(cmd *cobra.Command, args []string) error {
	path := args[0]
	workingDir := filepath.Dir(path)
	file := filepath.Base(path)

	opts := []cfgtree.Option{}
	if flagMaxCycles > 0 {
		opts = append(opts, cfgtree.MaxCycles(flagMaxCycles))
	}

	log := cfglog.For(cfglog.CategoryCompose)
	log.Infof("loading %s (source=%s destination=%s)", path, flagSource, flagDestination)

	root, err := cfgtree.LoadSub(file, workingDir, flagSource, flagDestination, opts...)
	if err != nil {
		exitCode = ExitRuntimeError
		return err
	}

	out, err := encode.MarshalIndent(root, "", "  ")
	if err != nil {
		exitCode = ExitRuntimeError
		return err
	}

	if flagOut == "" {
		fmt.Fprintln(os.Stdout, string(out))
		return nil
	}
	return os.WriteFile(flagOut, append(out, '\n'), 0o644)
}
