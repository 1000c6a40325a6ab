package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

// Exit codes.
const (
	ExitSuccess      = 0
	ExitUsageError   = 2
	ExitRuntimeError = 4
)

var rootCmd = &cobra.Command{
	Use:   "ccfgtool",
	Short: "Compose and resolve CppConfigFramework-shaped configuration documents",
	Long:  "ccfgtool loads a configuration document, recursively composes its includes, resolves node references and derived objects, and prints the result.",
}

var exitCode = ExitSuccess

// Run executes the root command and returns a process exit code.
func Run() int {
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		if exitCode != ExitSuccess {
			return exitCode
		}
		return ExitUsageError
	}
	return exitCode
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print ccfgtool version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "ccfgtool version %s\n", version)
	},
}
