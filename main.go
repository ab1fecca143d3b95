package main

import (
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

const (
	colorSuccess = "\033[92m"
	colorInfo    = "\033[94m"
	colorWarning = "\033[33m"
	colorError   = "\033[91m"
	colorEnd     = "\033[0m"
)

// errFailed reports a check that failed after printing its own report.
var errFailed = errors.New("check failed")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vktools",
		Short: "Developer tooling for the Vulkan samples",
		Long: `vktools bundles the helper tools of the Vulkan samples repository:

  codegen     generate C++ helpers from the Vulkan registry (vk.xml)
  copyright   check and fix copyright headers of changed files
  shader      compile shader variants to SPIR-V
  generate    scaffold samples and the Android Gradle project
  systemtest  run samples and compare their screenshots with gold images`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				log.SetLevel(log.DebugLevel)
			}
		},
	}
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "vktools v%s\n", version)
		},
	})

	codegenCmd := &cobra.Command{
		Use:   "codegen",
		Short: "Generate C++ helpers from vk.xml",
		Long:  "Generate the headers configured in .vktools.yml. The config file is searched in the current directory and its parents unless --config is set.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile, _ := cmd.Flags().GetString("config")
			return run(cfgFile)
		},
	}
	codegenCmd.Flags().String("config", "", "Path to the config file")
	rootCmd.AddCommand(codegenCmd)

	rootCmd.AddCommand(newCopyrightCmd())
	rootCmd.AddCommand(newShaderCmd())
	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newSystemTestCmd())

	return rootCmd
}
