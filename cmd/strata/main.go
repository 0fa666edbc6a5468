package main

import (
	"fmt"
	"os"

	"github.com/odvcencio/strata/pkg/repo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "strata",
		Short:         "Content-addressed object store with git-compatible objects",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().Bool("debug", false, "log store and ref activity to stderr")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newHashObjectCmd())
	root.AddCommand(newCatFileCmd())
	root.AddCommand(newLsTreeCmd())
	root.AddCommand(newWriteTreeCmd())
	root.AddCommand(newCommitTreeCmd())
	root.AddCommand(newCommitCmd())
	root.AddCommand(newLogCmd())
	root.AddCommand(newRevParseCmd())
	root.AddCommand(newShowRefCmd())
	root.AddCommand(newBranchCmd())
	root.AddCommand(newTagCmd())
	root.AddCommand(newCheckoutCmd())
	root.AddCommand(newReflogCmd())
	root.AddCommand(newFsckCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "strata %s\n", version)
		},
	}
}

// commandLogger returns a development logger on stderr when --debug is set
// and a no-op logger otherwise. Commands run without the root command have
// no --debug flag and stay quiet.
func commandLogger(cmd *cobra.Command) (*zap.Logger, error) {
	debug, err := cmd.Flags().GetBool("debug")
	if err != nil || !debug {
		return zap.NewNop(), nil
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// openRepo opens the repository containing the working directory.
func openRepo(cmd *cobra.Command) (*repo.Repo, error) {
	logger, err := commandLogger(cmd)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return repo.Open(".", repo.WithLogger(logger))
}
