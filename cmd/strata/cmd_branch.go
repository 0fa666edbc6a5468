package main

import (
	"fmt"

	"github.com/odvcencio/strata/pkg/object"
	"github.com/spf13/cobra"
)

func newBranchCmd() *cobra.Command {
	var deleteBranch string

	cmd := &cobra.Command{
		Use:   "branch [name [start]]",
		Short: "List, create, or delete branches",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}
			current, _ := r.CurrentBranch()

			// Delete mode.
			if deleteBranch != "" {
				if deleteBranch == current {
					return fmt.Errorf("cannot delete branch '%s': it is checked out", deleteBranch)
				}
				if err := r.DeleteRef("refs/heads/" + deleteBranch); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted branch %s\n", deleteBranch)
				return nil
			}

			// Create mode.
			if len(args) > 0 {
				start := "HEAD"
				if len(args) == 2 {
					start = args[1]
				}
				target, err := r.FindObject(start, object.TypeCommit)
				if err != nil {
					return fmt.Errorf("cannot resolve %s: %w", start, err)
				}
				return r.CreateBranch(args[0], target)
			}

			// List mode.
			branches, err := r.ListBranches()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, b := range branches {
				if b == current {
					fmt.Fprintf(out, "* %s\n", b)
				} else {
					fmt.Fprintf(out, "  %s\n", b)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&deleteBranch, "delete", "d", "", "delete the named branch")
	return cmd
}
