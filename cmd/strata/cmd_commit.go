package main

import (
	"fmt"
	"strings"

	"github.com/odvcencio/strata/pkg/object"
	"github.com/spf13/cobra"
)

func newCommitTreeCmd() *cobra.Command {
	var parents []string
	var message string

	cmd := &cobra.Command{
		Use:   "commit-tree <tree> [-p <parent>]... -m <message>",
		Short: "Create a commit object for a tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(message) == "" {
				return fmt.Errorf("commit-tree: message is required (-m)")
			}
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}
			tree, err := r.FindObject(args[0], object.TypeTree)
			if err != nil {
				return err
			}
			parentHashes := make([]object.Hash, 0, len(parents))
			for _, p := range parents {
				h, err := r.FindObject(p, object.TypeCommit)
				if err != nil {
					return err
				}
				parentHashes = append(parentHashes, h)
			}
			h, err := r.CommitTree(tree, parentHashes, message)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&parents, "parent", "p", nil, "parent commit (repeatable)")
	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	return cmd
}

func newCommitCmd() *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "commit -m <message>",
		Short: "Record the working directory as a new commit on HEAD",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(message) == "" {
				return fmt.Errorf("commit: message is required (-m)")
			}
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}
			tree, err := r.WriteTreeFromDir(r.RootDir)
			if err != nil {
				return err
			}
			h, err := r.Commit(tree, message)
			if err != nil {
				return err
			}

			where := "detached HEAD"
			if branch, err := r.CurrentBranch(); err == nil && branch != "" {
				where = branch
			}
			subject, _, _ := strings.Cut(strings.TrimSpace(message), "\n")
			fmt.Fprintf(cmd.OutOrStdout(), "[%s %s] %s\n", where, h.Short(7), subject)
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	return cmd
}
