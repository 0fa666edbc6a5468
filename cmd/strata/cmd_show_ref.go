package main

import (
	"errors"
	"fmt"

	"github.com/odvcencio/strata/pkg/repo"
	"github.com/spf13/cobra"
)

func newShowRefCmd() *cobra.Command {
	var heads, tags, head bool

	cmd := &cobra.Command{
		Use:   "show-ref [--heads] [--tags] [--head]",
		Short: "List references and the objects they name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if head {
				h, err := r.ResolveRef("HEAD")
				switch {
				case err == nil:
					fmt.Fprintf(out, "%s HEAD\n", h)
				case !errors.Is(err, repo.ErrRefNotFound):
					return err
				}
			}

			var prefixes []string
			if heads {
				prefixes = append(prefixes, "refs/heads")
			}
			if tags {
				prefixes = append(prefixes, "refs/tags")
			}
			if len(prefixes) == 0 {
				prefixes = []string{""}
			}
			for _, prefix := range prefixes {
				refs, err := r.ListRefs(prefix)
				if err != nil {
					return err
				}
				for _, ref := range refs {
					fmt.Fprintf(out, "%s %s\n", ref.Hash, ref.Name)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&heads, "heads", false, "show only branches")
	cmd.Flags().BoolVar(&tags, "tags", false, "show only tags")
	cmd.Flags().BoolVar(&head, "head", false, "show HEAD as well")
	return cmd
}
