package main

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/odvcencio/strata/pkg/object"
	"github.com/odvcencio/strata/pkg/repo"
	"github.com/spf13/cobra"
)

func newFsckCmd() *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "fsck",
		Short: "Verify object integrity and ref connectivity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			problems, err := r.Store.Verify(cmd.Context(), workers)
			if err != nil {
				return err
			}
			for _, p := range problems {
				fmt.Fprintf(out, "corrupt %s: %v\n", p.Hash, p.Err)
			}

			roots, err := refRoots(r)
			if err != nil {
				return err
			}
			reachable, err := object.ReachableSet(r.Store, roots)
			if err != nil {
				fmt.Fprintf(out, "broken link: %v\n", err)
				return fmt.Errorf("fsck: history is not connected: %w", err)
			}
			if len(problems) > 0 {
				return fmt.Errorf("fsck: %d corrupt object(s)", len(problems))
			}

			fmt.Fprintf(out, "ok: %d object(s) reachable from %d root(s)\n", len(reachable), len(roots))
			return nil
		},
	}

	cmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "objects verified in parallel")
	return cmd
}

// refRoots collects the objects named by HEAD and every ref.
func refRoots(r *repo.Repo) ([]object.Hash, error) {
	var roots []object.Hash
	head, err := r.ResolveRef("HEAD")
	switch {
	case err == nil:
		roots = append(roots, head)
	case !errors.Is(err, repo.ErrRefNotFound):
		return nil, err
	}
	refs, err := r.ListRefs("")
	if err != nil {
		return nil, err
	}
	for _, ref := range refs {
		roots = append(roots, ref.Hash)
	}
	return roots, nil
}
