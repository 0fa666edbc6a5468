package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newTagCmd() *cobra.Command {
	var deleteTag string
	var force bool
	var showHash bool
	var annotate bool
	var message string

	cmd := &cobra.Command{
		Use:   "tag [name] [target]",
		Short: "List, create, or delete tags",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}

			if strings.TrimSpace(deleteTag) != "" {
				if len(args) > 0 {
					return fmt.Errorf("tag --delete does not accept positional args")
				}
				return r.DeleteTag(deleteTag)
			}

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				refs, err := r.ListRefs("refs/tags")
				if err != nil {
					return err
				}
				for _, ref := range refs {
					name := strings.TrimPrefix(ref.Name, "refs/tags/")
					if showHash {
						fmt.Fprintf(out, "%s %s\n", ref.Hash, name)
					} else {
						fmt.Fprintln(out, name)
					}
				}
				return nil
			}

			name := args[0]
			targetArg := "HEAD"
			if len(args) == 2 {
				targetArg = strings.TrimSpace(args[1])
			}
			target, err := r.FindObject(targetArg, "")
			if err != nil {
				return fmt.Errorf("resolve %s: %w", targetArg, err)
			}

			if annotate || message != "" {
				_, err := r.CreateAnnotatedTag(name, target, message, force)
				return err
			}
			return r.CreateTag(name, target, force)
		},
	}

	cmd.Flags().StringVarP(&deleteTag, "delete", "d", "", "delete the named tag")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "replace an existing tag")
	cmd.Flags().BoolVar(&showHash, "show-hash", false, "show tag hashes when listing")
	cmd.Flags().BoolVarP(&annotate, "annotate", "a", false, "write an annotated tag object")
	cmd.Flags().StringVarP(&message, "message", "m", "", "annotated tag message (implies -a)")
	return cmd
}
