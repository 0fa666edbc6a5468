package main

import (
	"fmt"

	"github.com/odvcencio/strata/pkg/object"
	"github.com/spf13/cobra"
)

func newRevParseCmd() *cobra.Command {
	var typeName string
	var short int

	cmd := &cobra.Command{
		Use:   "rev-parse [--type <type>] [--short N] <name>...",
		Short: "Resolve names, refs and abbreviated hashes to full object IDs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var want object.ObjectType
			if typeName != "" {
				t, ok := object.ParseObjectType(typeName)
				if !ok {
					return fmt.Errorf("rev-parse: unknown object type %q", typeName)
				}
				want = t
			}
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, name := range args {
				h, err := r.FindObject(name, want)
				if err != nil {
					return err
				}
				if short > 0 {
					fmt.Fprintln(out, h.Short(max(short, object.MinPrefixLen)))
					continue
				}
				fmt.Fprintln(out, h)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&typeName, "type", "", "peel the result to this object type")
	cmd.Flags().IntVar(&short, "short", 0, "abbreviate the output to N hex digits")
	return cmd
}
