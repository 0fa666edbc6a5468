package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/odvcencio/strata/pkg/object"
	"github.com/spf13/cobra"
)

func newCatFileCmd() *cobra.Command {
	var showType, showSize, pretty, exists bool

	cmd := &cobra.Command{
		Use:   "cat-file (-t | -s | -p | -e | <type>) <object>",
		Short: "Show the type, size or content of a stored object",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}

			var want object.ObjectType
			name := args[0]
			if len(args) == 2 {
				t, ok := object.ParseObjectType(args[0])
				if !ok {
					return fmt.Errorf("cat-file: unknown object type %q", args[0])
				}
				want, name = t, args[1]
			} else if !showType && !showSize && !pretty && !exists {
				return fmt.Errorf("cat-file: pass -t, -s, -p, -e or an object type")
			}

			h, err := r.FindObject(name, want)
			if err != nil {
				return err
			}
			objType, payload, err := r.Store.Read(h)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case exists:
				return nil
			case showType:
				fmt.Fprintln(out, objType)
			case showSize:
				fmt.Fprintln(out, len(payload))
			case pretty && objType == object.TypeTree:
				tree, err := object.UnmarshalTree(payload)
				if err != nil {
					return err
				}
				return printTreeEntries(out, tree.Entries)
			default:
				_, err = out.Write(payload)
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&showType, "type", "t", false, "show the object type")
	cmd.Flags().BoolVarP(&showSize, "size", "s", false, "show the payload size")
	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "pretty-print the object content")
	cmd.Flags().BoolVarP(&exists, "exists", "e", false, "exit with an error if the object is missing")
	cmd.MarkFlagsMutuallyExclusive("type", "size", "pretty", "exists")
	return cmd
}

// printTreeEntries writes entries in the "<mode> <type> <hash>\t<name>"
// listing format.
func printTreeEntries(w io.Writer, entries []object.TreeEntry) error {
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%s %s %s\t%s\n", paddedMode(e.Mode), e.Mode.ObjectType(), e.Hash, e.Name); err != nil {
			return err
		}
	}
	return nil
}

// paddedMode renders a mode six digits wide, so directories print as 040000.
func paddedMode(m object.FileMode) string {
	s := string(m)
	if len(s) < 6 {
		s = strings.Repeat("0", 6-len(s)) + s
	}
	return s
}
