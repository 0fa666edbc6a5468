package main

import (
	"fmt"

	"github.com/odvcencio/strata/pkg/object"
	"github.com/spf13/cobra"
)

type lsTreeRecord struct {
	Mode string `yaml:"mode"`
	Type string `yaml:"type"`
	Hash string `yaml:"hash"`
	Path string `yaml:"path"`
}

func newLsTreeCmd() *cobra.Command {
	var recursive, nameOnly bool
	var format string

	cmd := &cobra.Command{
		Use:   "ls-tree [-r] [--name-only] [--format text|yaml] <tree-ish>",
		Short: "List the contents of a tree object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}
			treeHash, err := r.FindObject(args[0], object.TypeTree)
			if err != nil {
				return err
			}

			var records []lsTreeRecord
			if recursive {
				for f, err := range object.WalkTree(r.Store, treeHash) {
					if err != nil {
						return err
					}
					records = append(records, lsTreeRecord{
						Mode: paddedMode(f.Mode), Type: string(f.Mode.ObjectType()), Hash: string(f.Hash), Path: f.Path,
					})
				}
			} else {
				tree, err := r.Store.ReadTree(treeHash)
				if err != nil {
					return err
				}
				for _, e := range tree.Entries {
					records = append(records, lsTreeRecord{
						Mode: paddedMode(e.Mode), Type: string(e.Mode.ObjectType()), Hash: string(e.Hash), Path: e.Name,
					})
				}
			}

			out := cmd.OutOrStdout()
			if format == formatYAML {
				return writeYAML(out, records)
			}
			for _, rec := range records {
				if nameOnly {
					fmt.Fprintln(out, rec.Path)
					continue
				}
				fmt.Fprintf(out, "%s %s %s\t%s\n", rec.Mode, rec.Type, rec.Hash, rec.Path)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "recurse into subtrees")
	cmd.Flags().BoolVar(&nameOnly, "name-only", false, "list only paths")
	cmd.Flags().StringVar(&format, "format", formatText, "output format: text or yaml")
	return cmd
}
