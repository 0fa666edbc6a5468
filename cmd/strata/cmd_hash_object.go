package main

import (
	"fmt"
	"io"
	"os"

	"github.com/odvcencio/strata/pkg/object"
	"github.com/spf13/cobra"
)

func newHashObjectCmd() *cobra.Command {
	var write bool
	var typeName string
	var stdin bool

	cmd := &cobra.Command{
		Use:   "hash-object [-w] [-t <type>] (--stdin | <file>...)",
		Short: "Compute object IDs and optionally store the objects",
		RunE: func(cmd *cobra.Command, args []string) error {
			objType, ok := object.ParseObjectType(typeName)
			if !ok {
				return fmt.Errorf("hash-object: unknown object type %q", typeName)
			}
			if !stdin && len(args) == 0 {
				return fmt.Errorf("hash-object: no input; pass files or --stdin")
			}

			var inputs [][]byte
			if stdin {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("hash-object: read stdin: %w", err)
				}
				inputs = append(inputs, data)
			}
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("hash-object: %w", err)
				}
				inputs = append(inputs, data)
			}

			var store *object.Store
			if write {
				r, err := openRepo(cmd)
				if err != nil {
					return err
				}
				store = r.Store
			}

			out := cmd.OutOrStdout()
			for _, data := range inputs {
				// Refuse payloads that would not decode back.
				if _, err := object.Unmarshal(objType, data); err != nil {
					return fmt.Errorf("hash-object: %w", err)
				}
				h := object.HashObject(objType, data)
				if store != nil {
					written, err := store.Write(objType, data)
					if err != nil {
						return fmt.Errorf("hash-object: %w", err)
					}
					h = written
				}
				fmt.Fprintln(out, h)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the object into the object store")
	cmd.Flags().StringVarP(&typeName, "type", "t", string(object.TypeBlob), "object type")
	cmd.Flags().BoolVar(&stdin, "stdin", false, "read the object from standard input")
	return cmd
}
