package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/odvcencio/strata/pkg/object"
	"github.com/spf13/cobra"
)

type logRecord struct {
	Hash    string   `yaml:"hash"`
	Parents []string `yaml:"parents,omitempty"`
	Author  string   `yaml:"author"`
	Date    string   `yaml:"date"`
	Message string   `yaml:"message"`
}

func newLogCmd() *cobra.Command {
	var oneline bool
	var limit int
	var format string

	cmd := &cobra.Command{
		Use:   "log [<rev>...]",
		Short: "Show commit history, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				args = []string{"HEAD"}
			}
			starts := make([]object.Hash, 0, len(args))
			for _, name := range args {
				h, err := r.FindObject(name, object.TypeCommit)
				if err != nil {
					return fmt.Errorf("cannot resolve %s: %w", name, err)
				}
				starts = append(starts, h)
			}

			headHash, _ := r.ResolveRef("HEAD")
			branchName, _ := r.CurrentBranch()

			out := cmd.OutOrStdout()
			var records []logRecord
			n := 0
			for entry, err := range object.WalkCommits(r.Store, starts...) {
				if err != nil {
					return err
				}
				if limit > 0 && n == limit {
					break
				}
				n++

				if format == formatYAML {
					records = append(records, newLogRecord(entry))
					continue
				}
				decoration := buildDecoration(entry.Hash, headHash, branchName)
				if err := printLogEntry(out, entry, decoration, oneline); err != nil {
					return err
				}
			}
			if format == formatYAML {
				return writeYAML(out, records)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&oneline, "oneline", false, "compact one-line format")
	cmd.Flags().IntVarP(&limit, "max-count", "n", 0, "maximum number of commits to show (0 for all)")
	cmd.Flags().StringVar(&format, "format", formatText, "output format: text or yaml")
	return cmd
}

func newLogRecord(entry object.CommitEntry) logRecord {
	rec := logRecord{Hash: string(entry.Hash), Message: entry.Commit.MessageString()}
	for _, p := range entry.Commit.Parents() {
		rec.Parents = append(rec.Parents, string(p))
	}
	if author, err := entry.Commit.Author(); err == nil {
		rec.Author = author.Name + " <" + author.Email + ">"
		rec.Date = author.When.Format(time.RFC3339)
	}
	return rec
}

func printLogEntry(out io.Writer, entry object.CommitEntry, decoration string, oneline bool) error {
	c := entry.Commit
	subject, _, _ := strings.Cut(c.MessageString(), "\n")
	if oneline {
		if decoration != "" {
			_, err := fmt.Fprintf(out, "%s %s %s\n", entry.Hash.Short(7), decoration, subject)
			return err
		}
		_, err := fmt.Fprintf(out, "%s %s\n", entry.Hash.Short(7), subject)
		return err
	}

	if decoration != "" {
		fmt.Fprintf(out, "commit %s %s\n", entry.Hash, decoration)
	} else {
		fmt.Fprintf(out, "commit %s\n", entry.Hash)
	}
	if parents := c.Parents(); len(parents) > 1 {
		short := make([]string, len(parents))
		for i, p := range parents {
			short[i] = p.Short(7)
		}
		fmt.Fprintf(out, "Merge: %s\n", strings.Join(short, " "))
	}
	author, err := c.Author()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Author: %s <%s>\n", author.Name, author.Email)
	fmt.Fprintf(out, "Date:   %s\n", author.When.Format("Mon Jan 2 15:04:05 2006 -0700"))
	fmt.Fprintln(out)
	for _, line := range strings.Split(strings.TrimRight(c.MessageString(), "\n"), "\n") {
		fmt.Fprintf(out, "    %s\n", line)
	}
	_, err = fmt.Fprintln(out)
	return err
}

// buildDecoration returns a string like "(HEAD -> master)" if the commit is
// the current HEAD, or "" otherwise.
func buildDecoration(commitHash, headHash object.Hash, branchName string) string {
	if commitHash != headHash {
		return ""
	}
	if branchName != "" {
		return "(HEAD -> " + branchName + ")"
	}
	return "(HEAD)"
}
