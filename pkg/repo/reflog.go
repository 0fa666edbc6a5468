package repo

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/odvcencio/strata/pkg/object"
)

// zeroHash stands in for a missing side of a ref transition.
const zeroHash = object.Hash("0000000000000000000000000000000000000000")

// ReflogEntry is one recorded ref transition.
type ReflogEntry struct {
	Ref      string
	OldHash  object.Hash
	NewHash  object.Hash
	Identity object.Signature
	Reason   string
}

// logsRef reports whether updates to name are journaled. Branches and HEAD
// are; tags and remotes are not.
func logsRef(name string) bool {
	return name == "HEAD" || strings.HasPrefix(name, "refs/heads/")
}

func (r *Repo) reflogPath(ref string) string {
	return filepath.Join(r.GitDir, "logs", filepath.FromSlash(ref))
}

// appendReflog writes "<old> <new> <identity>\t<reason>" to logs/<ref>.
func (r *Repo) appendReflog(ref string, oldHash, newHash object.Hash, reason string) error {
	if !logsRef(ref) {
		return nil
	}
	if strings.TrimSpace(reason) == "" {
		reason = "update"
	}
	if oldHash == "" {
		oldHash = zeroHash
	}
	if newHash == "" {
		newHash = zeroHash
	}
	reason = strings.ReplaceAll(reason, "\n", " ")
	line := fmt.Sprintf("%s %s %s\t%s\n", oldHash, newHash, r.Config.Identity(r.now()), reason)

	logPath := r.reflogPath(ref)
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("reflog mkdir: %w", err)
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("reflog open: %w", err)
	}
	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return fmt.Errorf("reflog write: %w", err)
	}
	return f.Close()
}

// ReadReflog returns the journal of ref, newest first, at most limit
// entries when limit > 0. Short names are taken as branches; an empty name
// means HEAD. A ref that was never journaled has no entries.
func (r *Repo) ReadReflog(ref string, limit int) ([]ReflogEntry, error) {
	refName := strings.TrimSpace(ref)
	switch {
	case refName == "":
		refName = "HEAD"
	case refName != "HEAD" && !strings.HasPrefix(refName, "refs/"):
		refName = "refs/heads/" + refName
	}
	if err := validateRefName(refName); err != nil {
		return nil, fmt.Errorf("read reflog: %w", err)
	}

	f, err := os.Open(r.reflogPath(refName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read reflog: %w", err)
	}
	defer f.Close()

	var entries []ReflogEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		entry, ok := parseReflogLine(refName, scanner.Text())
		if ok {
			entries = append(entries, entry)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read reflog: %w", err)
	}

	// Return newest first.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func parseReflogLine(ref, line string) (ReflogEntry, bool) {
	head, reason, _ := strings.Cut(line, "\t")
	parts := strings.SplitN(head, " ", 3)
	if len(parts) < 3 {
		return ReflogEntry{}, false
	}
	oldHash, err := object.ParseHash(parts[0])
	if err != nil {
		return ReflogEntry{}, false
	}
	newHash, err := object.ParseHash(parts[1])
	if err != nil {
		return ReflogEntry{}, false
	}
	sig, err := object.ParseSignature(parts[2])
	if err != nil {
		return ReflogEntry{}, false
	}
	return ReflogEntry{Ref: ref, OldHash: oldHash, NewHash: newHash, Identity: sig, Reason: reason}, true
}
