package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// DefaultBranch is the branch HEAD points at in a new repository.
const DefaultBranch = "master"

// Init creates a new repository at path. It creates the .git/ directory
// structure: HEAD, config, description, objects/, refs/heads/, refs/tags/
// and branches/. Returns an error if a non-empty .git/ already exists.
func Init(path string, opts ...Option) (*Repo, error) {
	o := buildOptions(opts)

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("init: abs path: %w", err)
	}
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		return nil, fmt.Errorf("init: %s is not a directory", abs)
	}
	gitDir := filepath.Join(abs, ControlDirName)

	if entries, err := os.ReadDir(gitDir); err == nil && len(entries) > 0 {
		return nil, fmt.Errorf("init: repository already exists at %s", gitDir)
	}

	dirs := []string{
		filepath.Join(gitDir, "objects"),
		filepath.Join(gitDir, "refs", "heads"),
		filepath.Join(gitDir, "refs", "tags"),
		filepath.Join(gitDir, "branches"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("init: mkdir %s: %w", d, err)
		}
	}

	files := map[string]string{
		"description": "Unnamed repository; edit this file 'description' to name the repository.\n",
		"HEAD":        "ref: refs/heads/" + DefaultBranch + "\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(gitDir, name), []byte(content), 0o644); err != nil {
			return nil, fmt.Errorf("init: write %s: %w", name, err)
		}
	}

	cfg := defaultConfig(filepath.Join(gitDir, "config"))
	if err := cfg.Save(); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}

	o.logger.Debug("repository initialized", zap.String("gitdir", gitDir))
	return newRepo(abs, gitDir, cfg, o), nil
}

// Open searches upward from path for a .git/ directory and opens the
// repository. It refuses repositories whose format version it does not
// understand.
func Open(path string, opts ...Option) (*Repo, error) {
	o := buildOptions(opts)

	root, gitDir, err := FindRoot(path)
	if err != nil {
		return nil, err
	}
	cfg, err := LoadConfig(filepath.Join(gitDir, "config"))
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	if err := cfg.CheckFormatVersion(); err != nil {
		return nil, fmt.Errorf("open %s: %w", gitDir, err)
	}

	o.logger.Debug("repository opened", zap.String("gitdir", gitDir))
	return newRepo(root, gitDir, cfg, o), nil
}

// FindRoot walks upward from path to the first directory containing a .git/
// directory and returns that directory and its .git/ path.
func FindRoot(path string) (string, string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", "", fmt.Errorf("open: abs path: %w", err)
	}

	cur := abs
	for {
		gitDir := filepath.Join(cur, ControlDirName)
		info, err := os.Stat(gitDir)
		if err == nil && info.IsDir() {
			return cur, gitDir, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", "", fmt.Errorf("open: stat %s: %w", gitDir, err)
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return "", "", fmt.Errorf("open %s: %w (or any parent up to %s)", abs, ErrNotRepository, strings.TrimSuffix(cur, string(filepath.Separator))+string(filepath.Separator))
		}
		cur = parent
	}
}
