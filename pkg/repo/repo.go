package repo

import (
	"errors"
	"path/filepath"
	"time"

	"github.com/odvcencio/strata/pkg/object"
	"go.uber.org/zap"
)

// ControlDirName is the name of the repository control directory.
const ControlDirName = ".git"

var (
	ErrNotRepository            = errors.New("not a repository")
	ErrUnsupportedFormatVersion = errors.New("unsupported repository format version")
)

// Repo is an opened repository. Every operation goes through a Repo value;
// there is no process-wide repository.
type Repo struct {
	RootDir string        // working directory root
	GitDir  string        // .git/ directory
	Store   *object.Store // content-addressed object store
	Config  *Config

	logger *zap.Logger
	now    func() time.Time
}

type options struct {
	logger *zap.Logger
	now    func() time.Time
}

// Option configures Init and Open.
type Option func(*options)

// WithLogger sets the logger used by the repository and its store.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock overrides the clock used for commit and tag timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func newRepo(root, gitDir string, cfg *Config, o options) *Repo {
	return &Repo{
		RootDir: root,
		GitDir:  gitDir,
		Store:   object.NewStore(filepath.Join(gitDir, "objects"), object.WithLogger(o.logger)),
		Config:  cfg,
		logger:  o.logger,
		now:     o.now,
	}
}
