package repo

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/odvcencio/strata/pkg/object"
	"gopkg.in/ini.v1"
)

// SupportedFormatVersion is the only core.repositoryformatversion this
// package understands.
const SupportedFormatVersion = 0

// Config is the repository-local INI config at .git/config.
type Config struct {
	path string
	file *ini.File
}

func defaultConfig(path string) *Config {
	f := ini.Empty()
	core := f.Section("core")
	core.Key("repositoryformatversion").SetValue("0")
	core.Key("filemode").SetValue("false")
	core.Key("bare").SetValue("false")
	return &Config{path: path, file: f}
}

// LoadConfig reads an INI config file.
func LoadConfig(path string) (*Config, error) {
	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return &Config{path: path, file: f}, nil
}

// Get returns section.key, or "" when unset.
func (c *Config) Get(section, key string) string {
	if !c.file.Section(section).HasKey(key) {
		return ""
	}
	return strings.TrimSpace(c.file.Section(section).Key(key).String())
}

// Set stores section.key in memory. Call Save to persist it.
func (c *Config) Set(section, key, value string) {
	c.file.Section(section).Key(key).SetValue(value)
}

// FormatVersion returns core.repositoryformatversion. A missing key means 0.
func (c *Config) FormatVersion() (int, error) {
	core := c.file.Section("core")
	if !core.HasKey("repositoryformatversion") {
		return SupportedFormatVersion, nil
	}
	v, err := core.Key("repositoryformatversion").Int()
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormatVersion, core.Key("repositoryformatversion").String())
	}
	return v, nil
}

// CheckFormatVersion refuses any version other than SupportedFormatVersion.
func (c *Config) CheckFormatVersion() error {
	v, err := c.FormatVersion()
	if err != nil {
		return err
	}
	if v != SupportedFormatVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedFormatVersion, v)
	}
	return nil
}

// Identity returns the configured user as a signature at the given time.
func (c *Config) Identity(when time.Time) object.Signature {
	name := c.Get("user", "name")
	if name == "" {
		name = "unknown"
	}
	email := c.Get("user", "email")
	if email == "" {
		email = "unknown@localhost"
	}
	return object.Signature{Name: name, Email: email, When: when}
}

// Save atomically writes the config back to disk.
func (c *Config) Save() error {
	var buf bytes.Buffer
	if _, err := c.file.WriteTo(&buf); err != nil {
		return fmt.Errorf("write config: marshal: %w", err)
	}
	if err := writeFileAtomic(c.path, buf.Bytes(), ".config-tmp-*"); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// writeFileAtomic writes data to a temp file next to path and renames it
// into place.
func writeFileAtomic(path string, data []byte, pattern string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), pattern)
	if err != nil {
		return fmt.Errorf("tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
