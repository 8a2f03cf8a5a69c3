// Package session builds the per-invocation state: resolved
// configuration, the filesystem, the coordinator and the selected
// backend. Nothing here outlives a single run.
package session

import (
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/openifc/idlgen/errors"
	"github.com/openifc/idlgen/logger"
	"github.com/openifc/idlgen/version"
)

// ConfigFilename is the project configuration file, found by walking up
// from the working directory.
const ConfigFilename = "idlgen.toml"

// Config is the resolved configuration. Precedence, lowest to highest:
// built-in defaults, idlgen.toml, IDLGEN_* environment, CLI flags (the
// driver applies flags on top of the loaded value).
type Config struct {
	// RootPath anchors relative package-root registrations; the -p
	// flag and IDLGEN_ROOT override it.
	RootPath string `mapstructure:"root_path" toml:"root_path"`

	// Roots maps package-namespace prefixes to source directories,
	// merged with the built-in registrations and any -r flags.
	Roots map[string]string `mapstructure:"roots" toml:"roots,omitempty"`

	// Verbose is the default diagnostic level; -v adds to it.
	Verbose int `mapstructure:"verbose" toml:"verbose"`

	// Requires constrains the tool version a tree may be built with,
	// e.g. ">= 1.2".
	Requires string `mapstructure:"requires" toml:"requires,omitempty"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("root_path", "")
	v.SetDefault("verbose", 0)
	v.SetDefault("requires", "")
}

// Load resolves the configuration, searching upward from startDir for
// idlgen.toml. A missing file is not an error; the environment and
// defaults still apply.
func Load(fs afero.Fs, startDir string) (*Config, error) {
	// Dotted package prefixes are literal keys of the [roots] table, so
	// the key delimiter must be something no prefix can contain.
	v := viper.NewWithOptions(viper.KeyDelimiter("::"))
	v.SetFs(fs)
	v.SetConfigType("toml")

	v.SetEnvPrefix("IDLGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer("::", "_"))
	v.AutomaticEnv()
	// The build system exports IDLGEN_ROOT; accept the mechanical
	// IDLGEN_ROOT_PATH spelling too.
	_ = v.BindEnv("root_path", "IDLGEN_ROOT", "IDLGEN_ROOT_PATH")

	setDefaults(v)

	if path := findConfig(fs, startDir); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Mark(
				errors.Wrapf(err, "reading %s", path), errors.ErrUsage)
		}
		logger.Debugw("loaded config", "path", path)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Mark(
			errors.Wrap(err, "unmarshaling configuration"), errors.ErrUsage)
	}
	return &cfg, nil
}

// findConfig walks up the directory tree from dir looking for the
// configuration file and returns the first hit, or "".
func findConfig(fs afero.Fs, dir string) string {
	for {
		candidate := filepath.Join(dir, ConfigFilename)
		if ok, _ := afero.Exists(fs, candidate); ok {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// CheckRequires verifies the running tool version against the config's
// requires constraint. Untagged development builds satisfy every
// constraint, since their version string carries no semantics.
func (c *Config) CheckRequires() error {
	if c.Requires == "" {
		return nil
	}

	constraint, err := semver.NewConstraint(c.Requires)
	if err != nil {
		return errors.Mark(
			errors.Wrapf(err, "invalid requires constraint %q", c.Requires),
			errors.ErrUsage)
	}

	current, err := semver.NewVersion(version.Version)
	if err != nil {
		logger.Debugw("unversioned build, skipping requires check",
			"version", version.Version, "requires", c.Requires)
		return nil
	}

	if !constraint.Check(current) {
		return errors.Usagef("this tree requires idlgen %s, but running %s",
			c.Requires, version.Version)
	}
	return nil
}

// WriteDefault writes a starter configuration file at path. It refuses
// to overwrite an existing file.
func WriteDefault(fs afero.Fs, path string) error {
	if ok, _ := afero.Exists(fs, path); ok {
		return errors.Usagef("%s already exists", path)
	}

	data, err := toml.Marshal(Config{
		Roots: map[string]string{"runtime": "runtime/interfaces"},
	})
	if err != nil {
		return errors.Wrap(err, "marshaling default configuration")
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return errors.Mark(
			errors.Wrapf(err, "writing %s", path), errors.ErrGeneration)
	}
	return nil
}
