package session

import (
	"io"

	"github.com/spf13/afero"

	"github.com/openifc/idlgen/backend"
	"github.com/openifc/idlgen/coordinator"
	"github.com/openifc/idlgen/depgraph"
	"github.com/openifc/idlgen/errors"
	"github.com/openifc/idlgen/fqname"
	"github.com/openifc/idlgen/internal/util"
)

// Session is everything one invocation needs, constructed once by the
// driver and torn down when the process exits.
type Session struct {
	Config     *Config
	Fs         afero.Fs
	Coord      *coordinator.Coordinator
	Registry   *backend.Registry
	Backend    backend.Backend
	OutputPath string
	TestMode   bool
	HashOut    io.Writer
}

// Options selects what New builds the session from.
type Options struct {
	Config     *Config
	Fs         afero.Fs
	BackendKey string
	RootPath   string   // -p; falls back to Config.RootPath
	Roots      []string // -r entries, "package:path"
	OutputPath string   // -o
	TestMode   bool     // -t
	HashOut    io.Writer
}

// New validates opts and assembles the session. The package-root table
// is complete before the coordinator exists, so no parse can race a
// registration.
func New(opts Options) (*Session, error) {
	registry := backend.NewRegistry()

	be, ok := registry.Lookup(opts.BackendKey)
	if !ok {
		return nil, errors.Usagef("unknown backend %q", opts.BackendKey)
	}
	if opts.TestMode && be.Key() != "blueprint" {
		return nil, errors.Usagef("-t is only valid with -Lblueprint, not -L%s", be.Key())
	}

	outputPath, err := resolveOutputPath(be, opts)
	if err != nil {
		return nil, err
	}

	roots := coordinator.NewRootTable()
	for _, prefix := range util.SortedKeys(opts.Config.Roots) {
		if err := roots.Register(prefix, opts.Config.Roots[prefix]); err != nil {
			return nil, err
		}
	}
	for _, entry := range opts.Roots {
		prefix, path, ok := cutRoot(entry)
		if !ok {
			return nil, errors.Usagef("-r option must be package:path, got %q", entry)
		}
		if err := roots.Register(prefix, path); err != nil {
			return nil, err
		}
	}

	rootPath := opts.RootPath
	if rootPath == "" {
		rootPath = opts.Config.RootPath
	}

	coord := coordinator.New(opts.Fs, rootPath, roots)

	return &Session{
		Config:     opts.Config,
		Fs:         opts.Fs,
		Coord:      coord,
		Registry:   registry,
		Backend:    be,
		OutputPath: outputPath,
		TestMode:   opts.TestMode,
		HashOut:    opts.HashOut,
	}, nil
}

// resolveOutputPath applies the backend's shape requirement: file and
// directory backends demand -o, source-tree backends default to the tree
// root, and shapeless backends ignore the path entirely.
func resolveOutputPath(be backend.Backend, opts Options) (string, error) {
	switch be.Shape() {
	case backend.ShapeFile, backend.ShapeDirectory:
		if opts.OutputPath == "" {
			return "", errors.Usagef("-L%s requires an output path (-o)", be.Key())
		}
		return opts.OutputPath, nil
	case backend.ShapeSourceTree:
		if opts.OutputPath != "" {
			return opts.OutputPath, nil
		}
		if opts.RootPath != "" {
			return opts.RootPath, nil
		}
		return opts.Config.RootPath, nil
	default:
		return "", nil
	}
}

func cutRoot(entry string) (prefix, path string, ok bool) {
	for i := 0; i < len(entry); i++ {
		if entry[i] == ':' {
			return entry[:i], entry[i+1:], i > 0 && i < len(entry)-1
		}
	}
	return "", "", false
}

// Context builds the backend context the generators run against.
func (s *Session) Context() *backend.Context {
	return &backend.Context{
		Coord:      s.Coord,
		Graph:      depgraph.New(s.Coord),
		OutputPath: s.OutputPath,
		TestMode:   s.TestMode,
		HashOut:    s.HashOut,
	}
}

// Run validates and generates each requested name in argument order,
// stopping at the first failure.
func (s *Session) Run(names []string) error {
	ctx := s.Context()
	for _, name := range names {
		fqn, err := fqname.Parse(name)
		if err != nil {
			return err
		}
		if err := s.Backend.Validate(fqn); err != nil {
			return err
		}
		if err := s.generate(ctx, fqn); err != nil {
			return errors.Wrapf(err, "generating -L%s for %s", s.Backend.Key(), fqn)
		}
	}
	return nil
}

// generate runs one backend invocation. A panicking generator (an
// emitter balance underflow, say) is reported as a generation failure,
// not a crash.
func (s *Session) generate(ctx *backend.Context, fqn fqname.FQName) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Mark(errors.Newf("generator panic: %v", r), errors.ErrGeneration)
		}
	}()
	return s.Backend.Generate(ctx, fqn)
}
