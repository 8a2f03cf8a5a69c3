// Package cli wires the cobra command surface to a session: flag
// parsing, configuration, logger setup and exit-code mapping. All real
// work happens in the session and the backends.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/openifc/idlgen/backend"
	"github.com/openifc/idlgen/errors"
	"github.com/openifc/idlgen/logger"
	"github.com/openifc/idlgen/parser"
	"github.com/openifc/idlgen/session"
	"github.com/openifc/idlgen/version"
)

type flags struct {
	rootPath   string
	outputPath string
	backendKey string
	roots      []string
	testMode   bool
	verbose    int
}

// NewCommand builds the root command. The filesystem is injected so
// tests drive the whole surface against a memory fs.
func NewCommand(fs afero.Fs) *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:           "idlgen [-p rootPath] -o outputPath -L backend (-r package:pathRoot)+ [-t] [-v] name...",
		Short:         "idlgen - interface definition compiler",
		Long:          "idlgen translates versioned interface-definition packages into\nlanguage stubs, adapters, build descriptors and hash reports.\n\nBackends (-L):\n" + backendTable(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.Usagef("no fully-qualified name specified")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(fs, f, args)
		},
	}

	cmd.Flags().StringVarP(&f.rootPath, "root", "p", "", "tree root path (default $IDLGEN_ROOT or config)")
	cmd.Flags().StringVarP(&f.outputPath, "output", "o", "", "location to output files")
	cmd.Flags().StringVarP(&f.backendKey, "language", "L", "", "backend to generate with")
	cmd.Flags().StringArrayVarP(&f.roots, "rootmap", "r", nil, "package root registration, package:path (repeatable)")
	cmd.Flags().BoolVarP(&f.testMode, "test", "t", false, "generate test-variant build descriptors (-Lblueprint only)")
	cmd.Flags().CountVarP(&f.verbose, "verbose", "v", "verbose output of touched files (repeat for more)")

	cmd.AddCommand(newVersionCommand())
	cmd.AddCommand(newInitCommand(fs))
	return cmd
}

func run(fs afero.Fs, f *flags, names []string) error {
	if f.backendKey == "" {
		return errors.Usagef("no backend selected, pass -L (see --help for the table)")
	}

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	cfg, err := session.Load(fs, cwd)
	if err != nil {
		return err
	}

	logger.Initialize(f.verbose + cfg.Verbose)
	defer logger.Cleanup()

	if err := cfg.CheckRequires(); err != nil {
		return err
	}

	sess, err := session.New(session.Options{
		Config:     cfg,
		Fs:         fs,
		BackendKey: f.backendKey,
		RootPath:   f.rootPath,
		Roots:      f.roots,
		OutputPath: f.outputPath,
		TestMode:   f.testMode,
		HashOut:    os.Stdout,
	})
	if err != nil {
		return err
	}

	return sess.Run(names)
}

// backendTable renders the registry as an aligned key/description table
// for the help text.
func backendTable() string {
	data := pterm.TableData{}
	for _, b := range backend.NewRegistry().All() {
		data = append(data, []string{"  " + b.Key(), b.Description()})
	}
	table, err := pterm.DefaultTable.WithData(data).Srender()
	if err != nil {
		var b strings.Builder
		for _, row := range data {
			fmt.Fprintf(&b, "%-24s%s\n", row[0], row[1])
		}
		return b.String()
	}
	return table
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.String())
		},
	}
}

func newInitCommand(fs afero.Fs) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a starter " + session.ConfigFilename + " in the current directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return session.WriteDefault(fs, session.ConfigFilename)
		},
	}
}

// Execute runs the tool and returns its exit code. Every failure class
// exits 1; the class only changes how the diagnostic renders.
func Execute() int {
	cmd := NewCommand(afero.NewOsFs())
	err := cmd.Execute()
	if err == nil {
		return 0
	}
	printError(err)
	return 1
}

// printError renders err for the terminal. Parse diagnostics carry their
// own source-anchored rendering; everything else is a one-line message
// painted by class.
func printError(err error) {
	var parseErr *parser.ParseError
	if errors.As(err, &parseErr) {
		fmt.Fprintln(os.Stderr, parseErr.FormatError(parser.ErrorContextTerminal))
		return
	}

	switch {
	case errors.IsUsage(err):
		fmt.Fprintln(os.Stderr, pterm.Yellow("usage: ")+err.Error())
	case errors.IsValidation(err):
		fmt.Fprintln(os.Stderr, pterm.Yellow("invalid request: ")+err.Error())
	default:
		fmt.Fprintln(os.Stderr, pterm.Red("error: ")+err.Error())
	}
}
