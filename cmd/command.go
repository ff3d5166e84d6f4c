package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/cottand/traits/catalogue"
	"github.com/cottand/traits/internal/log"
	"github.com/cottand/traits/method"
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
)

var logger = log.Section("cmd")

// showFunc prints the part of a report a command is about. A non-nil error makes
// the command fail after printing.
type showFunc func(p *printer, c *catalogue.Catalogue, report *catalogue.Report) error

type options struct {
	logLevel int
	trace    []string
	watch    bool
	dump     bool
}

func newCommand(use, short string, show showFunc) *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:          use + " file.yaml",
		Short:        short,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.configureLogging()
			p := newPrinter(cmd.OutOrStdout())
			if opts.watch {
				return watch(cmd.Context(), args[0], func(runLogger *slog.Logger) error {
					return opts.run(p, args[0], show, runLogger)
				})
			}
			return opts.run(p, args[0], show, logger)
		},
	}
	cmd.Flags().IntVarP(&opts.logLevel, "log-level", "l", int(slog.LevelWarn), "log level, as a slog level")
	cmd.Flags().StringSliceVarP(&opts.trace, "trace", "t", nil, "log sections to trace at debug level: types, resolve, coherence, method, catalogue")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "run again every time the file changes")
	cmd.Flags().BoolVar(&opts.dump, "dump", false, "dump the whole report structure after running")
	return cmd
}

func (o *options) configureLogging() {
	level := slog.Level(o.logLevel)
	if len(o.trace) > 0 {
		level = min(level, slog.LevelDebug)
		log.EnableSections(o.trace...)
	}
	log.SetLevel(level)
}

func (o *options) run(p *printer, path string, show showFunc, runLogger *slog.Logger) error {
	c, err := catalogue.Read(path)
	if err != nil {
		return fmt.Errorf("could not load catalogue: %w", err)
	}
	runLogger.Debug("loaded catalogue", "path", path, "obligations", len(c.Obligations), "methods", len(c.Queries))

	report, err := c.Run()
	if err != nil {
		return fmt.Errorf("could not run catalogue (this is a malformed catalogue, not a resolution failure): %w", err)
	}
	if o.dump {
		dump(p.w, report)
	}
	return show(p, c, report)
}

func dump(w io.Writer, report *catalogue.Report) {
	// dump the structure rather than the String renderings
	config := spew.ConfigState{
		Indent:                  "  ",
		DisableMethods:          true,
		DisablePointerMethods:   true,
		DisablePointerAddresses: true,
		DisableCapacities:       true,
		SortKeys:                true,
		MaxDepth:                8,
	}
	config.Fdump(w, report)
}

var (
	ResolveCmd   = newCommand("resolve", "Resolve the obligations of a catalogue", showResolution)
	CoherenceCmd = newCommand("coherence", "Find overlapping impls in a catalogue", showConflicts)
	MethodCmd    = newCommand("method", "Resolve the method calls of a catalogue", showMethods)
	CheckCmd     = newCommand("check", "Run a catalogue and compare the outcome with its expect section", showCheck)
)

func showResolution(p *printer, _ *catalogue.Catalogue, report *catalogue.Report) error {
	p.heading("confirmed")
	for _, confirmation := range report.Resolution.Confirmed {
		p.good("  %v\n", confirmation)
	}
	p.heading("deferred")
	for _, o := range report.Resolution.Deferred {
		p.plain("  %s: %v\n", o.ID, o.Trait.Resolve())
	}
	p.heading("overflow")
	for _, o := range report.Resolution.Overflow {
		p.bad("  %s: %v\n", o.ID, o.Trait.Resolve())
	}
	p.heading("noImpl")
	for _, o := range report.Resolution.NoImpl {
		p.bad("  %s: %v\n", o.ID, o.Trait.Resolve())
	}
	if len(report.Vars) > 0 {
		p.heading("vars")
		for _, name := range sortedKeys(report.Vars) {
			p.plain("  ?%s = %v\n", name, report.Vars[name])
		}
	}
	return nil
}

func showConflicts(p *printer, _ *catalogue.Catalogue, report *catalogue.Report) error {
	if len(report.Conflicts) == 0 {
		p.good("no conflicting impls\n")
		return nil
	}
	p.heading("conflicts")
	for _, conflict := range report.Conflicts {
		p.bad("  %v\n", conflict)
	}
	return fmt.Errorf("found %d pairs of conflicting impls", len(report.Conflicts))
}

func showMethods(p *printer, _ *catalogue.Catalogue, report *catalogue.Report) error {
	p.heading("methods")
	for _, m := range report.Methods {
		if _, ok := m.Result.(*method.Match); ok {
			p.good("  %s -> %v\n", m.Query.ID, m.Result)
			continue
		}
		p.bad("  %s -> %v\n", m.Query.ID, m.Result)
	}
	return nil
}

func showCheck(p *printer, c *catalogue.Catalogue, report *catalogue.Report) error {
	if c.Expect == nil {
		p.plain("%s", report)
		return fmt.Errorf("catalogue has no expect section")
	}
	mismatches := report.Check(c.Expect)
	if len(mismatches) == 0 {
		p.good("all expectations hold\n")
		return nil
	}
	p.heading("mismatches")
	for _, mismatch := range mismatches {
		p.bad("  %s\n", mismatch)
	}
	p.heading("report")
	p.plain("%s", report)
	return fmt.Errorf("%d expectations do not hold", len(mismatches))
}
