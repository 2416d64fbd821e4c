package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cardforge/pkg/pipeline"
)

// generateOpts holds the command-line flags for the generate command.
type generateOpts struct {
	sheetURL  string // Google Sheet share URL (also taken as positional arg)
	csvPath   string // local CSV instead of a sheet
	template  string // template image path
	config    string // optional TOML style config
	output    string // output zip path, or directory with --dir
	dir       bool   // write individual files instead of a zip
	keepGoing bool   // skip failing rows instead of aborting
	refresh   bool   // bypass the sheet cache
	noCache   bool   // disable the sheet cache entirely
	plain     bool   // disable the live progress view
}

// generateCommand creates the generate command for batch card rendering.
func (c *CLI) generateCommand() *cobra.Command {
	var opts generateOpts

	cmd := &cobra.Command{
		Use:   "generate [sheet-url]",
		Short: "Render one card per sheet row and package them as a zip",
		Long: `Generate fetches rows from a Google Sheet (or reads a local CSV), renders
one captioned card per row over the template image, and packages the results
as a zip archive or a directory of PNG files.

The sheet needs Title, Pronunciation, and Definition columns; missing columns
render as empty text blocks.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.sheetURL = args[0]
			}
			return c.runGenerate(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.csvPath, "csv", "", "read rows from a local CSV file instead of a sheet")
	cmd.Flags().StringVarP(&opts.template, "template", "t", "", "template image (PNG or JPEG)")
	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "style configuration file (TOML)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output zip path (default cards.zip), or directory with --dir")
	cmd.Flags().BoolVar(&opts.dir, "dir", false, "write individual PNG files instead of a zip")
	cmd.Flags().BoolVar(&opts.keepGoing, "keep-going", false, "skip rows that fail to render")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-download the sheet even if cached")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the sheet download cache")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "disable the live progress display")
	_ = cmd.MarkFlagRequired("template")

	return cmd
}

// runGenerate executes the batch pipeline and writes the packaged output.
func (c *CLI) runGenerate(ctx context.Context, opts *generateOpts) error {
	popts := pipeline.Options{
		SheetURL:     opts.sheetURL,
		CSVPath:      opts.csvPath,
		TemplatePath: opts.template,
		ConfigPath:   opts.config,
		KeepGoing:    opts.keepGoing,
		Refresh:      opts.refresh,
		SkipZip:      opts.dir,
		Logger:       c.Logger,
	}
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner := c.newRunner(opts.noCache)
	tracker := newProgress(c.Logger)

	var (
		result *pipeline.Result
		err    error
	)
	if !opts.plain && isTerminal(os.Stderr) {
		result, err = runWithProgressView(ctx, runner, popts)
	} else {
		popts.OnRow = func(index, total int, name string, rowErr error) {
			if rowErr == nil {
				c.Logger.Debugf("Rendered %s (%d/%d)", name, index+1, total)
			}
		}
		result, err = runner.Execute(ctx, popts)
	}
	if err != nil {
		return err
	}

	for _, s := range result.Skipped {
		printWarning("Skipped row %d (%s)", s.Index+1, s.Title)
	}

	outPath, err := writeOutput(opts, result)
	if err != nil {
		return err
	}

	tracker.done(fmt.Sprintf("Rendered %d cards", result.Stats.Rendered))
	printSuccess("Generated %s", outPath)
	printFile(outPath)
	printBatchStats(result.Stats.RowCount, result.Stats.Rendered, len(result.Skipped))
	return nil
}

// runWithProgressView runs the pipeline behind a live bubbletea progress bar.
func runWithProgressView(ctx context.Context, runner *pipeline.Runner, popts pipeline.Options) (*pipeline.Result, error) {
	return runBatchView(ctx, popts, runner.Execute, tea.WithOutput(os.Stderr))
}

// batchOutcome carries the pipeline result across the view goroutine.
type batchOutcome struct {
	result *pipeline.Result
	err    error
}

// runBatchView runs execute behind the progress view. The outcome is handed
// over a channel so it is read only after the goroutine has delivered it.
// Quitting the view early (ctrl+c) cancels the batch; the channel is then
// drained so the goroutine never leaks.
func runBatchView(ctx context.Context, popts pipeline.Options, execute func(context.Context, pipeline.Options) (*pipeline.Result, error), progOpts ...tea.ProgramOption) (*pipeline.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	progOpts = append(progOpts, tea.WithContext(ctx))
	p := tea.NewProgram(NewBatchModel(), progOpts...)

	done := make(chan batchOutcome, 1)
	popts.OnRow = func(index, total int, name string, err error) {
		p.Send(rowDoneMsg{index: index, total: total, name: name, err: err})
	}
	go func() {
		result, err := execute(ctx, popts)
		done <- batchOutcome{result: result, err: err}
		p.Send(batchDoneMsg{})
	}()

	_, runErr := p.Run()
	cancel()
	out := <-done

	if out.err != nil {
		return nil, out.err
	}
	if runErr != nil {
		return nil, runErr
	}
	return out.result, nil
}

// writeOutput persists the batch result as a zip file or a directory.
func writeOutput(opts *generateOpts, result *pipeline.Result) (string, error) {
	if opts.dir {
		dir := opts.output
		if dir == "" {
			dir = "cards"
		}
		return dir, pipeline.WriteEntries(dir, result.Entries)
	}

	path := opts.output
	if path == "" {
		path = pipeline.DefaultOutput
	}
	return path, os.WriteFile(path, result.Archive, 0o644)
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
