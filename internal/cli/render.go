package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cardforge/pkg/card"
	"github.com/matzehuels/cardforge/pkg/fonts"
	"github.com/matzehuels/cardforge/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	template      string // template image path
	pronunciation string // phonetic spelling line
	definition    string // definition text
	config        string // optional TOML style config
	output        string // output PNG path
}

// renderCommand creates the render command for producing a single card.
// It runs the same text fitting and composition as generate, without the
// sheet and packaging stages, which makes it useful for previewing styles.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <title>",
		Short: "Render a single card from command-line text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.template, "template", "t", "", "template image (PNG or JPEG)")
	cmd.Flags().StringVarP(&opts.pronunciation, "pronunciation", "p", "", "pronunciation line")
	cmd.Flags().StringVarP(&opts.definition, "definition", "d", "", "definition text")
	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "style configuration file (TOML)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default derived from the title)")
	_ = cmd.MarkFlagRequired("template")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, title string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := card.LoadConfig(opts.config)
	if err != nil {
		return err
	}
	template, err := pipeline.LoadTemplate(opts.template)
	if err != nil {
		return err
	}

	faces := fonts.NewSource(cfg.Fonts)
	for _, d := range faces.Degradations() {
		logger.Warn("font degraded", "detail", d)
	}

	spinner := startSpinner(ctx, "Rendering card")
	img, layout, err := card.Compose(card.RenderRequest{
		Template:      template,
		Title:         title,
		Pronunciation: opts.pronunciation,
		Definition:    opts.definition,
		Styles:        cfg.Styles,
		Faces:         faces,
	})
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	if layout.Overflow() {
		logger.Warn("text taller than template",
			"text_height", layout.TotalHeight, "template_height", layout.CanvasHeight)
	}

	data, err := card.EncodePNG(img)
	if err != nil {
		spinner.StopWithError("Encode failed")
		return err
	}

	outPath := opts.output
	if outPath == "" {
		name := card.SafeName(title)
		if name == "" {
			name = "card"
		}
		outPath = name + ".png"
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		spinner.StopWithError("Write failed")
		return err
	}

	spinner.StopWithSuccess("Rendered %s", outPath)
	printFile(outPath)
	return nil
}
