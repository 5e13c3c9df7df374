package execfmt

import (
	"github.com/spf13/cobra"

	"github.com/arthur-debert/execfmt/pkg/config"
	"github.com/arthur-debert/execfmt/pkg/engine"
	"github.com/arthur-debert/execfmt/pkg/ui"
)

// loadOptions maps the global flags onto config loading. --timeout is only
// an override when given, so an explicit 0 still reaches validation.
func (g *globalFlags) loadOptions(cmd *cobra.Command) config.LoadOptions {
	opts := config.LoadOptions{Path: g.configPath}
	if cmd.Flags().Changed("timeout") {
		opts.Overrides = map[string]interface{}{"timeout": g.timeout}
	}
	return opts
}

// loadEngine loads the configuration and builds an engine for it.
func (g *globalFlags) loadEngine(cmd *cobra.Command) (*engine.Engine, *config.LoadResult, error) {
	res, err := config.Load(g.loadOptions(cmd))
	if err != nil {
		return nil, nil, err
	}
	eng, err := engine.New(res.Config, engine.Options{})
	if err != nil {
		return nil, nil, err
	}
	return eng, res, nil
}

// renderer returns the renderer selected by --output, writing to the
// command's output.
func (g *globalFlags) renderer(cmd *cobra.Command) (ui.Renderer, error) {
	format, err := ui.ParseFormat(g.output)
	if err != nil {
		return nil, err
	}
	return ui.NewRenderer(format, cmd.OutOrStdout())
}
