package execfmt

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/execfmt/pkg/config"
	"github.com/arthur-debert/execfmt/pkg/engine"
	"github.com/arthur-debert/execfmt/pkg/watch"
	"github.com/arthur-debert/execfmt/pkg/workspace"
)

func newWatchCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "watch [dirs...]",
		Short:   MsgWatchShort,
		Long:    MsgWatchLong,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := g.renderer(cmd)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				args = []string{"."}
			}

			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			configPath, err := config.FindConfigFile(g.configPath, wd)
			if err != nil {
				return err
			}

			w, err := watch.New(watch.Options{
				Roots:      args,
				ConfigPath: configPath,
				Load: func() (*engine.Engine, error) {
					eng, _, err := g.loadEngine(cmd)
					return eng, err
				},
				OnOutcome: func(o workspace.Outcome) {
					if o.Err != nil {
						_ = r.RenderError(o.Err)
						return
					}
					if o.Status == workspace.StatusFormatted {
						_ = r.RenderMessage(fmt.Sprintf(MsgWatchOutcome, o.Status, o.Path))
					}
				},
				OnReload: func(_ *engine.Engine, err error) {
					if err != nil {
						_ = r.RenderError(err)
						return
					}
					_ = r.RenderMessage(MsgConfigReloaded)
				},
			})
			if err != nil {
				return err
			}

			if err := r.RenderMessage(fmt.Sprintf(MsgWatching, strings.Join(args, ", "))); err != nil {
				return err
			}
			return w.Run(cmd.Context())
		},
	}
}
