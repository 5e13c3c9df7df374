package execfmt

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/execfmt/pkg/cache"
	"github.com/arthur-debert/execfmt/pkg/config"
)

func newConfigCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   MsgConfigShort,
		GroupID: "config",
	}
	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd(g))
	cmd.AddCommand(newConfigPathCmd(g))
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "init",
		Short: MsgConfigInitShort,
		Example: "  execfmt config init > execfmt.toml\n" +
			"  execfmt config init --format yaml > execfmt.yaml",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := render(config.SampleFile(), format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "toml", MsgFlagFormat)
	return cmd
}

func newConfigShowCmd(g *globalFlags) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show",
		Short: MsgConfigShowShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := config.Load(g.loadOptions(cmd))
			if err != nil {
				return err
			}
			data, err := render(config.ToFile(res.Config), format)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if res.Path != "" {
				if _, err := fmt.Fprintf(out, MsgResolvedFromFile, res.Path); err != nil {
					return err
				}
			}
			_, err = out.Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", MsgFlagFormat)
	return cmd
}

func newConfigPathCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: MsgConfigPathShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			path, err := config.FindConfigFile(g.configPath, wd)
			if err != nil {
				return err
			}
			if path == "" {
				_, err = fmt.Fprintln(cmd.ErrOrStderr(), MsgNoConfigFile)
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	}
}

func render(f *config.File, format string) ([]byte, error) {
	switch format {
	case "toml":
		return config.GenerateTOML(f)
	case "yaml", "yml":
		return config.GenerateYAML(f)
	default:
		return nil, fmt.Errorf(MsgErrUnknownShape, format)
	}
}

func newCacheCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cache",
		Short:   MsgCacheShort,
		GroupID: "config",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: MsgCacheClearShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := cache.DefaultDir()
			if err := cache.Clear(dir); err != nil {
				return err
			}
			r, err := g.renderer(cmd)
			if err != nil {
				return err
			}
			return r.RenderMessage(fmt.Sprintf(MsgCacheCleared, dir))
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: MsgCachePathShort,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), cache.DefaultDir())
		},
	})
	return cmd
}
