package execfmt

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/execfmt/pkg/cache"
	"github.com/arthur-debert/execfmt/pkg/logging"
	"github.com/arthur-debert/execfmt/pkg/ui/display"
	"github.com/arthur-debert/execfmt/pkg/workspace"
)

type runFlags struct {
	jobs    int
	noCache bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.jobs, "jobs", "j", 0, MsgFlagJobs)
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, MsgFlagNoCache)
}

func newFmtCmd(g *globalFlags) *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:     "fmt [paths...]",
		Short:   MsgFmtShort,
		Long:    MsgFmtLong,
		Example: MsgFmtExample,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFiles(cmd, g, args, flags, false)
		},
	}
	flags.register(cmd)
	return cmd
}

func newCheckCmd(g *globalFlags) *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:     "check [paths...]",
		Short:   MsgCheckShort,
		Long:    MsgCheckLong,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFiles(cmd, g, args, flags, true)
		},
	}
	flags.register(cmd)
	return cmd
}

// runFiles formats or checks every matching file under args and renders
// the outcomes. It fails when any file failed, or in check mode when any
// file would change.
func runFiles(cmd *cobra.Command, g *globalFlags, args []string, flags runFlags, check bool) error {
	logger := logging.GetLogger("cli")

	eng, _, err := g.loadEngine(cmd)
	if err != nil {
		return err
	}
	r, err := g.renderer(cmd)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		args = []string{"."}
	}
	files, err := workspace.Collect(args, func(path string) bool {
		return len(eng.Matches(path)) > 0
	})
	if err != nil {
		return err
	}

	var store *cache.Cache
	if !flags.noCache {
		store, err = cache.Open(cache.DefaultDir(), eng.Fingerprint())
		if err != nil {
			logger.Warn().Err(err).Msg("Cache unavailable, formatting every file")
			store = nil
		}
	}

	outcomes, runErr := workspace.Run(cmd.Context(), eng, files, workspace.Options{
		Jobs:  flags.jobs,
		Check: check,
		Cache: store,
	})

	report := display.NewRunReport(cmd.Name(), outcomes)
	report.Verbose = g.verbosity > 0
	if err := r.RenderRun(report); err != nil {
		return err
	}

	switch {
	case runErr != nil:
		return runErr
	case report.Summary.Failed > 0:
		return fmt.Errorf(MsgErrFilesFailed, report.Summary.Failed)
	case report.Summary.WouldChange > 0:
		return fmt.Errorf(MsgErrUnformatted, report.Summary.WouldChange)
	}
	return nil
}

func newStdinCmd(g *globalFlags) *cobra.Command {
	var filePath string
	cmd := &cobra.Command{
		Use:     "stdin --file-path PATH",
		Short:   MsgStdinShort,
		Long:    MsgStdinLong,
		Example: MsgStdinExample,
		Args:    cobra.NoArgs,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, _, err := g.loadEngine(cmd)
			if err != nil {
				return err
			}
			input, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf(MsgErrReadStdin, err)
			}
			result, err := eng.Format(cmd.Context(), filePath, string(input))
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), result.Text)
			return err
		},
	}
	cmd.Flags().StringVar(&filePath, "file-path", "", MsgFlagFilePath)
	_ = cmd.MarkFlagRequired("file-path")
	return cmd
}

func newMatchCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "match PATH",
		Short:   MsgMatchShort,
		Long:    MsgMatchLong,
		Args:    cobra.ExactArgs(1),
		GroupID: "config",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, _, err := g.loadEngine(cmd)
			if err != nil {
				return err
			}
			r, err := g.renderer(cmd)
			if err != nil {
				return err
			}
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			return r.RenderMatches(&display.MatchReport{Path: path, Commands: eng.Matches(path)})
		},
	}
}

func newFingerprintCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "fingerprint",
		Short:   MsgFingerprintShort,
		Long:    MsgFingerprintLong,
		Args:    cobra.NoArgs,
		GroupID: "config",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, _, err := g.loadEngine(cmd)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), eng.Fingerprint())
			return err
		},
	}
}
