package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/katalvlaran/sturm/eigen"
	"github.com/katalvlaran/sturm/internal/config"
)

// app carries the state shared by all commands of one invocation.
type app struct {
	cfgPath string
	cfg     *config.Config
	log     *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: config.Default(), log: zap.NewNop()}

	root := &cobra.Command{
		Use:   "sturm",
		Short: "Shooting-method eigenvalue solver for Sturm–Liouville problems",
		Long: `sturm locates the first N eigenvalues of a singular Sturm–Liouville
problem by integrating initial-value problems and bisecting on the
terminal residual u(b−ε), then normalizes the eigenfunctions.

Settings come from the defaults, then --config (YAML), then flags.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadConfig(cmd.Flags()); err != nil {
				return err
			}

			// Initialize logger
			zc := zap.NewProductionConfig()
			if a.cfg.Output.Verbose {
				zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			log, err := zc.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.log = log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.log.Sync()
		},
	}

	f := root.PersistentFlags()
	c := a.cfg
	f.StringVar(&a.cfgPath, "config", "", "YAML run configuration")
	f.BoolVarP(&c.Output.Verbose, "verbose", "v", c.Output.Verbose, "log every probe and bisection step")
	f.StringVar(&c.Problem.Kind, "problem", c.Problem.Kind, "operator: sturm_liouville or harmonic")
	f.Float64Var(&c.Problem.M, "m", c.Problem.M, "sturm_liouville parameter m")
	f.Float64Var(&c.Problem.Length, "length", c.Problem.Length, "harmonic interval length")
	f.Float64Var(&c.Search.Margin, "margin", c.Search.Margin, "boundary margin ε")
	f.IntVar(&c.Search.GridPoints, "grid", c.Search.GridPoints, "samples per eigenfunction")
	f.Float64Var(&c.Search.Tolerance, "tol", c.Search.Tolerance, "bisection tolerance")
	f.Float64Var(&c.Search.Step, "step", c.Search.Step, "initial bracket expansion step")
	f.Float64Var(&c.Search.Seed, "seed", c.Search.Seed, "seed of the first search")
	f.Float64Var(&c.Search.SeedOffset, "offset", c.Search.SeedOffset, "seed offset past the previous eigenvalue")
	f.IntVar(&c.Search.MaxExpansions, "expansions", c.Search.MaxExpansions, "probes per ladder direction")
	f.IntVar(&c.Search.MaxRetries, "retries", c.Search.MaxRetries, "bracket retries per slot")
	f.IntVar(&c.Search.Parallel, "parallel", c.Search.Parallel, "concurrent probes per ladder")

	root.AddCommand(newSolveCmd(a), newScanCmd(a), newConfigCmd(a))

	return root
}

// loadConfig reads --config and re-applies flags given on the command
// line so they take precedence over the file.
func (a *app) loadConfig(fs *pflag.FlagSet) error {
	if a.cfgPath == "" {
		return nil
	}

	changed := map[string]string{}
	fs.Visit(func(f *pflag.Flag) { changed[f.Name] = f.Value.String() })

	fileCfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	*a.cfg = *fileCfg

	for name, v := range changed {
		if err := fs.Set(name, v); err != nil {
			return fmt.Errorf("flag --%s: %w", name, err)
		}
	}
	return nil
}

// solver builds the configured solver with events logged through a.log.
func (a *app) solver() (*eigen.Solver, error) {
	sys, err := a.cfg.System()
	if err != nil {
		return nil, err
	}
	opts := append(a.cfg.Options(), eigen.WithLogger(a.log))
	s, err := eigen.New(sys, opts...)
	if err != nil {
		return nil, err
	}
	a.log.Debug("solver ready", zap.Stringer("solver", s), zap.String("problem", a.cfg.Problem.Kind))

	return s, nil
}
