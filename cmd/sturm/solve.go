package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/katalvlaran/sturm/eigen"
	"github.com/katalvlaran/sturm/internal/plotting"
)

func newSolveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Find the first N eigenvalues and normalized eigenfunctions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSolve(cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVar(&a.cfg.Problem.Count, "n", a.cfg.Problem.Count, "number of eigenvalues")
	cmd.Flags().StringVar(&a.cfg.Output.Plot, "plot", a.cfg.Output.Plot, "write the eigenfunctions to this image")

	return cmd
}

func (a *app) runSolve(w io.Writer) error {
	s, err := a.solver()
	if err != nil {
		return err
	}

	res, err := s.FindEigenvalues(a.cfg.Problem.Count)
	var se *eigen.SequenceError
	if err != nil && !errors.As(err, &se) {
		return err
	}
	printResult(w, res)

	if a.cfg.Output.Plot != "" && len(res.Modes) > 0 {
		if perr := plotting.Modes(res, a.cfg.Output.Plot, plotting.Options{}); perr != nil {
			return errors.Join(err, perr)
		}
		a.log.Info("plot written", zap.String("path", a.cfg.Output.Plot))
	}

	return err
}

func printResult(w io.Writer, res eigen.Result) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "k\tλ\titerations\tretries\tscale")
	for _, m := range res.Modes {
		fmt.Fprintf(tw, "%d\t%.10g\t%d\t%d\t%.6g\n", m.Index, m.Lambda, m.Iterations, m.Retries, m.Scale)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "%s: %d of %d eigenvalue(s), run %s\n", res.Phase, len(res.Modes), res.Requested, res.Run)
}
