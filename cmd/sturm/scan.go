package main

import (
	"fmt"
	"io"
	"math"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/sturm/internal/plotting"
)

type scanFlags struct {
	from, to float64
	samples  int
	plot     string
}

func newScanCmd(a *app) *cobra.Command {
	var sf scanFlags
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Tabulate the shooting residual over a λ range",
		Long: `scan evaluates u(b−ε) on an even λ grid. Sign changes between
consecutive rows bracket eigenvalues and help choose --seed and --step.
Rows where the integration fails are reported as undefined.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runScan(cmd.OutOrStdout(), sf)
		},
	}
	cmd.Flags().Float64Var(&sf.from, "from", 0.01, "first λ")
	cmd.Flags().Float64Var(&sf.to, "to", 10, "last λ")
	cmd.Flags().IntVar(&sf.samples, "samples", 50, "number of λ values")
	cmd.Flags().StringVar(&sf.plot, "plot", "", "write the residual curve to this image")

	return cmd
}

func (a *app) runScan(w io.Writer, sf scanFlags) error {
	if sf.samples < 2 || !(sf.from < sf.to) {
		return fmt.Errorf("scan: need --samples ≥ 2 and --from < --to")
	}
	s, err := a.solver()
	if err != nil {
		return err
	}

	lambdas := floats.Span(make([]float64, sf.samples), sf.from, sf.to)
	residuals := make([]float64, len(lambdas))
	for i, l := range lambdas {
		r, err := s.Residual(l)
		if err != nil {
			residuals[i] = math.NaN()
			fmt.Fprintf(w, "%.8g\tundefined (%v)\n", l, err)
			continue
		}
		residuals[i] = r
		fmt.Fprintf(w, "%.8g\t%+.8e\n", l, r)
	}

	if sf.plot != "" {
		return plotting.Residuals(lambdas, residuals, sf.plot, plotting.Options{})
	}

	return nil
}
