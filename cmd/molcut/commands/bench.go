package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newBenchCmd(a *app) *cobra.Command {
	var (
		f cutFlags
		n int
	)
	cmd := &cobra.Command{
		Use:   "bench [FILE]",
		Short: "Repeat one cut and report its cost",
		Long: `bench repeats a cut against the same buffer. Combine it with
--cpuprofile or --memprofile to profile the engine on real data.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if n <= 0 {
				return fmt.Errorf("invalid iteration count %d", n)
			}
			l, err := f.layout()
			if err != nil {
				return err
			}
			parent, err := a.readInput(cmd, args)
			if err != nil {
				return err
			}
			e := a.engine()
			if res := e.Cut(parent, l); !res.OK() {
				return fmt.Errorf("status 0x%02x: %w", uint8(res.Status), res.Err())
			}
			start := time.Now()
			for range n {
				e.Cut(parent, l)
			}
			elapsed := time.Since(start)
			a.log.Info("bench done", zap.Int("iterations", n), zap.Duration("elapsed", elapsed))
			fmt.Fprintf(cmd.OutOrStdout(), "%d cuts in %s (%.1f ns/op)\n",
				n, elapsed, float64(elapsed.Nanoseconds())/float64(n))
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().IntVarP(&n, "iterations", "n", 1_000_000, "Number of cuts")
	return cmd
}
