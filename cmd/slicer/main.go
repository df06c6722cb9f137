package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/classlens/growthreport/internal/slicer"
	"github.com/classlens/growthreport/internal/slicestore"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:     "slicer",
		Short:   "Build report artifacts from a roster export",
		Long:    "Slicer reads a flat roster CSV export, deduplicates each reporting term,\nand writes the per-school slice artifacts plus the index the report server serves.",
		Version: version,
	}
	rootCmd.AddCommand(buildCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func buildCmd() *cobra.Command {
	var (
		input  string
		driver string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Slice one roster CSV into report artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			f, err := os.Open(input)
			if err != nil {
				return fmt.Errorf("open export: %w", err)
			}
			defer f.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
			defer cancel()

			w, err := slicestore.OpenWriter(ctx, slicestore.Driver(driver), out)
			if err != nil {
				return fmt.Errorf("open artifact store: %w", err)
			}
			defer w.Close()

			start := time.Now()
			stats, err := slicer.Build(ctx, f, w)
			if err != nil {
				return err
			}
			log.Printf("sliced %d rows into %d canonical records across %d slices in %s",
				stats.Rows, stats.Canonical, stats.Slices, time.Since(start).Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "roster CSV export to slice (required)")
	cmd.Flags().StringVar(&driver, "driver", "fs", "artifact backend: fs or sqlite")
	cmd.Flags().StringVarP(&out, "out", "o", "./data", "output directory (fs) or database path (sqlite)")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}
