package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"statlab/domain/core"
	"statlab/domain/stats"
	"statlab/internal/batch"
	"statlab/internal/config"
	"statlab/internal/container"
	"statlab/internal/testkit"
	"statlab/ports"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "statlab-dev",
		Short: "statlab development tools",
	}

	rootCmd.AddCommand(
		newFixturesCmd(),
		newSmokeTestCmd(),
		newDeterminismTestCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newFixturesCmd() *cobra.Command {
	var seed int64

	cmd := &cobra.Command{
		Use:   "fixtures <dir>",
		Short: "Write sample CSV/XLSX/JSON inputs and a job file that uses them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeFixtures(args[0], seed)
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", 42, "Seed for generated data")
	return cmd
}

func newSmokeTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Run every analysis once on generated data",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSmokeTests(cmd.Context())
		},
	}
	return cmd
}

func newDeterminismTestCmd() *cobra.Command {
	var seed int64
	var runs int

	cmd := &cobra.Command{
		Use:   "determinism",
		Short: "Check that seeded PCA runs reproduce identical components",
		RunE: func(cmd *cobra.Command, args []string) error {
			return testDeterminism(cmd.Context(), seed, runs)
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", 42, "PCA seed (must be non-zero)")
	cmd.Flags().IntVar(&runs, "runs", 5, "Number of repeated runs")
	return cmd
}

func writeFixtures(dir string, seed int64) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	gen := testkit.DefaultGeneratorConfig()
	gen.Seed = seed

	if err := testkit.NewGenerator(gen).WriteWorkbook(filepath.Join(dir, "factors.xlsx"), 2, 1.5, 0.5, 0); err != nil {
		return err
	}

	d := testkit.NewDemo(gen)
	groupsCSV := "a,b,c\n"
	for i := range d.Groups[0].Values {
		groupsCSV += fmt.Sprintf("%g,%g,%g\n", d.Groups[0].Values[i], d.Groups[1].Values[i], d.Groups[2].Values[i])
	}
	if err := os.WriteFile(filepath.Join(dir, "groups.csv"), []byte(groupsCSV), 0o644); err != nil {
		return fmt.Errorf("write groups.csv: %w", err)
	}

	points := make([]map[string]float64, len(d.X))
	for i := range d.X {
		points[i] = map[string]float64{"x": d.X[i], "y": d.Y[i]}
	}
	lineJSON, err := json.MarshalIndent(map[string]interface{}{"points": points}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal line.json: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "line.json"), lineJSON, 0o644); err != nil {
		return fmt.Errorf("write line.json: %w", err)
	}

	jobs := batch.File{Seed: seed, Jobs: []batch.Job{
		{Name: "groups", Kind: string(core.KindAnova), File: "groups.csv"},
		{Name: "table", Kind: string(core.KindChiSquare), Table: d.Table},
		{Name: "line", Kind: string(core.KindCorrelation), File: "line.json#points", Columns: []string{"x", "y"}},
		{Name: "factors", Kind: string(core.KindPCA), File: "factors.xlsx", Columns: []string{"V1", "V2", "V3"}},
	}}
	b, err := yaml.Marshal(jobs)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "jobs.yaml"), b, 0o644); err != nil {
		return fmt.Errorf("write jobs.yaml: %w", err)
	}

	fmt.Printf("Wrote factors.xlsx, groups.csv, line.json and jobs.yaml to %s\n", dir)
	return nil
}

func runSmokeTests(ctx context.Context) error {
	c, err := newContainer()
	if err != nil {
		return err
	}
	d := testkit.NewDemo(testkit.DefaultGeneratorConfig())

	checks := []struct {
		name string
		run  func() (*stats.Analysis, error)
	}{
		{"anova", func() (*stats.Analysis, error) { return c.Analysis.RunAnova(ctx, d.Groups) }},
		{"chisquare", func() (*stats.Analysis, error) { return c.Analysis.RunChiSquare(ctx, d.Table) }},
		{"correlation", func() (*stats.Analysis, error) { return c.Analysis.RunCorrelation(ctx, d.X, d.Y) }},
		{"pca", func() (*stats.Analysis, error) { return c.Analysis.RunPCA(ctx, d.Matrix) }},
	}

	failed := 0
	for _, check := range checks {
		a, err := check.run()
		switch {
		case err != nil:
			failed++
			fmt.Printf("✗ %s: %v\n", check.name, err)
		case len(a.Warnings()) > 0:
			fmt.Printf("! %s: %d warnings (%s)\n", check.name, len(a.Warnings()), a.Elapsed)
		default:
			fmt.Printf("✓ %s (%s)\n", check.name, a.Elapsed)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d smoke tests failed", failed)
	}
	return nil
}

func testDeterminism(ctx context.Context, seed int64, runs int) error {
	if seed == 0 {
		return fmt.Errorf("determinism needs a non-zero seed")
	}
	fmt.Printf("Testing PCA determinism with seed %d over %d runs...\n", seed, runs)

	data := testkit.NewDemo(testkit.DefaultGeneratorConfig()).Matrix
	var first *stats.Analysis
	for i := 0; i < runs; i++ {
		// A fresh container per run rules out state carried between runs.
		c, err := newContainer()
		if err != nil {
			return err
		}
		a, err := c.Analysis.RunPCARequest(ctx, ports.PCARequest{Data: data, Seed: seed})
		if err != nil {
			return fmt.Errorf("run %d: %w", i+1, err)
		}
		if first == nil {
			first = a
			continue
		}
		if err := compareRuns(first, a); err != nil {
			return fmt.Errorf("determinism test failed on run %d: %w", i+1, err)
		}
	}

	fmt.Println("✓ Determinism test passed - results identical")
	return nil
}

func compareRuns(original, replay *stats.Analysis) error {
	if original.InputHash != replay.InputHash {
		return fmt.Errorf("input hashes differ")
	}
	if len(original.PCA.Components) != len(replay.PCA.Components) {
		return fmt.Errorf("component counts differ: %d vs %d",
			len(original.PCA.Components), len(replay.PCA.Components))
	}
	for i, c := range original.PCA.Components {
		if !reflect.DeepEqual(c, replay.PCA.Components[i]) {
			return fmt.Errorf("component %d differs: λ %g vs %g", i+1, c.Eigenvalue, replay.PCA.Components[i].Eigenvalue)
		}
	}
	return nil
}

func newContainer() (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return container.New(cfg)
}
