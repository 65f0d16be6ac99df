package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"statlab/adapters/excel"
	"statlab/domain/core"
	"statlab/domain/stats"
	"statlab/internal/batch"
	"statlab/internal/config"
	"statlab/internal/container"
	"statlab/internal/parsing"
	"statlab/internal/report"
	"statlab/internal/testkit"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cliOptions are the flags shared by every command.
type cliOptions struct {
	format string
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}
	rootCmd := &cobra.Command{
		Use:           "statlab-cli",
		Short:         "Run ANOVA, chi-square, correlation and PCA from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.format, "format", "md", "Output format: md|html|json")

	rootCmd.AddCommand(
		newAnovaCmd(opts),
		newChiSquareCmd(opts),
		newCorrelationCmd(opts),
		newPCACmd(opts),
		newBatchCmd(opts),
		newDemoCmd(opts),
		newDescribeCmd(),
	)
	return rootCmd
}

func newContainer() (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return container.New(cfg)
}

func newAnovaCmd(opts *cliOptions) *cobra.Command {
	var file string
	var columns []string

	cmd := &cobra.Command{
		Use:   "anova [group...]",
		Short: "One-way ANOVA across groups",
		Long: `One-way ANOVA. Each argument is one group of numbers, or use --file to take
each selected column of a CSV/XLSX/JSON file as a group.

Example: statlab-cli anova "4.2 5.1 6.3" "7.1 8.4 6.9" "5.5 5.0 4.8"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			job := batch.Job{Name: "anova", Kind: string(core.KindAnova), File: file, Columns: columns}
			for _, arg := range args {
				values, _ := parsing.ParseNumberList(arg)
				job.Groups = append(job.Groups, values)
			}
			return runJob(cmd, opts, job)
		},
	}
	addFileFlags(cmd, &file, &columns)
	return cmd
}

func newChiSquareCmd(opts *cliOptions) *cobra.Command {
	var file string
	var columns []string

	cmd := &cobra.Command{
		Use:     "chisquare [row...]",
		Aliases: []string{"chi-square", "chi2"},
		Short:   "Chi-square test of independence on a contingency table",
		Long: `Chi-square test of independence. Each argument is one table row; negative
counts are treated as 0.

Example: statlab-cli chisquare "10 20 30" "15 25 5"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			job := batch.Job{Name: "chisquare", Kind: string(core.KindChiSquare), File: file, Columns: columns}
			if len(args) > 0 {
				table, err := parsing.ParseContingencyTable(strings.Join(args, "\n"))
				if err != nil {
					return err
				}
				job.Table = table
			}
			return runJob(cmd, opts, job)
		},
	}
	addFileFlags(cmd, &file, &columns)
	return cmd
}

func newCorrelationCmd(opts *cliOptions) *cobra.Command {
	var file, xText, yText string
	var columns []string

	cmd := &cobra.Command{
		Use:     "correlation",
		Aliases: []string{"regression", "pearson"},
		Short:   "Pearson correlation and least-squares regression of y on x",
		Long: `Pearson correlation and simple linear regression.

Example: statlab-cli correlation --x "1 2 3 4" --y "2.1 3.9 6.2 7.8"
         statlab-cli correlation --file data.csv --columns height,weight`,
		RunE: func(cmd *cobra.Command, args []string) error {
			job := batch.Job{Name: "correlation", Kind: string(core.KindCorrelation), File: file, Columns: columns}
			if file == "" {
				job.X, _ = parsing.ParseNumberList(xText)
				job.Y, _ = parsing.ParseNumberList(yText)
			}
			return runJob(cmd, opts, job)
		},
	}
	cmd.Flags().StringVar(&xText, "x", "", "X values")
	cmd.Flags().StringVar(&yText, "y", "", "Y values")
	addFileFlags(cmd, &file, &columns)
	return cmd
}

func newPCACmd(opts *cliOptions) *cobra.Command {
	var file string
	var columns, variables []string
	var seed int64
	var components int

	cmd := &cobra.Command{
		Use:   "pca [observation...]",
		Short: "Principal component analysis by power iteration",
		Long: `Principal component analysis. Each argument is one observation (row), or use
--file to read the selected columns of a CSV/XLSX/JSON file.

Example: statlab-cli pca "2.5 2.4" "0.5 0.7" "2.2 2.9" "1.9 2.2" --seed 42`,
		RunE: func(cmd *cobra.Command, args []string) error {
			job := batch.Job{
				Name:       "pca",
				Kind:       string(core.KindPCA),
				File:       file,
				Columns:    columns,
				Variables:  variables,
				Seed:       seed,
				Components: components,
			}
			if len(args) > 0 {
				matrix, err := parsing.ParseMatrix(strings.Join(args, "\n"))
				if err != nil {
					return err
				}
				job.Matrix = matrix
			}
			return runJob(cmd, opts, job)
		},
	}
	cmd.Flags().StringSliceVar(&variables, "variables", nil, "Variable names for inline rows")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed for start vectors (0 = PCA_SEED)")
	cmd.Flags().IntVar(&components, "components", 0, "Number of components (0 = PCA_COMPONENTS)")
	addFileFlags(cmd, &file, &columns)
	return cmd
}

func newBatchCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <jobs.yaml>",
		Short: "Run every analysis in a YAML job file",
		Long: `Run a job file. Jobs run concurrently, bounded by BATCH_CONCURRENCY weight
units (PCA weighs 4, other analyses 1). A failing job does not stop the others;
the command fails if any job failed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := batch.Load(args[0])
			if err != nil {
				return err
			}
			c, err := newContainer()
			if err != nil {
				return err
			}
			outcomes, err := c.Batch.Run(cmd.Context(), f)
			if err != nil {
				return err
			}
			if err := writeOutcomes(cmd.OutOrStdout(), opts.format, outcomes); err != nil {
				return err
			}
			for _, o := range outcomes {
				if o.Err != nil {
					return fmt.Errorf("%d of %d jobs failed", countFailed(outcomes), len(outcomes))
				}
			}
			return nil
		},
	}
	return cmd
}

func newDemoCmd(opts *cliOptions) *cobra.Command {
	var seed int64
	var workbook string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run every analysis on generated sample data",
		RunE: func(cmd *cobra.Command, args []string) error {
			gen := testkit.DefaultGeneratorConfig()
			gen.Seed = seed
			if workbook != "" {
				if err := testkit.NewGenerator(gen).WriteWorkbook(workbook, 2, 1.5, 0.5, 0); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", workbook)
				return nil
			}

			d := testkit.NewDemo(gen)
			f := &batch.File{Seed: seed, Jobs: []batch.Job{
				{Name: "anova", Kind: string(core.KindAnova), Groups: groupValues(d)},
				{Name: "chisquare", Kind: string(core.KindChiSquare), Table: d.Table},
				{Name: "correlation", Kind: string(core.KindCorrelation), X: d.X, Y: d.Y},
				{Name: "pca", Kind: string(core.KindPCA), Matrix: d.Matrix, Variables: d.Variables},
			}}
			c, err := newContainer()
			if err != nil {
				return err
			}
			outcomes, err := c.Batch.Run(cmd.Context(), f)
			if err != nil {
				return err
			}
			return writeOutcomes(cmd.OutOrStdout(), opts.format, outcomes)
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", 42, "Seed for the generated data and PCA start vectors")
	cmd.Flags().StringVar(&workbook, "workbook", "", "Write a sample PCA workbook to this path instead")
	return cmd
}

func newDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <file>",
		Short: "Summarize the numeric columns of a CSV/XLSX/JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sheet, err := excel.NewDataReader(args[0]).ReadSheet()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d rows\n\n", len(sheet.Rows))
			fmt.Fprintln(out, "| Column | n | Missing | Mean | SD | Min | Max |")
			fmt.Fprintln(out, "| --- | --- | --- | --- | --- | --- | --- |")
			for _, s := range sheet.Summaries() {
				fmt.Fprintf(out, "| %s | %d | %d | %s | %s | %s | %s |\n", s.Name, s.Count, s.Missing,
					report.Number(s.Mean), report.Number(s.StdDev), report.Number(s.Min), report.Number(s.Max))
			}
			return nil
		},
	}
}

func addFileFlags(cmd *cobra.Command, file *string, columns *[]string) {
	cmd.Flags().StringVar(file, "file", "", "Read input from a CSV, XLSX or JSON file (JSON may add #path to the records)")
	cmd.Flags().StringSliceVar(columns, "columns", nil, "Columns to use, by header name or 1-based index (default all)")
}

func runJob(cmd *cobra.Command, opts *cliOptions, job batch.Job) error {
	c, err := newContainer()
	if err != nil {
		return err
	}
	o := c.Batch.RunJob(cmd.Context(), job, 0)
	if o.Err != nil {
		return o.Err
	}
	return writeAnalysis(cmd.OutOrStdout(), opts.format, o.Analysis, o.Variables)
}

func writeAnalysis(w io.Writer, format string, a *stats.Analysis, variables []string) error {
	switch format {
	case "md", "markdown":
		_, err := io.WriteString(w, report.Analysis(a, variables))
		return err
	case "html":
		_, err := w.Write(report.HTML(report.Analysis(a, variables)))
		return err
	case "json":
		b, err := report.JSON(a)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	}
	return fmt.Errorf("unknown format %q (want md, html or json)", format)
}

func writeOutcomes(w io.Writer, format string, outcomes []batch.Outcome) error {
	if format == "json" {
		b, err := report.JSON(outcomes)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	}
	var md strings.Builder
	for _, o := range outcomes {
		fmt.Fprintf(&md, "# %s\n\n", o.Job)
		if o.Err != nil {
			fmt.Fprintf(&md, "**Failed:** %s\n\n", o.Error)
			continue
		}
		md.WriteString(report.Analysis(o.Analysis, o.Variables))
		md.WriteString("\n")
	}
	switch format {
	case "md", "markdown":
		_, err := io.WriteString(w, md.String())
		return err
	case "html":
		_, err := w.Write(report.HTML(md.String()))
		return err
	}
	return fmt.Errorf("unknown format %q (want md, html or json)", format)
}

func countFailed(outcomes []batch.Outcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}

func groupValues(d *testkit.Demo) [][]float64 {
	groups := make([][]float64, len(d.Groups))
	for i, g := range d.Groups {
		groups[i] = g.Values
	}
	return groups
}
