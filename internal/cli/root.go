// Package cli implements the visctl commands that query a visibility
// dataset offline.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/aiseo/brand-visibility/internal/analytics"
	"github.com/aiseo/brand-visibility/internal/storage"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Options are the flags shared by every command
type Options struct {
	DatasetPath string
	SQLitePath  string
	JSON        bool
	Deadband    float64
	Verbose     bool
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#58a6ff"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8b949e"))
)

// NewRootCmd creates the visctl root command with every subcommand attached
func NewRootCmd(version string) *cobra.Command {
	opts := &Options{}

	rootCmd := &cobra.Command{
		Use:   "visctl",
		Short: "Query brand visibility in AI answers",
		Long: `visctl reads a visibility dataset (JSON snapshot or SQLite database)
and prints brand rankings, prompt details, search results and reports.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logrus.SetOutput(cmd.ErrOrStderr())
			logrus.SetLevel(logrus.WarnLevel)
			if opts.Verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.DatasetPath, "dataset", "d", "", "JSON dataset snapshot to read")
	flags.StringVar(&opts.SQLitePath, "sqlite", "", "SQLite database to read (instead of --dataset)")
	flags.BoolVarP(&opts.JSON, "json", "j", false, "Output as JSON")
	flags.Float64Var(&opts.Deadband, "deadband", analytics.DefaultDeadband, "Trend deadband in percentage points")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(NewBrandsCmd(opts))
	rootCmd.AddCommand(NewPromptsCmd(opts))
	rootCmd.AddCommand(NewPromptCmd(opts))
	rootCmd.AddCommand(NewSearchCmd(opts))
	rootCmd.AddCommand(NewReportCmd(opts))
	rootCmd.AddCommand(NewImportCmd(opts))

	return rootCmd
}

// openStore opens the record store selected by the flags. The returned
// close function is never nil.
func openStore(opts *Options) (storage.RecordStore, func(), error) {
	switch {
	case opts.SQLitePath != "":
		db, err := storage.OpenSQLite(opts.SQLitePath)
		if err != nil {
			return nil, func() {}, err
		}
		return db, func() { db.Close() }, nil
	case opts.DatasetPath != "":
		ds, err := storage.LoadDatasetFile(opts.DatasetPath)
		if err != nil {
			return nil, func() {}, err
		}
		return storage.NewMemoryStore(ds), func() {}, nil
	default:
		return nil, func() {}, fmt.Errorf("either --dataset or --sqlite is required")
	}
}

func openFacade(opts *Options) (*analytics.Facade, func(), error) {
	store, closeFn, err := openStore(opts)
	if err != nil {
		return nil, closeFn, err
	}
	return analytics.NewFacade(store, analytics.NewClassifier(opts.Deadband)), closeFn, nil
}

// printTable renders rows under headers with a rounded border
func printTable(w io.Writer, headers []string, rows [][]string) error {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		Rows(rows...)
	_, err := fmt.Fprintln(w, t.String())
	return err
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
