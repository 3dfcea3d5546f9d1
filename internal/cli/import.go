package cli

import (
	"fmt"

	"github.com/aiseo/brand-visibility/internal/storage"
	"github.com/spf13/cobra"
)

// NewImportCmd creates the 'import' command which loads a JSON snapshot into
// a SQLite database
func NewImportCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "import",
		Short:   "Import a JSON dataset into a SQLite database",
		Example: `  visctl import --dataset data.json --sqlite visibility.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.DatasetPath == "" || opts.SQLitePath == "" {
				return fmt.Errorf("import needs both --dataset and --sqlite")
			}

			ds, err := storage.LoadDatasetFile(opts.DatasetPath)
			if err != nil {
				return err
			}

			db, err := storage.OpenSQLite(opts.SQLitePath)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Import(ds); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d brands, %d prompts, %d runs, %d mentions, %d sources into %s\n",
				len(ds.Brands), len(ds.Prompts), len(ds.Runs), len(ds.Mentions), len(ds.Sources), opts.SQLitePath)
			return nil
		},
	}

	return cmd
}
