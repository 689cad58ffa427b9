package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/dti-affinity/internal/application/prediction"
	"github.com/turtacn/dti-affinity/internal/domain/reference"
	"github.com/turtacn/dti-affinity/internal/infrastructure/database/postgres"
	"github.com/turtacn/dti-affinity/internal/infrastructure/database/sqlite"
	"github.com/turtacn/dti-affinity/internal/infrastructure/dataset"
	"github.com/turtacn/dti-affinity/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/dti-affinity/pkg/errors"
)

// NewReferenceCmd groups reference-table maintenance commands.
func NewReferenceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reference",
		Aliases: []string{"ref"},
		Short:   "Inspect and load the table of measured affinities",
	}
	cmd.AddCommand(
		newReferenceStatsCmd(),
		newReferenceImportCmd(),
		newReferenceMigrateCmd(),
	)
	return cmd
}

// ─────────────────────────────────────────────────────────────────────────────
// stats
// ─────────────────────────────────────────────────────────────────────────────

type referenceStats struct {
	Source     string `json:"source"`
	Rule       string `json:"rule"`
	RawRecords int    `json:"raw_records"`
	Pairs      int    `json:"pairs"`
	Drugs      int    `json:"drugs"`
	Targets    int    `json:"targets"`
}

func (s referenceStats) Text() string {
	return FormatTable(
		[]string{"SOURCE", "RULE", "RECORDS", "PAIRS", "DRUGS", "TARGETS"},
		[][]string{{
			s.Source, s.Rule,
			strconv.Itoa(s.RawRecords), strconv.Itoa(s.Pairs),
			strconv.Itoa(s.Drugs), strconv.Itoa(s.Targets),
		}},
	)
}

func newReferenceStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Load the configured reference source and summarize it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd.Context(), cliCtx)
			defer cancel()

			refCfg := cliCtx.Config.Reference
			rule, err := reference.ParseRule(refCfg.Harmonize)
			if err != nil {
				return err
			}
			src := prediction.NewReferenceSource(refCfg, cliCtx.Logger)
			raw, err := src.Load(ctx)
			if err != nil {
				return err
			}
			return PrintResult(cmd, summarize(refCfg.Source, rule, raw))
		},
	}
}

func summarize(source string, rule reference.Rule, raw []reference.Record) referenceStats {
	pairs := reference.Harmonize(raw, rule)
	drugs := make(map[string]struct{})
	targets := make(map[string]struct{})
	for _, r := range pairs {
		drugs[r.Drug] = struct{}{}
		targets[r.Target] = struct{}{}
	}
	return referenceStats{
		Source:     source,
		Rule:       string(rule),
		RawRecords: len(raw),
		Pairs:      len(pairs),
		Drugs:      len(drugs),
		Targets:    len(targets),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// import
// ─────────────────────────────────────────────────────────────────────────────

type importOptions struct {
	file      string
	delimiter string
	target    string
	sqlite    string
}

type importResult struct {
	Target  string `json:"target"`
	Read    int    `json:"read"`
	Written int64  `json:"written"`
}

func (r importResult) Text() string {
	return fmt.Sprintf("Imported %d of %d records into %s\n", r.Written, r.Read, r.Target)
}

func newReferenceImportCmd() *cobra.Command {
	opts := &importOptions{}
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a CSV/TSV dataset into SQLite or Postgres",
		Example: `  affinity reference import --file bindingdb_kd.tsv --target sqlite --sqlite reference.db
  affinity reference import --file bindingdb_kd.tsv --target postgres`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			return runImport(cmd, cliCtx, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "dataset with Drug, Target and Y columns (required)")
	cmd.Flags().StringVar(&opts.delimiter, "delimiter", "", "field delimiter; inferred from the extension when empty")
	cmd.Flags().StringVar(&opts.target, "target", "sqlite", "destination (sqlite, postgres)")
	cmd.Flags().StringVar(&opts.sqlite, "sqlite", "", "SQLite database path; defaults to reference.sqlite.path")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runImport(cmd *cobra.Command, cliCtx *CLIContext, opts *importOptions) error {
	ctx, cancel := withTimeout(cmd.Context(), cliCtx)
	defer cancel()

	log := cliCtx.Logger.Named("import")
	records, err := dataset.NewFileSource(opts.file, opts.delimiter, log).Load(ctx)
	if err != nil {
		return err
	}

	res := importResult{Target: opts.target, Read: len(records)}
	switch opts.target {
	case "sqlite":
		path := opts.sqlite
		if path == "" {
			path = cliCtx.Config.Reference.SQLite.Path
		}
		if path == "" {
			return errors.New(errors.ErrCodeValidation, "sqlite path is required (--sqlite or reference.sqlite.path)")
		}
		n, err := sqlite.Import(ctx, path, records)
		if err != nil {
			return err
		}
		res.Target, res.Written = path, int64(n)
	case "postgres":
		pool, err := postgres.NewPool(ctx, cliCtx.Config.Reference.Postgres, log)
		if err != nil {
			return err
		}
		defer pool.Close()
		n, err := postgres.Store(ctx, pool, records)
		if err != nil {
			return err
		}
		res.Written = n
	default:
		return errors.New(errors.ErrCodeValidation, fmt.Sprintf("unknown import target %q; expected sqlite|postgres", opts.target))
	}

	log.Info("reference import completed",
		logging.String("file", opts.file),
		logging.String("target", res.Target),
		logging.Int("read", res.Read),
		logging.Int64("written", res.Written))
	return PrintResult(cmd, res)
}

// ─────────────────────────────────────────────────────────────────────────────
// migrate
// ─────────────────────────────────────────────────────────────────────────────

type migrationStatus struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
}

func (s migrationStatus) Text() string {
	return fmt.Sprintf("Version: %d\nDirty:   %t\n", s.Version, s.Dirty)
}

func newReferenceMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the Postgres reference_affinity schema",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn, err := postgresDSN(cmd)
			if err != nil {
				return err
			}
			if err := postgres.RunMigrations(dsn); err != nil {
				return err
			}
			return PrintResult(cmd, "Migrations applied")
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn, err := postgresDSN(cmd)
			if err != nil {
				return err
			}
			if err := postgres.RollbackMigration(dsn, steps); err != nil {
				return err
			}
			return PrintResult(cmd, fmt.Sprintf("Rolled back %d migration(s)", steps))
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the applied migration version",
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn, err := postgresDSN(cmd)
			if err != nil {
				return err
			}
			v, dirty, err := postgres.MigrationStatus(dsn)
			if err != nil {
				return err
			}
			return PrintResult(cmd, migrationStatus{Version: v, Dirty: dirty})
		},
	}

	cmd.AddCommand(up, down, status)
	return cmd
}

func postgresDSN(cmd *cobra.Command) (string, error) {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return "", err
	}
	dsn := cliCtx.Config.Reference.Postgres.DSN
	if dsn == "" {
		return "", errors.New(errors.ErrCodeValidation, "reference.postgres.dsn is required")
	}
	return dsn, nil
}
