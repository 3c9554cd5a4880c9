package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"yamdb/internal/auth"
	"yamdb/internal/dataset"
	"yamdb/internal/logger"
	"yamdb/internal/store"
	"yamdb/pkg/database"
	"yamdb/pkg/utils"
)

type rootOptions struct {
	dbPath   string
	logLevel string
}

func main() {
	utils.LoadEnv()
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		logger.GetLogger("yamdbctl").Errorf("command failed: %v", err)
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:           "yamdbctl",
		Short:         "Administrative tasks for the yamdb store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Init(opts.logLevel)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", database.DefaultConfig().Path, "sqlite database path")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", os.Getenv("YAMDB_LOG_LEVEL"), "log level (debug, info, warn, error)")

	cmd.AddCommand(newLoadDataCmd(&opts), newExportDataCmd(&opts), newTokenCmd(&opts), newStatsCmd(&opts))
	return cmd
}

func openDB(opts *rootOptions) (*sql.DB, error) {
	db, err := database.Open(database.Config{Path: opts.dbPath})
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

type loadDataOptions struct {
	dataDir   string
	batchSize int
	cleanOnly bool
}

func newLoadDataCmd(root *rootOptions) *cobra.Command {
	dataCfg := utils.LoadDataConfig()
	opts := loadDataOptions{dataDir: dataCfg.Dir, batchSize: dataCfg.BatchSize}

	cmd := &cobra.Command{
		Use:   "load-data",
		Short: "Archive, clean and load the CSV dataset, replacing the store contents",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoadData(cmd.Context(), root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.dataDir, "data", opts.dataDir, "directory holding the CSV extracts")
	cmd.Flags().IntVar(&opts.batchSize, "batch", opts.batchSize, "rows per INSERT statement")
	cmd.Flags().BoolVar(&opts.cleanOnly, "clean-only", false, "archive and clean the extracts without touching the store")
	return cmd
}

func runLoadData(ctx context.Context, root *rootOptions, opts loadDataOptions) error {
	log := logger.GetLogger("load-data")

	db, err := openDB(root)
	if err != nil {
		log.Errorf("open db: %v", err)
		return err
	}
	defer db.Close()

	p := dataset.New(opts.dataDir, store.New(db), dataset.WithBatchSize(opts.batchSize))

	var res *dataset.Result
	if opts.cleanOnly {
		res = p.Prepare()
	} else {
		res = p.Run(ctx)
	}

	out, _ := json.MarshalIndent(res, "", "  ")
	fmt.Println(string(out))

	if f := res.Failure(); f != nil {
		if errors.Is(f, dataset.ErrMissingSource) {
			log.Errorf("nothing was modified: %v", f.Err)
		}
		return f
	}
	return nil
}

func newExportDataCmd(root *rootOptions) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "export-data",
		Short: "Write the store contents as CSV extracts load-data can read back",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.GetLogger("export-data")

			db, err := openDB(root)
			if err != nil {
				return err
			}
			defer db.Close()

			counts, err := dataset.Export(cmd.Context(), store.New(db), outDir)
			if err != nil {
				return err
			}
			for _, e := range dataset.Entities {
				log.Infow("extract written", "entity", e.Name, "file", e.File, "rows", counts[e.Name])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "data/export", "directory to write the extracts into")
	return cmd
}

func newTokenCmd(root *rootOptions) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign an API token for an existing user",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(root)
			if err != nil {
				return err
			}
			defer db.Close()

			u, err := auth.NewRepo(db).GetByUsername(cmd.Context(), username)
			if err != nil {
				return err
			}
			if u == nil {
				return fmt.Errorf("user %q not found", username)
			}

			cfg := utils.LoadAuthConfig()
			tokens := auth.TokenService{
				Secret:   []byte(cfg.JWTSecret),
				Issuer:   cfg.JWTIssuer,
				Duration: cfg.JWTDuration,
			}
			tok, exp, err := tokens.Sign(u)
			if err != nil {
				return err
			}
			fmt.Println(tok)
			logger.GetLogger("token").Infow("token issued", "user", u.Username, "role", u.Role, "expires_at", exp)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "username to issue the token for (required)")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newStatsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print row counts of every managed table",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(root)
			if err != nil {
				return err
			}
			defer db.Close()

			tables := make([]string, 0, len(dataset.Entities))
			for _, e := range dataset.Entities {
				tables = append(tables, e.Table)
			}
			counts, err := store.New(db).Counts(cmd.Context(), tables)
			if err != nil {
				return err
			}

			sort.Strings(tables)
			for _, t := range tables {
				fmt.Printf("%-14s %d\n", t, counts[t])
			}
			return nil
		},
	}
}
