package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lexiquest/review-api/internal/config"
	"github.com/lexiquest/review-api/internal/domain"
	"github.com/lexiquest/review-api/internal/domain/srs"
	"github.com/lexiquest/review-api/internal/platform/logger"
	"github.com/lexiquest/review-api/internal/platform/postgres"
	"github.com/lexiquest/review-api/internal/service/auth"
)

// runtimeKey carries the loaded config and logger between cobra hooks.
type runtimeKey struct{}

type cliEnv struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "review-api",
		Short:         "Spaced repetition review service for LexiQuest",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadEnvFile(envFile); err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			log, err := logger.Setup(cfg.Server)
			if err != nil {
				return fmt.Errorf("failed to set up logger: %w", err)
			}

			log.Debug("configuration loaded",
				slog.Int("port", cfg.Server.Port),
				slog.String("log_level", cfg.Server.LogLevel),
				slog.String("database_driver", cfg.Database.Driver))

			cmd.SetContext(context.WithValue(cmd.Context(), runtimeKey{}, &cliEnv{cfg: cfg, logger: log}))
			return nil
		},
	}

	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading configuration")

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newDueCmd(),
		newImportCmd(),
		newTokenCmd(),
	)
	return root
}

// loadEnvFile loads path into the environment without overriding variables
// that are already set. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func runtimeFrom(cmd *cobra.Command) *cliEnv {
	rt, _ := cmd.Context().Value(runtimeKey{}).(*cliEnv)
	if rt == nil {
		// ALLOW-PANIC: PersistentPreRunE always runs before subcommands
		panic("runtime not initialized")
	}
	return rt
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := runtimeFrom(cmd)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			st, err := openStores(ctx, rt.cfg.Database, rt.logger)
			if err != nil {
				return err
			}

			app, err := newApplication(rt.cfg, rt.logger, st)
			if err != nil {
				st.Close(rt.logger)
				return fmt.Errorf("failed to initialize application: %w", err)
			}

			return app.Run(ctx)
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status|reset]",
		Short:     "Manage the PostgreSQL schema",
		Long:      "Manage the PostgreSQL schema. The SQLite backend creates its schema when the database is opened.",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{postgres.MigrateUp, postgres.MigrateDown, postgres.MigrateStatus, postgres.MigrateReset},
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := runtimeFrom(cmd)

			command := postgres.MigrateUp
			if len(args) == 1 {
				command = args[0]
			}

			if rt.cfg.Database.Driver != driverPostgres {
				rt.logger.Info("migrations only apply to postgres, nothing to do",
					slog.String("driver", rt.cfg.Database.Driver))
				return nil
			}

			db, err := postgres.Open(cmd.Context(), rt.cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			return postgres.Migrate(cmd.Context(), db, command, rt.logger)
		},
	}
}

func newDueCmd() *cobra.Command {
	var (
		userID string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "due",
		Short: "List the items a learner has due, most overdue first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := runtimeFrom(cmd)

			uid, err := uuid.Parse(userID)
			if err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}

			st, err := openStores(cmd.Context(), rt.cfg.Database, rt.logger)
			if err != nil {
				return err
			}
			defer st.Close(rt.logger)

			now := time.Now().UTC()
			items, err := st.schedules.FetchDue(cmd.Context(), uid, now)
			if err != nil {
				return fmt.Errorf("failed to fetch due items: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ITEM\tHEADWORD\tNEXT REVIEW\tINTERVAL\tEASE")
			for due := range srs.SelectDueItems(items, now, limit) {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2f\n",
					due.Item.ID, due.Item.Headword,
					due.State.NextReview.Format(time.RFC3339),
					due.State.IntervalDays, due.State.Ease)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "learner ID")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of items, 0 for all")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

// importItem is one entry of an import file.
type importItem struct {
	Headword string `json:"headword"`
	Meaning  string `json:"meaning"`
	Example  string `json:"example"`
	Category string `json:"category"`
}

func newImportCmd() *cobra.Command {
	var (
		userID string
		file   string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import vocabulary items for a learner from a JSON file",
		Long:  "Import vocabulary items from a JSON array of {headword, meaning, example, category}. All items are written in one transaction.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := runtimeFrom(cmd)

			uid, err := uuid.Parse(userID)
			if err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}

			items, err := readImportFile(file, uid)
			if err != nil {
				return err
			}

			st, err := openStores(cmd.Context(), rt.cfg.Database, rt.logger)
			if err != nil {
				return err
			}
			defer st.Close(rt.logger)

			if err := st.vocabulary.CreateMultiple(cmd.Context(), items); err != nil {
				return fmt.Errorf("failed to import items: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "imported %d items\n", len(items))
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "learner ID owning the items")
	cmd.Flags().StringVar(&file, "file", "", "path to the JSON file")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readImportFile(path string, userID uuid.UUID) ([]*domain.VocabularyItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read import file: %w", err)
	}

	var entries []importItem
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse import file: %w", err)
	}

	items := make([]*domain.VocabularyItem, 0, len(entries))
	for i, e := range entries {
		item, err := domain.NewVocabularyItem(userID, e.Headword, e.Meaning, e.Example, e.Category)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		items = append(items, item)
	}

	return items, nil
}

func newTokenCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for a learner, for local development",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := runtimeFrom(cmd)

			uid, err := uuid.Parse(userID)
			if err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}

			jwtService, err := auth.NewJWTService(rt.cfg.Auth)
			if err != nil {
				return fmt.Errorf("failed to initialize JWT service: %w", err)
			}

			token, err := jwtService.GenerateToken(cmd.Context(), uid)
			if err != nil {
				return fmt.Errorf("failed to generate token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "learner ID")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
