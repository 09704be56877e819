package main

import (
	"context"
	crypto_rand "crypto/rand"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/odontosys/odontosys/internal/config"
	"github.com/odontosys/odontosys/internal/domain/appointments"
	"github.com/odontosys/odontosys/internal/domain/documents"
	"github.com/odontosys/odontosys/internal/domain/identity"
	"github.com/odontosys/odontosys/internal/domain/patients"
	"github.com/odontosys/odontosys/internal/domain/procedures"
	"github.com/odontosys/odontosys/internal/platform/auth"
	"github.com/odontosys/odontosys/internal/platform/backup"
	"github.com/odontosys/odontosys/internal/platform/blobstore"
	"github.com/odontosys/odontosys/internal/platform/db"
	"github.com/odontosys/odontosys/internal/platform/middleware"
	"github.com/odontosys/odontosys/internal/platform/realtime"
	"github.com/odontosys/odontosys/internal/platform/reporting"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-server",
		Short: "Dental clinic management API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(backupCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the clinic API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo dataset into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			patientRepo := patients.NewRepoPG(pool)
			for _, p := range patients.DemoPatients() {
				if err := patientRepo.Upsert(ctx, p); err != nil {
					return fmt.Errorf("seeding patient %s: %w", p.FullName, err)
				}
			}
			procRepo := procedures.NewRepoPG(pool)
			for _, p := range procedures.DemoProcedures() {
				if err := procRepo.Upsert(ctx, p); err != nil {
					return fmt.Errorf("seeding procedure %s: %w", p.Name, err)
				}
			}
			apptRepo := appointments.NewRepoPG(pool)
			for _, a := range appointments.DemoAppointments() {
				if err := apptRepo.Upsert(ctx, a); err != nil {
					return fmt.Errorf("seeding appointment %s: %w", a.ID, err)
				}
			}
			docRepo := documents.NewRepoPG(pool)
			for _, d := range documents.DemoDocuments() {
				if err := docRepo.Upsert(ctx, d); err != nil {
					return fmt.Errorf("seeding document %s: %w", d.FileName, err)
				}
			}

			fmt.Println("Demo data loaded.")
			return nil
		},
	}
}

func backupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export or restore a JSON snapshot",
	}

	exportCmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Write a snapshot of all clinic data to a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			mgr := backup.NewManager(backupSources(pool)...)
			data, err := mgr.Export(ctx)
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[0], data, 0o600); err != nil {
				return err
			}
			fmt.Printf("Snapshot written to %s (%d bytes).\n", args[0], len(data))
			return nil
		},
	}
	cmd.AddCommand(exportCmd)

	importCmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Restore a snapshot from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			mgr := backup.NewManager(backupSources(pool)...)
			counts, err := mgr.Import(ctx, data)
			if err != nil {
				return err
			}
			for name, n := range counts {
				fmt.Printf("%-14s %d restored\n", name, n)
			}
			return nil
		},
	}
	cmd.AddCommand(importCmd)

	return cmd
}

// backupSources builds the entity adapters for offline snapshot commands.
// The server builds its own set over the wired services so fallback and
// notifications stay out of the restore path.
func backupSources(pool *pgxpool.Pool) []backup.Source {
	patientSvc := patients.NewService(patients.NewRepoPG(pool), nil, nil)
	apptSvc := appointments.NewService(appointments.NewRepoPG(pool), nil)
	procSvc := procedures.NewService(procedures.NewRepoPG(pool))
	docSvc := documents.NewService(documents.NewRepoPG(pool), blobstore.NewInMemoryStore("", 0))
	return buildSources(pool, patientSvc, apptSvc, procSvc, docSvc)
}

func buildSources(pool *pgxpool.Pool, patientSvc *patients.Service, apptSvc *appointments.Service, procSvc *procedures.Service, docSvc *documents.Service) []backup.Source {
	return []backup.Source{
		{
			Name:   "patients",
			List:   func(ctx context.Context) (interface{}, error) { return emptySlice(patientSvc.All(ctx)) },
			Import: importInTx(pool, patientSvc.Import),
		},
		{
			Name:   "appointments",
			List:   func(ctx context.Context) (interface{}, error) { return emptySlice(apptSvc.All(ctx)) },
			Import: importInTx(pool, apptSvc.Import),
		},
		{
			Name:   "procedures",
			List:   func(ctx context.Context) (interface{}, error) { return emptySlice(procSvc.All(ctx)) },
			Import: importInTx(pool, procSvc.Import),
		},
		{
			Name:   "documents",
			List:   func(ctx context.Context) (interface{}, error) { return emptySlice(docSvc.All(ctx)) },
			Import: importInTx(pool, docSvc.Import),
		},
	}
}

// importInTx decodes an entity array and restores it inside one transaction,
// so a failed restore never leaves a source half written.
func importInTx[T any](pool *pgxpool.Pool, imp func(ctx context.Context, items []*T) (int, error)) func(context.Context, json.RawMessage) (int, error) {
	return func(ctx context.Context, data json.RawMessage) (int, error) {
		var items []*T
		if err := json.Unmarshal(data, &items); err != nil {
			return 0, err
		}
		var n int
		err := db.InTx(ctx, pool, func(ctx context.Context) error {
			var err error
			n, err = imp(ctx, items)
			return err
		})
		return n, err
	}
}

// emptySlice keeps exported entity arrays as [] instead of null.
func emptySlice[T any](items []T, err error) (interface{}, error) {
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// resolveJWTSecret returns the configured signing secret, or generates a
// random one for development runs. Config validation already rejects a
// missing secret in production.
func resolveJWTSecret(cfg *config.Config, logger zerolog.Logger) ([]byte, error) {
	if cfg.JWTSecret != "" {
		return []byte(cfg.JWTSecret), nil
	}
	key := make([]byte, 32)
	if _, err := crypto_rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate session signing key: %w", err)
	}
	logger.Warn().Msg("JWT_SECRET not set; sessions will not survive restarts")
	return key, nil
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.RequestTimeout(30 * time.Second))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Session manager over the staff account store
	secret, err := resolveJWTSecret(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to resolve session secret")
	}
	identityRepo := identity.NewRepoPG(pool)
	identitySvc := identity.NewService(identityRepo)
	authMgr := auth.NewManager(identitySvc, secret, time.Duration(cfg.TokenTTLMinutes)*time.Minute)
	defer authMgr.Close()

	// Revocation entries are only needed until the token expires; sweep the
	// set hourly so it does not grow for the life of the process.
	pruneTicker := time.NewTicker(time.Hour)
	defer pruneTicker.Stop()
	go func() {
		for now := range pruneTicker.C {
			authMgr.PruneRevoked(now)
		}
	}()

	// Realtime hub with coalesced change notifications
	hub := realtime.NewHub()
	notifier := realtime.NewNotifier(hub, time.Duration(cfg.RealtimeWindowMS)*time.Millisecond)
	defer notifier.Close()

	// Blob storage for patient documents
	store := blobstore.NewInMemoryStore(cfg.PublicBaseURL+"/api/v1", cfg.UploadMaxBytes)

	// API groups
	apiV1 := e.Group("/api/v1")
	authed := apiV1.Group("", auth.Middleware(authMgr))

	// Repositories, optionally wrapped with the demo read fallback
	patientRepo := patients.NewRepoPG(pool)
	apptRepo := appointments.NewRepoPG(pool)
	procRepo := procedures.NewRepoPG(pool)
	docRepo := documents.NewRepoPG(pool)
	if cfg.DemoFallback {
		logger.Info().Msg("demo fallback enabled; reads degrade to seed data on database errors")
		patientRepo = patients.NewRepoFallback(patientRepo, logger)
		apptRepo = appointments.NewRepoFallback(apptRepo, logger)
		procRepo = procedures.NewRepoFallback(procRepo, logger)
		docRepo = documents.NewRepoFallback(docRepo, logger)
	}

	// Services
	docSvc := documents.NewService(docRepo, store)
	patientSvc := patients.NewService(patientRepo, notifier, docSvc)
	apptSvc := appointments.NewService(apptRepo, notifier)
	procSvc := procedures.NewService(procRepo)
	reportSvc := reporting.NewService(patientSvc, apptSvc, procSvc, docSvc)
	backupMgr := backup.NewManager(buildSources(pool, patientSvc, apptSvc, procSvc, docSvc)...)

	// Handlers
	auth.NewHandler(authMgr).RegisterRoutes(apiV1, authed)
	patients.NewHandler(patientSvc).RegisterRoutes(authed)
	appointments.NewHandler(apptSvc).RegisterRoutes(authed)
	procedures.NewHandler(procSvc).RegisterRoutes(authed)
	documents.NewHandler(docSvc).RegisterRoutes(authed)
	identity.NewHandler(identitySvc).RegisterRoutes(authed)
	reporting.NewHandler(reportSvc).RegisterRoutes(authed)
	backup.NewHandler(backupMgr).RegisterRoutes(authed)
	blobstore.NewHandler(store).RegisterRoutes(apiV1)
	realtime.NewHandler(hub).RegisterRoutes(apiV1)

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
