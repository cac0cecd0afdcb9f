package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/employees/internal/config"
	"github.com/JonMunkholm/employees/internal/core"
	"github.com/JonMunkholm/employees/internal/logging"
	"github.com/JonMunkholm/employees/internal/resource"
	"github.com/JonMunkholm/employees/internal/store/postgres"
	"github.com/JonMunkholm/employees/internal/store/sqlite"
	"github.com/JonMunkholm/employees/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"db_driver", cfg.Database.Driver,
		"import_source", cfg.Import.Source,
		"upload_max_file_size", cfg.Upload.MaxFileSize,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
	)

	ctx := context.Background()
	store, closeStore, err := openStore(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	opener, err := importOpener(cfg)
	if err != nil {
		slog.Error("failed to configure import source", "error", err)
		os.Exit(1)
	}

	core.ImportTimeout = cfg.Import.Timeout
	service := core.NewService(store, core.Options{
		Bundled:     opener,
		BundledName: cfg.Import.Resource,
		UploadDir:   cfg.Upload.TempDir,
		Limiter:     core.NewImportLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWait),
	})

	server := web.NewServer(service, cfg)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if active := service.ActiveImports(); active > 0 {
			slog.Info("waiting for imports to complete", "active", active)
			if err := service.WaitForImports(shutdownCtx); err != nil {
				slog.Warn("imports did not complete in time", "error", err)
			} else {
				slog.Info("all imports completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}

// openStore connects the configured database, applying migrations first
// when enabled. The returned func releases the connection.
func openStore(ctx context.Context, cfg config.DatabaseConfig) (core.Store, func(), error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		s, err := sqlite.Open(cfg.URL)
		if err != nil {
			return nil, nil, err
		}
		if cfg.AutoMigrate {
			if err := s.Migrate(); err != nil {
				s.Close()
				return nil, nil, err
			}
		}
		slog.Info("connected to database", "driver", cfg.Driver, "path", cfg.URL)
		return s, func() { s.Close() }, nil

	case config.DriverPostgres:
		if cfg.AutoMigrate {
			if err := postgres.Migrate(cfg.URL); err != nil {
				return nil, nil, err
			}
		}

		poolConfig, err := pgxpool.ParseConfig(cfg.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("parse database URL: %w", err)
		}
		poolConfig.MaxConns = int32(cfg.MaxConns)
		poolConfig.MinConns = int32(cfg.MinConns)
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return nil, nil, fmt.Errorf("connect: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ping: %w", err)
		}

		if u, err := url.Parse(cfg.URL); err == nil {
			slog.Info("connected to database", "driver", cfg.Driver, "name", strings.TrimPrefix(u.Path, "/"))
		} else {
			slog.Info("connected to database", "driver", cfg.Driver)
		}
		return postgres.New(pool), pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// importOpener returns the opener behind "import from resources".
func importOpener(cfg *config.Config) (core.TextOpener, error) {
	switch cfg.Import.Source {
	case config.SourceDir:
		return resource.NewDirOpener(cfg.Import.Dir), nil
	case config.SourceS3:
		o, err := resource.NewBucketOpener(resource.BucketConfig{
			Endpoint:  cfg.ObjectStore.Endpoint,
			AccessKey: cfg.ObjectStore.AccessKey,
			SecretKey: cfg.ObjectStore.SecretKey,
			Bucket:    cfg.ObjectStore.Bucket,
			Prefix:    cfg.ObjectStore.Prefix,
			Region:    cfg.ObjectStore.Region,
			UseSSL:    cfg.ObjectStore.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		return o, nil
	default:
		return resource.Bundled(), nil
	}
}
