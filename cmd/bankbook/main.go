// BankBook is a Telegram bot that keeps persons, their bank accounts and
// their scanned documents behind a strict menu-driven dialogue.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/daftarche/bankbook/internal/dialog"
	"github.com/daftarche/bankbook/internal/models"
	"github.com/daftarche/bankbook/internal/store"
	"github.com/daftarche/bankbook/internal/telegram"
	"github.com/daftarche/bankbook/internal/util"
)

const defaultStateDir = "/var/lib/bankbook"

// config is the process configuration, resolved from the environment with
// flag overrides.
type config struct {
	Token    string
	DSN      string
	AdminID  int64
	StateDir string
	Debug    bool
}

// loadConfig reads the environment. An empty DATABASE_URL falls back to an
// SQLite file under the state directory.
func loadConfig() config {
	cfg := config{
		Token:    os.Getenv("TELEGRAM_BOT_TOKEN"),
		DSN:      os.Getenv("DATABASE_URL"),
		AdminID:  util.ParseInt64Env("ADMIN_TELEGRAM_ID", 0),
		StateDir: os.Getenv("BANKBOOK_STATE_DIR"),
		Debug:    util.ParseBoolEnv("TELEGRAM_DEBUG", false),
	}
	if cfg.StateDir == "" {
		cfg.StateDir = defaultStateDir
	}
	if cfg.DSN == "" {
		cfg.DSN = filepath.Join(cfg.StateDir, "bankbook.db")
	}
	return cfg
}

// openStore picks the backend from the DSN shape.
func openStore(dsn string) (store.Store, error) {
	switch store.DetectDSNType(dsn) {
	case "postgres":
		slog.Info("Using PostgreSQL store")
		return store.NewPostgresStore(store.WithPostgresDSN(dsn))
	default:
		slog.Info("Using SQLite store", "path", dsn)
		return store.NewSQLiteStore(store.WithSQLiteDSN(dsn))
	}
}

func main() {
	envFile := flag.String("env", ".env", "path to .env file")
	tokenFlag := flag.String("token", "", "Telegram bot token (overrides TELEGRAM_BOT_TOKEN)")
	dsnFlag := flag.String("db", "", "database DSN (overrides DATABASE_URL)")
	adminFlag := flag.Int64("admin", 0, "admin Telegram id (overrides ADMIN_TELEGRAM_ID)")
	stateDirFlag := flag.String("state-dir", "", "state directory (overrides BANKBOOK_STATE_DIR)")
	debugFlag := flag.Bool("debug", false, "enable verbose bot API logging")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil {
		slog.Debug("No .env file loaded", "path", *envFile, "error", err)
	}

	cfg := loadConfig()
	if *tokenFlag != "" {
		cfg.Token = *tokenFlag
	}
	if *dsnFlag != "" {
		cfg.DSN = *dsnFlag
	}
	if *adminFlag != 0 {
		cfg.AdminID = *adminFlag
	}
	if *stateDirFlag != "" {
		cfg.StateDir = *stateDirFlag
		if *dsnFlag == "" && os.Getenv("DATABASE_URL") == "" {
			cfg.DSN = filepath.Join(cfg.StateDir, "bankbook.db")
		}
	}
	if cfg.Debug || *debugFlag {
		cfg.Debug = true
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	if cfg.Token == "" {
		slog.Error("TELEGRAM_BOT_TOKEN not set")
		os.Exit(1)
	}
	if cfg.AdminID == 0 {
		slog.Warn("ADMIN_TELEGRAM_ID not set, admin flows are disabled")
	}

	st, err := openStore(cfg.DSN)
	if err != nil {
		slog.Error("Failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	// The admin is a privileged users row, seeded at startup.
	if cfg.AdminID != 0 {
		if err := st.UpsertUser(models.User{ID: cfg.AdminID, FirstName: "Admin"}); err != nil {
			slog.Error("Failed to seed admin user", "error", err)
			os.Exit(1)
		}
	}

	svc, err := telegram.NewClient(
		telegram.WithToken(cfg.Token),
		telegram.WithDebug(cfg.Debug),
	)
	if err != nil {
		slog.Error("Failed to create Telegram client", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := svc.Start(ctx); err != nil {
		slog.Error("Failed to start Telegram client", "error", err)
		os.Exit(1)
	}

	engine := dialog.NewEngine(st, svc, dialog.WithAdminID(cfg.AdminID))
	engine.Run(ctx)

	slog.Info("Shutting down")
	svc.Stop()
}
