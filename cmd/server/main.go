package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/iudanet/famcal/internal/crypto"
	"github.com/iudanet/famcal/internal/models"
	"github.com/iudanet/famcal/internal/server"
	"github.com/iudanet/famcal/internal/server/auth"
	"github.com/iudanet/famcal/internal/server/config"
	"github.com/iudanet/famcal/internal/server/storage/sqlite"
	"github.com/iudanet/famcal/internal/validation"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "famcal-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}

	if cfg.ShowVersion {
		printVersion()
		return nil
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		_ = store.Close()
	}()

	if cfg.BootstrapAdmin != "" {
		return bootstrapAdmin(ctx, store, cfg.BootstrapAdmin)
	}

	// Без единственного админа система неуправляема: создать некому
	admins, err := store.CountAdmins(ctx)
	if err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	if admins == 0 {
		logger.Warn("no admin accounts exist, run with -bootstrap-admin <username> to create one")
	}

	service := auth.NewService(logger, store, store, store, cfg.SessionTTL, cfg.SetupTokenTTL)

	router := server.NewRouter(logger, cfg, service, server.Stores{
		Users:   store,
		Updates: store,
	}, Version)

	// Фоновая чистка истекших строк; корректность от нее не зависит
	sweeper := server.NewSweeper(logger, store, time.Hour)
	go sweeper.Run(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errC := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			slog.String("addr", cfg.Addr),
			slog.String("version", Version),
			slog.Bool("dev_mode", cfg.DevMode))
		errC <- srv.ListenAndServe()
	}()

	select {
	case err := <-errC:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
	}

	return nil
}

// bootstrapAdmin создает административный аккаунт, спросив пароль с
// терминала (ввод не отображается). Используется при первом запуске.
func bootstrapAdmin(ctx context.Context, store *sqlite.Storage, username string) error {
	username = validation.NormalizeUsername(username)
	if err := validation.ValidateUsername(username); err != nil {
		return err
	}

	fmt.Printf("Password for admin %q: ", username)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	fmt.Print("Repeat password: ")
	confirm, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	if string(password) != string(confirm) {
		return fmt.Errorf("passwords do not match")
	}
	if err := validation.ValidatePassword(string(password)); err != nil {
		return err
	}

	hash, err := crypto.HashPassword(string(password))
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     username,
		Role:         models.RoleAdmin,
		PasswordHash: &hash,
		CreatedAt:    time.Now(),
	}

	if err := store.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	fmt.Printf("Admin %q created\n", username)
	return nil
}

func printVersion() {
	fmt.Printf("famcal Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
