package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"wallet-account-picker/internal/account"
	"wallet-account-picker/internal/config"
	"wallet-account-picker/internal/feed"
	"wallet-account-picker/internal/health"
	"wallet-account-picker/internal/i18n"
	"wallet-account-picker/internal/state"
	"wallet-account-picker/internal/storage"
	"wallet-account-picker/internal/tui"
)

const configPath = "config/config.yaml"

func main() {
	// Check for TUI mode (default) or headless mode
	headless := os.Getenv("HEADLESS") == "1"

	if headless {
		runHeadless()
	} else {
		runWithTUI()
	}
}

// app is everything both modes share
type app struct {
	cfg        *config.Manager
	store      *state.Store
	db         *storage.DB
	server     *feed.Server
	subscriber *feed.Subscriber
	health     *health.Checker
}

func runHeadless() {
	setupLogger()
	log.Info().Msg("account picker starting (headless mode)")

	a := initComponents()
	configureHeadless(a.cfg)
	a.cfg.SetOnChange(func(c *config.Config) {
		i18n.SetLocale(c.UI.Locale)
	})

	ctx, cancel := context.WithCancel(context.Background())
	a.start(ctx)

	updates, unsubscribe := a.store.Subscribe()
	defer unsubscribe()

	printAccounts(os.Stdout, a.store, a.cfg)
	go func() {
		for range updates {
			printAccounts(os.Stdout, a.store, a.cfg)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")
	cancel()
	a.shutdown()
	log.Info().Msg("goodbye")
}

func runWithTUI() {
	cfg := loadConfig()

	// Redirect logs to file so they don't spam the TUI
	logPath := cfg.Get().Log.File
	_ = os.MkdirAll(filepath.Dir(logPath), 0755)
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open log file: %v\n", err)
		logFile = nil
	}

	if logFile != nil {
		log.Logger = zerolog.New(logFile).With().Timestamp().Logger()
		zerolog.SetGlobalLevel(parseLevel(cfg.Get().Log.Level))
	} else {
		log.Logger = zerolog.Nop()
	}

	a := initComponentsWith(cfg)
	ctx, cancel := context.WithCancel(context.Background())

	model := tui.NewModel(cfg)
	origin := cfg.Get().Picker.Origin
	model.SetCallbacks(
		func(index int) {
			rec, err := a.store.Connect(index)
			if err != nil {
				log.Warn().Err(err).Int("index", index).Msg("connect failed")
				return
			}
			if a.db != nil {
				if _, err := a.db.GrantPermission(rec.Address, origin); err != nil {
					log.Error().Err(err).Str("address", rec.Address).Msg("failed to store permission")
				}
			}
			log.Info().Str("address", rec.Address).Str("origin", origin).Msg("account connected")
		},
		func(index int) {
			rec, err := a.store.Revoke(index)
			if err != nil {
				log.Warn().Err(err).Int("index", index).Msg("revoke failed")
				return
			}
			if a.db != nil {
				n, err := a.db.RevokePermissions(rec.Address, origin)
				if err != nil {
					log.Error().Err(err).Str("address", rec.Address).Msg("failed to revoke permission")
				}
				log.Debug().Int64("grants", n).Msg("permissions revoked")
			}
			log.Info().Str("address", rec.Address).Str("origin", origin).Msg("account revoked")
		},
		func(address string, isImported bool, index int) {
			log.Info().
				Str("address", address).
				Bool("imported", isImported).
				Int("index", index).
				Msg("account options requested")
		},
	)

	// Create TUI program
	p := tea.NewProgram(model, tea.WithAltScreen())

	a.start(ctx)

	// Push state to the TUI on every change
	updates, unsubscribe := a.store.Subscribe()
	defer unsubscribe()
	sendState := func() {
		tui.SendState(p, a.store.Records(), a.store.Snapshot(), a.store.UpdatedAt())
	}
	go func() {
		sendState()
		for range updates {
			sendState()
		}
	}()

	// Theme, locale and disabled rows follow config edits.
	// onChange can run inside Model.Update (theme key), so never send synchronously.
	cfg.SetOnChange(func(c *config.Config) {
		ui := c.UI
		go tui.SendConfig(p, ui)
	})

	if logFile != nil {
		go tailLogs(ctx, p, logPath)
	}

	// Run TUI (blocking)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}

	// Cleanup
	cancel()
	a.shutdown()
}

func loadConfig() *config.Manager {
	cfg, err := config.NewManager(configPath)
	if err != nil {
		log.Warn().Err(err).Str("path", configPath).Msg("config not loaded, using defaults")
		return config.Default()
	}
	return cfg
}

func initComponents() *app {
	return initComponentsWith(loadConfig())
}

func initComponentsWith(cfg *config.Manager) *app {
	c := cfg.Get()
	a := &app{cfg: cfg, store: state.NewStore(), health: health.NewChecker(10 * time.Second)}

	// Database
	if err := os.MkdirAll(filepath.Dir(c.Storage.SQLitePath), 0755); err != nil {
		log.Warn().Err(err).Msg("failed to create data directory")
	}
	db, err := storage.NewDB(c.Storage.SQLitePath)
	if err != nil {
		log.Error().Err(err).Msg("database unavailable, state will not persist")
	} else {
		a.db = db
		a.health.Register("sqlite", db.Ping)
		if err := hydrate(a.store, db, c.Picker.Origin); err != nil {
			log.Error().Err(err).Msg("failed to load saved accounts")
		}
	}

	a.server = feed.NewServer(c.Feed.ListenHost, c.Feed.ListenPort, c.Feed.RateLimit, a.store)
	if c.Feed.WSURL != "" {
		a.subscriber = feed.NewSubscriber(c.Feed.WSURL, a.store, cfg.GetReconnectDelay())
		a.subscriber.SetAuthToken(c.Feed.WSAuthToken)
		a.health.Register("feed_subscriber", a.subscriber.Probe)
	}
	a.server.SetHealth(a.health)

	return a
}

// hydrate loads saved accounts and marks those with an active grant as connected
func hydrate(store *state.Store, db *storage.DB, origin string) error {
	records, err := db.GetAllAccounts()
	if err != nil {
		return err
	}
	selected, err := db.GetSelectedAddress()
	if err != nil {
		return err
	}
	balances, err := db.GetBalances()
	if err != nil {
		return err
	}
	perms, err := db.ActivePermissions(origin)
	if err != nil {
		return err
	}

	granted := make(map[string]bool, len(perms))
	for _, p := range perms {
		granted[p.Address] = true
	}
	for i := range records {
		records[i].IsConnected = granted[records[i].Address]
	}

	log.Info().
		Int("accounts", len(records)).
		Int("grants", len(perms)).
		Str("selected", account.ShortAddress(selected)).
		Msg("state restored")
	return store.Hydrate(records, selected, balances)
}

func (a *app) start(ctx context.Context) {
	a.health.Start(ctx)

	// Start HTTP feed in background
	go func() {
		if err := a.server.Start(); err != nil {
			log.Error().Err(err).Msg("feed server failed")
		}
	}()
	c := a.cfg.Get()
	log.Info().
		Str("host", c.Feed.ListenHost).
		Int("port", c.Feed.ListenPort).
		Msg("feed server started")

	if a.subscriber != nil {
		go func() {
			if err := a.subscriber.Run(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("feed subscriber stopped")
			}
		}()
	}

	if a.db != nil {
		go a.persist(ctx)
	}
}

// persist writes the state after each change
func (a *app) persist(ctx context.Context) {
	updates, unsubscribe := a.store.Subscribe()
	defer unsubscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case <-updates:
			if err := a.db.SaveState(a.store.Records(), a.store.Snapshot()); err != nil {
				log.Error().Err(err).Msg("failed to save state")
			}
		}
	}
}

func (a *app) shutdown() {
	if err := a.server.Shutdown(); err != nil {
		log.Warn().Err(err).Msg("feed server shutdown")
	}
	if a.db != nil {
		if err := a.db.SaveState(a.store.Records(), a.store.Snapshot()); err != nil {
			log.Error().Err(err).Msg("failed to save state")
		}
		a.db.Close()
	}
	if a.subscriber != nil {
		applied, dropped := a.subscriber.Stats()
		log.Info().Uint64("applied", applied).Uint64("dropped", dropped).Msg("feed subscriber totals")
	}
}

// tailLogs streams new log lines into the logs screen
func tailLogs(ctx context.Context, p *tea.Program, path string) {
	file, err := os.Open(path)
	if err != nil {
		return
	}
	defer file.Close()

	// Seek to end initially to avoid spamming old logs
	if _, err := file.Seek(0, 2); err != nil {
		return
	}

	reader := bufio.NewReader(file)
	for {
		if ctx.Err() != nil {
			return
		}
		line, err := reader.ReadString('\n')
		if err != nil {
			time.Sleep(100 * time.Millisecond) // Wait for new data
			continue
		}
		line = strings.TrimSpace(line)
		if line != "" {
			tui.SendLogs(p, []string{line})
		}
	}
}

func setupLogger() {
	log.Logger = zerolog.New(
		zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"},
	).With().Timestamp().Logger()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if os.Getenv("DEBUG") == "1" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// configureHeadless applies log.level (unless DEBUG=1) and ui.locale
func configureHeadless(cfg *config.Manager) {
	if os.Getenv("DEBUG") != "1" {
		zerolog.SetGlobalLevel(parseLevel(cfg.Get().Log.Level))
	}
	i18n.SetLocale(cfg.GetUI().Locale)
}

func parseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || s == "" {
		return zerolog.InfoLevel
	}
	return lvl
}
