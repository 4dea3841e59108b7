package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/shoplist/internal/config"
	"github.com/Makepad-fr/shoplist/internal/shopping"
	"github.com/Makepad-fr/shoplist/internal/store/jsonstore"
	"github.com/Makepad-fr/shoplist/internal/store/sqlitestore"
	"github.com/Makepad-fr/shoplist/internal/ui"
)

type itemStore interface {
	shopping.Store
	io.Closer
}

// session is the startup phase every command runs once: config, logging,
// the single store handle and the loaded controller built on top of it.
type session struct {
	cfg    config.Config
	logger *slog.Logger
	store  itemStore
	list   *shopping.List
	out    *OutputFormatter

	closers []io.Closer
}

// openSession resolves configuration and loads the list. Interactive
// sessions never log to the terminal.
func openSession(cmd *cobra.Command, opts *RootOptions, interactive bool) (*session, error) {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return nil, err
	}
	ui.SetTheme(cfg.Theme)
	applyColorMode(opts.Color)

	s := &session{
		cfg: cfg,
		out: &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr()},
	}

	logOut := cmd.ErrOrStderr()
	if interactive {
		logOut = io.Discard
	}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, WrapExitError(ExitFailure, "open log file", err)
		}
		s.closers = append(s.closers, f)
		logOut = f
	}
	level := cfg.Level()
	if opts.Verbose {
		level = slog.LevelDebug
	}
	s.logger = slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))

	path := cfg.StorePath()
	s.logger.Debug("opening item store", "backend", cfg.Backend, "path", path)
	st, err := openStore(cfg.Backend, path)
	if err != nil {
		s.Close()
		return nil, WrapExitError(ExitFailure, "open item store", err)
	}
	s.store = st

	s.list = shopping.New(st, shopping.WithLogger(s.logger))
	if _, err := s.list.Load(cmd.Context()); err != nil {
		s.Close()
		return nil, WrapExitError(ExitFailure, "load items", err)
	}
	return s, nil
}

// Close drains the controller, then closes the store and log file.
func (s *session) Close() error {
	var errs []error
	if s.list != nil {
		errs = append(errs, s.list.Close())
	}
	if s.store != nil {
		errs = append(errs, s.store.Close())
	}
	for _, c := range s.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// applyColorMode sets the colour override for this process. An explicit
// mode beats NO_COLOR.
func applyColorMode(mode string) {
	switch mode {
	case "always":
		ui.SetColorForcing(true, false)
	case "never":
		ui.SetColorForcing(false, true)
	default:
		ui.SetColorForcing(false, os.Getenv("NO_COLOR") != "")
	}
}

// resolveConfig layers flags over the config file and environment.
func resolveConfig(opts *RootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "load config", err)
	}
	if opts.DBPath != "" {
		cfg.DBPath = opts.DBPath
	}
	if opts.Backend != "" {
		cfg.Backend = opts.Backend
	}
	if opts.Theme != "" {
		cfg.Theme = opts.Theme
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "invalid config", err)
	}
	return cfg, nil
}

func openStore(backend, path string) (itemStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	switch backend {
	case config.BackendJSON:
		return jsonstore.Open(path)
	case config.BackendSQLite:
		return sqlitestore.Open(path)
	}
	return nil, fmt.Errorf("unknown backend %q", backend)
}
