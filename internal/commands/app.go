package commands

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/libros-dev/libros/internal/accounts"
	"github.com/libros-dev/libros/internal/config"
	"github.com/libros-dev/libros/internal/journal"
	"github.com/libros-dev/libros/internal/model"
	"github.com/libros-dev/libros/internal/projects"
	"github.com/libros-dev/libros/internal/store/sqlite"
)

// app is an opened books directory: its configuration and store.
type app struct {
	dir    string
	cfg    *config.Config
	store  *sqlite.Store
	rules  journal.Rules
	logger *slog.Logger
	opts   *globalOptions
}

// openApp loads libros.yaml and .env from the books directory and opens the
// store.
func openApp(opts *globalOptions) (*app, error) {
	dir, err := filepath.Abs(opts.dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	if err != nil {
		return nil, fmt.Errorf("%w (run 'libros init' first)", err)
	}
	if err := cfg.ApplyEnv(filepath.Join(dir, ".env")); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Debug {
		opts.level.Set(slog.LevelDebug)
	}

	minDate, err := cfg.MinPurchaseDate()
	if err != nil {
		return nil, err
	}
	rules := journal.DefaultRules()
	if !minDate.IsZero() {
		rules.MinPurchaseDate = minDate
	}
	rules.UniqueSaleInvoices = cfg.Validation.UniqueSaleInvoices

	st, err := sqlite.Open(cfg.StorePath(dir))
	if err != nil {
		return nil, err
	}
	opts.logger.Debug("store opened", "path", st.Path())

	return &app{
		dir:    dir,
		cfg:    cfg,
		store:  st,
		rules:  rules,
		logger: opts.logger,
		opts:   opts,
	}, nil
}

// withApp opens the books directory, runs fn and closes the store.
func withApp(opts *globalOptions, fn func(a *app) error) error {
	a, err := openApp(opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("closing store", "error", err)
		}
	}()
	return fn(a)
}

// setCurrentProject records the current project in libros.yaml. The file is
// re-read so environment overrides are not persisted.
func (a *app) setCurrentProject(projectID string) error {
	path := filepath.Join(a.dir, config.FileName)
	raw, err := config.Load(path)
	if err != nil {
		return err
	}
	raw.Projects.Current = projectID
	if err := config.Save(path, raw); err != nil {
		return err
	}
	a.cfg.Projects.Current = projectID
	return nil
}

func (a *app) projects() *projects.Service {
	return projects.NewService(a.store, a.cfg.Owner, a.logger)
}

// project resolves the --project flag, falling back to the current project.
func (a *app) project(ctx context.Context) (model.Project, error) {
	ref := a.opts.project
	if ref == "" {
		ref = a.cfg.Projects.Current
	}
	if ref == "" {
		return model.Project{}, fmt.Errorf("no project selected (use --project or 'libros project use')")
	}
	return a.projects().Resolve(ctx, ref)
}

// ledger returns the project's transaction ledger, loaded.
func (a *app) ledger(ctx context.Context, proj model.Project) (*journal.Service, error) {
	svc := journal.NewService(a.store, proj.ID, a.cfg.Owner, a.rules, a.logger)
	if err := svc.Reload(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}

func (a *app) registry(projectID string) *accounts.Registry {
	return accounts.NewRegistry(a.store, projectID, a.logger)
}

// books loads the project's transactions and its chart merged with the
// global catalog.
func (a *app) books(ctx context.Context, proj model.Project) ([]model.Transaction, []model.Account, error) {
	svc, err := a.ledger(ctx, proj)
	if err != nil {
		return nil, nil, err
	}
	chart, err := a.registry(proj.ID).LoadChart(ctx)
	if err != nil {
		return nil, nil, err
	}
	return svc.Snapshot(), chart.All(), nil
}

// touch bumps the project's LastModified after a write.
func (a *app) touch(ctx context.Context, proj model.Project) {
	if err := a.projects().Touch(ctx, proj.ID); err != nil {
		a.logger.Warn("touching project", "project", proj.ID, "error", err)
	}
}

// commandContext returns the command's context, or Background when unset.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
