package core

import (
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/userdash/internal/columns"
	"github.com/JonMunkholm/userdash/internal/fieldrules"
	"github.com/JonMunkholm/userdash/internal/logging"
	"github.com/JonMunkholm/userdash/internal/logs"
	"github.com/JonMunkholm/userdash/internal/users"
)

// QueryTimeout bounds a single row source call.
var QueryTimeout = 10 * time.Second

// Options configures a Service.
type Options struct {
	Users     users.Source
	Logs      logs.Source
	Registry  *fieldrules.Registry    // nil uses fieldrules.NewRegistry()
	Sink      columns.DiagnosticSink  // nil uses columns.SlogSink
	RulesFile string                  // empty means built-in columns only
	Defaults  func() []columns.Field  // nil uses columns.DefaultUserFields
	Customs   []columns.Customization // used when RulesFile is empty
}

// Service provides the dashboard operations used by the web and CLI layers.
type Service struct {
	users     users.Source
	logs      logs.Source
	registry  *fieldrules.Registry
	cells     *columns.CellResolver
	epochs    *columns.Epochs
	rulesFile string
}

// NewService loads the field rules (if any) and resolves the first epoch.
// A malformed rules file is a startup error.
func NewService(opts Options) (*Service, error) {
	if opts.Users == nil {
		return nil, fmt.Errorf("new service: users source is required")
	}
	if opts.Registry == nil {
		opts.Registry = fieldrules.NewRegistry()
	}
	if opts.Sink == nil {
		opts.Sink = columns.SlogSink{}
	}
	if opts.Defaults == nil {
		opts.Defaults = columns.DefaultUserFields
	}

	customs := opts.Customs
	if opts.RulesFile != "" {
		loaded, err := fieldrules.Load(opts.RulesFile, opts.Registry)
		if err != nil {
			return nil, fmt.Errorf("new service: %w", err)
		}
		customs = loaded
	}

	epochs, err := columns.NewEpochs(opts.Defaults, customs)
	if err != nil {
		return nil, fmt.Errorf("new service: %w", err)
	}

	return &Service{
		users:     opts.Users,
		logs:      opts.Logs,
		registry:  opts.Registry,
		cells:     columns.NewCellResolver(users.IDKey, opts.Sink),
		epochs:    epochs,
		rulesFile: opts.RulesFile,
	}, nil
}

// Columns returns the active column epoch.
func (s *Service) Columns() *columns.Epoch {
	return s.epochs.Current()
}

// Cells returns the resolver used to render user cells.
func (s *Service) Cells() *columns.CellResolver {
	return s.cells
}

// Registry returns the formatter registry field rules resolve against.
func (s *Service) Registry() *fieldrules.Registry {
	return s.registry
}

// UserTable is one rendered page of the users table. Epoch is loaded once
// so every row of the page uses the same columns.
type UserTable struct {
	Epoch *columns.Epoch
	Page  *users.Page
	Query users.Query
}

// ListUsers returns a page of users together with the active columns.
func (s *Service) ListUsers(ctx context.Context, q users.Query) (*UserTable, error) {
	epoch := s.epochs.Current()

	ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	page, err := s.users.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return &UserTable{Epoch: epoch, Page: page, Query: q}, nil
}

// GetUser returns one user record.
func (s *Service) GetUser(ctx context.Context, id string) (columns.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	rec, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return rec, nil
}

// LogPage returns page (zero based) of the log stream.
func (s *Service) LogPage(ctx context.Context, page, perPage int) (*logs.Page, error) {
	if s.logs == nil {
		return nil, fmt.Errorf("log stream is not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	p, err := s.logs.Page(ctx, page, perPage)
	if err != nil {
		return nil, fmt.Errorf("load logs page %d: %w", page, err)
	}
	return p, nil
}

// ApplyCustomizations swaps in a new epoch when customs differ from the
// active ones. On error the active epoch stays in place.
func (s *Service) ApplyCustomizations(ctx context.Context, customs []columns.Customization) (bool, error) {
	changed, err := s.epochs.Apply(customs)
	if err != nil {
		return false, fmt.Errorf("apply field rules: %w", err)
	}
	if changed {
		ep := s.epochs.Current()
		logging.FromContext(ctx).Info("column set changed",
			"epoch", ep.ID,
			"columns", len(ep.Columns),
			"customizations", len(customs),
		)
	}
	return changed, nil
}

// ReloadRules re-reads the configured rules file and applies it.
// It is a no-op without a rules file.
func (s *Service) ReloadRules(ctx context.Context) (bool, error) {
	if s.rulesFile == "" {
		return false, nil
	}
	customs, err := fieldrules.Load(s.rulesFile, s.registry)
	if err != nil {
		return false, err
	}
	return s.ApplyCustomizations(ctx, customs)
}
