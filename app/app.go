// Package app wires configuration, remote clients and the acads components
// into one handle shared by the HTTP server and the CLI.
package app

import (
	"context"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/SamuelLeutner/notion-acads/acads"
	"github.com/SamuelLeutner/notion-acads/config"
	"github.com/SamuelLeutner/notion-acads/logger"
	"github.com/SamuelLeutner/notion-acads/services"
	"github.com/SamuelLeutner/notion-acads/utils"
)

// Factory builds the remote clients for a configuration.
type Factory struct {
	Store  func(cfg *config.Config) acads.Store
	Images func(cfg *config.Config) acads.ImageProvider
	// Writer is only called when cfg.ExportEnabled().
	Writer func(cfg *config.Config) (acads.ReportWriter, error)
}

func DefaultFactory() Factory {
	return Factory{
		Store: func(cfg *config.Config) acads.Store {
			return services.NewNotionClient(cfg)
		},
		Images: func(cfg *config.Config) acads.ImageProvider {
			return services.NewUnsplashClient(cfg)
		},
		Writer: func(cfg *config.Config) (acads.ReportWriter, error) {
			return services.NewGoogleSheetsWriter(context.Background(), cfg.SpreadsheetID, cfg.CredentialsFilePath, cfg.MaxRetries, cfg.RetryDelay)
		},
	}
}

type App struct {
	Config *config.Config
	Store  acads.Store
	Images acads.ImageProvider
	Writer acads.ReportWriter
	Syncer *acads.Syncer
	Engine *acads.Engine
}

// New validates cfg and builds every component from it. A report writer that
// cannot be built only disables export.
func New(cfg *config.Config, f Factory) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	schema := acads.DefaultSchema()
	a := &App{
		Config: cfg,
		Store:  f.Store(cfg),
	}
	if f.Images != nil {
		a.Images = f.Images(cfg)
	}

	if cfg.ExportEnabled() && f.Writer != nil {
		w, err := f.Writer(cfg)
		if err != nil {
			logger.Warn().Err(err).Msg("Report export disabled: sheets writer could not be created")
		} else {
			a.Writer = w
		}
	}

	a.Syncer = acads.NewSyncer(a.Store, a.Images, schema, cfg.CourseDatabaseID, cfg.SemesterDatabaseID)
	a.Syncer.PageSize = cfg.PageSize
	a.Syncer.ImageQuery = cfg.UnsplashQuery
	a.Syncer.ProvisionResults = cfg.ProvisionResults
	if cfg.TemplatePageID != "" {
		id, err := utils.ParseNotionID(cfg.TemplatePageID)
		if err != nil {
			logger.Warn().Err(err).Str("templatePageId", cfg.TemplatePageID).Msg("Ignoring course template")
		} else {
			a.Syncer.TemplatePageID = id
		}
	}

	propagator := acads.NewPropagator(a.Store, schema, cfg.ParentPageID, cfg.QuoteBlockID)
	propagator.OnQuoteResolved = a.persistQuoteID

	a.Engine = acads.NewEngine(a.Store, schema, cfg.CourseDatabaseID, cfg.SemesterDatabaseID, propagator)
	a.Engine.PageSize = cfg.PageSize
	return a, nil
}

func (a *App) persistQuoteID(id string) {
	if err := config.Persist(a.Config.EnvFile, map[string]string{config.KeyQuoteBlockID: id}); err != nil {
		logger.Warn().Err(err).Str("blockId", id).Msg("Could not save quote block id")
	}
}

// CGPAResult is a report plus what happened to its spreadsheet copy.
type CGPAResult struct {
	*acads.Report
	Exported    bool   `json:"exported"`
	ExportError string `json:"exportError,omitempty"`
}

// CalculateCGPA runs the aggregation and, when configured, mirrors the report
// into the spreadsheet. Export failures are reported, not returned.
func (a *App) CalculateCGPA(ctx context.Context) (*CGPAResult, error) {
	report, err := a.Engine.Run(ctx)
	if err != nil {
		return nil, err
	}

	res := &CGPAResult{Report: report}
	if a.Writer == nil {
		return res, nil
	}
	if err := acads.ExportReport(ctx, a.Writer, a.Config.ReportSheetName, report); err != nil {
		logger.Error().Err(err).Msg("Report export failed")
		res.ExportError = err.Error()
		return res, nil
	}
	res.Exported = true
	return res, nil
}

// Export recomputes the report without writing to Notion and mirrors it into
// the spreadsheet.
func (a *App) Export(ctx context.Context) (*acads.Report, error) {
	if a.Writer == nil {
		return nil, errors.New("report export is not configured: set SPREADSHEET_ID and GOOGLE_CREDENTIALS_FILE")
	}
	report, err := a.Engine.Calculate(ctx)
	if err != nil {
		return nil, err
	}
	if err := acads.ExportReport(ctx, a.Writer, a.Config.ReportSheetName, report); err != nil {
		return nil, err
	}
	return report, nil
}

// SetupInput is what a user provides to connect a workspace.
type SetupInput struct {
	NotionToken       string `validate:"required"`
	ParentPageID      string `validate:"required,uuid"`
	UnsplashAccessKey string
}

// Holder owns the current App and swaps it when setup completes.
type Holder struct {
	mu      sync.RWMutex
	cfg     *config.Config
	app     *App
	factory Factory
}

// NewHolder builds the App when cfg is complete. An incomplete cfg leaves
// the holder waiting for Configure.
func NewHolder(cfg *config.Config, f Factory) (*Holder, error) {
	h := &Holder{cfg: cfg, factory: f}
	a, err := New(cfg, f)
	if err != nil {
		if !config.IsIncomplete(err) {
			return nil, err
		}
		logger.Warn().Err(err).Msg("Setup incomplete, waiting for configuration")
		return h, nil
	}
	h.app = a
	return h, nil
}

// Current returns the live App or the *config.IncompleteError explaining why
// there is none.
func (h *Holder) Current() (*App, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.app != nil {
		return h.app, nil
	}
	return nil, h.cfg.Validate()
}

// Config returns a copy of the active configuration.
func (h *Holder) Config() config.Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return *h.cfg
}

// Configure verifies the token, finds the two databases under the parent
// page, adds missing columns, saves the ids and replaces the App.
func (h *Holder) Configure(ctx context.Context, in SetupInput) (acads.WorkspaceIDs, error) {
	if err := validator.New().Struct(in); err != nil {
		return acads.WorkspaceIDs{}, errors.Wrap(err, "invalid setup input")
	}

	h.mu.RLock()
	cfg := *h.cfg
	h.mu.RUnlock()

	cfg.NotionToken = in.NotionToken
	cfg.ParentPageID = in.ParentPageID
	cfg.QuoteBlockID = ""
	if in.UnsplashAccessKey != "" {
		cfg.UnsplashAccessKey = in.UnsplashAccessKey
	}

	store := h.factory.Store(&cfg)
	if v, ok := store.(acads.TokenVerifier); ok {
		if _, err := v.WhoAmI(ctx); err != nil {
			return acads.WorkspaceIDs{}, errors.Wrap(err, "checking notion token")
		}
	}

	setup := &acads.Setup{Store: store, Schema: acads.DefaultSchema()}
	ids, err := setup.Resolve(ctx, cfg.ParentPageID)
	if err != nil {
		return acads.WorkspaceIDs{}, err
	}
	if err := setup.EnsureSchema(ctx, ids); err != nil {
		return acads.WorkspaceIDs{}, err
	}

	cfg.CourseDatabaseID = ids.CourseCollectionID
	cfg.SemesterDatabaseID = ids.SemesterCollectionID

	updates := map[string]string{
		config.KeyNotionToken:        cfg.NotionToken,
		config.KeyParentPageID:       cfg.ParentPageID,
		config.KeyCourseDatabaseID:   cfg.CourseDatabaseID,
		config.KeySemesterDatabaseID: cfg.SemesterDatabaseID,
		config.KeyQuoteBlockID:       "",
	}
	if cfg.UnsplashAccessKey != "" {
		updates[config.KeyUnsplashAccessKey] = cfg.UnsplashAccessKey
	}
	if err := config.Persist(cfg.EnvFile, updates); err != nil {
		return acads.WorkspaceIDs{}, errors.Wrap(err, "saving configuration")
	}

	a, err := New(&cfg, h.factory)
	if err != nil {
		return acads.WorkspaceIDs{}, err
	}

	h.mu.Lock()
	h.cfg = &cfg
	h.app = a
	h.mu.Unlock()

	logger.Info().
		Str("courses", ids.CourseCollectionID).
		Str("semesters", ids.SemesterCollectionID).
		Msg("Workspace configured")
	return ids, nil
}
