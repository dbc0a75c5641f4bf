package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/MikeSquared-Agency/csopt/internal/evaluator"
	"github.com/MikeSquared-Agency/csopt/internal/events"
	"github.com/MikeSquared-Agency/csopt/internal/generator"
	"github.com/MikeSquared-Agency/csopt/internal/knowledge"
	"github.com/MikeSquared-Agency/csopt/internal/llm"
	"github.com/MikeSquared-Agency/csopt/internal/models"
	"github.com/MikeSquared-Agency/csopt/internal/store"
	"github.com/MikeSquared-Agency/csopt/internal/suggest"
)

// Store is the record store the handlers read and write through.
// *store.Store satisfies it.
type Store interface {
	Ping(ctx context.Context) error

	ListKnowledge(ctx context.Context) ([]models.KnowledgeEntry, error)
	GetKnowledge(ctx context.Context, id int64) (*models.KnowledgeEntry, error)
	CreateKnowledge(ctx context.Context, e models.KnowledgeEntry) (*models.KnowledgeEntry, error)
	UpdateKnowledge(ctx context.Context, id int64, p store.KnowledgePatch) (*models.KnowledgeEntry, error)
	DeleteKnowledge(ctx context.Context, id int64) error
	UpsertKnowledge(ctx context.Context, e models.KnowledgeEntry) (*models.KnowledgeEntry, error)
	NextKnowledgeSortOrder(ctx context.Context, category string) (int, error)

	ListWizardSteps(ctx context.Context) ([]models.WizardStep, error)
	CreateWizardStep(ctx context.Context, title, category string) (bool, error)

	ListPromptVersions(ctx context.Context) ([]models.PromptVersion, error)
	GetPromptVersion(ctx context.Context, id int64) (*models.PromptVersion, error)
	GetActivePromptVersion(ctx context.Context) (*models.PromptVersion, error)
	CreatePromptVersion(ctx context.Context, p models.PromptVersion) (*models.PromptVersion, error)
	UpdatePromptVersion(ctx context.Context, id int64, p store.PromptPatch) (*models.PromptVersion, error)
	DeletePromptVersion(ctx context.Context, id int64) error
	ActivatePromptVersion(ctx context.Context, id int64) (*models.PromptVersion, error)
	SetSystemPrompt(ctx context.Context, id int64, systemPrompt string) error

	ListTestCases(ctx context.Context, tag string) ([]models.TestCase, error)
	GetTestCase(ctx context.Context, id int64) (*models.TestCase, error)
	CreateTestCase(ctx context.Context, tc models.TestCase) (*models.TestCase, error)
	UpdateTestCase(ctx context.Context, id int64, p store.TestCasePatch) (*models.TestCase, error)
	DeleteTestCase(ctx context.Context, id int64) error

	ListTestResults(ctx context.Context, f store.ResultFilter) ([]models.TestResult, error)
	GetTestResult(ctx context.Context, id int64) (*models.TestResult, error)
	CreateTestResult(ctx context.Context, r models.TestResult) (*models.TestResult, error)

	ListEvaluatorRules(ctx context.Context, all bool) ([]models.EvaluatorRuleWithSource, error)
	CreateEvaluatorRule(ctx context.Context, r models.EvaluatorRule) (*models.EvaluatorRule, error)
	UpdateEvaluatorRule(ctx context.Context, id int64, p store.RulePatch) (*models.EvaluatorRule, error)
	DeleteEvaluatorRule(ctx context.Context, id int64) error
}

var _ Store = (*store.Store)(nil)

type Options struct {
	Port           int
	MaxTokens      int
	CORSOrigins    []string
	Events         events.Publisher
	TracerProvider trace.TracerProvider
	Logger         *slog.Logger
}

type Server struct {
	router     *chi.Mux
	httpServer *http.Server

	store     Store
	generator *generator.Generator
	evaluator *evaluator.Evaluator
	suggester *suggest.Suggester
	mutator   *knowledge.Mutator
	events    events.Publisher
	logger    *slog.Logger
}

func NewServer(st Store, completer llm.Completer, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Events == nil {
		opts.Events = events.Nop{}
	}
	if opts.TracerProvider == nil {
		opts.TracerProvider = otel.GetTracerProvider()
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))
	router.Use(tracing(opts.TracerProvider))

	s := &Server{
		router:    router,
		store:     st,
		generator: generator.New(st, completer, opts.MaxTokens, opts.Logger),
		evaluator: evaluator.New(st, completer, opts.MaxTokens, opts.Logger),
		suggester: suggest.New(st, completer, opts.MaxTokens, opts.Logger),
		mutator:   knowledge.New(st, opts.Events, opts.Logger),
		events:    opts.Events,
		logger:    opts.Logger,
	}

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.health)

		r.Route("/knowledge", func(r chi.Router) {
			r.Get("/", s.listKnowledge)
			r.Post("/", s.createKnowledge)
			r.Get("/{id}", s.getKnowledge)
			r.Put("/{id}", s.updateKnowledge)
			r.Delete("/{id}", s.deleteKnowledge)
		})

		r.Get("/wizard-steps", s.listWizardSteps)
		r.Post("/wizard-steps", s.createWizardStep)
		r.Get("/wizard/status", s.wizardStatus)

		r.Route("/prompts", func(r chi.Router) {
			r.Get("/", s.listPrompts)
			r.Post("/", s.createPrompt)
			r.Get("/active", s.activePrompt)
			r.Get("/{id}", s.getPrompt)
			r.Put("/{id}", s.updatePrompt)
			r.Delete("/{id}", s.deletePrompt)
			r.Post("/{id}/activate", s.activatePrompt)
		})

		r.Route("/test-cases", func(r chi.Router) {
			r.Get("/", s.listTestCases)
			r.Post("/", s.createTestCase)
			r.Get("/{id}", s.getTestCase)
			r.Put("/{id}", s.updateTestCase)
			r.Delete("/{id}", s.deleteTestCase)
		})

		r.Route("/results", func(r chi.Router) {
			r.Get("/", s.listResults)
			r.Post("/", s.createResult)
			r.Get("/{id}", s.getResult)
		})

		r.Route("/evaluator", func(r chi.Router) {
			r.Get("/rules", s.listRules)
			r.Post("/rules", s.createRule)
			r.Put("/rules", s.updateRule)
			r.Delete("/rules", s.deleteRule)
			r.Post("/evaluate", s.evaluate)
		})

		r.Post("/generator/run", s.generate)
		r.Post("/suggestions", s.suggest)
		r.Post("/suggestions/apply", s.applySuggestion)
	})

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.logger.Info("API server starting", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

type healthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Warn("health check: database unreachable", "error", err)
		respond(w, http.StatusServiceUnavailable, envelope{
			Data:  healthStatus{Status: "degraded", Database: "unreachable"},
			Error: "Database unreachable",
		})
		return
	}
	respondData(w, http.StatusOK, healthStatus{Status: "ok", Database: "ok"}, "")
}

func (s *Server) publish(subject string, data any) {
	if err := s.events.Publish(subject, data); err != nil {
		s.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}
