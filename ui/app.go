package ui

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"statlab/internal"
	"statlab/internal/report"
	"statlab/internal/testkit"
	"statlab/ports"
)

//go:embed templates/*.html static/*
var embeddedFiles embed.FS

// App is the HTML report application: forms in, rendered reports out.
type App struct {
	router    *chi.Mux
	runner    ports.AnalysisRunner
	templates *template.Template
	samples   Samples
	logger    *internal.Logger
}

// NewApp creates a new UI application
func NewApp(runner ports.AnalysisRunner, logger *internal.Logger) (*App, error) {
	if logger == nil {
		logger = internal.NewDefaultLogger()
	}

	funcMap := template.FuncMap{
		"num": report.Number,
		"pct": report.Percent,
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	app := &App{
		router:    chi.NewRouter(),
		runner:    runner,
		templates: templates,
		samples:   newSamples(testkit.NewDemo(testkit.DefaultGeneratorConfig())),
		logger:    logger.WithPrefix("ui"),
	}

	if err := app.setupMiddleware(); err != nil {
		return nil, err
	}
	app.setupRoutes()

	return app, nil
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() error {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))

	static, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		return fmt.Errorf("failed to open static files: %w", err)
	}
	a.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	return nil
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/", a.handleIndex)
	a.router.Post("/report/{kind}", a.handleReport)
}

// Handler exposes the router, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.router
}

// Start starts the HTTP server
func (a *App) Start(port string) error {
	a.logger.Info("starting report UI on :%s", port)
	return http.ListenAndServe(":"+port, a.router)
}

func (a *App) renderTemplate(w http.ResponseWriter, status int, templateName string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := a.templates.ExecuteTemplate(w, templateName, data); err != nil {
		a.logger.Error("template %s: %v", templateName, err)
	}
}
