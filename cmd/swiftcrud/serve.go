package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/khaledsukkar2/swiftcrud/internal/cli/ui"
	"github.com/khaledsukkar2/swiftcrud/internal/config"
	"github.com/khaledsukkar2/swiftcrud/internal/store"
	"github.com/khaledsukkar2/swiftcrud/internal/web/auth"
	"github.com/khaledsukkar2/swiftcrud/internal/web/middleware"
	"github.com/khaledsukkar2/swiftcrud/internal/web/server"
	"github.com/khaledsukkar2/swiftcrud/internal/web/static"
	"github.com/khaledsukkar2/swiftcrud/pkg/crud"
	"github.com/khaledsukkar2/swiftcrud/pkg/forms"
	"github.com/khaledsukkar2/swiftcrud/pkg/router"
	"github.com/khaledsukkar2/swiftcrud/pkg/web/response"
)

var serveDev bool

func init() {
	serveCmd.Flags().BoolVar(&serveDev, "dev", false, "Use a development logger with human-readable output")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the CRUD server",
	Long:  "Load swiftcrud.yaml, register the configured resources and serve them until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		logger, err := newLogger(serveDev)
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		defer logger.Sync()

		db, err := sql.Open(cfg.Database.Driver, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return fmt.Errorf("failed to ping database: %w", err)
		}

		handler, err := buildHandler(cfg, db, logger)
		if err != nil {
			db.Close()
			return err
		}

		srvConfig := server.DefaultConfig(handler)
		srvConfig.Address = cfg.Server.Address()
		srvConfig.ReadTimeout = cfg.Server.ReadTimeout
		srvConfig.WriteTimeout = cfg.Server.WriteTimeout
		srvConfig.IdleTimeout = cfg.Server.IdleTimeout
		srvConfig.ShutdownTimeout = cfg.Server.ShutdownTimeout
		srvConfig.Logger = logger

		srv, err := server.New(srvConfig)
		if err != nil {
			db.Close()
			return err
		}
		srv.OnShutdown(func(ctx context.Context) error {
			return db.Close()
		})

		ui.Success(os.Stdout, "%s serving on http://%s", cfg.ProjectName, cfg.Server.Address())
		return srv.RunUntilSignal()
	},
}

// buildHandler wires the employee resource into a routed, middleware-wrapped
// handler
func buildHandler(cfg *config.Config, db *sql.DB, logger *zap.Logger) (http.Handler, error) {
	dialect, err := store.DialectForDriver(cfg.Database.Driver)
	if err != nil {
		return nil, err
	}

	employees, err := store.New(db, employeeSchema, dialect)
	if err != nil {
		return nil, err
	}

	renderer := response.NewRenderer()
	if err := renderer.LoadDir(cfg.Templates.Dir); err != nil {
		return nil, err
	}

	def := &crud.Definition{
		Name:           "employee",
		PluralName:     "employees",
		Form:           func() crud.Form { return employeeForm(employees) },
		TemplateFolder: "employee",
		RedirectTo:     "/employees/",
		PaginateBy:     10,
	}

	view, err := crud.NewView(def, employees, renderer, crud.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	rt := router.New(router.WithLogger(logger))
	if err := rt.Register("employees/", view, ""); err != nil {
		return nil, err
	}

	routed, err := rt.Handler()
	if err != nil {
		return nil, err
	}

	if info, err := os.Stat(cfg.Static.Dir); err == nil && info.IsDir() {
		mux := chi.NewRouter()
		mux.Handle(cfg.Static.Prefix+"/*",
			static.Handler(cfg.Static.Dir, cfg.Static.Prefix, cfg.Static.MaxAge))
		mux.Mount("/", routed)
		routed = mux
	}

	chain := middleware.NewChain(
		middleware.RequestID(),
		middleware.Logging(logger),
		middleware.Recovery(logger),
	)
	if cfg.Auth.Enabled {
		tokens := auth.NewTokenService(cfg.Auth.Secret, cfg.Auth.TokenTTL)
		chain.Use(middleware.Auth(middleware.AuthConfig{Tokens: tokens, WriteOnly: true}))
	}

	return chain.Then(routed), nil
}

// employeeSchema is the demo resource, mirroring the example application
var employeeSchema = store.Schema{
	Table:   "employees",
	PK:      "id",
	Columns: []string{"first_name", "last_name", "bio"},
}

func employeeForm(repo crud.Repository) *forms.ModelForm {
	return forms.New(repo,
		forms.Field{Name: "first_name", Rules: "required,max=150"},
		forms.Field{Name: "last_name", Rules: "required,max=150"},
		forms.Field{Name: "bio"},
	)
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
