package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-synctemplate/components/fieldlist"
	"github.com/goliatone/go-synctemplate/internal/config"
	"github.com/goliatone/go-synctemplate/pkg/fieldcache"
	"github.com/goliatone/go-synctemplate/pkg/orchestrator"
	"github.com/goliatone/go-synctemplate/pkg/store"
)

type serverDeps struct {
	basePath     string
	store        store.Store
	cache        *fieldcache.Cache
	orchestrator *orchestrator.Orchestrator
	guard        fieldlist.GuardFunc
	logger       *zap.Logger
}

// ErrNoSecret is returned by serve when no JWT secret is configured and
// --insecure was not given.
var ErrNoSecret = errors.New("serve: server.jwt_secret is required (pass --insecure to serve editor routes without authorization)")

func newServeCommand(a *app) *cobra.Command {
	var insecure bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve field listings and render previews over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			guard, err := editorGuard(a.cfg.Server, insecure, a.logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			reader, closeStore, err := openStore(a.cfg.Store)
			if err != nil {
				return err
			}
			defer closeStore()

			cache, closeCache, err := newFieldCache(ctx, a.cfg.Cache, a.logger)
			if err != nil {
				return err
			}
			defer closeCache()

			orch, err := newOrchestrator(a.cfg, reader, a.logger)
			if err != nil {
				return err
			}

			deps := serverDeps{
				basePath:     a.cfg.Server.BasePath,
				store:        reader,
				cache:        cache,
				orchestrator: orch,
				guard:        guard,
				logger:       a.logger,
			}

			router, err := newRouter(deps)
			if err != nil {
				return err
			}
			return listen(ctx, a.cfg.Server.Addr(), router, a.logger)
		},
	}
	cmd.Flags().BoolVar(&insecure, "insecure", false, "serve editor routes without authorization when no JWT secret is set")
	return cmd
}

// editorGuard builds the guard for editor routes. Without a secret the
// server only starts when insecure is set, and then runs unguarded.
func editorGuard(cfg config.ServerConfig, insecure bool, logger *zap.Logger) (fieldlist.GuardFunc, error) {
	if secret := cfg.JWTSecret; secret != "" {
		return fieldlist.JWTGuard([]byte(secret), cfg.EditorRole), nil
	}
	if !insecure {
		return nil, ErrNoSecret
	}
	if logger != nil {
		logger.Warn("serving editor routes without authorization")
	}
	return nil, nil
}

func newRouter(deps serverDeps) (http.Handler, error) {
	if deps.logger == nil {
		deps.logger = zap.NewNop()
	}
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	routes, err := fieldlist.RegisterRoutes(router, deps.basePath,
		fieldlist.WithStore(deps.store),
		fieldlist.WithCache(deps.cache),
		fieldlist.WithGuard(deps.guard),
		fieldlist.WithLogger(deps.logger),
	)
	if err != nil {
		return nil, err
	}

	templateRender := renderHandler(deps, func(r *http.Request) orchestrator.Request {
		return orchestrator.Request{TemplateID: chi.URLParam(r, "id"), Preview: true}
	})
	if deps.guard != nil {
		templateRender = guarded(deps.guard, templateRender)
	}
	router.Get(routes.List+"/{id}/render", templateRender)

	instances := fieldlist.MountPath(deps.basePath, fieldlist.WithRoutePath("/instances"))
	router.Get(instances+"/{id}/render", renderHandler(deps, func(r *http.Request) orchestrator.Request {
		return orchestrator.Request{InstanceID: chi.URLParam(r, "id")}
	}))
	return router, nil
}

func renderHandler(deps serverDeps, build func(*http.Request) orchestrator.Request) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := build(r)
		query := r.URL.Query()
		req.Renderer = query.Get("renderer")
		if raw := query.Get("preview"); raw != "" {
			preview, _ := strconv.ParseBool(raw)
			req.Preview = preview
		}

		out, err := deps.orchestrator.Generate(r.Context(), req)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
				return
			}
			deps.logger.Error("render failed",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.Error(err),
			)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", deps.orchestrator.ContentType(req.Renderer))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(out)
	}
}

func guarded(guard fieldlist.GuardFunc, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := guard(r); err != nil {
			code := http.StatusForbidden
			var httpErr fieldlist.HTTPError
			if errors.As(err, &httpErr) {
				code = httpErr.StatusCode()
			}
			http.Error(w, http.StatusText(code), code)
			return
		}
		next(w, r)
	}
}

func listen(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return server.Shutdown(shutdownCtx)
	}
}
