package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"doc-qa/internal/app"
	"doc-qa/internal/catalog"
	"doc-qa/internal/chunker"
	"doc-qa/internal/config"
	"doc-qa/internal/document"
	"doc-qa/internal/httputil"
	"doc-qa/internal/llm"
	"doc-qa/internal/responder"
	"doc-qa/internal/session"
	"doc-qa/internal/tutor"
)

type queryRequest struct {
	Query string `json:"query" validate:"required,max=2000"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := app.Build(ctx)
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	defer deps.Close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", deps.Config.Port),
		Handler:           newRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		deps.Log.Info("document Q&A server listening", "addr", srv.Addr, "document", deps.Config.DocumentPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if deps.Config.WatchDocument {
		w, err := document.NewWatcher(deps.Log, deps.Loader, deps.Config.DocumentPath)
		if err != nil {
			deps.Log.Warn("document watcher disabled", "err", err)
		} else {
			g.Go(func() error { return w.Run(ctx) })
		}
	}

	if err := g.Wait(); err != nil {
		deps.Log.Error("server stopped", "err", err)
	}
}

func newRouter(deps app.Deps) *chi.Mux {
	r := httputil.NewRouter(deps.Log, requestTimeout(deps.Config))

	r.Get("/api/examples", examplesHandler())
	r.Post("/api/sessions", startHandler(deps))
	r.Route("/api/sessions/{id}", func(r chi.Router) {
		r.Get("/", viewHandler(deps))
		r.Delete("/", endHandler(deps))
		r.Post("/query", queryHandler(deps))
		r.Post("/examples/{label}", exampleHandler(deps))
		r.Post("/document", documentHandler(deps))
	})
	r.Post("/api/tutor", tutorHandler(deps))
	r.Get("/healthz", httputil.HealthHandler(deps.Log, func() error {
		_, err := deps.Document()
		return err
	}))
	return r
}

// requestTimeout covers every call and backoff wait the fallback policy
// may spend on one request.
func requestTimeout(cfg config.Config) time.Duration {
	attempts := max(cfg.RetryAttempts, 1)
	total := time.Duration(len(cfg.LLMModels)*attempts) * cfg.LLMTimeout
	for i := 1; i < attempts; i++ {
		total += time.Duration(len(cfg.LLMModels)*i) * cfg.RetryDelay
	}
	return total + 10*time.Second
}

func examplesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"examples": catalog.All()})
	}
}

func startHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := deps.Responder.Start(r.Context())
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to start session", err, http.StatusInternalServerError)
			return
		}
		httputil.WriteJSON(w, http.StatusCreated, v)
	}
}

func viewHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := deps.Responder.View(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			fail(deps, w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, v)
	}
}

func endHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Responder.End(r.Context(), chi.URLParam(r, "id")); err != nil {
			fail(deps, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func queryHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req queryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		req.Query = strings.TrimSpace(req.Query)
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}

		v, err := deps.Responder.Submit(r.Context(), chi.URLParam(r, "id"), req.Query)
		if err != nil {
			fail(deps, w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, v)
	}
}

func exampleHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		label, err := url.PathUnescape(chi.URLParam(r, "label"))
		if err != nil {
			httputil.Fail(deps.Log, w, "invalid label", err, http.StatusBadRequest)
			return
		}
		v, err := deps.Responder.PickExample(r.Context(), chi.URLParam(r, "id"), label)
		if errors.Is(err, responder.ErrUnknownExample) {
			deps.Log.Warn("unknown example", "label", label)
			httputil.WriteJSON(w, http.StatusNotFound, map[string]any{
				"error":  "unknown example",
				"labels": catalog.Labels(),
			})
			return
		}
		if err != nil {
			fail(deps, w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, v)
	}
}

func documentHandler(deps app.Deps) http.HandlerFunc {
	maxSize := deps.Config.MaxUploadSize

	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxSize)
		file, header, err := r.FormFile("file")
		if err != nil {
			httputil.Fail(deps.Log, w, "file is required", err, http.StatusBadRequest)
			return
		}
		defer file.Close()

		if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != ".txt" && ext != ".md" {
			httputil.Fail(deps.Log, w, "unsupported file type (only TXT and MD allowed)", nil, http.StatusBadRequest)
			return
		}
		content, err := io.ReadAll(file)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to read file", err, http.StatusBadRequest)
			return
		}

		v, err := deps.Responder.UseText(r.Context(), chi.URLParam(r, "id"), header.Filename, string(content), chunker.DefaultWordsPerPage)
		if err != nil {
			fail(deps, w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, v)
	}
}

func tutorHandler(deps app.Deps) http.HandlerFunc {
	maxSize := deps.Config.MaxUploadSize

	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxSize)
		if err := r.ParseMultipartForm(maxSize); err != nil {
			httputil.Fail(deps.Log, w, "invalid form", err, http.StatusBadRequest)
			return
		}

		var image *llm.Image
		file, header, err := r.FormFile("image")
		switch {
		case err == nil:
			defer file.Close()
			mt := header.Header.Get("Content-Type")
			if mt != "image/jpeg" && mt != "image/png" {
				httputil.Fail(deps.Log, w, "unsupported image type (only JPEG and PNG allowed)", nil, http.StatusBadRequest)
				return
			}
			data, err := io.ReadAll(file)
			if err != nil {
				httputil.Fail(deps.Log, w, "failed to read image", err, http.StatusBadRequest)
				return
			}
			image = &llm.Image{MIMEType: mt, Data: data}
		case !errors.Is(err, http.ErrMissingFile):
			httputil.Fail(deps.Log, w, "invalid image", err, http.StatusBadRequest)
			return
		}

		reply, err := deps.Tutor.Ask(r.Context(), r.FormValue("question"), image)
		if errors.Is(err, tutor.ErrEmptyInput) {
			httputil.Fail(deps.Log, w, "question or image is required", err, http.StatusBadRequest)
			return
		}
		if err != nil {
			httputil.Fail(deps.Log, w, "tutor failed", err, http.StatusInternalServerError)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, reply)
	}
}

// fail maps responder errors onto status codes.
func fail(deps app.Deps, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		httputil.Fail(deps.Log, w, "session not found", err, http.StatusNotFound)
	case errors.Is(err, responder.ErrEmptyQuery), errors.Is(err, responder.ErrEmptyDocument):
		httputil.Fail(deps.Log, w, err.Error(), err, http.StatusBadRequest)
	default:
		httputil.Fail(deps.Log, w, "request failed", err, http.StatusInternalServerError)
	}
}
