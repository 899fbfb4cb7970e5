package main

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hazyhaar/plume/plume"
)

//go:embed static
var staticFS embed.FS

// serve runs the dashboard HTTP server until ctx is cancelled.
func serve(ctx context.Context, svc *plume.Service, cfg *plume.Config) error {
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           newRouter(svc),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
	slog.Info("server stopped")
	return nil
}

func newRouter(svc *plume.Service) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, map[string]string{"status": "ok"})
	})

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		f, err := staticFS.Open("static/index.html")
		if err != nil {
			http.Error(w, "not found", 404)
			return
		}
		defer f.Close()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.Copy(w, f)
	})
	r.Handle("/static/*", http.FileServerFS(staticFS))

	r.Get("/api/drafts", func(w http.ResponseWriter, r *http.Request) {
		var (
			drafts []*plume.DraftView
			err    error
		)
		if cat := r.URL.Query().Get("category"); cat != "" {
			drafts, err = svc.DraftsByCategory(r.Context(), cat)
		} else {
			drafts, err = svc.Drafts(r.Context(), queryInt(r, "limit", 50))
		}
		if err != nil {
			writeError(w, 500, err)
			return
		}
		if drafts == nil {
			drafts = []*plume.DraftView{}
		}
		writeJSON(w, 200, drafts)
	})

	r.Get("/api/categories", func(w http.ResponseWriter, r *http.Request) {
		cats, err := svc.DraftCategories(r.Context())
		if err != nil {
			writeError(w, 500, err)
			return
		}
		if cats == nil {
			cats = []string{}
		}
		writeJSON(w, 200, cats)
	})

	r.Get("/api/posts", func(w http.ResponseWriter, r *http.Request) {
		status := r.URL.Query().Get("status")
		if status == "" {
			status = plume.StatusDraft
		}
		posts, err := svc.PostsByStatus(r.Context(), status, queryInt(r, "limit", 50))
		if err != nil {
			writeError(w, statusCode(err), err)
			return
		}
		if posts == nil {
			posts = []*plume.DraftView{}
		}
		writeJSON(w, 200, posts)
	})

	r.Post("/api/posts/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, 400, errors.New("invalid post id"))
			return
		}
		var req struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, 400, errors.New("invalid body"))
			return
		}
		if err := svc.TransitionPost(r.Context(), id, req.Status); err != nil {
			writeError(w, statusCode(err), err)
			return
		}
		writeJSON(w, 200, map[string]any{"id": id, "status": req.Status})
	})

	r.Get("/api/stats", func(w http.ResponseWriter, r *http.Request) {
		st, err := svc.Stats(r.Context())
		if err != nil {
			writeError(w, 500, err)
			return
		}
		writeJSON(w, 200, st)
	})

	r.Get("/api/sources", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, svc.Sources())
	})

	r.Get("/api/history", func(w http.ResponseWriter, r *http.Request) {
		entries, err := svc.FetchHistory(r.Context(),
			r.URL.Query().Get("source"), queryInt(r, "limit", 20))
		if err != nil {
			writeError(w, 500, err)
			return
		}
		if entries == nil {
			entries = []*plume.FetchLogEntry{}
		}
		writeJSON(w, 200, entries)
	})

	r.Post("/api/run", func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.RunDailyJob(r.Context())
		if err != nil {
			writeError(w, 500, err)
			return
		}
		writeJSON(w, 200, summary)
	})

	return r
}

// statusCode maps service errors onto HTTP codes.
func statusCode(err error) int {
	switch {
	case errors.Is(err, plume.ErrNotFound):
		return 404
	case errors.Is(err, plume.ErrInvalidStatus):
		return 400
	case errors.Is(err, plume.ErrInvalidTransition):
		return 409
	}
	return 500
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
