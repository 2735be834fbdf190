// Package api はtasukuのHTTPサーバー実装を提供します。
package api

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/stsysd/tasuku/config"
	"github.com/stsysd/tasuku/export"
	"github.com/stsysd/tasuku/logger"
	"github.com/stsysd/tasuku/model"
)

//go:embed templates/*.html static/*
var assets embed.FS

// TaskRepository はサーバーが利用するリポジトリ操作です。
type TaskRepository interface {
	List(ctx context.Context, filter *model.CompletionFilter) ([]*model.Task, error)
	Add(ctx context.Context, title, description string) (*model.Task, error)
	Find(ctx context.Context, id int64) (*model.Task, error)
	Edit(ctx context.Context, id int64, title, description string) (*model.Task, error)
	ToggleComplete(ctx context.Context, id int64) (*model.Task, error)
	Delete(ctx context.Context, id int64) error
	ClearCompleted(ctx context.Context) (int, error)
}

// Server はAPIサーバーの構造体です。
type Server struct {
	router   *http.ServeMux
	handler  http.Handler
	repo     TaskRepository
	config   *config.Config
	log      *logrus.Entry
	registry *prometheus.Registry
	metrics  *metrics
	pages    *pages
	exporter *export.Exporter
}

// ErrorResponse はエラーレスポンスの構造体です。
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// writeJSON はJSON形式でレスポンスを返却します。
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.requestLog(r).WithError(err).Error("error encoding response")
	}
}

// writeJSONError はJSON形式でエラーレスポンスを返却します。
func (s *Server) writeJSONError(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	s.writeJSON(w, r, statusCode, ErrorResponse{
		Error: message,
		Code:  statusCode,
	})
}

// writeRepositoryError はリポジトリのエラーをステータスコードに変換して返却します。
func (s *Server) writeRepositoryError(w http.ResponseWriter, r *http.Request, err error, action string) {
	switch {
	case model.IsValidationError(err):
		s.writeJSONError(w, r, err.Error(), http.StatusBadRequest)
	case errors.Is(err, model.ErrTaskNotFound):
		s.writeJSONError(w, r, "Task not found", http.StatusNotFound)
	default:
		s.requestLog(r).WithError(err).Errorf("failed to %s", action)
		s.writeJSONError(w, r, "Failed to "+action, http.StatusInternalServerError)
	}
}

// NewServer は新しいAPIサーバーインスタンスを生成します。
func NewServer(repo TaskRepository, cfg *config.Config, log *logrus.Logger) *Server {
	registry := prometheus.NewRegistry()
	s := &Server{
		router:   http.NewServeMux(),
		repo:     repo,
		config:   cfg,
		log:      logger.ForService(log, "tasuku"),
		registry: registry,
		metrics:  newMetrics(registry, repo),
		pages:    mustParsePages(),
		exporter: export.NewExporter(repo),
	}
	s.routes()

	// ミドルウェアの適用（外側から request-id → ログ → メトリクス → セキュリティヘッダー）
	var h http.Handler = s.router
	h = securityHeadersMiddleware(h)
	h = s.metricsMiddleware(h)
	h = s.loggingMiddleware(h)
	h = requestIDMiddleware(h)
	s.handler = h

	return s
}

// routes はエンドポイントのルーティングを設定します。
func (s *Server) routes() {
	// ヘルスチェック・メトリクス
	s.router.HandleFunc("GET /healthz", s.handleHealthCheck)
	s.router.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	// 静的ファイル
	static, _ := fs.Sub(assets, "static")
	s.router.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))

	// HTML pages
	s.router.HandleFunc("GET /{$}", s.handleIndex)
	s.router.HandleFunc("GET /add", s.handleAddForm)
	s.router.HandleFunc("POST /add", s.handleAddSubmit)
	s.router.HandleFunc("GET /edit/{task_id}", s.handleEditForm)
	s.router.HandleFunc("POST /edit/{task_id}", s.handleEditSubmit)
	s.router.HandleFunc("GET /complete/{task_id}", s.handleToggleComplete)
	s.router.HandleFunc("GET /delete/{task_id}", s.handleDelete)
	s.router.HandleFunc("GET /clear_completed", s.handleClearCompleted)

	// Task endpoints
	s.router.HandleFunc("GET /api/v0/tasks", s.handleListTasks)
	s.router.HandleFunc("POST /api/v0/tasks", s.handleCreateTask)
	s.router.HandleFunc("POST /api/v0/tasks/clear-completed", s.handleClearCompletedTasks)
	s.router.HandleFunc("GET /api/v0/tasks/{task_id}", s.handleGetTask)
	s.router.HandleFunc("PUT /api/v0/tasks/{task_id}", s.handleUpdateTask)
	s.router.HandleFunc("DELETE /api/v0/tasks/{task_id}", s.handleDeleteTask)
	s.router.HandleFunc("POST /api/v0/tasks/{task_id}/toggle", s.handleToggleTask)

	// Export endpoint
	s.router.HandleFunc("GET /api/v0/export", s.handleExport)
}

// ServeHTTP はServer構造体をhttp.Handlerとして実装します。
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// handleHealthCheck はヘルスチェックエンドポイントのハンドラーです。
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// requestLog はリクエストIDを付与したログエントリを返します。
func (s *Server) requestLog(r *http.Request) *logrus.Entry {
	return logger.WithRequestID(s.log, RequestIDFromContext(r.Context()))
}

// Run はサーバーを指定されたアドレスで起動し、ctxが終了したらグレースフルに停止します。
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
