package api

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/stsysd/tasuku/model"
)

// metrics はサーバー単位のPrometheusメトリクスです。
type metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inFlight        prometheus.Gauge
	operations      *prometheus.CounterVec
}

// newMetrics はメトリクスを生成してregに登録します。
func newMetrics(reg prometheus.Registerer, repo TaskRepository) *metrics {
	factory := promauto.With(reg)

	m := &metrics{
		// リクエスト数（メソッド・ルート・ステータス別）
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		// リクエストの処理時間
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"method", "route"},
		),
		// 処理中のリクエスト数
		inFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_in_flight_requests",
				Help: "Current number of in-flight HTTP requests",
			},
		),
		// リポジトリ操作の結果
		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tasuku_task_operations_total",
				Help: "Task mutations by operation and result",
			},
			[]string{"operation", "result"},
		),
	}

	// タスク件数はスクレイプ時にリポジトリから数える
	for state, filter := range map[string]*model.CompletionFilter{
		"total":     model.AllTasks(),
		"completed": model.OnlyCompleted(true),
	} {
		filter := filter
		factory.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name:        "tasuku_tasks",
				Help:        "Number of tasks currently held",
				ConstLabels: prometheus.Labels{"state": state},
			},
			func() float64 {
				tasks, err := repo.List(context.Background(), filter)
				if err != nil {
					return 0
				}
				return float64(len(tasks))
			},
		)
	}

	return m
}

// operationResult はエラーをメトリクスのラベル値に変換します。
func operationResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case model.IsValidationError(err):
		return "invalid"
	case errors.Is(err, model.ErrTaskNotFound):
		return "not_found"
	default:
		return "error"
	}
}

// observeOperation はリポジトリ操作の結果を記録します。
func (m *metrics) observeOperation(op string, err error) {
	m.operations.WithLabelValues(op, operationResult(err)).Inc()
}
