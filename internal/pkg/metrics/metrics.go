package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// 参加登録の結果ラベル
const (
	RegistrationSuccess          = "success"
	RegistrationNotFound         = "not_found"
	RegistrationDuplicate        = "duplicate"
	RegistrationCapacityExceeded = "capacity_exceeded"
	RegistrationError            = "error"
)

// Metrics はアプリケーションのメトリクスを管理する
type Metrics struct {
	// HTTPリクエストの総数（method, path, status_code）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPリクエストのレイテンシ（method, path）
	HTTPRequestDuration *prometheus.HistogramVec

	// 参加登録の試行数（result）
	AttendanceRegistrationsTotal *prometheus.CounterVec

	// 参加キャンセル数
	AttendanceCancellationsTotal prometheus.Counter

	// エンティティ件数（entity: events, participants, attendances）
	EntitiesTotal *prometheus.GaugeVec
}

// New は新しいMetricsインスタンスを作成し、デフォルトレジストリに登録する
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry は指定したレジストリにメトリクスを登録する
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		AttendanceRegistrationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "attendance_registrations_total",
				Help: "Total number of attendance registration attempts by result",
			},
			[]string{"result"},
		),
		AttendanceCancellationsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "attendance_cancellations_total",
				Help: "Total number of cancelled attendances",
			},
		),
		EntitiesTotal: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "entities_total",
				Help: "Current number of stored entities",
			},
			[]string{"entity"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.AttendanceRegistrationsTotal,
		m.AttendanceCancellationsTotal,
		m.EntitiesTotal,
	)

	return m
}

// RecordRegistration は参加登録の結果を記録する（nil レシーバでも安全）
func (m *Metrics) RecordRegistration(result string) {
	if m == nil {
		return
	}
	m.AttendanceRegistrationsTotal.WithLabelValues(result).Inc()
}

// RecordCancellation は参加キャンセルを記録する
func (m *Metrics) RecordCancellation() {
	if m == nil {
		return
	}
	m.AttendanceCancellationsTotal.Inc()
}

// SetEntityCount はエンティティ件数を設定する
func (m *Metrics) SetEntityCount(entity string, count int) {
	if m == nil {
		return
	}
	m.EntitiesTotal.WithLabelValues(entity).Set(float64(count))
}

// デフォルトのメトリクスインスタンス
var defaultMetrics *Metrics

// Init はデフォルトのメトリクスインスタンスを初期化する
func Init() *Metrics {
	defaultMetrics = New()
	return defaultMetrics
}

// Get はデフォルトのメトリクスインスタンスを返す
func Get() *Metrics {
	return defaultMetrics
}
