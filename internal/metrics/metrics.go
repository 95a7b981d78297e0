// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// プロフィールサービス、トークン発行、HTTPミドルウェアから利用する。
type MetricsCollector interface {
	RecordTokenIssued()
	RecordVerificationFailure(reason string)
	RecordProfileView(disclosure string)
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	tokensIssued         prometheus.Counter
	verificationFailures *prometheus.CounterVec
	profileViews         *prometheus.CounterVec
	httpStatus           *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		tokensIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "idorlab_tokens_issued_total",
			Help: "発行したトークンの合計数",
		}),
		verificationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "idorlab_token_verification_failures_total",
			Help: "失敗理由別のトークン検証失敗数",
		}, []string{"reason"}),
		profileViews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "idorlab_profile_views_total",
			Help: "開示範囲別のプロフィール応答数",
		}, []string{"disclosure"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "idorlab_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.tokensIssued,
		c.verificationFailures,
		c.profileViews,
		c.httpStatus,
	)

	return c
}

// RecordTokenIssued はトークン発行を記録する。
func (c *Collector) RecordTokenIssued() {
	c.tokensIssued.Inc()
}

// RecordVerificationFailure はトークン検証失敗を理由別に記録する。
func (c *Collector) RecordVerificationFailure(reason string) {
	c.verificationFailures.WithLabelValues(reason).Inc()
}

// RecordProfileView はプロフィール応答を開示範囲別に記録する。
func (c *Collector) RecordProfileView(disclosure string) {
	c.profileViews.WithLabelValues(disclosure).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Nop は何も記録しないMetricsCollector。テストやメトリクス無効時に使う。
type Nop struct{}

func (Nop) RecordTokenIssued()               {}
func (Nop) RecordVerificationFailure(string) {}
func (Nop) RecordProfileView(string)         {}
func (Nop) RecordHTTPStatus(int)             {}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
