// Package metrics はPrometheusメトリクスの収集と書き出しを提供する。
// 単発実行のコマンドのため、スクレイプではなくnode_exporterのtextfile形式で書き出す。
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder はメトリクス記録のインターフェース。
// schema、loader、reportの各処理から利用する。
type Recorder interface {
	RecordOperation(command string, err error, duration time.Duration)
	RecordUsersLoaded(inserted, skipped int)
	RecordSchemaObjectCreated(object string)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	operations        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	usersInserted     prometheus.Counter
	usersSkipped      prometheus.Counter
	schemaObjects     *prometheus.CounterVec
	lastSuccess       *prometheus.GaugeVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "siteuser_operations_total",
			Help: "コマンド別・結果別の実行回数",
		}, []string{"command", "result"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "siteuser_operation_duration_seconds",
			Help:    "コマンドの実行時間（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"command"}),
		usersInserted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "siteuser_users_inserted_total",
			Help: "挿入されたユーザーの合計数",
		}),
		usersSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "siteuser_users_skipped_total",
			Help: "既に存在していたためスキップされたユーザーの合計数",
		}),
		schemaObjects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "siteuser_schema_objects_created_total",
			Help: "作成された型・列の数",
		}, []string{"object"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "siteuser_last_success_timestamp_seconds",
			Help: "コマンドが最後に成功した時刻（UNIX秒）",
		}, []string{"command"}),
	}

	reg.MustRegister(
		c.operations,
		c.operationDuration,
		c.usersInserted,
		c.usersSkipped,
		c.schemaObjects,
		c.lastSuccess,
	)

	return c
}

// RecordOperation はコマンドの実行結果と所要時間を記録する。
func (c *Collector) RecordOperation(command string, err error, duration time.Duration) {
	result := "success"
	if err != nil {
		result = "failure"
	} else {
		c.lastSuccess.WithLabelValues(command).SetToCurrentTime()
	}
	c.operations.WithLabelValues(command, result).Inc()
	c.operationDuration.WithLabelValues(command).Observe(duration.Seconds())
}

// RecordUsersLoaded はloaderの挿入数とスキップ数を記録する。
func (c *Collector) RecordUsersLoaded(inserted, skipped int) {
	c.usersInserted.Add(float64(inserted))
	c.usersSkipped.Add(float64(skipped))
}

// RecordSchemaObjectCreated は作成された型や列を記録する。
func (c *Collector) RecordSchemaObjectCreated(object string) {
	c.schemaObjects.WithLabelValues(object).Inc()
}

// WriteTextfile はレジストリの内容をtextfile collector形式でpathに書き出す。
// pathが空の場合は何もしない。
func WriteTextfile(path string, gatherer prometheus.Gatherer) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, gatherer); err != nil {
		return fmt.Errorf("failed to write metrics textfile %s: %w", path, err)
	}
	return nil
}

// NopRecorder は何も記録しないRecorder。
type NopRecorder struct{}

func (NopRecorder) RecordOperation(string, error, time.Duration) {}
func (NopRecorder) RecordUsersLoaded(int, int)                   {}
func (NopRecorder) RecordSchemaObjectCreated(string)             {}

var (
	_ Recorder = (*Collector)(nil)
	_ Recorder = NopRecorder{}
)
