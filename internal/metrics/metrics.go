package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RowsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vnadmin_rows_total",
		Help: "Source rows processed by pipeline",
	}, []string{"pipeline"})
	EntitiesTotal = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "vnadmin_entities",
		Help: "Distinct administrative units produced by the last build",
	}, []string{"pipeline", "level"})
	ConflictsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vnadmin_hierarchy_conflicts_total",
		Help: "Ids seen under more than one parent",
	}, []string{"level"})
	OrphansTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vnadmin_hierarchy_orphans_total",
		Help: "Records skipped from sharding because the parent id is missing",
	}, []string{"level"})
	FilesWrittenTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vnadmin_files_written_total",
		Help: "JSON files written by pipeline",
	}, []string{"pipeline"})
	PublishTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vnadmin_publish_total",
		Help: "Publish attempts by sink and status",
	}, []string{"sink", "status"})
	BuildDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vnadmin_build_duration_ms",
		Help:    "Pipeline duration in milliseconds",
		Buckets: []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	}, []string{"pipeline"})
)

func init() {
	prometheus.MustRegister(RowsTotal)
	prometheus.MustRegister(EntitiesTotal)
	prometheus.MustRegister(ConflictsTotal)
	prometheus.MustRegister(OrphansTotal)
	prometheus.MustRegister(FilesWrittenTotal)
	prometheus.MustRegister(PublishTotal)
	prometheus.MustRegister(BuildDurationMs)
}

// 文档注释：以 textfile collector 格式写出当前指标
// 背景：批处理进程运行完即退出，无法被抓取；写入 node_exporter 的 textfile 目录后由其代为暴露。
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
