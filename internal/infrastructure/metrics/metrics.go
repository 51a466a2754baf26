package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// 인터페이스 조정 관련 메트릭
	ReconciliationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "multinic_controller_reconciliations_total",
			Help: "Total number of interface reconciliations",
		},
		[]string{"type", "status"}, // physical/bond/vlan, success/rejected/failed
	)

	ReconcileDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "multinic_controller_reconcile_duration_seconds",
			Help:    "Time spent reconciling each interface request",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"type"},
	)

	ValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "multinic_controller_validation_failures_total",
			Help: "Total number of field validation failures",
		},
		[]string{"field", "reason"},
	)

	EdgesAdded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "multinic_controller_edges_added_total",
			Help: "Total number of parent-child edges added",
		},
	)

	EdgesRemoved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "multinic_controller_edges_removed_total",
			Help: "Total number of parent-child edges removed",
		},
	)

	// DHCP 리스 수집 관련 메트릭
	LeaseUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "multinic_controller_lease_updates_total",
			Help: "Total number of lease update batches processed",
		},
		[]string{"status"}, // success, failed
	)

	LeasesReplaced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "multinic_controller_leases_replaced_total",
			Help: "Total number of leases written by update batches",
		},
	)

	// 정리 스윕 관련 메트릭
	SweepCycleCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "multinic_controller_sweep_cycles_total",
			Help: "Total number of cleanup sweep cycles executed",
		},
	)

	SweepCycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "multinic_controller_sweep_cycle_duration_seconds",
			Help:    "Time spent in each cleanup sweep cycle",
			Buckets: prometheus.DefBuckets,
		},
	)

	SweepBackoffLevel = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "multinic_controller_sweep_backoff_level",
			Help: "Current sweep backoff level (0 = no backoff)",
		},
	)

	OrphanEdgesDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "multinic_controller_orphan_edges_deleted_total",
			Help: "Total number of orphaned edges deleted",
		},
	)

	// 데이터베이스 연결 관련 메트릭
	DBConnectionStatus = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "multinic_controller_db_connection_status",
			Help: "Database connection status (1 = connected, 0 = disconnected)",
		},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "multinic_controller_db_query_duration_seconds",
			Help:    "Time spent executing database queries",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query_type"},
	)

	// 에러 메트릭
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "multinic_controller_errors_total",
			Help: "Total number of errors encountered",
		},
		[]string{"error_type"}, // validation, not_found, conflict, system
	)

	// 시스템 정보
	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "multinic_controller_build_info",
			Help: "Controller build information",
		},
		[]string{"version", "hostname"},
	)
)

// RecordReconciliation은 조정 요청 하나의 결과와 소요 시간을 기록합니다
func RecordReconciliation(ifaceType string, status string, duration float64) {
	ReconciliationsTotal.WithLabelValues(ifaceType, status).Inc()
	ReconcileDuration.WithLabelValues(ifaceType).Observe(duration)
}

// RecordValidationFailure는 필드 검증 실패를 기록합니다
func RecordValidationFailure(field, reason string) {
	ValidationFailures.WithLabelValues(field, reason).Inc()
}

// RecordEdgeDiff는 적용된 간선 변경분을 기록합니다
func RecordEdgeDiff(added, removed int) {
	EdgesAdded.Add(float64(added))
	EdgesRemoved.Add(float64(removed))
}

// RecordLeaseUpdate는 리스 배치 처리 결과를 기록합니다
func RecordLeaseUpdate(status string, leaseCount int) {
	LeaseUpdatesTotal.WithLabelValues(status).Inc()
	if leaseCount > 0 {
		LeasesReplaced.Add(float64(leaseCount))
	}
}

// RecordSweepCycle은 정리 스윕 사이클 메트릭을 기록합니다
func RecordSweepCycle(duration float64) {
	SweepCycleCount.Inc()
	SweepCycleDuration.Observe(duration)
}

// RecordOrphanEdgesDeleted는 삭제된 고아 간선 수를 기록합니다
func RecordOrphanEdgesDeleted(count int) {
	OrphanEdgesDeleted.Add(float64(count))
}

// RecordDBQuery는 데이터베이스 쿼리 시간을 기록합니다
func RecordDBQuery(queryType string, duration float64) {
	DBQueryDuration.WithLabelValues(queryType).Observe(duration)
}

// RecordError는 에러 발생을 기록합니다
func RecordError(errorType string) {
	ErrorsTotal.WithLabelValues(errorType).Inc()
}

// SetBackoffLevel은 현재 스윕 백오프 레벨을 설정합니다
func SetBackoffLevel(level float64) {
	SweepBackoffLevel.Set(level)
}

// SetDBConnectionStatus는 데이터베이스 연결 상태를 설정합니다
func SetDBConnectionStatus(connected bool) {
	if connected {
		DBConnectionStatus.Set(1)
	} else {
		DBConnectionStatus.Set(0)
	}
}

// SetBuildInfo는 컨트롤러 빌드 정보를 설정합니다
func SetBuildInfo(version, hostname string) {
	BuildInfo.WithLabelValues(version, hostname).Set(1)
}
