package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"multinic-controller/internal/domain/entities"
	"multinic-controller/internal/domain/errors"
	"multinic-controller/internal/domain/interfaces"
	"multinic-controller/internal/infrastructure/metrics"

	"github.com/sirupsen/logrus"
)

// MySQLLeaseRepository는 MySQL 기반의 LeaseRepository 구현체입니다
type MySQLLeaseRepository struct {
	db     *sql.DB
	logger *logrus.Logger
}

// NewMySQLLeaseRepository는 새로운 MySQLLeaseRepository를 생성합니다
func NewMySQLLeaseRepository(db *sql.DB, logger *logrus.Logger) interfaces.LeaseRepository {
	return &MySQLLeaseRepository{
		db:     db,
		logger: logger,
	}
}

// WithinTransaction은 fn을 하나의 트랜잭션 안에서 실행합니다
func (r *MySQLLeaseRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return runInTransaction(ctx, r.db, fn)
}

// GetClusterByUUID는 UUID로 클러스터를 조회합니다
func (r *MySQLLeaseRepository) GetClusterByUUID(ctx context.Context, uuid string) (*entities.Cluster, error) {
	query := `
		SELECT id, uuid, name
		FROM cluster
		WHERE uuid = ?
	`

	var cluster entities.Cluster
	err := conn(ctx, r.db).QueryRowContext(ctx, query, uuid).Scan(&cluster.ID, &cluster.UUID, &cluster.Name)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("클러스터를 찾을 수 없음: UUID=%s", uuid))
	}
	if err != nil {
		return nil, errors.NewSystemError("데이터베이스 조회 실패", err)
	}
	return &cluster, nil
}

// ReplaceClusterLeases는 클러스터의 리스 집합을 보고된 집합으로 통째로
// 교체합니다. DHCP 서버의 리스 파일이 항상 전체 스냅샷이기 때문입니다.
func (r *MySQLLeaseRepository) ReplaceClusterLeases(ctx context.Context, clusterID int, leases map[string]string) error {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("replace_cluster_leases", time.Since(start).Seconds()) }()

	deleteQuery := `
		DELETE FROM dhcp_lease
		WHERE cluster_id = ?
	`
	if _, err := conn(ctx, r.db).ExecContext(ctx, deleteQuery, clusterID); err != nil {
		return wrapDBError("기존 리스 삭제 실패", err)
	}

	insertQuery := `
		INSERT INTO dhcp_lease (cluster_id, ip, mac_address, updated_at)
		VALUES (?, ?, ?, NOW())
	`
	for ip, mac := range leases {
		if _, err := conn(ctx, r.db).ExecContext(ctx, insertQuery, clusterID, ip, mac); err != nil {
			return wrapDBError("리스 저장 실패", err)
		}
	}

	r.logger.WithFields(logrus.Fields{
		"cluster_id":  clusterID,
		"lease_count": len(leases),
	}).Info("클러스터 리스 교체 완료")
	return nil
}

// TouchInterfacesByMAC은 리스에 나타난 MAC과 일치하는 인터페이스들의
// 마지막 관측 IP와 관측 시각을 갱신합니다
func (r *MySQLLeaseRepository) TouchInterfacesByMAC(ctx context.Context, leases map[string]string) (int, error) {
	query := `
		UPDATE interface
		SET last_seen_ip = ?, last_seen_at = NOW()
		WHERE mac_address = ? AND deleted_at IS NULL
	`

	updated := 0
	for ip, mac := range leases {
		result, err := conn(ctx, r.db).ExecContext(ctx, query, ip, mac)
		if err != nil {
			return updated, wrapDBError("인터페이스 관측 정보 갱신 실패", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return updated, errors.NewSystemError("영향받은 행 확인 실패", err)
		}
		updated += int(rowsAffected)
	}
	return updated, nil
}
