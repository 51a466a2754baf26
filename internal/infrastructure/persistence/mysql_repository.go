package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"multinic-controller/internal/domain/entities"
	"multinic-controller/internal/domain/errors"
	"multinic-controller/internal/domain/interfaces"
	"multinic-controller/internal/infrastructure/metrics"

	"github.com/sirupsen/logrus"
)

// MySQLRepository는 MySQL 기반의 InterfaceRepository/VLANDirectory 구현체입니다
type MySQLRepository struct {
	db     *sql.DB
	logger *logrus.Logger
}

// NewMySQLRepository는 새로운 MySQLRepository를 생성합니다
func NewMySQLRepository(db *sql.DB, logger *logrus.Logger) *MySQLRepository {
	return &MySQLRepository{
		db:     db,
		logger: logger,
	}
}

var (
	_ interfaces.InterfaceRepository = (*MySQLRepository)(nil)
	_ interfaces.VLANDirectory       = (*MySQLRepository)(nil)
)

// WithinTransaction은 fn을 하나의 트랜잭션 안에서 실행합니다
func (r *MySQLRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return runInTransaction(ctx, r.db, fn)
}

// GetNode는 ID로 노드를 조회합니다
func (r *MySQLRepository) GetNode(ctx context.Context, nodeID int) (*entities.Node, error) {
	query := `
		SELECT id, name
		FROM node
		WHERE id = ? AND deleted_at IS NULL
	`

	var node entities.Node
	err := conn(ctx, r.db).QueryRowContext(ctx, query, nodeID).Scan(&node.ID, &node.Name)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("노드를 찾을 수 없음: ID=%d", nodeID))
	}
	if err != nil {
		return nil, errors.NewSystemError("데이터베이스 조회 실패", err)
	}
	return &node, nil
}

const interfaceColumns = `id, node_id, type, name, mac_address, vlan_id, params, created_at, modified_at`

// scanInterface는 인터페이스 한 행을 스캔합니다
func scanInterface(row interface{ Scan(...interface{}) error }) (*entities.Interface, error) {
	var iface entities.Interface
	var mac sql.NullString
	var params sql.NullString

	err := row.Scan(
		&iface.ID,
		&iface.NodeID,
		&iface.Type,
		&iface.Name,
		&mac,
		&iface.VLANID,
		&params,
		&iface.CreatedAt,
		&iface.ModifiedAt,
	)
	if err != nil {
		return nil, err
	}

	if mac.Valid {
		iface.MACAddress = mac.String
	}
	if params.Valid && params.String != "" {
		if err := json.Unmarshal([]byte(params.String), &iface.Params); err != nil {
			return nil, err
		}
	}
	return &iface, nil
}

// GetNodeInterfaces는 노드의 모든 활성 인터페이스를 조회합니다
func (r *MySQLRepository) GetNodeInterfaces(ctx context.Context, nodeID int) ([]entities.Interface, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("get_node_interfaces", time.Since(start).Seconds()) }()

	query := `
		SELECT ` + interfaceColumns + `
		FROM interface
		WHERE node_id = ? AND deleted_at IS NULL
		ORDER BY id
	`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, nodeID)
	if err != nil {
		return nil, errors.NewSystemError("데이터베이스 조회 실패", err)
	}
	defer rows.Close()

	var result []entities.Interface
	for rows.Next() {
		iface, err := scanInterface(rows)
		if err != nil {
			r.logger.WithError(err).Error("행 스캔 실패")
			continue
		}
		result = append(result, *iface)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.NewSystemError("결과 처리 중 오류", err)
	}
	return result, nil
}

// GetNodeEdges는 노드의 부모-자식 간선들을 생성 순서대로 조회합니다.
// 간선 순서는 bond의 MAC 재도출에서 "첫 번째 부모" 선택의 기준이 됩니다.
func (r *MySQLRepository) GetNodeEdges(ctx context.Context, nodeID int) ([]entities.Edge, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("get_node_edges", time.Since(start).Seconds()) }()

	query := `
		SELECT ie.parent_id, ie.child_id
		FROM interface_edge ie
		JOIN interface child ON child.id = ie.child_id
		WHERE child.node_id = ? AND child.deleted_at IS NULL
		ORDER BY ie.id
	`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, nodeID)
	if err != nil {
		return nil, errors.NewSystemError("데이터베이스 조회 실패", err)
	}
	defer rows.Close()

	var edges []entities.Edge
	for rows.Next() {
		var e entities.Edge
		if err := rows.Scan(&e.ParentID, &e.ChildID); err != nil {
			r.logger.WithError(err).Error("행 스캔 실패")
			continue
		}
		edges = append(edges, e)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.NewSystemError("결과 처리 중 오류", err)
	}
	return edges, nil
}

// GetInterfaceByID는 ID로 인터페이스를 조회합니다
func (r *MySQLRepository) GetInterfaceByID(ctx context.Context, id int) (*entities.Interface, error) {
	query := `
		SELECT ` + interfaceColumns + `
		FROM interface
		WHERE id = ? AND deleted_at IS NULL
	`

	iface, err := scanInterface(conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("인터페이스를 찾을 수 없음: ID=%d", id))
	}
	if err != nil {
		return nil, errors.NewSystemError("데이터베이스 조회 실패", err)
	}
	return iface, nil
}

// SaveInterface는 인터페이스를 저장합니다. 신규인 경우 ID가 채워집니다.
func (r *MySQLRepository) SaveInterface(ctx context.Context, iface *entities.Interface) error {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("save_interface", time.Since(start).Seconds()) }()

	params, err := json.Marshal(iface.Params)
	if err != nil {
		return errors.NewSystemError("파라미터 직렬화 실패", err)
	}

	var mac sql.NullString
	if iface.MACAddress != "" {
		mac = sql.NullString{String: iface.MACAddress, Valid: true}
	}

	if iface.ID == 0 {
		query := `
			INSERT INTO interface (node_id, type, name, mac_address, vlan_id, params, created_at, modified_at)
			VALUES (?, ?, ?, ?, ?, ?, NOW(), NOW())
		`
		result, err := conn(ctx, r.db).ExecContext(ctx, query,
			iface.NodeID, iface.Type, iface.Name, mac, iface.VLANID, string(params))
		if err != nil {
			return wrapDBError("인터페이스 저장 실패", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return errors.NewSystemError("생성된 ID 확인 실패", err)
		}
		iface.ID = int(id)

		r.logger.WithFields(logrus.Fields{
			"interface_id":   iface.ID,
			"interface_name": iface.Name,
			"type":           iface.Type,
		}).Info("인터페이스 생성 완료")
		return nil
	}

	query := `
		UPDATE interface
		SET name = ?, mac_address = ?, vlan_id = ?, params = ?, modified_at = NOW()
		WHERE id = ? AND deleted_at IS NULL
	`
	result, err := conn(ctx, r.db).ExecContext(ctx, query,
		iface.Name, mac, iface.VLANID, string(params), iface.ID)
	if err != nil {
		return wrapDBError("인터페이스 갱신 실패", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewSystemError("영향받은 행 확인 실패", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("인터페이스를 찾을 수 없음: ID=%d", iface.ID))
	}

	r.logger.WithFields(logrus.Fields{
		"interface_id":   iface.ID,
		"interface_name": iface.Name,
	}).Info("인터페이스 갱신 완료")
	return nil
}

// AddEdge는 부모-자식 간선을 추가합니다
func (r *MySQLRepository) AddEdge(ctx context.Context, edge entities.Edge) error {
	query := `
		INSERT INTO interface_edge (parent_id, child_id, created_at)
		VALUES (?, ?, NOW())
	`
	if _, err := conn(ctx, r.db).ExecContext(ctx, query, edge.ParentID, edge.ChildID); err != nil {
		return wrapDBError("간선 추가 실패", err)
	}
	return nil
}

// RemoveEdge는 부모-자식 간선을 제거합니다
func (r *MySQLRepository) RemoveEdge(ctx context.Context, edge entities.Edge) error {
	query := `
		DELETE FROM interface_edge
		WHERE parent_id = ? AND child_id = ?
	`
	if _, err := conn(ctx, r.db).ExecContext(ctx, query, edge.ParentID, edge.ChildID); err != nil {
		return wrapDBError("간선 제거 실패", err)
	}
	return nil
}

// EnsureLinkUp은 인터페이스에 링크가 하나도 없으면 LINK_UP 링크를 만들어
// 줍니다. 새로 생성된 인터페이스의 저장 직후 한 번 호출됩니다.
func (r *MySQLRepository) EnsureLinkUp(ctx context.Context, interfaceID int) error {
	query := `
		INSERT INTO interface_link (interface_id, mode, created_at)
		SELECT ?, 'link_up', NOW()
		WHERE NOT EXISTS (
			SELECT 1 FROM interface_link WHERE interface_id = ?
		)
	`
	if _, err := conn(ctx, r.db).ExecContext(ctx, query, interfaceID, interfaceID); err != nil {
		return wrapDBError("기본 링크 생성 실패", err)
	}
	return nil
}

// FindOrphanEdges는 끝점 인터페이스가 삭제된 간선들을 조회합니다
func (r *MySQLRepository) FindOrphanEdges(ctx context.Context) ([]entities.Edge, error) {
	query := `
		SELECT ie.parent_id, ie.child_id
		FROM interface_edge ie
		LEFT JOIN interface p ON p.id = ie.parent_id AND p.deleted_at IS NULL
		LEFT JOIN interface c ON c.id = ie.child_id AND c.deleted_at IS NULL
		WHERE p.id IS NULL OR c.id IS NULL
	`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		return nil, errors.NewSystemError("데이터베이스 조회 실패", err)
	}
	defer rows.Close()

	var edges []entities.Edge
	for rows.Next() {
		var e entities.Edge
		if err := rows.Scan(&e.ParentID, &e.ChildID); err != nil {
			r.logger.WithError(err).Error("행 스캔 실패")
			continue
		}
		edges = append(edges, e)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.NewSystemError("결과 처리 중 오류", err)
	}
	return edges, nil
}

// GetVLANByID는 ID로 VLAN을 조회합니다
func (r *MySQLRepository) GetVLANByID(ctx context.Context, id int) (*entities.VLAN, error) {
	query := `
		SELECT id, fabric_id, vid, name
		FROM vlan
		WHERE id = ?
	`

	var vlan entities.VLAN
	err := conn(ctx, r.db).QueryRowContext(ctx, query, id).Scan(&vlan.ID, &vlan.FabricID, &vlan.VID, &vlan.Name)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("VLAN을 찾을 수 없음: ID=%d", id))
	}
	if err != nil {
		return nil, errors.NewSystemError("데이터베이스 조회 실패", err)
	}
	return &vlan, nil
}

// GetDefaultVLAN은 fabric의 기본(untagged) VLAN을 조회합니다
func (r *MySQLRepository) GetDefaultVLAN(ctx context.Context, fabricID int) (*entities.VLAN, error) {
	query := `
		SELECT v.id, v.fabric_id, v.vid, v.name
		FROM vlan v
		JOIN fabric f ON f.default_vlan_id = v.id
		WHERE f.id = ?
	`

	var vlan entities.VLAN
	err := conn(ctx, r.db).QueryRowContext(ctx, query, fabricID).Scan(&vlan.ID, &vlan.FabricID, &vlan.VID, &vlan.Name)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("fabric의 기본 VLAN을 찾을 수 없음: fabric=%d", fabricID))
	}
	if err != nil {
		return nil, errors.NewSystemError("데이터베이스 조회 실패", err)
	}
	return &vlan, nil
}
