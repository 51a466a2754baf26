package interfaces

import (
	"context"
	"multinic-controller/internal/domain/entities"
)

// InterfaceRepository는 인터페이스 토폴로지 저장소 인터페이스입니다.
// 스냅샷 조회와 커밋은 WithinTransaction 안에서 수행되어야
// 검증-저장 시퀀스가 원자적으로 유지됩니다.
type InterfaceRepository interface {
	// WithinTransaction은 fn을 하나의 트랜잭션 안에서 실행합니다.
	// fn에 전달된 컨텍스트를 사용한 저장소 호출은 같은 트랜잭션에 참여합니다.
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// GetNode는 ID로 노드를 조회합니다
	GetNode(ctx context.Context, nodeID int) (*entities.Node, error)

	// GetNodeInterfaces는 노드의 모든 활성 인터페이스를 조회합니다
	GetNodeInterfaces(ctx context.Context, nodeID int) ([]entities.Interface, error)

	// GetNodeEdges는 노드의 모든 부모-자식 간선을 생성 순서대로 조회합니다
	GetNodeEdges(ctx context.Context, nodeID int) ([]entities.Edge, error)

	// GetInterfaceByID는 ID로 인터페이스를 조회합니다
	GetInterfaceByID(ctx context.Context, id int) (*entities.Interface, error)

	// SaveInterface는 인터페이스를 저장합니다. 신규인 경우 ID가 채워집니다.
	SaveInterface(ctx context.Context, iface *entities.Interface) error

	// AddEdge는 부모-자식 간선을 추가합니다
	AddEdge(ctx context.Context, edge entities.Edge) error

	// RemoveEdge는 부모-자식 간선을 제거합니다
	RemoveEdge(ctx context.Context, edge entities.Edge) error

	// EnsureLinkUp은 새로 생성된 인터페이스에 기본 링크가 없으면 만들어 줍니다
	EnsureLinkUp(ctx context.Context, interfaceID int) error

	// FindOrphanEdges는 끝점 인터페이스가 삭제된 간선들을 조회합니다
	FindOrphanEdges(ctx context.Context) ([]entities.Edge, error)
}

// VLANDirectory는 fabric/VLAN 조회 인터페이스입니다
type VLANDirectory interface {
	// GetVLANByID는 ID로 VLAN을 조회합니다
	GetVLANByID(ctx context.Context, id int) (*entities.VLAN, error)

	// GetDefaultVLAN은 fabric의 기본(untagged) VLAN을 조회합니다
	GetDefaultVLAN(ctx context.Context, fabricID int) (*entities.VLAN, error)
}

// LeaseRepository는 DHCP 리스 저장소 인터페이스입니다
type LeaseRepository interface {
	// WithinTransaction은 fn을 하나의 트랜잭션 안에서 실행합니다
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// GetClusterByUUID는 UUID로 클러스터를 조회합니다
	GetClusterByUUID(ctx context.Context, uuid string) (*entities.Cluster, error)

	// ReplaceClusterLeases는 클러스터의 리스 집합을 통째로 교체합니다
	ReplaceClusterLeases(ctx context.Context, clusterID int, leases map[string]string) error

	// TouchInterfacesByMAC은 리스에 나타난 MAC과 일치하는 인터페이스들의
	// 마지막 관측 IP를 갱신하고, 갱신된 개수를 반환합니다
	TouchInterfacesByMAC(ctx context.Context, leases map[string]string) (int, error)
}
