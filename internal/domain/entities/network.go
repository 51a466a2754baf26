package entities

// Node는 인터페이스를 소유하는 베어메탈 노드입니다
type Node struct {
	ID   int
	Name string
}

// Fabric은 VLAN들을 묶는 논리적 그룹입니다.
// 각 fabric은 정확히 하나의 기본(untagged) VLAN을 가집니다.
type Fabric struct {
	ID            int
	Name          string
	DefaultVLANID int
}

// VLAN은 fabric에 속한 802.1Q VLAN입니다.
// fabric의 기본 VLAN은 untagged 트래픽을 나르고, 나머지는 모두 tagged입니다.
type VLAN struct {
	ID       int
	FabricID int
	VID      int
	Name     string
}

// Cluster는 DHCP 리스를 보고하는 클러스터 컨트롤러입니다
type Cluster struct {
	ID   int
	UUID string
	Name string
}

// LeaseMapping은 클러스터가 보고한 (IP, MAC) 쌍입니다
type LeaseMapping struct {
	IP  string `json:"ip"`
	MAC string `json:"mac"`
}

// ConvertMappingsToLeases는 보고된 쌍 목록을 IP 기준 맵으로 변환합니다.
// 같은 IP가 여러 번 나타나면 마지막 항목이 우선합니다.
func ConvertMappingsToLeases(mappings []LeaseMapping) map[string]string {
	leases := make(map[string]string, len(mappings))
	for _, m := range mappings {
		leases[m.IP] = m.MAC
	}
	return leases
}
