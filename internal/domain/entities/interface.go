package entities

import (
	"errors"
	"regexp"
	"time"
)

// InterfaceType은 네트워크 인터페이스의 종류를 나타냅니다
type InterfaceType string

const (
	TypePhysical InterfaceType = "physical"
	TypeBond     InterfaceType = "bond"
	TypeVLAN     InterfaceType = "vlan"
)

// IsValid는 알려진 인터페이스 타입인지 확인합니다
func (t InterfaceType) IsValid() bool {
	switch t {
	case TypePhysical, TypeBond, TypeVLAN:
		return true
	}
	return false
}

// Interface는 노드에 속한 네트워크 인터페이스의 도메인 엔티티입니다.
// physical/bond 인터페이스는 MAC 주소를 가지며, vlan 인터페이스는
// 부모의 MAC을 따르므로 자체 MAC이 없습니다.
type Interface struct {
	ID         int
	NodeID     int
	Type       InterfaceType
	Name       string
	MACAddress string
	VLANID     int
	Params     InterfaceParams
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// Edge는 부모 인터페이스에서 자식 인터페이스로의 관계입니다.
// 한 자식의 모든 부모는 같은 노드에 속해야 합니다.
type Edge struct {
	ParentID int
	ChildID  int
}

var (
	ErrInvalidMACAddress    = errors.New("유효하지 않은 MAC 주소 형식")
	ErrInvalidInterfaceName = errors.New("유효하지 않은 인터페이스 이름")
	ErrInvalidInterfaceType = errors.New("유효하지 않은 인터페이스 타입")
)

var macAddressPattern = regexp.MustCompile(`^([0-9A-Fa-f]{2}[:-]){5}([0-9A-Fa-f]{2})$`)

// 리눅스 IFNAMSIZ 제한(15자)과 일반적인 명명 규칙을 따릅니다
var interfaceNamePattern = regexp.MustCompile(`^[a-z][a-z0-9\-\.]{0,14}$`)

// IsValidMACAddress는 MAC 주소 형식을 검증합니다
func IsValidMACAddress(mac string) bool {
	return macAddressPattern.MatchString(mac)
}

// IsValidInterfaceName은 인터페이스 이름 형식을 검증합니다
func IsValidInterfaceName(name string) bool {
	return interfaceNamePattern.MatchString(name)
}

// Validate는 Interface의 자체 정합성을 검증합니다.
// 토폴로지(부모 관계, VLAN 소속) 검증은 Reconciler의 책임입니다.
func (i *Interface) Validate() error {
	if !i.Type.IsValid() {
		return ErrInvalidInterfaceType
	}
	if !IsValidInterfaceName(i.Name) {
		return ErrInvalidInterfaceName
	}
	if i.Type != TypeVLAN && !IsValidMACAddress(i.MACAddress) {
		return ErrInvalidMACAddress
	}
	return nil
}

// HasOwnMAC은 해당 타입이 자체 MAC 주소를 갖는지 반환합니다
func (i *Interface) HasOwnMAC() bool {
	return i.Type != TypeVLAN
}
