package services

import (
	"fmt"
	"multinic-controller/internal/domain/entities"
)

// InterfaceNamingService는 인터페이스 이름 규칙을 담당하는 도메인 서비스입니다
type InterfaceNamingService struct{}

// NewInterfaceNamingService는 새로운 InterfaceNamingService를 생성합니다
func NewInterfaceNamingService() *InterfaceNamingService {
	return &InterfaceNamingService{}
}

// BuildVLANInterfaceName은 vlan 인터페이스의 이름을 부모 이름과 VID로부터
// 결정적으로 도출합니다. 같은 입력은 항상 같은 이름을 만듭니다.
func (s *InterfaceNamingService) BuildVLANInterfaceName(parentName string, vid int) string {
	return fmt.Sprintf("%s.%d", parentName, vid)
}

// ValidateName은 인터페이스 이름 형식을 검증합니다
func (s *InterfaceNamingService) ValidateName(name string) error {
	if name == "" {
		return entities.ErrInvalidInterfaceName
	}
	if !entities.IsValidInterfaceName(name) {
		return entities.ErrInvalidInterfaceName
	}
	return nil
}
