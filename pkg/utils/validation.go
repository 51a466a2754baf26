package utils

import (
	"fmt"
	"net"
	"regexp"
)

var (
	// 클러스터 UUID 패턴 (RFC 4122)
	uuidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
)

// ValidateClusterUUID는 클러스터 UUID가 유효한지 검증
func ValidateClusterUUID(uuid string) error {
	if uuid == "" {
		return fmt.Errorf("클러스터 UUID가 비어있음")
	}

	if !uuidPattern.MatchString(uuid) {
		return fmt.Errorf("잘못된 클러스터 UUID 형식: %s", uuid)
	}

	return nil
}

// ValidateIPAddress는 리스에 보고된 IP 주소가 유효한지 검증
func ValidateIPAddress(ip string) error {
	if ip == "" {
		return fmt.Errorf("IP 주소가 비어있음")
	}

	if net.ParseIP(ip) == nil {
		return fmt.Errorf("잘못된 IP 주소 형식: %s", ip)
	}

	return nil
}

// ValidateVID는 802.1Q VLAN 태그 범위를 검증 (0은 untagged)
func ValidateVID(vid int) error {
	if vid < 0 || vid > 4094 {
		return fmt.Errorf("잘못된 VID: %d (0~4094 범위여야 함)", vid)
	}

	return nil
}
