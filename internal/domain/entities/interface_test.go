package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidMACAddress(t *testing.T) {
	tests := []struct {
		name  string
		mac   string
		valid bool
	}{
		{"콜론 구분 형식", "aa:bb:cc:dd:ee:ff", true},
		{"대문자 허용", "AA:BB:CC:DD:EE:FF", true},
		{"하이픈 구분 형식", "aa-bb-cc-dd-ee-ff", true},
		{"빈 문자열", "", false},
		{"자릿수 부족", "aa:bb:cc:dd:ee", false},
		{"16진수 아닌 문자", "gg:bb:cc:dd:ee:ff", false},
		{"구분자 없음", "aabbccddeeff", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidMACAddress(tt.mac))
		})
	}
}

func TestIsValidInterfaceName(t *testing.T) {
	tests := []struct {
		name  string
		iface string
		valid bool
	}{
		{"일반 이름", "eth0", true},
		{"bond 이름", "bond0", true},
		{"vlan 파생 이름", "eth0.100", true},
		{"하이픈 포함", "ens-3", true},
		{"빈 문자열", "", false},
		{"숫자로 시작", "0eth", false},
		{"대문자 불가", "Eth0", false},
		{"15자 초과", "verylonginterface", false},
		{"공백 포함", "eth 0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidInterfaceName(tt.iface))
		})
	}
}

func TestInterface_Validate(t *testing.T) {
	tests := []struct {
		name    string
		iface   Interface
		wantErr error
	}{
		{
			name: "유효한 physical 인터페이스",
			iface: Interface{
				Type: TypePhysical, Name: "eth0", MACAddress: "aa:bb:cc:dd:ee:01",
			},
		},
		{
			name: "vlan 인터페이스는 MAC 없이 유효",
			iface: Interface{
				Type: TypeVLAN, Name: "eth0.100",
			},
		},
		{
			name:    "알 수 없는 타입",
			iface:   Interface{Type: "bridge", Name: "br0", MACAddress: "aa:bb:cc:dd:ee:01"},
			wantErr: ErrInvalidInterfaceType,
		},
		{
			name:    "잘못된 이름",
			iface:   Interface{Type: TypePhysical, Name: "ETH0", MACAddress: "aa:bb:cc:dd:ee:01"},
			wantErr: ErrInvalidInterfaceName,
		},
		{
			name:    "physical 인터페이스에 MAC 누락",
			iface:   Interface{Type: TypePhysical, Name: "eth0"},
			wantErr: ErrInvalidMACAddress,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.iface.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInterface_HasOwnMAC(t *testing.T) {
	assert.True(t, (&Interface{Type: TypePhysical}).HasOwnMAC())
	assert.True(t, (&Interface{Type: TypeBond}).HasOwnMAC())
	assert.False(t, (&Interface{Type: TypeVLAN}).HasOwnMAC())
}
