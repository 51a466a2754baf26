package entities

// InterfaceParams는 인터페이스의 추가 파라미터 묶음입니다.
// 타입별로 허용되는 키가 고정되어 있으며(공통 + bond 전용),
// 포인터 필드는 "설정되지 않음"을 구분하기 위한 것입니다.
type InterfaceParams struct {
	// 공통 파라미터
	MTU      *int  `json:"mtu,omitempty"`
	AcceptRA *bool `json:"accept_ra,omitempty"`
	Autoconf *bool `json:"autoconf,omitempty"`

	// bond 전용 파라미터
	BondMode           string `json:"bond_mode,omitempty"`
	BondMiimon         *int   `json:"bond_miimon,omitempty"`
	BondDowndelay      *int   `json:"bond_downdelay,omitempty"`
	BondUpdelay        *int   `json:"bond_updelay,omitempty"`
	BondLACPRate       string `json:"bond_lacp_rate,omitempty"`
	BondXmitHashPolicy string `json:"bond_xmit_hash_policy,omitempty"`
}

// 리눅스 bonding 드라이버가 허용하는 값들입니다
var (
	BondModeChoices = []string{
		"balance-rr",
		"active-backup",
		"balance-xor",
		"broadcast",
		"802.3ad",
		"balance-tlb",
		"balance-alb",
	}
	BondLACPRateChoices       = []string{"slow", "fast"}
	BondXmitHashPolicyChoices = []string{"layer2", "layer2+3", "layer3+4", "encap2+3", "encap3+4"}
)

// MinMTU는 리눅스가 허용하는 최소 MTU입니다
const MinMTU = 552

// DefaultBondParams는 bond 생성 시 적용되는 기본 파라미터입니다
func DefaultBondParams() InterfaceParams {
	miimon := 100
	downdelay := 0
	updelay := 0
	return InterfaceParams{
		BondMode:           BondModeChoices[0],
		BondMiimon:         &miimon,
		BondDowndelay:      &downdelay,
		BondUpdelay:        &updelay,
		BondLACPRate:       BondLACPRateChoices[0],
		BondXmitHashPolicy: BondXmitHashPolicyChoices[0],
	}
}

// HasBondParams는 bond 전용 파라미터가 하나라도 설정되었는지 반환합니다
func (p InterfaceParams) HasBondParams() bool {
	return p.BondMode != "" ||
		p.BondMiimon != nil ||
		p.BondDowndelay != nil ||
		p.BondUpdelay != nil ||
		p.BondLACPRate != "" ||
		p.BondXmitHashPolicy != ""
}

// IsValidChoice는 값이 선택지 목록에 포함되는지 확인합니다
func IsValidChoice(value string, choices []string) bool {
	for _, c := range choices {
		if c == value {
			return true
		}
	}
	return false
}
