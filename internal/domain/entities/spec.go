package entities

// InterfaceSpec은 인터페이스 생성/수정 요청이 전달하는 희망 상태입니다.
// 모든 변경 가능 필드는 3-상태(absent/set/cleared)를 가지며,
// Parents의 목록 순서는 MAC/VLAN 상속의 기준이 되므로 보존되어야 합니다.
type InterfaceSpec struct {
	Type       InterfaceType
	Name       OptionalString
	MACAddress OptionalString
	VLANID     OptionalInt
	Parents    OptionalIntList
	Params     ParamsSpec
}

// ParamsSpec은 파라미터 묶음에 대한 3-상태 요청입니다.
// 이름 접두사 스캔 대신 타입별 고정 스키마로 검증됩니다.
type ParamsSpec struct {
	MTU      OptionalInt
	AcceptRA OptionalBool
	Autoconf OptionalBool

	BondMode           OptionalString
	BondMiimon         OptionalInt
	BondDowndelay      OptionalInt
	BondUpdelay        OptionalInt
	BondLACPRate       OptionalString
	BondXmitHashPolicy OptionalString
}

// HasBondParams는 bond 전용 파라미터가 요청에 포함되었는지 반환합니다
func (p ParamsSpec) HasBondParams() bool {
	return p.BondMode.State != FieldAbsent ||
		p.BondMiimon.State != FieldAbsent ||
		p.BondDowndelay.State != FieldAbsent ||
		p.BondUpdelay.State != FieldAbsent ||
		p.BondLACPRate.State != FieldAbsent ||
		p.BondXmitHashPolicy.State != FieldAbsent
}

// Apply는 현재 파라미터에 3-상태 요청을 적용한 결과를 반환합니다
func (p ParamsSpec) Apply(current InterfaceParams) InterfaceParams {
	result := current

	switch p.MTU.State {
	case FieldSet:
		v := p.MTU.Value
		result.MTU = &v
	case FieldCleared:
		result.MTU = nil
	}
	switch p.AcceptRA.State {
	case FieldSet:
		v := p.AcceptRA.Value
		result.AcceptRA = &v
	case FieldCleared:
		result.AcceptRA = nil
	}
	switch p.Autoconf.State {
	case FieldSet:
		v := p.Autoconf.Value
		result.Autoconf = &v
	case FieldCleared:
		result.Autoconf = nil
	}

	result.BondMode = p.BondMode.Resolve(result.BondMode)
	switch p.BondMiimon.State {
	case FieldSet:
		v := p.BondMiimon.Value
		result.BondMiimon = &v
	case FieldCleared:
		result.BondMiimon = nil
	}
	switch p.BondDowndelay.State {
	case FieldSet:
		v := p.BondDowndelay.Value
		result.BondDowndelay = &v
	case FieldCleared:
		result.BondDowndelay = nil
	}
	switch p.BondUpdelay.State {
	case FieldSet:
		v := p.BondUpdelay.Value
		result.BondUpdelay = &v
	case FieldCleared:
		result.BondUpdelay = nil
	}
	result.BondLACPRate = p.BondLACPRate.Resolve(result.BondLACPRate)
	result.BondXmitHashPolicy = p.BondXmitHashPolicy.Resolve(result.BondXmitHashPolicy)

	return result
}
