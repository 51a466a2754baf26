package services

import (
	"context"
	"sort"
	"strings"

	"multinic-controller/internal/domain/entities"
	domainErrors "multinic-controller/internal/domain/errors"
	"multinic-controller/internal/domain/interfaces"
)

// TopologySnapshot은 하나의 트랜잭션에서 읽은 노드의 인터페이스/간선
// 집합입니다. Reconciler는 이 스냅샷만 보고 판단하며, 스냅샷과 커밋
// 사이의 직렬화는 호출자의 트랜잭션 경계가 책임집니다.
type TopologySnapshot struct {
	Interfaces []entities.Interface
	Edges      []entities.Edge
}

// ByID는 스냅샷에서 ID로 인터페이스를 찾습니다
func (t TopologySnapshot) ByID(id int) *entities.Interface {
	for i := range t.Interfaces {
		if t.Interfaces[i].ID == id {
			return &t.Interfaces[i]
		}
	}
	return nil
}

// ParentsOf는 자식의 부모 ID들을 간선 생성 순서대로 반환합니다
func (t TopologySnapshot) ParentsOf(childID int) []int {
	var parents []int
	for _, e := range t.Edges {
		if e.ChildID == childID {
			parents = append(parents, e.ParentID)
		}
	}
	return parents
}

// ChildrenOf는 부모의 자식 ID들을 반환합니다
func (t TopologySnapshot) ChildrenOf(parentID int) []int {
	var children []int
	for _, e := range t.Edges {
		if e.ParentID == parentID {
			children = append(children, e.ChildID)
		}
	}
	return children
}

// ReconcileResult는 검증을 통과한 인터페이스 속성과 적용할 간선 변경입니다
type ReconcileResult struct {
	Interface     entities.Interface
	EdgesToAdd    []entities.Edge
	EdgesToRemove []entities.Edge
	Created       bool
}

// Reconciler는 인터페이스 계층의 제약을 검증하고 파생 속성(MAC, VLAN,
// 이름)을 도출한 뒤 부모-자식 간선 집합의 변경분을 계산하는 엔진입니다.
// 순수 컴포넌트로, 저장은 호출자가 트랜잭션 안에서 수행합니다.
type Reconciler struct {
	vlans  interfaces.VLANDirectory
	naming *InterfaceNamingService
}

// NewReconciler는 새로운 Reconciler를 생성합니다
func NewReconciler(vlans interfaces.VLANDirectory, naming *InterfaceNamingService) *Reconciler {
	return &Reconciler{
		vlans:  vlans,
		naming: naming,
	}
}

// Reconcile은 희망 상태를 검증하고 저장할 인터페이스와 간선 변경분을
// 반환합니다. parents는 호출자가 제공한 순서를 유지해야 하며, 첫 번째
// 부모가 MAC/VLAN 상속의 기준이 됩니다. 검증 실패는 필드별로 수집되어
// ValidationErrors 하나로 반환됩니다.
func (r *Reconciler) Reconcile(
	ctx context.Context,
	nodeID int,
	spec entities.InterfaceSpec,
	existing *entities.Interface,
	parents []entities.Interface,
	topo TopologySnapshot,
) (*ReconcileResult, error) {
	verrs := domainErrors.NewValidationErrors()

	if !spec.Type.IsValid() {
		verrs.Add(domainErrors.FieldType, domainErrors.ReasonInvalidValue,
			"Invalid interface type '%s'.", spec.Type)
		return nil, verrs.ErrOrNil()
	}

	// 1. 타입별 부모 개수
	r.validateParentCardinality(spec.Type, parents, verrs)

	// 2. 모든 부모는 같은 노드에 속해야 함
	r.validateParentsSameNode(nodeID, existing, parents, verrs)

	// 3. 타입별 부모 제약 (부모 목록 자체가 유효할 때만)
	if verrs.FieldsOK(domainErrors.FieldParents) {
		switch spec.Type {
		case entities.TypeVLAN:
			r.validateVLANParent(parents, topo, verrs)
		case entities.TypeBond:
			r.validateBondParentsFree(existing, parents, topo, verrs)
		}
	}

	// 4. VLAN 결정과 fabric 제약
	vlan, err := r.resolveVLAN(ctx, spec, existing, parents, verrs)
	if err != nil {
		return nil, err
	}

	// 5. MAC 결정 (bond 상속 포함)
	mac := r.resolveMAC(spec, existing, parents, topo, verrs)

	// 6. 이름 결정과 노드 내 유일성
	name := r.resolveName(spec, existing, parents, vlan, topo, verrs)

	// 파라미터 스키마 검증
	params := r.resolveParams(spec, existing, verrs)

	if err := verrs.ErrOrNil(); err != nil {
		return nil, err
	}

	result := &ReconcileResult{
		Interface: entities.Interface{
			NodeID:     nodeID,
			Type:       spec.Type,
			Name:       name,
			MACAddress: mac,
			VLANID:     vlan.ID,
			Params:     params,
		},
		Created: existing == nil,
	}
	if existing != nil {
		result.Interface.ID = existing.ID
		result.Interface.CreatedAt = existing.CreatedAt
	}

	result.EdgesToAdd, result.EdgesToRemove = r.diffEdges(existing, parents, topo)
	return result, nil
}

// validateParentCardinality는 타입별 부모 개수 제약을 검증합니다
func (r *Reconciler) validateParentCardinality(t entities.InterfaceType, parents []entities.Interface, verrs *domainErrors.ValidationErrors) {
	switch t {
	case entities.TypePhysical:
		if len(parents) > 0 {
			verrs.Add(domainErrors.FieldParents, domainErrors.ReasonInvalidParentCardinality,
				"A physical interface cannot have parents.")
		}
	case entities.TypeBond:
		if len(parents) < 1 {
			verrs.Add(domainErrors.FieldParents, domainErrors.ReasonInvalidParentCardinality,
				"A bond interface must have one or more parents.")
		}
	case entities.TypeVLAN:
		if len(parents) != 1 {
			verrs.Add(domainErrors.FieldParents, domainErrors.ReasonInvalidParentCardinality,
				"A VLAN interface must have exactly one parent.")
		}
	}
}

// validateParentsSameNode는 부모들이 모두 대상 노드에 속하는지 검증합니다
func (r *Reconciler) validateParentsSameNode(nodeID int, existing *entities.Interface, parents []entities.Interface, verrs *domainErrors.ValidationErrors) {
	for _, p := range parents {
		if existing != nil && p.ID == existing.ID {
			verrs.Add(domainErrors.FieldParents, domainErrors.ReasonInvalidValue,
				"An interface cannot be its own parent.")
			return
		}
	}

	nodes := make(map[int]struct{}, len(parents))
	for _, p := range parents {
		nodes[p.NodeID] = struct{}{}
	}
	if len(nodes) > 1 {
		verrs.Add(domainErrors.FieldParents, domainErrors.ReasonCrossNodeParents,
			"Parents are related to different nodes.")
		return
	}
	for n := range nodes {
		if n != nodeID {
			verrs.Add(domainErrors.FieldParents, domainErrors.ReasonCrossNodeParents,
				"Parents are related to different nodes.")
		}
	}
}

// validateVLANParent는 vlan 인터페이스의 단일 부모 제약을 검증합니다
func (r *Reconciler) validateVLANParent(parents []entities.Interface, topo TopologySnapshot, verrs *domainErrors.ValidationErrors) {
	parent := parents[0]
	if parent.Type == entities.TypeVLAN {
		verrs.Add(domainErrors.FieldParents, domainErrors.ReasonParentTypeConflict,
			"A VLAN interface can't have another VLAN interface as parent.")
		return
	}
	for _, childID := range topo.ChildrenOf(parent.ID) {
		child := topo.ByID(childID)
		if child != nil && child.Type == entities.TypeBond {
			verrs.Add(domainErrors.FieldParents, domainErrors.ReasonParentTypeConflict,
				"A VLAN interface can't have a parent that is already in a bond.")
			return
		}
	}
}

// validateBondParentsFree는 bond 후보 부모들이 다른 인터페이스의 자식이
// 아닌지(배타성) 검증합니다
func (r *Reconciler) validateBondParentsFree(existing *entities.Interface, parents []entities.Interface, topo TopologySnapshot, verrs *domainErrors.ValidationErrors) {
	selfID := 0
	if existing != nil {
		selfID = existing.ID
	}

	inUse := make(map[string]struct{})
	for _, p := range parents {
		for _, childID := range topo.ChildrenOf(p.ID) {
			if childID != selfID {
				inUse[p.Name] = struct{}{}
			}
		}
	}
	if len(inUse) == 0 {
		return
	}

	names := make([]string, 0, len(inUse))
	for n := range inUse {
		names = append(names, n)
	}
	sort.Strings(names)
	verrs.Add(domainErrors.FieldParents, domainErrors.ReasonParentAlreadyInUse,
		"%s is already in-use by another interface.", strings.Join(names, ", "))
}

// resolveVLAN은 희망 VLAN을 결정하고 fabric 제약을 검증합니다.
// bond 생성 시 VLAN이 생략되면 첫 번째 부모의 VLAN을 상속합니다.
func (r *Reconciler) resolveVLAN(
	ctx context.Context,
	spec entities.InterfaceSpec,
	existing *entities.Interface,
	parents []entities.Interface,
	verrs *domainErrors.ValidationErrors,
) (*entities.VLAN, error) {
	vlanID := 0
	if existing != nil {
		vlanID = existing.VLANID
	}
	switch spec.VLANID.State {
	case entities.FieldSet:
		vlanID = spec.VLANID.Value
	case entities.FieldCleared:
		vlanID = 0
	}

	parentsOK := verrs.FieldsOK(domainErrors.FieldParents) && len(parents) > 0

	// bond 생성 시 VLAN 상속과 부모 VLAN 일치 검증
	if spec.Type == entities.TypeBond && existing == nil && parentsOK {
		if vlanID == 0 {
			vlanID = parents[0].VLANID
		}
		for _, p := range parents {
			if p.VLANID != vlanID {
				verrs.Add(domainErrors.FieldParents, domainErrors.ReasonInconsistentParentVLANs,
					"All parents must belong to the same VLAN.")
				break
			}
		}
	}

	if vlanID == 0 {
		verrs.Add(domainErrors.FieldVLAN, domainErrors.ReasonMissingRequiredField,
			"This field is required.")
		return &entities.VLAN{}, nil
	}

	vlan, err := r.vlans.GetVLANByID(ctx, vlanID)
	if err != nil {
		if domainErrors.IsNotFoundError(err) {
			verrs.Add(domainErrors.FieldVLAN, domainErrors.ReasonInvalidValue,
				"Unknown VLAN %d.", vlanID)
			return &entities.VLAN{}, nil
		}
		return nil, err
	}

	defaultVLAN, err := r.vlans.GetDefaultVLAN(ctx, vlan.FabricID)
	if err != nil {
		return nil, err
	}

	switch spec.Type {
	case entities.TypePhysical:
		if vlan.ID != defaultVLAN.ID {
			verrs.Add(domainErrors.FieldVLAN, domainErrors.ReasonInvalidVLANAssignment,
				"A physical interface can only belong to an untagged VLAN.")
		}
	case entities.TypeBond:
		if vlan.ID != defaultVLAN.ID {
			verrs.Add(domainErrors.FieldVLAN, domainErrors.ReasonInvalidVLANAssignment,
				"A bond interface can only belong to an untagged VLAN.")
		}
	case entities.TypeVLAN:
		if vlan.ID == defaultVLAN.ID {
			verrs.Add(domainErrors.FieldVLAN, domainErrors.ReasonInvalidVLANAssignment,
				"A VLAN interface can only belong to a tagged VLAN.")
		}
		if parentsOK {
			parentVLAN, err := r.vlans.GetVLANByID(ctx, parents[0].VLANID)
			if err != nil {
				return nil, err
			}
			if parentVLAN.FabricID != vlan.FabricID {
				verrs.Add(domainErrors.FieldVLAN, domainErrors.ReasonInvalidVLANAssignment,
					"A VLAN interface can only belong to a tagged VLAN on the same fabric as its parent interface.")
			}
		}
	}

	return vlan, nil
}

// resolveMAC은 희망 MAC을 결정합니다. bond 생성 시 생략된 MAC은 첫 번째
// 부모에서 상속하고, 수정 시에는 현재 MAC이 제거되는 부모의 것이었을
// 때에만 새 첫 번째 부모의 MAC으로 다시 도출합니다.
func (r *Reconciler) resolveMAC(
	spec entities.InterfaceSpec,
	existing *entities.Interface,
	parents []entities.Interface,
	topo TopologySnapshot,
	verrs *domainErrors.ValidationErrors,
) string {
	// vlan 인터페이스는 자체 MAC을 갖지 않음
	if spec.Type == entities.TypeVLAN {
		return ""
	}

	current := ""
	if existing != nil {
		current = existing.MACAddress
	}
	mac := spec.MACAddress.Resolve(current)

	parentsOK := verrs.FieldsOK(domainErrors.FieldParents) && len(parents) > 0

	if spec.Type == entities.TypeBond && parentsOK {
		if existing == nil {
			if mac == "" {
				mac = parents[0].MACAddress
			}
		} else {
			macNotChanged := spec.MACAddress.State == entities.FieldAbsent ||
				(spec.MACAddress.State == entities.FieldSet && spec.MACAddress.Value == existing.MACAddress)
			if macNotChanged && r.macBelongsToRemovedParent(existing, parents, topo) {
				mac = parents[0].MACAddress
			}
		}
	}

	if mac == "" {
		verrs.Add(domainErrors.FieldMACAddress, domainErrors.ReasonMissingRequiredField,
			"This field is required.")
		return ""
	}
	if !entities.IsValidMACAddress(mac) {
		verrs.Add(domainErrors.FieldMACAddress, domainErrors.ReasonInvalidValue,
			"'%s' is not a valid MAC address.", mac)
	}
	return mac
}

// macBelongsToRemovedParent는 bond의 현재 MAC이 이번 수정으로 부모 집합에서
// 빠지는 부모의 MAC인지 확인합니다
func (r *Reconciler) macBelongsToRemovedParent(existing *entities.Interface, parents []entities.Interface, topo TopologySnapshot) bool {
	kept := make(map[int]struct{}, len(parents))
	for _, p := range parents {
		kept[p.ID] = struct{}{}
	}
	for _, oldID := range topo.ParentsOf(existing.ID) {
		if _, ok := kept[oldID]; ok {
			continue
		}
		if old := topo.ByID(oldID); old != nil && old.MACAddress == existing.MACAddress {
			return true
		}
	}
	return false
}

// resolveName은 인터페이스 이름을 결정하고 노드 내 유일성을 검증합니다.
// vlan 인터페이스의 이름은 항상 부모 이름과 VID에서 도출됩니다.
func (r *Reconciler) resolveName(
	spec entities.InterfaceSpec,
	existing *entities.Interface,
	parents []entities.Interface,
	vlan *entities.VLAN,
	topo TopologySnapshot,
	verrs *domainErrors.ValidationErrors,
) string {
	var name string

	if spec.Type == entities.TypeVLAN {
		// 파생에 필요한 입력이 유효하지 않으면 이름 검증을 건너뜀
		if !verrs.FieldsOK(domainErrors.FieldParents, domainErrors.FieldVLAN) || len(parents) == 0 || vlan.ID == 0 {
			return ""
		}
		name = r.naming.BuildVLANInterfaceName(parents[0].Name, vlan.VID)
	} else {
		current := ""
		if existing != nil {
			current = existing.Name
		}
		name = spec.Name.Resolve(current)
		if name == "" {
			verrs.Add(domainErrors.FieldName, domainErrors.ReasonMissingRequiredField,
				"This field is required.")
			return ""
		}
		if err := r.naming.ValidateName(name); err != nil {
			verrs.Add(domainErrors.FieldName, domainErrors.ReasonInvalidValue,
				"'%s' is not a valid interface name.", name)
			return name
		}
	}

	selfID := 0
	if existing != nil {
		selfID = existing.ID
	}
	for _, other := range topo.Interfaces {
		if other.ID != selfID && other.Name == name {
			verrs.Add(domainErrors.FieldName, domainErrors.ReasonDuplicateName,
				"Node already has an interface named '%s'.", name)
			break
		}
	}
	return name
}

// resolveParams는 타입별 파라미터 스키마를 적용하고 검증합니다.
// bond 생성 시 생략된 bond 파라미터는 기본값으로 채워집니다.
func (r *Reconciler) resolveParams(spec entities.InterfaceSpec, existing *entities.Interface, verrs *domainErrors.ValidationErrors) entities.InterfaceParams {
	if spec.Type != entities.TypeBond && spec.Params.HasBondParams() {
		verrs.Add(domainErrors.FieldParams, domainErrors.ReasonInvalidValue,
			"Bond parameters are only valid for bond interfaces.")
	}

	var base entities.InterfaceParams
	switch {
	case existing != nil:
		base = existing.Params
	case spec.Type == entities.TypeBond:
		base = entities.DefaultBondParams()
	}
	params := spec.Params.Apply(base)

	if params.MTU != nil && *params.MTU < entities.MinMTU {
		verrs.Add(domainErrors.FieldParams, domainErrors.ReasonInvalidValue,
			"MTU must be at least %d.", entities.MinMTU)
	}
	if params.BondMode != "" && !entities.IsValidChoice(params.BondMode, entities.BondModeChoices) {
		verrs.Add(domainErrors.FieldParams, domainErrors.ReasonInvalidValue,
			"'%s' is not a valid bond_mode.", params.BondMode)
	}
	if params.BondLACPRate != "" && !entities.IsValidChoice(params.BondLACPRate, entities.BondLACPRateChoices) {
		verrs.Add(domainErrors.FieldParams, domainErrors.ReasonInvalidValue,
			"'%s' is not a valid bond_lacp_rate.", params.BondLACPRate)
	}
	if params.BondXmitHashPolicy != "" && !entities.IsValidChoice(params.BondXmitHashPolicy, entities.BondXmitHashPolicyChoices) {
		verrs.Add(domainErrors.FieldParams, domainErrors.ReasonInvalidValue,
			"'%s' is not a valid bond_xmit_hash_policy.", params.BondXmitHashPolicy)
	}
	for key, v := range map[string]*int{
		"bond_miimon":    params.BondMiimon,
		"bond_downdelay": params.BondDowndelay,
		"bond_updelay":   params.BondUpdelay,
	} {
		if v != nil && *v < 0 {
			verrs.Add(domainErrors.FieldParams, domainErrors.ReasonInvalidValue,
				"%s must not be negative.", key)
		}
	}
	return params
}

// diffEdges는 희망 부모 집합과 기존 부모 집합의 차이를 계산합니다.
// 추가 간선은 후보 순서를, 제거 간선은 기존 순서를 유지합니다.
func (r *Reconciler) diffEdges(existing *entities.Interface, parents []entities.Interface, topo TopologySnapshot) (adds, removes []entities.Edge) {
	childID := 0
	var existingParents []int
	if existing != nil {
		childID = existing.ID
		existingParents = topo.ParentsOf(existing.ID)
	}

	existingSet := make(map[int]struct{}, len(existingParents))
	for _, id := range existingParents {
		existingSet[id] = struct{}{}
	}
	candidateSet := make(map[int]struct{}, len(parents))
	for _, p := range parents {
		candidateSet[p.ID] = struct{}{}
	}

	for _, p := range parents {
		if _, ok := existingSet[p.ID]; !ok {
			adds = append(adds, entities.Edge{ParentID: p.ID, ChildID: childID})
		}
	}
	for _, id := range existingParents {
		if _, ok := candidateSet[id]; !ok {
			removes = append(removes, entities.Edge{ParentID: id, ChildID: childID})
		}
	}
	return adds, removes
}
