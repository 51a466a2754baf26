package errors

import (
	"fmt"
	"sort"
	"strings"
)

// Reason은 필드 검증 실패의 사유 코드입니다
type Reason string

const (
	ReasonInvalidParentCardinality Reason = "invalid_parent_cardinality"
	ReasonCrossNodeParents         Reason = "cross_node_parents"
	ReasonInvalidVLANAssignment    Reason = "invalid_vlan_assignment"
	ReasonParentTypeConflict       Reason = "parent_type_conflict"
	ReasonParentAlreadyInUse       Reason = "parent_already_in_use"
	ReasonInconsistentParentVLANs  Reason = "inconsistent_parent_vlans"
	ReasonDuplicateName            Reason = "duplicate_name"
	ReasonMissingRequiredField     Reason = "missing_required_field"
	ReasonInvalidValue             Reason = "invalid_value"
)

// 필드 에러가 귀속되는 필드 이름들입니다
const (
	FieldType       = "type"
	FieldName       = "name"
	FieldMACAddress = "mac_address"
	FieldVLAN       = "vlan"
	FieldParents    = "parents"
	FieldParams     = "params"
)

// FieldError는 하나의 필드 검증 실패입니다
type FieldError struct {
	Reason  Reason `json:"reason"`
	Message string `json:"message"`
}

// ValidationErrors는 필드별로 귀속된 검증 실패 모음입니다.
// 첫 실패에서 중단하지 않고 독립적인 필드 에러를 모두 수집하여
// 한 번에 보고할 수 있게 합니다.
type ValidationErrors struct {
	fields map[string][]FieldError
}

// NewValidationErrors는 빈 ValidationErrors를 생성합니다
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{fields: make(map[string][]FieldError)}
}

// Add는 필드 에러를 추가합니다
func (v *ValidationErrors) Add(field string, reason Reason, format string, args ...interface{}) {
	v.fields[field] = append(v.fields[field], FieldError{
		Reason:  reason,
		Message: fmt.Sprintf(format, args...),
	})
}

// HasErrors는 수집된 에러가 있는지 반환합니다
func (v *ValidationErrors) HasErrors() bool {
	return len(v.fields) > 0
}

// FieldsOK는 주어진 필드들에 아직 에러가 없는지 반환합니다.
// 앞 단계의 실패가 뒷 단계의 파생 검증을 오염시키지 않도록
// 의존 검증 전에 사용합니다.
func (v *ValidationErrors) FieldsOK(fields ...string) bool {
	for _, f := range fields {
		if len(v.fields[f]) > 0 {
			return false
		}
	}
	return true
}

// Fields는 필드별 에러 맵을 반환합니다
func (v *ValidationErrors) Fields() map[string][]FieldError {
	return v.fields
}

// HasReason은 해당 필드에 특정 사유의 에러가 있는지 반환합니다
func (v *ValidationErrors) HasReason(field string, reason Reason) bool {
	for _, fe := range v.fields[field] {
		if fe.Reason == reason {
			return true
		}
	}
	return false
}

// ErrOrNil은 에러가 수집되었으면 자신을, 아니면 nil을 반환합니다
func (v *ValidationErrors) ErrOrNil() error {
	if v.HasErrors() {
		return v
	}
	return nil
}

// Error는 error 인터페이스를 구현합니다
func (v *ValidationErrors) Error() string {
	names := make([]string, 0, len(v.fields))
	for f := range v.fields {
		names = append(names, f)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, f := range names {
		msgs := make([]string, 0, len(v.fields[f]))
		for _, fe := range v.fields[f] {
			msgs = append(msgs, fe.Message)
		}
		parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(msgs, "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}
