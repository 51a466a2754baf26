package entities

import (
	"bytes"
	"encoding/json"
)

// FieldState는 요청 필드의 3가지 상태를 나타냅니다.
// 폼 제출 기반의 "dirty field" 구분을 명시적으로 모델링한 것으로,
// 필드가 요청에 없었는지(absent), 값으로 설정되었는지(set),
// 명시적으로 비워졌는지(cleared)를 구분합니다.
type FieldState int

const (
	FieldAbsent FieldState = iota
	FieldSet
	FieldCleared
)

var jsonNull = []byte("null")

// OptionalString은 3-상태 문자열 필드입니다.
// JSON에서 키가 없으면 absent, null이면 cleared, 값이 있으면 set입니다.
type OptionalString struct {
	State FieldState
	Value string
}

// SetString은 값이 설정된 OptionalString을 생성합니다
func SetString(v string) OptionalString {
	return OptionalString{State: FieldSet, Value: v}
}

// ClearedString은 명시적으로 비워진 OptionalString을 생성합니다
func ClearedString() OptionalString {
	return OptionalString{State: FieldCleared}
}

// Resolve는 3-상태를 현재 값에 적용한 결과를 반환합니다
func (o OptionalString) Resolve(current string) string {
	switch o.State {
	case FieldSet:
		return o.Value
	case FieldCleared:
		return ""
	}
	return current
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, jsonNull) {
		*o = OptionalString{State: FieldCleared}
		return nil
	}
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = OptionalString{State: FieldSet, Value: v}
	return nil
}

// OptionalInt는 3-상태 정수 필드입니다
type OptionalInt struct {
	State FieldState
	Value int
}

// SetInt는 값이 설정된 OptionalInt를 생성합니다
func SetInt(v int) OptionalInt {
	return OptionalInt{State: FieldSet, Value: v}
}

// ClearedInt는 명시적으로 비워진 OptionalInt를 생성합니다
func ClearedInt() OptionalInt {
	return OptionalInt{State: FieldCleared}
}

func (o *OptionalInt) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, jsonNull) {
		*o = OptionalInt{State: FieldCleared}
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = OptionalInt{State: FieldSet, Value: v}
	return nil
}

// OptionalBool은 3-상태 불리언 필드입니다
type OptionalBool struct {
	State FieldState
	Value bool
}

// SetBool은 값이 설정된 OptionalBool을 생성합니다
func SetBool(v bool) OptionalBool {
	return OptionalBool{State: FieldSet, Value: v}
}

// ClearedBool은 명시적으로 비워진 OptionalBool을 생성합니다
func ClearedBool() OptionalBool {
	return OptionalBool{State: FieldCleared}
}

func (o *OptionalBool) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, jsonNull) {
		*o = OptionalBool{State: FieldCleared}
		return nil
	}
	var v bool
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = OptionalBool{State: FieldSet, Value: v}
	return nil
}

// OptionalIntList는 3-상태 정수 목록 필드입니다.
// 목록의 순서는 보존됩니다(부모 상속의 tie-break에 사용).
type OptionalIntList struct {
	State  FieldState
	Values []int
}

// SetIntList는 값이 설정된 OptionalIntList를 생성합니다
func SetIntList(vs ...int) OptionalIntList {
	return OptionalIntList{State: FieldSet, Values: vs}
}

func (o *OptionalIntList) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, jsonNull) {
		*o = OptionalIntList{State: FieldCleared}
		return nil
	}
	var vs []int
	if err := json.Unmarshal(data, &vs); err != nil {
		return err
	}
	*o = OptionalIntList{State: FieldSet, Values: vs}
	return nil
}
