package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"edu_content_backend/internal/treediff"
)

// ContentTree 嵌套内容树，整列按 JSON 存储，核心不解释字段语义
type ContentTree map[string]interface{}

func (t ContentTree) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	return json.Marshal(t)
}

func (t *ContentTree) Scan(value interface{}) error {
	return scanJSON(value, t)
}

// ChangeList 结构化差异列表，按 JSON 存储
type ChangeList []treediff.Change

func (l ChangeList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *ChangeList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

// ConflictList 合并冲突列表，按 JSON 存储
type ConflictList []treediff.Conflict

func (l ConflictList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *ConflictList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

// StringList 字符串列表，按 JSON 存储
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

func scanJSON(value interface{}, dest interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return errors.New("unsupported JSON column type")
	}
}
