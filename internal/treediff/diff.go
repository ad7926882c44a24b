// Package treediff 对嵌套内容树做结构化比较、冲突检测与合并。
// 内容树是 map[string]interface{}，值为标量、[]interface{} 列表或嵌套子树；
// 列表与标量只做整体相等比较，不做内部结构化比较。
package treediff

import (
	"reflect"
	"sort"
)

type ChangeType string

const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

// Change 一条路径级差异，路径从根开始用 . 连接
type Change struct {
	Path     string      `json:"path"`
	Type     ChangeType  `json:"type"`
	OldValue interface{} `json:"oldValue,omitempty"`
	NewValue interface{} `json:"newValue,omitempty"`
}

// Diff 递归比较两棵内容树，返回按路径排序的差异列表。
// Diff(A, A) 恒为空。
func Diff(source, target map[string]interface{}) []Change {
	changes := diffTrees(source, target, "")
	sort.Slice(changes, func(i, j int) bool {
		return changes[i].Path < changes[j].Path
	})
	return changes
}

func diffTrees(source, target map[string]interface{}, prefix string) []Change {
	var changes []Change

	for key, targetValue := range target {
		path := joinPath(prefix, key)
		sourceValue, inSource := source[key]
		if !inSource {
			changes = append(changes, Change{Path: path, Type: ChangeCreated, NewValue: targetValue})
			continue
		}
		if reflect.DeepEqual(sourceValue, targetValue) {
			continue
		}
		sourceTree, sourceIsTree := sourceValue.(map[string]interface{})
		targetTree, targetIsTree := targetValue.(map[string]interface{})
		if sourceIsTree && targetIsTree {
			changes = append(changes, diffTrees(sourceTree, targetTree, path)...)
			continue
		}
		changes = append(changes, Change{Path: path, Type: ChangeUpdated, OldValue: sourceValue, NewValue: targetValue})
	}

	for key, sourceValue := range source {
		if _, inTarget := target[key]; !inTarget {
			changes = append(changes, Change{Path: joinPath(prefix, key), Type: ChangeDeleted, OldValue: sourceValue})
		}
	}

	return changes
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
