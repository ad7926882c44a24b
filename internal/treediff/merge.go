package treediff

import (
	"reflect"
	"sort"
)

// Strategy 合并策略
type Strategy string

const (
	// StrategyAuto 字段级自动合并，冲突字段保留目标侧的值
	StrategyAuto Strategy = "auto"
	// StrategyManual 存在冲突时不合并，留待人工处理
	StrategyManual Strategy = "manual"
	// StrategyOurs 整体保留目标侧，丢弃源侧全部改动
	StrategyOurs Strategy = "ours"
	// StrategyTheirs 冲突字段取源侧的值（整分支合并时为源内容整体覆盖）
	StrategyTheirs Strategy = "theirs"
)

// Conflict 同一路径上两侧取值不同
type Conflict struct {
	Path        string      `json:"path"`
	SourceValue interface{} `json:"sourceValue"`
	TargetValue interface{} `json:"targetValue"`
}

// DetectConflicts 只检查两侧都存在的键；单侧独有的键不构成冲突。
// 两侧均为子树时递归，否则取值不同即记一条冲突。结果按路径排序。
func DetectConflicts(source, target map[string]interface{}) []Conflict {
	conflicts := detectConflicts(source, target, "")
	sort.Slice(conflicts, func(i, j int) bool {
		return conflicts[i].Path < conflicts[j].Path
	})
	return conflicts
}

func detectConflicts(source, target map[string]interface{}, prefix string) []Conflict {
	var conflicts []Conflict

	for key, sourceValue := range source {
		targetValue, inTarget := target[key]
		if !inTarget {
			continue
		}
		if reflect.DeepEqual(sourceValue, targetValue) {
			continue
		}
		path := joinPath(prefix, key)
		sourceTree, sourceIsTree := sourceValue.(map[string]interface{})
		targetTree, targetIsTree := targetValue.(map[string]interface{})
		if sourceIsTree && targetIsTree {
			conflicts = append(conflicts, detectConflicts(sourceTree, targetTree, path)...)
			continue
		}
		conflicts = append(conflicts, Conflict{Path: path, SourceValue: sourceValue, TargetValue: targetValue})
	}

	return conflicts
}

// AutoMerge 从目标树的副本出发合并源树：目标缺失的键直接补入，
// 两侧均为子树时递归，取值相同不动；取值冲突时 StrategyTheirs 取源值，
// 其余策略（含 StrategyAuto）保留目标值且不留任何记录。
func AutoMerge(source, target map[string]interface{}, strategy Strategy) map[string]interface{} {
	merged := CopyTree(target)

	for key, sourceValue := range source {
		targetValue, inTarget := merged[key]
		if !inTarget {
			merged[key] = copyValue(sourceValue)
			continue
		}
		sourceTree, sourceIsTree := sourceValue.(map[string]interface{})
		targetTree, targetIsTree := targetValue.(map[string]interface{})
		if sourceIsTree && targetIsTree {
			merged[key] = AutoMerge(sourceTree, targetTree, strategy)
			continue
		}
		if reflect.DeepEqual(sourceValue, targetValue) {
			continue
		}
		if strategy == StrategyTheirs {
			merged[key] = copyValue(sourceValue)
		}
	}

	return merged
}

// CopyTree 深拷贝一棵内容树
func CopyTree(tree map[string]interface{}) map[string]interface{} {
	copied := make(map[string]interface{}, len(tree))
	for key, value := range tree {
		copied[key] = copyValue(value)
	}
	return copied
}

func copyValue(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		return CopyTree(v)
	case []interface{}:
		list := make([]interface{}, len(v))
		for i, item := range v {
			list[i] = copyValue(item)
		}
		return list
	default:
		return v
	}
}
