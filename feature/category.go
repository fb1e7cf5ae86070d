package feature

// CategoryTable 是字符串类别到整数编码的映射（Label 编码）。
//
// 生命周期：
//   - 在编码任何记录之前，用全部记录的快照一次性构建
//   - 构建后只读，不做增量修改，保证同一输入得到同一编码
//   - 目录刷新时整体重建
//
// 编码规则：按首次出现顺序分配 1, 2, 3...；0 保留给缺失值（空字符串）和未登记的值。
type CategoryTable struct {
	codes  map[string]int
	values []string
}

// BuildCategoryTable 按首次出现顺序构建编码表，空字符串不入表。
func BuildCategoryTable(values []string) *CategoryTable {
	t := &CategoryTable{
		codes:  make(map[string]int, len(values)),
		values: make([]string, 0, len(values)),
	}
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := t.codes[v]; ok {
			continue
		}
		t.values = append(t.values, v)
		t.codes[v] = len(t.values)
	}
	return t
}

// Code 返回 value 的编码，未登记或缺失时返回 0。
func (t *CategoryTable) Code(value string) int {
	if t == nil {
		return 0
	}
	return t.codes[value]
}

// Value 反查编码对应的字符串，0 或越界时返回 ("", false)。
func (t *CategoryTable) Value(code int) (string, bool) {
	if t == nil || code <= 0 || code > len(t.values) {
		return "", false
	}
	return t.values[code-1], true
}

// Len 返回已登记的类别数。
func (t *CategoryTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.values)
}
