// 包 ordered：按插入顺序保存键值的字典，序列化为 JSON 对象时保持首次插入顺序
package ordered

import (
	"bytes"
	"encoding/json"
)

// Map：字符串键的有序字典
// 约束：Put 覆盖已有键时保留原位置；非并发安全，仅供单次构建使用
type Map[V any] struct {
	keys  []string
	index map[string]int
	vals  []V
}

func New[V any]() *Map[V] {
	return &Map[V]{index: make(map[string]int)}
}

func (m *Map[V]) Len() int { return len(m.keys) }

func (m *Map[V]) Get(k string) (V, bool) {
	i, ok := m.index[k]
	if !ok {
		var zero V
		return zero, false
	}
	return m.vals[i], true
}

// PutIfAbsent：键不存在时写入并返回 true；已存在时不做任何修改
func (m *Map[V]) PutIfAbsent(k string, v V) bool {
	if _, ok := m.index[k]; ok {
		return false
	}
	m.index[k] = len(m.keys)
	m.keys = append(m.keys, k)
	m.vals = append(m.vals, v)
	return true
}

func (m *Map[V]) Put(k string, v V) {
	if i, ok := m.index[k]; ok {
		m.vals[i] = v
		return
	}
	m.PutIfAbsent(k, v)
}

// Keys：返回插入顺序的键副本
func (m *Map[V]) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Values：返回插入顺序的值副本
func (m *Map[V]) Values() []V {
	out := make([]V, len(m.vals))
	copy(out, m.vals)
	return out
}

func (m *Map[V]) Each(fn func(k string, v V)) {
	for i, k := range m.keys {
		fn(k, m.vals[i])
	}
}

// MarshalJSON：按插入顺序输出对象；不转义 HTML 字符，非 ASCII 原样保留
func (m *Map[V]) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(k); err != nil {
			return nil, err
		}
		trimNewline(&buf)
		buf.WriteByte(':')
		if err := enc.Encode(m.vals[i]); err != nil {
			return nil, err
		}
		trimNewline(&buf)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Encoder.Encode 总会追加换行
func trimNewline(buf *bytes.Buffer) {
	if n := buf.Len(); n > 0 && buf.Bytes()[n-1] == '\n' {
		buf.Truncate(n - 1)
	}
}
