package source

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSource：源文件读取失败（文件缺失、无工作表、缺少必需列等）
var ErrSource = errors.New("source read failed")

// fromTable：以首行作为表头，把二维单元格转换为按列名访问的原始行
// 约束：必需列缺失时报错；整行为空的数据行被跳过，不计入记录数；行短于表头时缺失单元格视为空
func fromTable(table [][]string) ([]RawRow, error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("%w: empty table", ErrSource)
	}
	header := make(map[string]int, len(table[0]))
	for i, h := range table[0] {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := header[h]; !dup {
			header[h] = i
		}
	}
	var missing []string
	for _, c := range Columns {
		if _, ok := header[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", ErrSource, strings.Join(missing, ","))
	}
	out := make([]RawRow, 0, len(table)-1)
	for i := 1; i < len(table); i++ {
		cells := table[i]
		if blank(cells) {
			continue
		}
		vals := make(map[string]string, len(Columns))
		for _, c := range Columns {
			if idx := header[c]; idx < len(cells) {
				vals[c] = cells[idx]
			}
		}
		out = append(out, RawRow{Line: i + 1, Values: vals})
	}
	return out, nil
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
