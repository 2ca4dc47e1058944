package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"vnadmin/internal/logger"
)

// Load：按扩展名选择读取器，读取并规范化全部行
// 背景：整表一次性载入内存；数据量为行政区级别（万行量级），无需流式处理
// 异常：读取失败包装 ErrSource；任一编码列无法解析即返回 *FieldError，不返回部分结果
func Load(path, sheet string) ([]Row, error) {
	var (
		raws []RawRow
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, e := os.Open(path)
		if e != nil {
			return nil, fmt.Errorf("%w: open %s: %w", ErrSource, path, e)
		}
		raws, err = ReadCSV(f)
		_ = f.Close()
	default:
		raws, err = ReadXLSX(path, sheet)
	}
	if err != nil {
		return nil, err
	}
	logger.L().Info("source_rows_loaded", "path", path, "rows", len(raws))
	return ExtractAll(raws)
}

// ExtractAll：逐行规范化，遇到首个错误立即返回
func ExtractAll(raws []RawRow) ([]Row, error) {
	rows := make([]Row, 0, len(raws))
	for _, raw := range raws {
		r, err := Extract(raw)
		if err != nil {
			logger.L().Error("source_field_error", "err", err)
			return nil, err
		}
		rows = append(rows, r)
	}
	return rows, nil
}
