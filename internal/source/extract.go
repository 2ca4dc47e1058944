package source

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrNotNumeric：编码列存在取值但无法解析为数字
var ErrNotNumeric = errors.New("not a numeric identifier")

// FieldError：字段规范化失败，携带行号、列名与原始值，整个运行据此中止
type FieldError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("row %d column %s: %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// ExtractID：把编码单元格规范化为十进制整数文本
// 背景：表格中的编码以数值存储，读出时可能带有 "1.0"、"01"、"1E3" 等形态；统一按数值截断为整数后输出
// 约束：空值返回 nil；非数值（含 NaN/Inf）返回 ErrNotNumeric，不做任何默认值回退
func ExtractID(raw string) (*string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, ErrNotNumeric
	}
	v := strconv.FormatFloat(math.Trunc(f), 'f', 0, 64)
	if v == "-0" {
		v = "0"
	}
	return &v, nil
}

// ExtractName：去除首尾空白；空白后为空视为缺失
// 注意：仅含空白的单元格有意输出 null 而不保留为空串 ""，名称缺失统一以 null 表达
func ExtractName(raw string) *string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	return &s
}

// Extract：按列名规范化整行；编码列失败时返回 *FieldError
func Extract(raw RawRow) (Row, error) {
	var r Row
	ids := []struct {
		col string
		dst **string
	}{
		{ColOldProvinceID, &r.OldProvinceID},
		{ColOldDistrictID, &r.OldDistrictID},
		{ColOldWardID, &r.OldWardID},
		{ColNewProvinceID, &r.NewProvinceID},
		{ColNewWardID, &r.NewWardID},
	}
	for _, f := range ids {
		v, err := ExtractID(raw.Values[f.col])
		if err != nil {
			return Row{}, &FieldError{Line: raw.Line, Column: f.col, Value: raw.Values[f.col], Err: err}
		}
		*f.dst = v
	}
	r.OldProvinceName = ExtractName(raw.Values[ColOldProvinceName])
	r.OldDistrictName = ExtractName(raw.Values[ColOldDistrictName])
	r.OldWardName = ExtractName(raw.Values[ColOldWardName])
	r.NewProvinceName = ExtractName(raw.Values[ColNewProvinceName])
	r.NewWardName = ExtractName(raw.Values[ColNewWardName])
	return r, nil
}
