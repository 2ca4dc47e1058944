package source

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ReadXLSX：读取工作簿中的映射表
// 参数：sheet 为空时使用第一个工作表
// 约束：以原始单元格值读取，避免数字格式（千分位、小数位）污染编码列
func ReadXLSX(path, sheet string) ([]RawRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrSource, path, err)
	}
	defer f.Close()
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if sheet == "" {
		return nil, fmt.Errorf("%w: no sheets in %s", ErrSource, path)
	}
	table, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %s: %w", ErrSource, sheet, err)
	}
	return fromTable(table)
}
