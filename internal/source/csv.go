package source

import (
	"encoding/csv"
	"fmt"
	"io"
)

// ReadCSV：读取逗号分隔的映射表导出，首行为表头；允许各行列数不一致
func ReadCSV(r io.Reader) ([]RawRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	table, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: parse csv: %w", ErrSource, err)
	}
	return fromTable(table)
}
