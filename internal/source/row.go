// 包 source：行政区映射表的行读取与字段规范化（xlsx/csv 两种来源）
package source

// 列名：源表头必须包含以下全部列，顺序不限
const (
	ColOldProvinceID   = "city_id_old"
	ColOldProvinceName = "city_name_old"
	ColOldDistrictID   = "district_id_old"
	ColOldDistrictName = "district_name_old"
	ColOldWardID       = "ward_id_old"
	ColOldWardName     = "ward_name_old"
	ColNewProvinceID   = "city_id_new"
	ColNewProvinceName = "city_name_new"
	ColNewWardID       = "ward_id_new"
	ColNewWardName     = "ward_new_name"
)

// Columns：全部必需列，按表格约定顺序
var Columns = []string{
	ColOldProvinceID, ColOldProvinceName,
	ColOldDistrictID, ColOldDistrictName,
	ColOldWardID, ColOldWardName,
	ColNewProvinceID, ColNewProvinceName,
	ColNewWardID, ColNewWardName,
}

// RawRow：未规范化的一行，Line 为源文件中的行号（表头为第 1 行）
type RawRow struct {
	Line   int
	Values map[string]string
}

// Row：规范化后的一行；nil 表示源单元格缺失或为空
// 背景：旧体系为 省/区县/乡镇 三级，新体系取消区县，只剩 省/乡镇 两级
type Row struct {
	OldProvinceID   *string
	OldProvinceName *string
	OldDistrictID   *string
	OldDistrictName *string
	OldWardID       *string
	OldWardName     *string
	NewProvinceID   *string
	NewProvinceName *string
	NewWardID       *string
	NewWardName     *string
}

// Str：构造可选字符串，便于测试与手工组装行
func Str(s string) *string { return &s }
