// 包 mapping：构建 旧→新 / 新→旧 双向行政区映射字典
package mapping

import "vnadmin/internal/ordered"

const (
	OldToNewTitle       = "Mapping Hành Chính: Cũ → Mới"
	OldToNewDescription = "Tra cứu thông tin hành chính mới dựa trên thông tin cũ"
	NewToOldTitle       = "Mapping Hành Chính: Mới → Cũ"
	NewToOldDescription = "Tra cứu thông tin hành chính cũ dựa trên thông tin mới"

	// DistrictNote：新体系取消区县，旧区县只能映射到新的省级单位
	DistrictNote = "Quận/huyện cũ được sáp nhập vào tỉnh/thành mới"
)

type Metadata struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	TotalRecords int    `json:"total_records"`
}

type OldProvince struct {
	OldProvinceID   string  `json:"old_province_id"`
	OldProvinceName *string `json:"old_province_name"`
	NewProvinceID   *string `json:"new_province_id"`
	NewProvinceName *string `json:"new_province_name"`
}

type OldDistrict struct {
	OldDistrictID   string  `json:"old_district_id"`
	OldDistrictName *string `json:"old_district_name"`
	OldProvinceID   *string `json:"old_province_id"`
	OldProvinceName *string `json:"old_province_name"`
	NewProvinceID   *string `json:"new_province_id"`
	NewProvinceName *string `json:"new_province_name"`
	Note            string  `json:"note"`
}

type OldWard struct {
	OldWardID       string  `json:"old_ward_id"`
	OldWardName     *string `json:"old_ward_name"`
	OldDistrictID   *string `json:"old_district_id"`
	OldDistrictName *string `json:"old_district_name"`
	OldProvinceID   *string `json:"old_province_id"`
	OldProvinceName *string `json:"old_province_name"`
	NewWardID       *string `json:"new_ward_id"`
	NewWardName     *string `json:"new_ward_name"`
	NewProvinceID   *string `json:"new_province_id"`
	NewProvinceName *string `json:"new_province_name"`
}

// OldProvinceRef：新省份下合并进来的旧省份
type OldProvinceRef struct {
	OldProvinceID   string  `json:"old_province_id"`
	OldProvinceName *string `json:"old_province_name"`
}

// OldWardRef：新乡镇下合并进来的旧乡镇（附带旧上级信息）
type OldWardRef struct {
	OldWardID       string  `json:"old_ward_id"`
	OldWardName     *string `json:"old_ward_name"`
	OldDistrictID   *string `json:"old_district_id"`
	OldDistrictName *string `json:"old_district_name"`
	OldProvinceID   *string `json:"old_province_id"`
	OldProvinceName *string `json:"old_province_name"`
}

type NewProvince struct {
	NewProvinceID     string           `json:"new_province_id"`
	NewProvinceName   *string          `json:"new_province_name"`
	OldProvinces      []OldProvinceRef `json:"old_provinces"`
	TotalOldProvinces int              `json:"total_old_provinces"`
}

type NewWard struct {
	NewWardID       string       `json:"new_ward_id"`
	NewWardName     *string      `json:"new_ward_name"`
	NewProvinceID   *string      `json:"new_province_id"`
	NewProvinceName *string      `json:"new_province_name"`
	OldWards        []OldWardRef `json:"old_wards"`
	TotalOldWards   int          `json:"total_old_wards"`
}

// OldToNew：旧编码 → 新单位；输出文件 old_to_new.json
type OldToNew struct {
	Metadata  Metadata                  `json:"metadata"`
	Provinces *ordered.Map[OldProvince] `json:"provinces"`
	Districts *ordered.Map[OldDistrict] `json:"districts"`
	Wards     *ordered.Map[OldWard]     `json:"wards"`
}

// NewToOld：新编码 → 旧单位列表；输出文件 new_to_old.json
type NewToOld struct {
	Metadata  Metadata                  `json:"metadata"`
	Provinces *ordered.Map[NewProvince] `json:"provinces"`
	Wards     *ordered.Map[NewWard]     `json:"wards"`
}

// Stats：构建结果统计，用于运行结束时的汇总日志与指标
type Stats struct {
	Rows         int
	OldProvinces int
	OldDistricts int
	OldWards     int
	NewProvinces int
	NewWards     int
}

func (o *OldToNew) Stats(n *NewToOld) Stats {
	return Stats{
		Rows:         o.Metadata.TotalRecords,
		OldProvinces: o.Provinces.Len(),
		OldDistricts: o.Districts.Len(),
		OldWards:     o.Wards.Len(),
		NewProvinces: n.Provinces.Len(),
		NewWards:     n.Wards.Len(),
	}
}
