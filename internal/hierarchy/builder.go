// 包 hierarchy：按 省 → 区县 → 乡镇 三级生成分层 API 数据（均以旧编码为键）
package hierarchy

import (
	"vnadmin/internal/logger"
	"vnadmin/internal/ordered"
	"vnadmin/internal/source"
)

// Province / District / Ward：每条记录自带上级名称等冗余字段，前端按文件直接取用，无需关联
type Province struct {
	ID      string  `json:"id"`
	Name    *string `json:"name"`
	NewID   *string `json:"new_id"`
	NewName *string `json:"new_name"`
}

type District struct {
	ID              string  `json:"id"`
	Name            *string `json:"name"`
	ProvinceID      *string `json:"province_id"`
	ProvinceName    *string `json:"province_name"`
	NewProvinceID   *string `json:"new_province_id"`
	NewProvinceName *string `json:"new_province_name"`
}

type Ward struct {
	ID              string  `json:"id"`
	Name            *string `json:"name"`
	DistrictID      *string `json:"district_id"`
	DistrictName    *string `json:"district_name"`
	ProvinceID      *string `json:"province_id"`
	ProvinceName    *string `json:"province_name"`
	NewID           *string `json:"new_id"`
	NewName         *string `json:"new_name"`
	NewProvinceID   *string `json:"new_province_id"`
	NewProvinceName *string `json:"new_province_name"`
}

// Level：冲突发生的层级
type Level string

const (
	LevelDistrict Level = "district"
	LevelWard     Level = "ward"
)

// Conflict：同一编码在后续行中出现在不同上级之下；Row 为数据行序号（从 1 开始）
// 背景：各层以裸编码全局去重，前提是编码在全国范围唯一；每次运行都校验该前提并记录违例
type Conflict struct {
	Level       Level
	ID          string
	Row         int
	KeptParent  string
	OtherParent string
}

// Tree：分层构建结果
type Tree struct {
	Provinces           []Province
	DistrictsByProvince *ordered.Map[[]District]
	WardsByDistrict     *ordered.Map[[]Ward]
	Conflicts           []Conflict
	Stats               Stats
}

type Stats struct {
	Rows            int
	Provinces       int
	Districts       int
	Wards           int
	DistrictFiles   int
	WardFiles       int
	OrphanDistricts int
	OrphanWards     int
	Conflicts       int
}

// Builder：单次遍历，三层各自先到先得
type Builder struct {
	progressEvery int
	rows          int

	provinces       *ordered.Map[Province]
	// 已分片编码 → 其上级编码
	districtParent  map[string]string
	wardParent      map[string]string
	// 迄今只在上级缺失的行中出现过的编码；一旦某行带出上级即移出并正常分片
	orphanDistricts map[string]struct{}
	orphanWards     map[string]struct{}

	districts *ordered.Map[[]District]
	wards     *ordered.Map[[]Ward]

	conflicts []Conflict
}

func NewBuilder(progressEvery int) *Builder {
	return &Builder{
		progressEvery:   progressEvery,
		provinces:       ordered.New[Province](),
		districtParent:  make(map[string]string),
		wardParent:      make(map[string]string),
		orphanDistricts: make(map[string]struct{}),
		orphanWards:     make(map[string]struct{}),
		districts:       ordered.New[[]District](),
		wards:           ordered.New[[]Ward](),
	}
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// Add：处理一行
// 约束：上级编码缺失的区县/乡镇暂不分片；后续行若带出上级，以该行内容分片并不再计为孤立记录。
// 已分片的编码再次出现且上级缺失时不视为冲突
func (b *Builder) Add(r source.Row) {
	if b.progressEvery > 0 && b.rows%b.progressEvery == 0 {
		logger.L().Debug("hierarchy_build_progress", "rows", b.rows)
	}
	b.rows++
	n := b.rows

	if r.OldProvinceID != nil {
		b.provinces.PutIfAbsent(*r.OldProvinceID, Province{
			ID:      *r.OldProvinceID,
			Name:    r.OldProvinceName,
			NewID:   r.NewProvinceID,
			NewName: r.NewProvinceName,
		})
	}

	if r.OldDistrictID != nil {
		id, parent := *r.OldDistrictID, deref(r.OldProvinceID)
		kept, placed := b.districtParent[id]
		switch {
		case placed:
			if parent != "" && kept != parent {
				b.conflict(LevelDistrict, id, n, kept, parent)
			}
		case parent == "":
			b.orphanDistricts[id] = struct{}{}
		default:
			delete(b.orphanDistricts, id)
			b.districtParent[id] = parent
			list, _ := b.districts.Get(parent)
			b.districts.Put(parent, append(list, District{
				ID:              id,
				Name:            r.OldDistrictName,
				ProvinceID:      r.OldProvinceID,
				ProvinceName:    r.OldProvinceName,
				NewProvinceID:   r.NewProvinceID,
				NewProvinceName: r.NewProvinceName,
			}))
		}
	}

	if r.OldWardID != nil {
		id, parent := *r.OldWardID, deref(r.OldDistrictID)
		kept, placed := b.wardParent[id]
		switch {
		case placed:
			if parent != "" && kept != parent {
				b.conflict(LevelWard, id, n, kept, parent)
			}
		case parent == "":
			b.orphanWards[id] = struct{}{}
		default:
			delete(b.orphanWards, id)
			b.wardParent[id] = parent
			list, _ := b.wards.Get(parent)
			b.wards.Put(parent, append(list, Ward{
				ID:              id,
				Name:            r.OldWardName,
				DistrictID:      r.OldDistrictID,
				DistrictName:    r.OldDistrictName,
				ProvinceID:      r.OldProvinceID,
				ProvinceName:    r.OldProvinceName,
				NewID:           r.NewWardID,
				NewName:         r.NewWardName,
				NewProvinceID:   r.NewProvinceID,
				NewProvinceName: r.NewProvinceName,
			}))
		}
	}
}

func (b *Builder) conflict(level Level, id string, row int, kept, other string) {
	logger.L().Warn("hierarchy_conflict", "level", string(level), "id", id, "row", row, "kept_parent", kept, "other_parent", other)
	b.conflicts = append(b.conflicts, Conflict{Level: level, ID: id, Row: row, KeptParent: kept, OtherParent: other})
}

func (b *Builder) Finish() *Tree {
	t := &Tree{
		Provinces:           b.provinces.Values(),
		DistrictsByProvince: b.districts,
		WardsByDistrict:     b.wards,
		Conflicts:           b.conflicts,
	}
	t.Stats = Stats{
		Rows:            b.rows,
		Provinces:       len(t.Provinces),
		Districts:       len(b.districtParent),
		Wards:           len(b.wardParent),
		DistrictFiles:   b.districts.Len(),
		WardFiles:       b.wards.Len(),
		OrphanDistricts: len(b.orphanDistricts),
		OrphanWards:     len(b.orphanWards),
		Conflicts:       len(b.conflicts),
	}
	return t
}

// Build：对整批行执行一次构建
func Build(rows []source.Row) *Tree {
	return BuildWithProgress(rows, 0)
}

func BuildWithProgress(rows []source.Row, progressEvery int) *Tree {
	b := NewBuilder(progressEvery)
	for _, r := range rows {
		b.Add(r)
	}
	return b.Finish()
}
