package mapping

import (
	"vnadmin/internal/logger"
	"vnadmin/internal/ordered"
	"vnadmin/internal/source"
)

// newProvinceAcc / newWardAcc：新编码侧的累加器，seen 仅用于 O(1) 判重，Finish 时丢弃
type newProvinceAcc struct {
	name *string
	olds []OldProvinceRef
	seen map[string]struct{}
}

type newWardAcc struct {
	name         *string
	provinceID   *string
	provinceName *string
	olds         []OldWardRef
	seen         map[string]struct{}
}

// Builder：单次遍历构建双向映射；状态全部归属于构建器实例，不使用包级变量
// 约束：结果依赖输入行序（先到先得），调用方需保证行序稳定以获得可复现输出
type Builder struct {
	progressEvery int
	rows          int

	oldProvinces *ordered.Map[OldProvince]
	oldDistricts *ordered.Map[OldDistrict]
	oldWards     *ordered.Map[OldWard]
	newProvinces *ordered.Map[*newProvinceAcc]
	newWards     *ordered.Map[*newWardAcc]
}

// NewBuilder：progressEvery<=0 时不输出进度日志
func NewBuilder(progressEvery int) *Builder {
	return &Builder{
		progressEvery: progressEvery,
		oldProvinces:  ordered.New[OldProvince](),
		oldDistricts:  ordered.New[OldDistrict](),
		oldWards:      ordered.New[OldWard](),
		newProvinces:  ordered.New[*newProvinceAcc](),
		newWards:      ordered.New[*newWardAcc](),
	}
}

// Add：处理一行，四条规则相互独立
// 注意：新编码侧的名称字段每行刷新（后写覆盖），而旧单位成员列表先到先得；这一不对称沿用原始数据处理口径，保持不变
func (b *Builder) Add(r source.Row) {
	if b.progressEvery > 0 && b.rows%b.progressEvery == 0 {
		logger.L().Debug("mapping_build_progress", "rows", b.rows)
	}
	b.rows++

	if r.OldProvinceID != nil {
		b.oldProvinces.PutIfAbsent(*r.OldProvinceID, OldProvince{
			OldProvinceID:   *r.OldProvinceID,
			OldProvinceName: r.OldProvinceName,
			NewProvinceID:   r.NewProvinceID,
			NewProvinceName: r.NewProvinceName,
		})
	}

	if r.NewProvinceID != nil && r.OldProvinceID != nil {
		acc, ok := b.newProvinces.Get(*r.NewProvinceID)
		if !ok {
			acc = &newProvinceAcc{seen: make(map[string]struct{})}
			b.newProvinces.Put(*r.NewProvinceID, acc)
		}
		acc.name = r.NewProvinceName
		if _, dup := acc.seen[*r.OldProvinceID]; !dup {
			acc.seen[*r.OldProvinceID] = struct{}{}
			acc.olds = append(acc.olds, OldProvinceRef{
				OldProvinceID:   *r.OldProvinceID,
				OldProvinceName: r.OldProvinceName,
			})
		}
	}

	if r.OldDistrictID != nil {
		b.oldDistricts.PutIfAbsent(*r.OldDistrictID, OldDistrict{
			OldDistrictID:   *r.OldDistrictID,
			OldDistrictName: r.OldDistrictName,
			OldProvinceID:   r.OldProvinceID,
			OldProvinceName: r.OldProvinceName,
			NewProvinceID:   r.NewProvinceID,
			NewProvinceName: r.NewProvinceName,
			Note:            DistrictNote,
		})
	}

	if r.OldWardID != nil {
		b.oldWards.PutIfAbsent(*r.OldWardID, OldWard{
			OldWardID:       *r.OldWardID,
			OldWardName:     r.OldWardName,
			OldDistrictID:   r.OldDistrictID,
			OldDistrictName: r.OldDistrictName,
			OldProvinceID:   r.OldProvinceID,
			OldProvinceName: r.OldProvinceName,
			NewWardID:       r.NewWardID,
			NewWardName:     r.NewWardName,
			NewProvinceID:   r.NewProvinceID,
			NewProvinceName: r.NewProvinceName,
		})
	}

	if r.NewWardID != nil && r.OldWardID != nil {
		acc, ok := b.newWards.Get(*r.NewWardID)
		if !ok {
			acc = &newWardAcc{seen: make(map[string]struct{})}
			b.newWards.Put(*r.NewWardID, acc)
		}
		acc.name = r.NewWardName
		acc.provinceID = r.NewProvinceID
		acc.provinceName = r.NewProvinceName
		if _, dup := acc.seen[*r.OldWardID]; !dup {
			acc.seen[*r.OldWardID] = struct{}{}
			acc.olds = append(acc.olds, OldWardRef{
				OldWardID:       *r.OldWardID,
				OldWardName:     r.OldWardName,
				OldDistrictID:   r.OldDistrictID,
				OldDistrictName: r.OldDistrictName,
				OldProvinceID:   r.OldProvinceID,
				OldProvinceName: r.OldProvinceName,
			})
		}
	}
}

// Finish：把累加器转换为对外结构，total_* 由列表长度派生；调用后构建器不可再用
func (b *Builder) Finish() (*OldToNew, *NewToOld) {
	o2n := &OldToNew{
		Metadata: Metadata{
			Title:        OldToNewTitle,
			Description:  OldToNewDescription,
			TotalRecords: b.rows,
		},
		Provinces: b.oldProvinces,
		Districts: b.oldDistricts,
		Wards:     b.oldWards,
	}
	n2o := &NewToOld{
		Metadata: Metadata{
			Title:        NewToOldTitle,
			Description:  NewToOldDescription,
			TotalRecords: b.rows,
		},
		Provinces: ordered.New[NewProvince](),
		Wards:     ordered.New[NewWard](),
	}
	b.newProvinces.Each(func(id string, acc *newProvinceAcc) {
		n2o.Provinces.Put(id, NewProvince{
			NewProvinceID:     id,
			NewProvinceName:   acc.name,
			OldProvinces:      acc.olds,
			TotalOldProvinces: len(acc.olds),
		})
	})
	b.newWards.Each(func(id string, acc *newWardAcc) {
		n2o.Wards.Put(id, NewWard{
			NewWardID:       id,
			NewWardName:     acc.name,
			NewProvinceID:   acc.provinceID,
			NewProvinceName: acc.provinceName,
			OldWards:        acc.olds,
			TotalOldWards:   len(acc.olds),
		})
	})
	return o2n, n2o
}

// Build：对整批行执行一次构建
func Build(rows []source.Row) (*OldToNew, *NewToOld) {
	return BuildWithProgress(rows, 0)
}

func BuildWithProgress(rows []source.Row, progressEvery int) (*OldToNew, *NewToOld) {
	b := NewBuilder(progressEvery)
	for _, r := range rows {
		b.Add(r)
	}
	return b.Finish()
}
