// 包 store: 将双向映射以快照形式写入 PostgreSQL，并提供按编码的单条查询
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"vnadmin/internal/logger"
	"vnadmin/internal/mapping"
)

// Store: 数据库访问入口
type Store struct {
	db *sql.DB
}

func AttachDB(db *sql.DB) *Store { return &Store{db: db} }

// nz: 可选字符串转为驱动参数，nil 写入 NULL
func nz(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func ptr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

var snapshotTables = []string{
	"_vn_old_provinces",
	"_vn_old_districts",
	"_vn_old_wards",
	"_vn_new_province_members",
	"_vn_new_ward_members",
}

const (
	insertOldProvince = `INSERT INTO _vn_old_provinces(old_id, old_name, new_id, new_name) VALUES($1,$2,$3,$4)`
	insertOldDistrict = `INSERT INTO _vn_old_districts(old_id, old_name, old_province_id, old_province_name, new_province_id, new_province_name, note) VALUES($1,$2,$3,$4,$5,$6,$7)`
	insertOldWard     = `INSERT INTO _vn_old_wards(old_id, old_name, old_district_id, old_district_name, old_province_id, old_province_name, new_id, new_name, new_province_id, new_province_name) VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`
	insertNewProvince = `INSERT INTO _vn_new_province_members(new_id, new_name, position, old_id, old_name) VALUES($1,$2,$3,$4,$5)`
	insertNewWard     = `INSERT INTO _vn_new_ward_members(new_id, new_name, new_province_id, new_province_name, position, old_id, old_name, old_district_id, old_district_name, old_province_id, old_province_name) VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
)

// SaveMapping: 在单个事务内清空并重写全部快照表
// 背景：映射是整体替换的离线产物，不存在增量更新；事务保证读者只会看到完整的新快照或旧快照
// 异常：任一语句失败即回滚并返回错误，不做重试
func (s *Store) SaveMapping(ctx context.Context, o2n *mapping.OldToNew, n2o *mapping.NewToOld) error {
	logger.L().Info("pg_snapshot_start", "old_wards", o2n.Wards.Len(), "new_wards", n2o.Wards.Len())
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, t := range snapshotTables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
			return fmt.Errorf("clear %s: %w", t, err)
		}
	}

	count := 0
	err = execEach(ctx, tx, insertOldProvince, o2n.Provinces.Values(), func(p mapping.OldProvince) [][]any {
		return [][]any{{p.OldProvinceID, nz(p.OldProvinceName), nz(p.NewProvinceID), nz(p.NewProvinceName)}}
	}, &count)
	if err != nil {
		return err
	}
	err = execEach(ctx, tx, insertOldDistrict, o2n.Districts.Values(), func(d mapping.OldDistrict) [][]any {
		return [][]any{{d.OldDistrictID, nz(d.OldDistrictName), nz(d.OldProvinceID), nz(d.OldProvinceName), nz(d.NewProvinceID), nz(d.NewProvinceName), d.Note}}
	}, &count)
	if err != nil {
		return err
	}
	err = execEach(ctx, tx, insertOldWard, o2n.Wards.Values(), func(w mapping.OldWard) [][]any {
		return [][]any{{w.OldWardID, nz(w.OldWardName), nz(w.OldDistrictID), nz(w.OldDistrictName), nz(w.OldProvinceID), nz(w.OldProvinceName), nz(w.NewWardID), nz(w.NewWardName), nz(w.NewProvinceID), nz(w.NewProvinceName)}}
	}, &count)
	if err != nil {
		return err
	}
	err = execEach(ctx, tx, insertNewProvince, n2o.Provinces.Values(), func(p mapping.NewProvince) [][]any {
		out := make([][]any, 0, len(p.OldProvinces))
		for i, o := range p.OldProvinces {
			out = append(out, []any{p.NewProvinceID, nz(p.NewProvinceName), i, o.OldProvinceID, nz(o.OldProvinceName)})
		}
		return out
	}, &count)
	if err != nil {
		return err
	}
	err = execEach(ctx, tx, insertNewWard, n2o.Wards.Values(), func(w mapping.NewWard) [][]any {
		out := make([][]any, 0, len(w.OldWards))
		for i, o := range w.OldWards {
			out = append(out, []any{w.NewWardID, nz(w.NewWardName), nz(w.NewProvinceID), nz(w.NewProvinceName), i, o.OldWardID, nz(o.OldWardName), nz(o.OldDistrictID), nz(o.OldDistrictName), nz(o.OldProvinceID), nz(o.OldProvinceName)})
		}
		return out
	}, &count)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	logger.L().Info("pg_snapshot_done", "rows", count)
	return nil
}

// execEach: 预编译一条插入语句，对每个元素展开出的参数行逐一执行
func execEach[T any](ctx context.Context, tx *sql.Tx, query string, items []T, args func(T) [][]any, count *int) error {
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, it := range items {
		for _, a := range args(it) {
			if _, err := stmt.ExecContext(ctx, a...); err != nil {
				return err
			}
			*count++
			if *count%5000 == 0 {
				logger.L().Debug("pg_snapshot_progress", "rows", *count)
			}
		}
	}
	return nil
}

// LookupOldWard: 按旧乡镇编码查询；未命中返回 nil, nil
func (s *Store) LookupOldWard(ctx context.Context, oldID string) (*mapping.OldWard, error) {
	row := s.db.QueryRowContext(ctx, `SELECT old_id, old_name, old_district_id, old_district_name, old_province_id, old_province_name, new_id, new_name, new_province_id, new_province_name FROM _vn_old_wards WHERE old_id=$1`, oldID)
	var (
		w    mapping.OldWard
		cols [9]sql.NullString
	)
	if err := row.Scan(&w.OldWardID, &cols[0], &cols[1], &cols[2], &cols[3], &cols[4], &cols[5], &cols[6], &cols[7], &cols[8]); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logger.L().Debug("pg_lookup_miss", "old_ward_id", oldID)
			return nil, nil
		}
		return nil, err
	}
	w.OldWardName = ptr(cols[0])
	w.OldDistrictID = ptr(cols[1])
	w.OldDistrictName = ptr(cols[2])
	w.OldProvinceID = ptr(cols[3])
	w.OldProvinceName = ptr(cols[4])
	w.NewWardID = ptr(cols[5])
	w.NewWardName = ptr(cols[6])
	w.NewProvinceID = ptr(cols[7])
	w.NewProvinceName = ptr(cols[8])
	return &w, nil
}

// LookupNewProvince: 按新省编码查询其合并进来的旧省份，保持先到先得顺序；未命中返回 nil, nil
func (s *Store) LookupNewProvince(ctx context.Context, newID string) (*mapping.NewProvince, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT new_name, old_id, old_name FROM _vn_new_province_members WHERE new_id=$1 ORDER BY position`, newID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var p *mapping.NewProvince
	for rows.Next() {
		var newName, oldName sql.NullString
		var oldID string
		if err := rows.Scan(&newName, &oldID, &oldName); err != nil {
			return nil, err
		}
		if p == nil {
			p = &mapping.NewProvince{NewProvinceID: newID, NewProvinceName: ptr(newName)}
		}
		p.OldProvinces = append(p.OldProvinces, mapping.OldProvinceRef{OldProvinceID: oldID, OldProvinceName: ptr(oldName)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if p != nil {
		p.TotalOldProvinces = len(p.OldProvinces)
	}
	return p, nil
}
