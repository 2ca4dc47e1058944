package migrate

import (
	"context"
	"database/sql"
	"vnadmin/internal/logger"
)

// Statements：映射快照所需的表结构
// 背景：首次运行自动建表；旧编码三张表以旧编码为主键，新编码两张成员表以 (新编码, 旧编码) 为主键并记录先到先得的顺序
// 约束：仅使用 IF NOT EXISTS，不改动既有结构
var Statements = []string{
	`CREATE TABLE IF NOT EXISTS _vn_old_provinces (
            old_id TEXT PRIMARY KEY,
            old_name TEXT,
            new_id TEXT,
            new_name TEXT
        )`,
	`CREATE TABLE IF NOT EXISTS _vn_old_districts (
            old_id TEXT PRIMARY KEY,
            old_name TEXT,
            old_province_id TEXT,
            old_province_name TEXT,
            new_province_id TEXT,
            new_province_name TEXT,
            note TEXT NOT NULL
        )`,
	`CREATE TABLE IF NOT EXISTS _vn_old_wards (
            old_id TEXT PRIMARY KEY,
            old_name TEXT,
            old_district_id TEXT,
            old_district_name TEXT,
            old_province_id TEXT,
            old_province_name TEXT,
            new_id TEXT,
            new_name TEXT,
            new_province_id TEXT,
            new_province_name TEXT
        )`,
	`CREATE INDEX IF NOT EXISTS idx_vn_old_wards_new ON _vn_old_wards(new_id)`,
	`CREATE TABLE IF NOT EXISTS _vn_new_province_members (
            new_id TEXT NOT NULL,
            new_name TEXT,
            position INT NOT NULL,
            old_id TEXT NOT NULL,
            old_name TEXT,
            PRIMARY KEY (new_id, old_id)
        )`,
	`CREATE TABLE IF NOT EXISTS _vn_new_ward_members (
            new_id TEXT NOT NULL,
            new_name TEXT,
            new_province_id TEXT,
            new_province_name TEXT,
            position INT NOT NULL,
            old_id TEXT NOT NULL,
            old_name TEXT,
            old_district_id TEXT,
            old_district_name TEXT,
            old_province_id TEXT,
            old_province_name TEXT,
            PRIMARY KEY (new_id, old_id)
        )`,
}

func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, s := range Statements {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
