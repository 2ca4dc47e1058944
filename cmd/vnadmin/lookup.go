package main

import (
	"context"
	"fmt"
	"vnadmin/internal/cache"
	"vnadmin/internal/config"
	"vnadmin/internal/jsonout"
	"vnadmin/internal/logger"
	"vnadmin/internal/mapping"
	"vnadmin/internal/store"
	"vnadmin/internal/utils"

	"github.com/spf13/cobra"
)

// reader：已发布映射的单条查询；PostgreSQL 快照与 Redis 缓存均实现
type reader interface {
	LookupOldWard(ctx context.Context, oldID string) (*mapping.OldWard, error)
	LookupNewProvince(ctx context.Context, newID string) (*mapping.NewProvince, error)
}

func newLookupCmd(ro *rootOptions) *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "lookup {ward|province} <id>",
		Short: "Read one published record: an old ward by old id, or a new province by new id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, id := args[0], args[1]
			if kind != "ward" && kind != "province" {
				return withCode(exitConfig, fmt.Errorf("unknown lookup kind %q (want ward or province)", kind))
			}
			cfg, err := config.Load(ro.envFiles...)
			if err != nil {
				return withCode(exitConfig, err)
			}
			logger.Setup(cfg.LogLevel, cfg.LogFormat)

			ctx := cmd.Context()
			r, closeFn, err := openReader(ctx, cfg, from)
			if err != nil {
				return err
			}
			defer closeFn()

			var (
				v     any
				found bool
			)
			switch kind {
			case "ward":
				w, err := r.LookupOldWard(ctx, id)
				if err != nil {
					return withCode(exitPublish, err)
				}
				v, found = w, w != nil
			case "province":
				p, err := r.LookupNewProvince(ctx, id)
				if err != nil {
					return withCode(exitPublish, err)
				}
				v, found = p, p != nil
			}
			if !found {
				logger.L().Info("lookup_miss", "from", from, "kind", kind, "id", id)
				return withCode(exitNotFound, fmt.Errorf("%s %s not found in %s", kind, id, from))
			}
			b, err := jsonout.Encode(v)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
	cmd.Flags().StringVar(&from, "from", "redis", "lookup backend: redis or postgres")
	return cmd
}

// openReader：按 --from 建立连接；连接失败归为发布端不可用
func openReader(ctx context.Context, cfg *config.Config, from string) (reader, func() error, error) {
	switch from {
	case "redis":
		rdb, err := utils.OpenRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, withCode(exitPublish, err)
		}
		return cache.New(rdb, cfg.Redis.Prefix), rdb.Close, nil
	case "postgres":
		db, err := utils.OpenPostgres(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, withCode(exitPublish, err)
		}
		return store.AttachDB(db), db.Close, nil
	}
	return nil, nil, withCode(exitConfig, fmt.Errorf("unknown backend %q (want redis or postgres)", from))
}
