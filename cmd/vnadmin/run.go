package main

import (
	"context"
	"errors"
	"time"
	"vnadmin/internal/cache"
	"vnadmin/internal/config"
	"vnadmin/internal/logger"
	"vnadmin/internal/metrics"
	"vnadmin/internal/migrate"
	"vnadmin/internal/pipeline"
	"vnadmin/internal/source"
	"vnadmin/internal/store"
	"vnadmin/internal/utils"

	"github.com/spf13/cobra"
)

func newMappingCmd(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mapping",
		Short: "Write old_to_new.json and new_to_old.json",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), ro, true, false)
		},
	}
}

func newAPICmd(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "api",
		Short: "Write the province/district/ward API tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), ro, false, true)
		},
	}
}

func newAllCmd(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Run both pipelines over a single load of the source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), ro, true, true)
		},
	}
}

// run：加载配置与数据源，依次执行选中的流水线
// 约束：写文件失败立即终止；发布失败记录后继续执行下一条流水线，最终以发布失败退出
func run(ctx context.Context, ro *rootOptions, doMapping, doAPI bool) error {
	cfg, err := config.Load(ro.envFiles...)
	if err != nil {
		return withCode(exitConfig, err)
	}
	if ro.input != "" {
		cfg.InputFile = ro.input
	}
	if ro.sheet != "" {
		cfg.Sheet = ro.sheet
	}
	l := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	l.Info("run_start", "input", cfg.InputFile, "mapping", doMapping, "api", doAPI)
	start := time.Now()

	rows, err := source.Load(cfg.InputFile, cfg.Sheet)
	if err != nil {
		return err
	}

	sk, err := openSinks(ctx, cfg, doMapping, doAPI)
	if err != nil {
		return withCode(exitPublish, err)
	}
	defer sk.close()

	opts := pipeline.Options{
		OutputDir:      cfg.OutputDir,
		APIDir:         cfg.APIDir,
		ProgressEvery:  cfg.ProgressEvery,
		MappingSinks:   sk.mapping,
		HierarchySinks: sk.hierarchy,
	}
	var errs []error
	if doMapping {
		if _, err := pipeline.RunMapping(ctx, opts, rows); err != nil {
			if !errors.Is(err, pipeline.ErrPublish) {
				return err
			}
			errs = append(errs, err)
		}
	}
	if doAPI {
		if _, err := pipeline.RunAPI(ctx, opts, rows); err != nil {
			if !errors.Is(err, pipeline.ErrPublish) {
				return err
			}
			errs = append(errs, err)
		}
	}

	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			l.Warn("metrics_textfile_error", "path", cfg.MetricsFile, "err", err)
		}
	}
	l.Info("run_done", "rows", len(rows), "ms", time.Since(start).Milliseconds(), "publish_errors", len(errs))
	return errors.Join(errs...)
}

type sinks struct {
	mapping   []pipeline.MappingSink
	hierarchy []pipeline.HierarchySink
	closers   []func() error
}

func (s *sinks) close() {
	for _, c := range s.closers {
		_ = c()
	}
}

// openSinks：按 PG_PUBLISH/REDIS_PUBLISH 建立连接；PostgreSQL 只承载映射快照
// 异常：任一连接失败时关闭已建立的连接并返回错误，此时尚未写出任何文件
func openSinks(ctx context.Context, cfg *config.Config, doMapping, doAPI bool) (*sinks, error) {
	sk := &sinks{}
	if cfg.Postgres.Publish && doMapping {
		db, err := utils.OpenPostgres(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		sk.closers = append(sk.closers, db.Close)
		if err := migrate.EnsureSchema(ctx, db); err != nil {
			sk.close()
			return nil, err
		}
		st := store.AttachDB(db)
		sk.mapping = append(sk.mapping, pipeline.MappingSinkFunc("postgres", st.SaveMapping))
	}
	if cfg.Redis.Publish {
		rdb, err := utils.OpenRedis(ctx, cfg.Redis)
		if err != nil {
			sk.close()
			return nil, err
		}
		sk.closers = append(sk.closers, rdb.Close)
		p := cache.New(rdb, cfg.Redis.Prefix)
		if doMapping {
			sk.mapping = append(sk.mapping, p)
		}
		if doAPI {
			sk.hierarchy = append(sk.hierarchy, p)
		}
	}
	return sk, nil
}
