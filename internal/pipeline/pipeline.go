// 包 pipeline：串联 构建 → 写文件 → 发布 三个阶段
// 背景：两条流水线共享同一份已规范化的行；文件先落盘，发布器在文件提交之后执行，发布失败不回滚已写出的文件
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"
	"vnadmin/internal/hierarchy"
	"vnadmin/internal/jsonout"
	"vnadmin/internal/logger"
	"vnadmin/internal/mapping"
	"vnadmin/internal/metrics"
	"vnadmin/internal/source"
)

const (
	NameMapping = "mapping"
	NameAPI     = "api"

	OldToNewFile  = "old_to_new.json"
	NewToOldFile  = "new_to_old.json"
	ProvincesFile = "provinces.json"
	DistrictsDir  = "districts"
	WardsDir      = "wards"
)

var (
	// ErrWrite：输出文件编码或写入失败
	ErrWrite = errors.New("write output")
	// ErrPublish：至少一个发布器失败
	ErrPublish = errors.New("publish")
)

// MappingSink：接收双向映射的发布目标
type MappingSink interface {
	Name() string
	PublishMapping(ctx context.Context, o2n *mapping.OldToNew, n2o *mapping.NewToOld) error
}

// HierarchySink：接收分层数据的发布目标
type HierarchySink interface {
	Name() string
	PublishHierarchy(ctx context.Context, t *hierarchy.Tree) error
}

type mappingFunc struct {
	name string
	fn   func(context.Context, *mapping.OldToNew, *mapping.NewToOld) error
}

func (m mappingFunc) Name() string { return m.name }

func (m mappingFunc) PublishMapping(ctx context.Context, o2n *mapping.OldToNew, n2o *mapping.NewToOld) error {
	return m.fn(ctx, o2n, n2o)
}

// MappingSinkFunc：将普通函数包装为 MappingSink，例如 store.SaveMapping
func MappingSinkFunc(name string, fn func(context.Context, *mapping.OldToNew, *mapping.NewToOld) error) MappingSink {
	return mappingFunc{name: name, fn: fn}
}

// Options：一次运行的输出位置与发布目标；发布目标为空时只写文件
type Options struct {
	OutputDir      string
	APIDir         string
	ProgressEvery  int
	MappingSinks   []MappingSink
	HierarchySinks []HierarchySink
}

// MappingResult：流水线 A 的产物与统计
type MappingResult struct {
	OldToNew *mapping.OldToNew
	NewToOld *mapping.NewToOld
	Stats    mapping.Stats
	Files    []string
}

// APIResult：流水线 B 的产物与统计
type APIResult struct {
	Tree  *hierarchy.Tree
	Stats hierarchy.Stats
	Files int
}

// RunMapping：构建双向映射，写出 old_to_new.json 与 new_to_old.json，随后依次调用发布器
// 异常：写文件失败包装 ErrWrite 并跳过发布；发布失败包装 ErrPublish，其余发布器仍会执行
func RunMapping(ctx context.Context, opts Options, rows []source.Row) (*MappingResult, error) {
	start := time.Now()
	o2n, n2o := mapping.BuildWithProgress(rows, opts.ProgressEvery)
	st := o2n.Stats(n2o)

	metrics.RowsTotal.WithLabelValues(NameMapping).Add(float64(st.Rows))
	metrics.EntitiesTotal.WithLabelValues(NameMapping, "old_province").Set(float64(st.OldProvinces))
	metrics.EntitiesTotal.WithLabelValues(NameMapping, "old_district").Set(float64(st.OldDistricts))
	metrics.EntitiesTotal.WithLabelValues(NameMapping, "old_ward").Set(float64(st.OldWards))
	metrics.EntitiesTotal.WithLabelValues(NameMapping, "new_province").Set(float64(st.NewProvinces))
	metrics.EntitiesTotal.WithLabelValues(NameMapping, "new_ward").Set(float64(st.NewWards))
	logMappingSamples(o2n, n2o)

	files := []string{
		filepath.Join(opts.OutputDir, OldToNewFile),
		filepath.Join(opts.OutputDir, NewToOldFile),
	}
	err := jsonout.WriteAll([]jsonout.Artifact{
		{Path: files[0], Value: o2n},
		{Path: files[1], Value: n2o},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	metrics.FilesWrittenTotal.WithLabelValues(NameMapping).Add(float64(len(files)))
	logger.L().Info("mapping_written",
		"rows", st.Rows,
		"old_provinces", st.OldProvinces,
		"old_districts", st.OldDistricts,
		"old_wards", st.OldWards,
		"new_provinces", st.NewProvinces,
		"new_wards", st.NewWards,
		"dir", opts.OutputDir,
	)

	var errs []error
	for _, s := range opts.MappingSinks {
		errs = append(errs, publish(s.Name(), func() error { return s.PublishMapping(ctx, o2n, n2o) }))
	}
	metrics.BuildDurationMs.WithLabelValues(NameMapping).Observe(float64(time.Since(start).Milliseconds()))
	res := &MappingResult{OldToNew: o2n, NewToOld: n2o, Stats: st, Files: files}
	if err := errors.Join(errs...); err != nil {
		return res, fmt.Errorf("%w: %w", ErrPublish, err)
	}
	return res, nil
}

// RunAPI：构建分层数据，写出 provinces.json 与 districts/、wards/ 下的分片文件，随后依次调用发布器
func RunAPI(ctx context.Context, opts Options, rows []source.Row) (*APIResult, error) {
	start := time.Now()
	tree := hierarchy.BuildWithProgress(rows, opts.ProgressEvery)
	st := tree.Stats

	metrics.RowsTotal.WithLabelValues(NameAPI).Add(float64(st.Rows))
	metrics.EntitiesTotal.WithLabelValues(NameAPI, "province").Set(float64(st.Provinces))
	metrics.EntitiesTotal.WithLabelValues(NameAPI, "district").Set(float64(st.Districts))
	metrics.EntitiesTotal.WithLabelValues(NameAPI, "ward").Set(float64(st.Wards))
	for _, c := range tree.Conflicts {
		metrics.ConflictsTotal.WithLabelValues(string(c.Level)).Inc()
	}
	metrics.OrphansTotal.WithLabelValues(string(hierarchy.LevelDistrict)).Add(float64(st.OrphanDistricts))
	metrics.OrphansTotal.WithLabelValues(string(hierarchy.LevelWard)).Add(float64(st.OrphanWards))
	logTreeSamples(tree)

	provinces := tree.Provinces
	if provinces == nil {
		provinces = []hierarchy.Province{}
	}
	artifacts := []jsonout.Artifact{{Path: filepath.Join(opts.APIDir, ProvincesFile), Value: provinces}}
	districts, err := jsonout.Shards(filepath.Join(opts.APIDir, DistrictsDir), tree.DistrictsByProvince)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	wards, err := jsonout.Shards(filepath.Join(opts.APIDir, WardsDir), tree.WardsByDistrict)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	artifacts = append(artifacts, districts...)
	artifacts = append(artifacts, wards...)
	if err := jsonout.WriteAll(artifacts); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	metrics.FilesWrittenTotal.WithLabelValues(NameAPI).Add(float64(len(artifacts)))
	logger.L().Info("api_written",
		"rows", st.Rows,
		"provinces", st.Provinces,
		"districts", st.Districts,
		"wards", st.Wards,
		"district_files", st.DistrictFiles,
		"ward_files", st.WardFiles,
		"orphan_districts", st.OrphanDistricts,
		"orphan_wards", st.OrphanWards,
		"conflicts", st.Conflicts,
		"dir", opts.APIDir,
	)

	var errs []error
	for _, s := range opts.HierarchySinks {
		errs = append(errs, publish(s.Name(), func() error { return s.PublishHierarchy(ctx, tree) }))
	}
	metrics.BuildDurationMs.WithLabelValues(NameAPI).Observe(float64(time.Since(start).Milliseconds()))
	res := &APIResult{Tree: tree, Stats: st, Files: len(artifacts)}
	if err := errors.Join(errs...); err != nil {
		return res, fmt.Errorf("%w: %w", ErrPublish, err)
	}
	return res, nil
}

func publish(name string, fn func() error) error {
	t := time.Now()
	if err := fn(); err != nil {
		metrics.PublishTotal.WithLabelValues(name, "error").Inc()
		logger.L().Error("publish_error", "sink", name, "err", err)
		return fmt.Errorf("%s: %w", name, err)
	}
	metrics.PublishTotal.WithLabelValues(name, "ok").Inc()
	logger.L().Info("publish_done", "sink", name, "ms", time.Since(t).Milliseconds())
	return nil
}

const sampleSize = 3

func logMappingSamples(o2n *mapping.OldToNew, n2o *mapping.NewToOld) {
	l := logger.L()
	if !l.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	for i, k := range o2n.Wards.Keys() {
		if i == sampleSize {
			break
		}
		w, _ := o2n.Wards.Get(k)
		l.Debug("mapping_sample_old_ward", "old_ward_id", k, "old_ward_name", str(w.OldWardName), "new_ward_id", str(w.NewWardID), "new_ward_name", str(w.NewWardName))
	}
	for i, k := range n2o.Provinces.Keys() {
		if i == sampleSize {
			break
		}
		p, _ := n2o.Provinces.Get(k)
		l.Debug("mapping_sample_new_province", "new_province_id", k, "new_province_name", str(p.NewProvinceName), "old_provinces", p.TotalOldProvinces)
	}
}

func logTreeSamples(t *hierarchy.Tree) {
	l := logger.L()
	if !l.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	for i, p := range t.Provinces {
		if i == sampleSize {
			break
		}
		ds, _ := t.DistrictsByProvince.Get(p.ID)
		l.Debug("api_sample_province", "id", p.ID, "name", str(p.Name), "districts", len(ds))
	}
}

func str(p *string) string {
	if p == nil {
		return "<nil>"
	}
	return *p
}
