// 包 cache：将映射与分层数据发布到 Redis，供在线服务按编码直接取用
package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"vnadmin/internal/hierarchy"
	"vnadmin/internal/logger"
	"vnadmin/internal/mapping"
	"vnadmin/internal/ordered"

	"github.com/redis/go-redis/v9"
)

// Publisher：以固定前缀组织键空间
// 键布局：
// - <prefix>:old_to_new:{provinces,districts,wards}、<prefix>:new_to_old:{provinces,wards} 为哈希，field 为编码，value 为单条记录 JSON；
// - <prefix>:api:provinces、<prefix>:api:districts:<省编码>、<prefix>:api:wards:<区县编码> 为字符串，内容与对应文件一致。
type Publisher struct {
	rdb    *redis.Client
	prefix string
}

func New(rdb *redis.Client, prefix string) *Publisher {
	if prefix == "" {
		prefix = "vnadmin"
	}
	return &Publisher{rdb: rdb, prefix: prefix}
}

func (p *Publisher) Name() string { return "redis" }

func (p *Publisher) key(parts ...string) string {
	return p.prefix + ":" + strings.Join(parts, ":")
}

// compact：紧凑 JSON，不转义 HTML 字符
func compact(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// hashFields：将有序字典展开为 HSET 所需的 field/value 交替序列
func hashFields[V any](m *ordered.Map[V]) ([]any, error) {
	out := make([]any, 0, 2*m.Len())
	var err error
	m.Each(func(k string, v V) {
		if err != nil {
			return
		}
		b, e := compact(v)
		if e != nil {
			err = fmt.Errorf("encode %s: %w", k, e)
			return
		}
		out = append(out, k, b)
	})
	return out, err
}

// PublishMapping：整体替换映射哈希
// 背景：先完成全部编码再进入事务，编码失败时 Redis 保持原状；DEL 与 HSET 在同一 MULTI/EXEC 中执行，读者不会看到半成品
func (p *Publisher) PublishMapping(ctx context.Context, o2n *mapping.OldToNew, n2o *mapping.NewToOld) error {
	type hash struct {
		key    string
		fields []any
	}
	var hashes []hash
	add := func(key string, fields []any, err error) error {
		if err != nil {
			return err
		}
		hashes = append(hashes, hash{key: key, fields: fields})
		return nil
	}
	f, err := hashFields(o2n.Provinces)
	if err := add(p.key("old_to_new", "provinces"), f, err); err != nil {
		return err
	}
	f, err = hashFields(o2n.Districts)
	if err := add(p.key("old_to_new", "districts"), f, err); err != nil {
		return err
	}
	f, err = hashFields(o2n.Wards)
	if err := add(p.key("old_to_new", "wards"), f, err); err != nil {
		return err
	}
	f, err = hashFields(n2o.Provinces)
	if err := add(p.key("new_to_old", "provinces"), f, err); err != nil {
		return err
	}
	f, err = hashFields(n2o.Wards)
	if err := add(p.key("new_to_old", "wards"), f, err); err != nil {
		return err
	}

	_, err = p.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, h := range hashes {
			pipe.Del(ctx, h.key)
			// HSET 不接受空字段列表
			if len(h.fields) > 0 {
				pipe.HSet(ctx, h.key, h.fields...)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis publish mapping: %w", err)
	}
	logger.L().Info("redis_mapping_published", "prefix", p.prefix, "old_wards", o2n.Wards.Len(), "new_wards", n2o.Wards.Len())
	return nil
}

// PublishHierarchy：整体替换 api 键；上一次发布留下但本次不存在的分片键一并删除
func (p *Publisher) PublishHierarchy(ctx context.Context, t *hierarchy.Tree) error {
	n := 1 + t.DistrictsByProvince.Len() + t.WardsByDistrict.Len()
	values := make(map[string][]byte, n)
	order := make([]string, 0, n)
	put := func(k string, v any) error {
		b, err := compact(v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", k, err)
		}
		values[k] = b
		order = append(order, k)
		return nil
	}
	provinces := t.Provinces
	if provinces == nil {
		provinces = []hierarchy.Province{}
	}
	if err := put(p.key("api", "provinces"), provinces); err != nil {
		return err
	}
	for _, id := range t.DistrictsByProvince.Keys() {
		v, _ := t.DistrictsByProvince.Get(id)
		if v == nil {
			v = []hierarchy.District{}
		}
		if err := put(p.key("api", "districts", id), v); err != nil {
			return err
		}
	}
	for _, id := range t.WardsByDistrict.Keys() {
		v, _ := t.WardsByDistrict.Get(id)
		if v == nil {
			v = []hierarchy.Ward{}
		}
		if err := put(p.key("api", "wards", id), v); err != nil {
			return err
		}
	}

	stale, err := p.scan(ctx, p.key("api", "*"))
	if err != nil {
		return fmt.Errorf("redis scan api keys: %w", err)
	}
	_, err = p.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(stale) > 0 {
			pipe.Del(ctx, stale...)
		}
		for _, k := range order {
			pipe.Set(ctx, k, values[k], 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis publish hierarchy: %w", err)
	}
	logger.L().Info("redis_hierarchy_published", "prefix", p.prefix, "keys", len(order), "removed", len(stale))
	return nil
}

func (p *Publisher) scan(ctx context.Context, match string) ([]string, error) {
	var keys []string
	it := p.rdb.Scan(ctx, 0, match, 500).Iterator()
	for it.Next(ctx) {
		keys = append(keys, it.Val())
	}
	return keys, it.Err()
}

// LookupOldWard：按旧乡镇编码读取已发布的记录；未命中返回 nil, nil
func (p *Publisher) LookupOldWard(ctx context.Context, id string) (*mapping.OldWard, error) {
	raw, err := p.rdb.HGet(ctx, p.key("old_to_new", "wards"), id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var w mapping.OldWard
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// LookupNewProvince：按新省编码读取其合并来源；未命中返回 nil, nil
func (p *Publisher) LookupNewProvince(ctx context.Context, id string) (*mapping.NewProvince, error) {
	raw, err := p.rdb.HGet(ctx, p.key("new_to_old", "provinces"), id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var np mapping.NewProvince
	if err := json.Unmarshal([]byte(raw), &np); err != nil {
		return nil, err
	}
	return &np, nil
}
