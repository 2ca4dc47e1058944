// 包 jsonout：将构建结果写为 JSON 文件（整文件与按上级分片两种方式）
package jsonout

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"vnadmin/internal/logger"
	"vnadmin/internal/ordered"
)

// ErrBadShardKey：分片键无法安全地作为文件名
var ErrBadShardKey = errors.New("bad shard key")

// Artifact：一个待写出的文件
type Artifact struct {
	Path  string
	Value any
}

// Encode：两个空格缩进，不转义 HTML 字符，越南文等非 ASCII 字符原样输出，末尾带换行
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Shards：为有序字典的每个键生成 <dir>/<key>.json，值整体作为列表写出
// 约束：键为空或包含路径分隔符时拒绝，避免写出目录之外
func Shards[V any](dir string, m *ordered.Map[[]V]) ([]Artifact, error) {
	out := make([]Artifact, 0, m.Len())
	var err error
	m.Each(func(k string, v []V) {
		if err != nil {
			return
		}
		if k == "" || k == "." || k == ".." || strings.ContainsAny(k, `/\`) {
			err = fmt.Errorf("%w: %q", ErrBadShardKey, k)
			return
		}
		if v == nil {
			v = []V{}
		}
		out = append(out, Artifact{Path: filepath.Join(dir, k+".json"), Value: v})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type staged struct {
	tmp  string
	path string
}

// WriteAll：先编码全部文件，再逐个写入临时文件，最后统一重命名
// 背景：编码失败时不触碰磁盘；写入失败时清理已生成的临时文件，不留下截断的目标文件
// 约束：临时文件与目标文件位于同一目录，rename 在同一文件系统内原子生效
func WriteAll(artifacts []Artifact) error {
	bodies := make([][]byte, len(artifacts))
	for i, a := range artifacts {
		b, err := Encode(a.Value)
		if err != nil {
			return fmt.Errorf("encode %s: %w", a.Path, err)
		}
		bodies[i] = b
	}
	var done []staged
	cleanup := func() {
		for _, s := range done {
			_ = os.Remove(s.tmp)
		}
	}
	for i, a := range artifacts {
		tmp, err := writeTemp(a.Path, bodies[i])
		if err != nil {
			cleanup()
			return err
		}
		done = append(done, staged{tmp: tmp, path: a.Path})
	}
	for i, s := range done {
		if err := os.Rename(s.tmp, s.path); err != nil {
			for _, rest := range done[i:] {
				_ = os.Remove(rest.tmp)
			}
			return fmt.Errorf("rename %s: %w", s.path, err)
		}
	}
	logger.L().Debug("jsonout_written", "files", len(artifacts))
	return nil
}

func writeTemp(path string, body []byte) (string, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp for %s: %w", path, err)
	}
	if _, err := f.Write(body); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(f.Name(), 0o644); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("chmod %s: %w", path, err)
	}
	return f.Name(), nil
}
