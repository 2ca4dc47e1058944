package jsonout

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"vnadmin/internal/ordered"
)

func TestEncode_LiteralUnicodeAndIndent(t *testing.T) {
	b, err := Encode(map[string]any{"name": "Phường Hồng Hà & <x>", "id": nil})
	require.NoError(t, err)
	require.Equal(t, "{\n  \"id\": null,\n  \"name\": \"Phường Hồng Hà & <x>\"\n}\n", string(b))
}

func TestEncode_OrderedMapIndented(t *testing.T) {
	m := ordered.New[[]string]()
	m.Put("2", []string{"Đà Nẵng"})
	m.Put("10", nil)
	b, err := Encode(m)
	require.NoError(t, err)
	require.Equal(t, "{\n  \"2\": [\n    \"Đà Nẵng\"\n  ],\n  \"10\": null\n}\n", string(b))
}

func TestShards_PathsAndEmptyLists(t *testing.T) {
	m := ordered.New[[]int]()
	m.Put("11", []int{1, 2})
	m.Put("12", nil)

	arts, err := Shards("api/districts", m)
	require.NoError(t, err)
	require.Len(t, arts, 2)
	require.Equal(t, filepath.Join("api/districts", "11.json"), arts[0].Path)
	require.Equal(t, []int{1, 2}, arts[0].Value)
	require.Equal(t, []int{}, arts[1].Value)
}

func TestShards_RejectsUnsafeKeys(t *testing.T) {
	for _, k := range []string{"", "..", "a/b", `a\b`} {
		m := ordered.New[[]int]()
		m.Put(k, []int{1})
		_, err := Shards("out", m)
		require.ErrorIs(t, err, ErrBadShardKey, k)
	}
}

func TestWriteAll_WritesEveryFile(t *testing.T) {
	dir := t.TempDir()
	err := WriteAll([]Artifact{
		{Path: filepath.Join(dir, "provinces.json"), Value: []string{"Hà Nội"}},
		{Path: filepath.Join(dir, "wards", "267.json"), Value: []string{"Phúc Xá"}},
	})
	require.NoError(t, err)

	b, err := os.ReadFile(filepath.Join(dir, "wards", "267.json"))
	require.NoError(t, err)
	require.Equal(t, "[\n  \"Phúc Xá\"\n]\n", string(b))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	require.ElementsMatch(t, []string{"provinces.json", "wards"}, names)
}

func TestWriteAll_EncodeErrorWritesNothing(t *testing.T) {
	dir := t.TempDir()
	err := WriteAll([]Artifact{
		{Path: filepath.Join(dir, "ok.json"), Value: 1},
		{Path: filepath.Join(dir, "bad.json"), Value: make(chan int)},
	})
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestWriteAll_WriteErrorCleansTemps(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	err := WriteAll([]Artifact{
		{Path: filepath.Join(dir, "first.json"), Value: 1},
		{Path: filepath.Join(blocker, "second.json"), Value: 2},
	})
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "blocker", entries[0].Name())
}
