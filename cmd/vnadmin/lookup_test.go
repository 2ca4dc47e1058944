package main

import (
	"bytes"
	"encoding/json"
	"net"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"vnadmin/internal/mapping"
)

func runWithRedis(t *testing.T, stdout *bytes.Buffer, args ...string) error {
	t.Helper()
	out := t.TempDir()
	t.Setenv("VNADMIN_OUTPUT_DIR", out)
	t.Setenv("VNADMIN_API_DIR", filepath.Join(out, "api"))
	t.Setenv("VNADMIN_METRICS_FILE", "")
	t.Setenv("PG_PUBLISH", "false")
	cmd := newRootCmd()
	if stdout != nil {
		cmd.SetOut(stdout)
	}
	cmd.SetArgs(append(args, "--env", filepath.Join(out, "missing.env")))
	return cmd.Execute()
}

func TestLookup_ReadsPublishedRecords(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)
	t.Setenv("REDIS_HOST", host)
	t.Setenv("REDIS_PORT", port)
	t.Setenv("REDIS_PREFIX", "vn")
	t.Setenv("REDIS_PUBLISH", "true")

	in := writeInput(t, "1,Hà Giang,10,Đồng Văn,100,Phố Bảng,5,Tuyên Quang,900,Phố Bảng\n2,Tuyên Quang,20,Na Hang,200,Thượng Lâm,5,Tuyên Quang,901,Thượng Lâm\n")
	require.NoError(t, runWithRedis(t, nil, "all", "--input", in))
	require.True(t, mr.Exists("vn:api:wards:10"))

	var buf bytes.Buffer
	require.NoError(t, runWithRedis(t, &buf, "lookup", "ward", "100"))
	var w mapping.OldWard
	require.NoError(t, json.Unmarshal(buf.Bytes(), &w))
	require.Equal(t, "900", *w.NewWardID)
	require.Equal(t, "Đồng Văn", *w.OldDistrictName)

	buf.Reset()
	require.NoError(t, runWithRedis(t, &buf, "lookup", "province", "5", "--from", "redis"))
	var p mapping.NewProvince
	require.NoError(t, json.Unmarshal(buf.Bytes(), &p))
	require.Equal(t, 2, p.TotalOldProvinces)

	err = runWithRedis(t, nil, "lookup", "ward", "999")
	require.Equal(t, exitNotFound, exitCode(err))
}

func TestLookup_BadArguments(t *testing.T) {
	err := runWithRedis(t, nil, "lookup", "district", "10")
	require.Equal(t, exitConfig, exitCode(err))

	err = runWithRedis(t, nil, "lookup", "ward", "10", "--from", "mysql")
	require.Equal(t, exitConfig, exitCode(err))
}

func TestLookup_BackendUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)
	mr.Close()
	t.Setenv("REDIS_HOST", host)
	t.Setenv("REDIS_PORT", port)

	err = runWithRedis(t, nil, "lookup", "ward", "100")
	require.Equal(t, exitPublish, exitCode(err))
}
