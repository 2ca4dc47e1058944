package utils

import (
	"context"
	"net"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"vnadmin/internal/config"
)

func TestOpenRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)

	rdb, err := OpenRedis(context.Background(), config.RedisOptions{Host: host, Port: port})
	require.NoError(t, err)
	defer rdb.Close()
	require.NoError(t, rdb.Set(context.Background(), "k", "v", 0).Err())
	got, err := mr.Get("k")
	require.NoError(t, err)
	require.Equal(t, "v", got)
}

func TestOpenRedis_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)
	mr.Close()

	_, err = OpenRedis(context.Background(), config.RedisOptions{Host: host, Port: port})
	require.Error(t, err)
}

func TestOpenPostgres_Unreachable(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	_, port, _ := net.SplitHostPort(l.Addr().String())
	require.NoError(t, l.Close())

	_, err = OpenPostgres(context.Background(), config.PostgresOptions{
		Host: "127.0.0.1", Port: port, User: "postgres", DB: "vnadmin", SSLMode: "disable",
		MaxOpenConns: 1, MaxIdleConns: 1,
	})
	require.Error(t, err)
}
