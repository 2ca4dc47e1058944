// 包 utils：Postgres/Redis 连接工具，参数统一来自 config
package utils

import (
	"context"
	"fmt"
	"vnadmin/internal/config"
	"vnadmin/internal/logger"

	"github.com/redis/go-redis/v9"
)

// OpenRedis：按配置创建客户端并 PING 一次，失败时关闭客户端
func OpenRedis(ctx context.Context, opts config.RedisOptions) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: opts.Addr(), Password: opts.Pass, DB: opts.DB})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr(), err)
	}
	logger.L().Debug("redis_open", "addr", opts.Addr(), "db", opts.DB)
	return rdb, nil
}
