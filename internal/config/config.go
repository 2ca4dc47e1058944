// 包 config：集中读取 .env 与环境变量，生成一次运行所需的全部配置
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type PostgresOptions struct {
	Publish      bool   `env:"PG_PUBLISH"`
	Host         string `env:"PG_HOST" envDefault:"localhost"`
	Port         string `env:"PG_PORT" envDefault:"5432"`
	User         string `env:"PG_USER" envDefault:"postgres"`
	Password     string `env:"PG_PASSWORD"`
	DB           string `env:"PG_DB" envDefault:"vnadmin"`
	SSLMode      string `env:"PG_SSLMODE" envDefault:"disable"`
	MaxOpenConns int    `env:"PG_MAX_OPEN_CONNS" envDefault:"4"`
	MaxIdleConns int    `env:"PG_MAX_IDLE_CONNS" envDefault:"2"`
}

// DSN：拼接 postgres:// 连接串；密码为空时省略
func (p PostgresOptions) DSN() string {
	dsn := "postgres://" + p.User
	if p.Password != "" {
		dsn += ":" + p.Password
	}
	return dsn + "@" + p.Host + ":" + p.Port + "/" + p.DB + "?sslmode=" + p.SSLMode
}

type RedisOptions struct {
	Publish bool   `env:"REDIS_PUBLISH"`
	Host    string `env:"REDIS_HOST" envDefault:"127.0.0.1"`
	Port    string `env:"REDIS_PORT" envDefault:"6379"`
	Pass    string `env:"REDIS_PASS"`
	DB      int    `env:"REDIS_DB" envDefault:"0"`
	Prefix  string `env:"REDIS_PREFIX" envDefault:"vnadmin"`
}

func (r RedisOptions) Addr() string { return r.Host + ":" + r.Port }

// Config：一次运行的配置；命令行参数在解析后覆盖对应字段
type Config struct {
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	InputFile     string `env:"VNADMIN_INPUT_FILE" envDefault:"admin_mapping_old_to_new_10_25.xlsx"`
	Sheet         string `env:"VNADMIN_SHEET"`
	OutputDir     string `env:"VNADMIN_OUTPUT_DIR" envDefault:"."`
	APIDir        string `env:"VNADMIN_API_DIR" envDefault:"api"`
	ProgressEvery int    `env:"VNADMIN_PROGRESS_EVERY" envDefault:"1000"`
	MetricsFile   string `env:"VNADMIN_METRICS_FILE"`

	Postgres PostgresOptions
	Redis    RedisOptions
}

// LoadEnv：加载存在的 .env 文件，缺失的文件直接跳过；已存在的环境变量不被覆盖
func LoadEnv(files ...string) (int, error) {
	var existing []string
	for _, f := range files {
		if f == "" {
			continue
		}
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// Load：加载 .env 后解析环境变量
// 异常：.env 语法错误或类型不符（如 PG_PUBLISH=maybe）时返回错误
func Load(envFiles ...string) (*Config, error) {
	if _, err := LoadEnv(envFiles...); err != nil {
		return nil, fmt.Errorf("load env files: %w", err)
	}
	c := &Config{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.InputFile == "" {
		return errors.New("VNADMIN_INPUT_FILE is empty")
	}
	if c.ProgressEvery < 0 {
		return errors.New("VNADMIN_PROGRESS_EVERY must be >= 0, got " + strconv.Itoa(c.ProgressEvery))
	}
	if c.Redis.DB < 0 {
		return errors.New("REDIS_DB must be >= 0")
	}
	return nil
}
