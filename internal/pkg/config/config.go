package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var GlobalConfig *Config

// Config 全局配置
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Crypto    CryptoConfig    `mapstructure:"crypto"`
	Log       LogConfig       `mapstructure:"log"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`

	Notification NotificationConfig `mapstructure:"notification"`
}

// ServerConfig 服务配置
type ServerConfig struct {
	Name string `mapstructure:"name"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"` // mysql, postgres, sqlite
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Database        string `mapstructure:"database"` // sqlite 时为文件路径
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"ssl_mode"` // 仅 postgres
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 秒
	LogLevel        string `mapstructure:"log_level"`         // SQL日志级别: silent/error/warn/info
	AutoMigrate     bool   `mapstructure:"auto_migrate"`
}

// AuthConfig 认证配置
type AuthConfig struct {
	Enabled bool      `mapstructure:"enabled"`
	JWT     JWTConfig `mapstructure:"jwt"`
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret            string `mapstructure:"secret"`
	AccessTokenExpire int    `mapstructure:"access_token_expire"` // 秒, 0 表示不过期
}

// CryptoConfig 加密配置
type CryptoConfig struct {
	Secret string `mapstructure:"secret"` // 为空时不加密分析工具 token
}

// LogConfig 日志配置
type LogConfig struct {
	Level    string `mapstructure:"level"`  // debug, info, warn, error
	Format   string `mapstructure:"format"` // json, console
	Output   string `mapstructure:"output"` // stdout, file
	FilePath string `mapstructure:"file_path"`
}

// ArchiveConfig 报告归档配置
type ArchiveConfig struct {
	ReportsPath string `mapstructure:"reports_path"` // <root>/<date>/<scanId>/*.json
}

// CatalogConfig 质量配置目录
type CatalogConfig struct {
	SeedFile string `mapstructure:"seed_file"` // 启动时导入的 quality profile 清单
}

// SchedulerConfig 定时任务配置
type SchedulerConfig struct {
	StaleScan StaleScanConfig `mapstructure:"stale_scan"`
}

// NotificationConfig 扫描结束通知
type NotificationConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	LarkWebhook string `mapstructure:"lark_webhook"`
}

// StaleScanConfig 超时扫描回收
type StaleScanConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Cron    string `mapstructure:"cron"`    // 秒 分 时 日 月 周
	Timeout string `mapstructure:"timeout"` // 例如 2h
}

// TimeoutDuration 解析超时时间
func (c *StaleScanConfig) TimeoutDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("解析 stale_scan.timeout 失败: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("stale_scan.timeout 必须大于0: %s", c.Timeout)
	}
	return d, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.name", "quality-scanner")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.mode", "release")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5433)
	v.SetDefault("database.database", "quality_scanner")
	v.SetDefault("database.username", "scanner")
	v.SetDefault("database.password", "scanner")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.conn_max_lifetime", 3600)
	v.SetDefault("database.log_level", "silent")
	v.SetDefault("database.auto_migrate", false)

	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.jwt.access_token_expire", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("archive.reports_path", "../reports")

	v.SetDefault("scheduler.stale_scan.enabled", false)
	v.SetDefault("scheduler.stale_scan.cron", "0 */10 * * * *")
	v.SetDefault("scheduler.stale_scan.timeout", "2h")

	v.SetDefault("notification.enabled", false)
	v.SetDefault("notification.lark_webhook", "")
}

// Load 加载配置
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// 设置配置文件路径
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// 读取环境变量, 例如 DATABASE_HOST 覆盖 database.host
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	// 解析配置
	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	// 设置全局配置
	GlobalConfig = config

	return config, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("不支持的数据库驱动: %s", c.Database.Driver)
	}
	if c.Auth.Enabled && c.Auth.JWT.Secret == "" {
		return fmt.Errorf("auth.enabled 为 true 时必须配置 auth.jwt.secret")
	}
	if c.Scheduler.StaleScan.Enabled {
		if _, err := c.Scheduler.StaleScan.TimeoutDuration(); err != nil {
			return err
		}
	}
	return nil
}

// GetDSN 获取数据库DSN
func (c *DatabaseConfig) GetDSN() string {
	switch c.Driver {
	case "postgres":
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			c.Host,
			c.Port,
			c.Username,
			c.Password,
			c.Database,
			c.SSLMode,
		)
	case "sqlite":
		return c.Database
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.Username,
			c.Password,
			c.Host,
			c.Port,
			c.Database,
		)
	}
}
