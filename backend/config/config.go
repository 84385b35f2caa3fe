package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"db"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Attendance AttendanceConfig `mapstructure:"attendance"`
	Log        LogConfig        `mapstructure:"log"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port    int        `mapstructure:"port"`
	BaseURL string     `mapstructure:"base_url"`
	CORS    CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 连接最大生命周期（分钟）
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 空闲连接最大存活时间（分钟）
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 缓存配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig JWT 认证配置
type AuthConfig struct {
	JWTSecret               string        `mapstructure:"jwt_secret"`
	AccessTokenTTL          time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTLDefault  time.Duration `mapstructure:"refresh_token_ttl_default"`
	RefreshTokenTTLRemember time.Duration `mapstructure:"refresh_token_ttl_remember_me"`
	Cookie                  CookieConfig  `mapstructure:"cookie"`
}

// CookieConfig Cookie 安全配置
type CookieConfig struct {
	Secure   bool   `mapstructure:"secure"`
	SameSite string `mapstructure:"same_site"`
	Domain   string `mapstructure:"domain"`
}

// AttendanceConfig 考勤规则配置
// 所有时间边界均为可调项，默认值对应 10:00-19:00 工作制：
// 09:30 前早到 / 09:30-10:00 正常 / 10:00 后迟到；19:00 前早退 / 19:00-19:30 正常 / 19:30 后加班
type AttendanceConfig struct {
	StartHour             int `mapstructure:"start_hour"`               // 上班整点（0-23）
	EndHour               int `mapstructure:"end_hour"`                 // 下班整点（0-23）
	GracePeriodMinutes    int `mapstructure:"grace_period_minutes"`     // 上班宽限（分钟）
	EarlyEntryLeadMinutes int `mapstructure:"early_entry_lead_minutes"` // 早到判定提前量（分钟）
	ExitGraceMinutes      int `mapstructure:"exit_grace_minutes"`       // 下班宽限（分钟）
	RetentionDays         int `mapstructure:"retention_days"`           // 考勤记录保留天数
	ComplianceWindowDays  int `mapstructure:"compliance_window_days"`   // 合规检查滑动窗口（天）
	LateThreshold         int `mapstructure:"late_threshold"`           // 窗口内迟到告警阈值
	EarlyLeaveThreshold   int `mapstructure:"early_leave_threshold"`    // 窗口内早退告警阈值
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "timecard")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Asia/Shanghai")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)  // 60分钟
	v.SetDefault("db.conn_max_idle_time", 30) // 30分钟

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.access_token_ttl", "15m")
	v.SetDefault("auth.refresh_token_ttl_default", "24h")
	v.SetDefault("auth.refresh_token_ttl_remember_me", "168h")
	v.SetDefault("auth.cookie.secure", false)
	v.SetDefault("auth.cookie.same_site", "Lax")

	v.SetDefault("attendance.start_hour", 10)
	v.SetDefault("attendance.end_hour", 19)
	v.SetDefault("attendance.grace_period_minutes", 0)
	v.SetDefault("attendance.early_entry_lead_minutes", 30)
	v.SetDefault("attendance.exit_grace_minutes", 30)
	v.SetDefault("attendance.retention_days", 90)
	v.SetDefault("attendance.compliance_window_days", 7)
	v.SetDefault("attendance.late_threshold", 3)
	v.SetDefault("attendance.early_leave_threshold", 3)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("TIMECARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// ── 关键配置校验 ──
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 不能为空")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 长度不能少于 16 字符")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	return c.Attendance.Validate()
}

// Validate 校验考勤规则配置
func (c *AttendanceConfig) Validate() error {
	if c.StartHour < 0 || c.StartHour > 23 {
		return fmt.Errorf("配置校验失败: attendance.start_hour 必须在 0-23 之间")
	}
	if c.EndHour < 0 || c.EndHour > 23 {
		return fmt.Errorf("配置校验失败: attendance.end_hour 必须在 0-23 之间")
	}
	if c.StartHour >= c.EndHour {
		return fmt.Errorf("配置校验失败: attendance.start_hour 必须早于 end_hour")
	}
	if c.GracePeriodMinutes < 0 || c.EarlyEntryLeadMinutes < 0 || c.ExitGraceMinutes < 0 {
		return fmt.Errorf("配置校验失败: attendance 宽限分钟数不能为负")
	}
	if c.RetentionDays <= 0 {
		return fmt.Errorf("配置校验失败: attendance.retention_days 必须为正整数")
	}
	if c.ComplianceWindowDays <= 0 || c.LateThreshold <= 0 || c.EarlyLeaveThreshold <= 0 {
		return fmt.Errorf("配置校验失败: attendance 合规参数必须为正整数")
	}
	return nil
}
