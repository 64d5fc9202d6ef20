package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
// 管线各阶段只接收这里解析出的不可变配置结构，不读任何全局状态，
// 以保证报告生成的行为完全由显式输入决定。
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Normalizer NormalizerConfig `mapstructure:"normalizer"`
	Dedup      DedupConfig      `mapstructure:"dedup"`
	Narrative  NarrativeConfig  `mapstructure:"narrative"`
	Report     ReportConfig     `mapstructure:"report"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Intake     IntakeConfig     `mapstructure:"intake"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name     string `mapstructure:"name"`
	Version  string `mapstructure:"version"`
	LogLevel string `mapstructure:"log_level"`
}

// NormalizerConfig 清洗配置
type NormalizerConfig struct {
	DateFormats []string `mapstructure:"date_formats"` // 按顺序尝试的日期格式
}

// DedupConfig 去重配置
// 阈值与权重是报告配置面的一部分，允许误判是设计取舍而非缺陷。
type DedupConfig struct {
	Threshold      float64 `mapstructure:"threshold"`        // 合并阈值，(0,1]
	TitleWeight    float64 `mapstructure:"title_weight"`     // 标题相似度权重
	DateWeight     float64 `mapstructure:"date_weight"`      // 日期邻近度权重
	OwnerWeight    float64 `mapstructure:"owner_weight"`     // 提交者一致权重
	DateWindowDays int     `mapstructure:"date_window_days"` // 日期衰减窗口（±天）
}

// NarrativeConfig 叙事配置
type NarrativeConfig struct {
	ExampleCap int `mapstructure:"example_cap"` // 段落中列举条目的上限
}

// ReportConfig 报告配置
type ReportConfig struct {
	AsOfDefault string `mapstructure:"as_of_default"` // YYYY-MM-DD；空表示取生成时刻
	OutputDir   string `mapstructure:"output_dir"`    // 渲染产物根目录
}

// StorageConfig 存储配置
type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// IntakeConfig 审批记录导入配置
// 持久层把已审批提交导出为 JSON 文件投递到该目录。
type IntakeConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	WatchDir    string `mapstructure:"watch_dir"`
	DebounceSec int    `mapstructure:"debounce_sec"`
}

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// 设置默认值
	setDefaults(v)

	// 设置配置文件路径
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// 默认查找路径
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// 支持环境变量
	v.SetEnvPrefix("ACTIVIDADES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Warn("配置文件未找到，使用默认配置")
		} else {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	} else {
		slog.Info("加载配置文件", "path", v.ConfigFileUsed())
	}

	// 解析配置
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// 处理相对路径
	cfg.Storage.DBPath = resolvePath(cfg.Storage.DBPath)
	cfg.Report.OutputDir = resolvePath(cfg.Report.OutputDir)
	if cfg.Intake.WatchDir != "" {
		cfg.Intake.WatchDir = resolvePath(cfg.Intake.WatchDir)
	}

	return &cfg, nil
}

// Validate 校验可调参数的取值范围
func (c *Config) Validate() error {
	if c.Dedup.Threshold <= 0 || c.Dedup.Threshold > 1 {
		return fmt.Errorf("dedup.threshold 必须在 (0,1] 之间: %v", c.Dedup.Threshold)
	}
	sum := c.Dedup.TitleWeight + c.Dedup.DateWeight + c.Dedup.OwnerWeight
	if sum <= 0 {
		return fmt.Errorf("去重权重之和必须为正: %v", sum)
	}
	if c.Dedup.DateWindowDays <= 0 {
		return fmt.Errorf("dedup.date_window_days 必须为正: %d", c.Dedup.DateWindowDays)
	}
	if c.Narrative.ExampleCap <= 0 {
		return fmt.Errorf("narrative.example_cap 必须为正: %d", c.Narrative.ExampleCap)
	}
	if len(c.Normalizer.DateFormats) == 0 {
		return fmt.Errorf("normalizer.date_formats 不能为空")
	}
	if c.Report.AsOfDefault != "" {
		if _, err := time.Parse("2006-01-02", c.Report.AsOfDefault); err != nil {
			return fmt.Errorf("report.as_of_default 不是合法日期: %w", err)
		}
	}
	return nil
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.name", "actividades")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("app.log_level", "info")

	// Normalizer：按顺序尝试
	v.SetDefault("normalizer.date_formats", []string{
		"2006-01-02",
		"02/01/2006",
		"2006/01/02",
		"02-01-2006",
	})

	// Dedup
	v.SetDefault("dedup.threshold", 0.85)
	v.SetDefault("dedup.title_weight", 0.6)
	v.SetDefault("dedup.date_weight", 0.25)
	v.SetDefault("dedup.owner_weight", 0.15)
	v.SetDefault("dedup.date_window_days", 7)

	// Narrative
	v.SetDefault("narrative.example_cap", 5)

	// Report
	v.SetDefault("report.as_of_default", "")
	v.SetDefault("report.output_dir", "./data/reportes")

	// Storage
	v.SetDefault("storage.db_path", "./data/actividades.db")

	// Intake
	v.SetDefault("intake.enabled", false)
	v.SetDefault("intake.watch_dir", "./data/aprobados")
	v.SetDefault("intake.debounce_sec", 2)
}

// resolvePath 解析相对路径为绝对路径
func resolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}

	// 获取可执行文件目录
	exe, err := os.Executable()
	if err != nil {
		return path
	}

	exeDir := filepath.Dir(exe)
	return filepath.Join(exeDir, path)
}

// SetupLogger 根据配置设置日志级别
func SetupLogger(level string) {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
