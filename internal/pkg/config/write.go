package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

func DefaultConfigPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("获取可执行文件路径失败: %w", err)
	}
	exeDir := filepath.Dir(exe)
	return filepath.Join(exeDir, "config", "config.yaml"), nil
}

// WriteFile 把当前配置写回 yaml 文件（含全部可调参数，便于审计报告配置面）
func WriteFile(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("cfg 不能为空")
	}
	if path == "" {
		return fmt.Errorf("path 不能为空")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}

	payload := map[string]any{
		"app": map[string]any{
			"name":      cfg.App.Name,
			"version":   cfg.App.Version,
			"log_level": cfg.App.LogLevel,
		},
		"normalizer": map[string]any{
			"date_formats": cfg.Normalizer.DateFormats,
		},
		"dedup": map[string]any{
			"threshold":        cfg.Dedup.Threshold,
			"title_weight":     cfg.Dedup.TitleWeight,
			"date_weight":      cfg.Dedup.DateWeight,
			"owner_weight":     cfg.Dedup.OwnerWeight,
			"date_window_days": cfg.Dedup.DateWindowDays,
		},
		"narrative": map[string]any{
			"example_cap": cfg.Narrative.ExampleCap,
		},
		"report": map[string]any{
			"as_of_default": cfg.Report.AsOfDefault,
			"output_dir":    cfg.Report.OutputDir,
		},
		"storage": map[string]any{
			"db_path": cfg.Storage.DBPath,
		},
		"intake": map[string]any{
			"enabled":      cfg.Intake.Enabled,
			"watch_dir":    cfg.Intake.WatchDir,
			"debounce_sec": cfg.Intake.DebounceSec,
		},
	}

	data, err := yaml.Marshal(payload)
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("写入临时配置失败: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("替换配置文件失败: %w", err)
	}
	return nil
}
