package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/codi-diyt/actividades/internal/artifact"
	"github.com/codi-diyt/actividades/internal/model"
	"github.com/codi-diyt/actividades/internal/pkg/buildinfo"
	"github.com/codi-diyt/actividades/internal/pkg/config"
	"github.com/codi-diyt/actividades/internal/repository"
	"github.com/codi-diyt/actividades/internal/service"
	"github.com/codi-diyt/actividades/internal/source"
)

var (
	cfgFile string
	cfg     *config.Config
	db      *repository.Database
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "informes",
		Short:   "Informes - 学术活动报告管线",
		Long:    `从已审批的学术活动提交生成周期报告：清洗、去重、聚合、叙事合成与多格式渲染。`,
		Version: fmt.Sprintf("%s (%s)", buildinfo.Version, buildinfo.Commit),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// 加载配置
			var err error
			cfg, err = config.Load(cfgFile)
			if err != nil {
				slog.Error("加载配置失败", "error", err)
				os.Exit(1)
			}
			config.SetupLogger(cfg.App.LogLevel)

			// 初始化数据库
			db, err = repository.NewDatabase(cfg.Storage.DBPath)
			if err != nil {
				slog.Error("初始化数据库失败", "error", err)
				os.Exit(1)
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if db != nil {
				db.Close()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "配置文件路径")

	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// reportCmd 生成报告命令
func reportCmd() *cobra.Command {
	var (
		year     int
		quarter  int
		kind     string
		formats  []string
		asOfStr  string
		inputDir string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "生成年度/季度报告",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			if db.SafeMode {
				fmt.Println("⚠️  数据库处于安全模式，拒绝生成报告")
				fmt.Printf("   迁移错误: %s\n", db.MigrationError)
				os.Exit(1)
			}

			req := model.ReportRequest{
				Period: model.PeriodKey{Year: year, Quarter: quarter},
				Kind:   model.ReportKind(kind),
			}
			for _, f := range formats {
				req.Formats = append(req.Formats, model.OutputFormat(strings.TrimSpace(f)))
			}
			if asOfStr != "" {
				t, err := time.Parse("2006-01-02", asOfStr)
				if err != nil {
					fmt.Printf("❌ --as-of 不是合法日期: %v\n", err)
					os.Exit(1)
				}
				req.AsOf = t
			}

			svc, err := buildService(inputDir)
			if err != nil {
				fmt.Printf("❌ 初始化服务失败: %v\n", err)
				os.Exit(1)
			}

			fmt.Printf("📊 正在生成报告 %s %s...\n\n", req.Kind, req.Period.Label())

			result, err := svc.Generate(ctx, req)
			if err != nil {
				if errors.Is(err, model.ErrEmptyPeriod) {
					fmt.Printf("📚 周期 %s 内没有已审批的记录\n", req.Period.Label())
					os.Exit(1)
				}
				fmt.Printf("❌ 生成报告失败: %v\n", err)
				os.Exit(1)
			}

			printResult(result)
		},
	}

	cmd.Flags().IntVarP(&year, "year", "y", time.Now().Year(), "报告年份")
	cmd.Flags().IntVarP(&quarter, "quarter", "q", 0, "季度 (1-4)，0 表示年度")
	cmd.Flags().StringVarP(&kind, "kind", "k", string(model.KindAnnual), "报告种类 (anual_narrativo | resumen_trimestral)")
	cmd.Flags().StringSliceVarP(&formats, "formats", "f", []string{string(model.FormatPlainText)}, "输出格式 (documento,hoja_calculo,diapositivas,texto)")
	cmd.Flags().StringVar(&asOfStr, "as-of", "", "认证有效性参考日期 (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&inputDir, "input", "i", "", "审批记录导入目录（默认取配置 intake.watch_dir）")

	return cmd
}

// printResult 输出生成结果
func printResult(result *service.GenerateResult) {
	entry := result.Entry
	if result.Reused {
		fmt.Println("♻️  台账中已有相同内容的报告，复用已有产物")
	} else {
		fmt.Println("✅ 报告生成完成")
	}
	fmt.Println("═══════════════════════════════════════")
	fmt.Printf("  • ID: %s\n", entry.ID)
	fmt.Printf("  • Hash: %s\n", entry.ContentHash)
	fmt.Printf("  • 记录数: %d | 教师数: %d\n", entry.RecordCount, entry.Docentes)
	for format, path := range entry.Artifacts {
		fmt.Printf("  • %s: %s\n", format, path)
	}
	if len(result.Issues) > 0 {
		fmt.Printf("\n⚠️  清洗阶段跳过 %d 条记录:\n", len(result.Issues))
		for _, issue := range result.Issues {
			fmt.Printf("  • %s: %s\n", issue.RecordID, issue.Reason)
		}
	}
	if len(result.RenderFailures) > 0 {
		fmt.Printf("\n⚠️  渲染失败的格式:\n")
		for format, reason := range result.RenderFailures {
			fmt.Printf("  • %s: %s\n", format, reason)
		}
	}
	fmt.Println("═══════════════════════════════════════")
}

// historyCmd 台账历史命令
func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "查看报告台账历史",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			ledger := repository.NewLedgerRepository(db.DB)
			entries, err := ledger.List(ctx, limit)
			if err != nil {
				fmt.Printf("❌ 查询台账失败: %v\n", err)
				os.Exit(1)
			}

			if len(entries) == 0 {
				fmt.Println("📚 台账为空，还没有生成过报告")
				return
			}

			fmt.Printf("📜 台账历史 (共 %d 条)\n", len(entries))
			fmt.Println("═══════════════════════════════════════")
			for _, e := range entries {
				period := fmt.Sprintf("%d", e.Year)
				if e.Quarter > 0 {
					period = fmt.Sprintf("Q%d %d", e.Quarter, e.Year)
				}
				fmt.Printf("  %s | %s | %s | registros=%d | %s\n",
					e.GeneratedAt.Format("2006-01-02 15:04"), e.Kind, period,
					e.RecordCount, strings.Join(e.Formats, ","))
			}
			fmt.Println("═══════════════════════════════════════")
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "最多显示条数 (0=全部)")

	return cmd
}

// statsCmd 台账统计命令
func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "查看台账使用统计",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			ledger := repository.NewLedgerRepository(db.DB)
			stats, err := ledger.Stats(ctx)
			if err != nil {
				fmt.Printf("❌ 获取统计失败: %v\n", err)
				os.Exit(1)
			}

			fmt.Println("📊 台账统计")
			fmt.Println("═══════════════════════════════════════")
			fmt.Printf("  • 报告总数: %d\n", stats.Total)
			fmt.Printf("\n📝 按种类\n")
			for kind, n := range stats.ByKind {
				fmt.Printf("  • %s: %d\n", kind, n)
			}
			fmt.Printf("\n📄 按格式\n")
			for format, n := range stats.ByFormat {
				fmt.Printf("  • %s: %d\n", format, n)
			}
			if stats.LastGenerated != nil {
				fmt.Printf("\n  • 最近生成: %s\n", stats.LastGenerated.Format("2006-01-02 15:04"))
			}
			fmt.Println("═══════════════════════════════════════")
		},
	}
}

// watchCmd 监控导入目录，记录新投递的审批文件
func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "监控审批记录导入目录",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			src, err := source.NewFileSource(cfg.Intake)
			if err != nil {
				fmt.Printf("❌ 初始化导入来源失败: %v\n", err)
				os.Exit(1)
			}
			defer src.Stop()

			changes, err := src.Watch(ctx)
			if err != nil {
				fmt.Printf("❌ 启动监控失败: %v\n", err)
				os.Exit(1)
			}

			fmt.Printf("👀 监控中: %s (Ctrl+C 退出)\n", cfg.Intake.WatchDir)
			for file := range changes {
				records, err := src.FetchApproved(ctx)
				if err != nil {
					slog.Error("重新扫描失败", "error", err)
					continue
				}
				fmt.Printf("  • %s 更新，当前共 %d 条审批记录\n", file, len(records))
			}
		},
	}
}

// configCmd 把当前生效的配置写回 yaml 文件，便于审计报告配置面
func configCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "写出当前生效的配置文件",
		Run: func(cmd *cobra.Command, args []string) {
			path := out
			if path == "" {
				var err error
				path, err = config.DefaultConfigPath()
				if err != nil {
					fmt.Printf("❌ 解析默认配置路径失败: %v\n", err)
					os.Exit(1)
				}
			}
			if err := config.WriteFile(path, cfg); err != nil {
				fmt.Printf("❌ 写出配置失败: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("✅ 配置已写出: %s\n", path)
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "输出路径（默认可执行文件旁的 config/config.yaml）")

	return cmd
}

// buildService 组装报告服务
func buildService(inputDir string) (*service.ReportService, error) {
	intake := cfg.Intake
	if inputDir != "" {
		intake.WatchDir = inputDir
	}

	src, err := source.NewFileSource(intake)
	if err != nil {
		return nil, err
	}

	store, err := artifact.NewFileStore(cfg.Report.OutputDir)
	if err != nil {
		return nil, err
	}

	ledger := repository.NewLedgerRepository(db.DB)
	return service.NewReportService(cfg, src, store, ledger), nil
}
