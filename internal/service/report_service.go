package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/codi-diyt/actividades/internal/model"
	"github.com/codi-diyt/actividades/internal/pkg/config"
	"github.com/codi-diyt/actividades/internal/render"
	"github.com/codi-diyt/actividades/internal/schema"
)

// ReportService 报告生成管线的编排层
// 串联 清洗 -> 去重 -> 聚合 -> 叙事 -> 渲染 -> 台账。
// 相同输入内容（规范记录集 + 请求参数）的重复请求直接复用台账里
// 第一次生成的产物，不重新渲染。
type ReportService struct {
	source RecordSource
	store  ArtifactStore
	ledger LedgerStore

	normalizer *Normalizer
	dedup      *Deduplicator
	agg        *Aggregator
	synth      *Synthesizer

	cfg *config.Config
	now func() time.Time // 可注入时钟，测试用

	mu sync.Mutex // 串行化"查哈希-写台账"临界区
}

// NewReportService 创建报告服务
func NewReportService(cfg *config.Config, source RecordSource, store ArtifactStore, ledger LedgerStore) *ReportService {
	return &ReportService{
		source:     source,
		store:      store,
		ledger:     ledger,
		normalizer: NewNormalizer(cfg.Normalizer),
		dedup:      NewDeduplicator(cfg.Dedup),
		agg:        NewAggregator(),
		synth:      NewSynthesizer(cfg.Narrative),
		cfg:        cfg,
		now:        time.Now,
	}
}

// GenerateResult 一次生成的完整结果
type GenerateResult struct {
	Report *model.Report
	Entry  *schema.LedgerEntry

	Issues         []model.RecordIssue           // 清洗阶段被跳过的记录
	RenderFailures map[model.OutputFormat]string // 单格式渲染失败（其余格式照常）
	Reused         bool                          // 是否复用台账中已有的产物
}

// Generate 生成一份报告
// 周期内没有任何记录时返回 ErrEmptyPeriod，由调用方决定如何呈现。
func (s *ReportService) Generate(ctx context.Context, req model.ReportRequest) (*GenerateResult, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("请求参数不合法: %w", err)
	}
	req.AsOf = s.resolveAsOf(req.AsOf)

	raw, err := s.source.FetchApproved(ctx)
	if err != nil {
		return nil, fmt.Errorf("拉取已审批记录失败: %w", err)
	}

	normalized, issues := s.normalizer.NormalizeAll(raw)
	for _, issue := range issues {
		slog.Warn("记录被跳过", "id", issue.RecordID, "reason", issue.Reason)
	}

	groups := s.dedup.Group(normalized)
	canonical := CanonicalInPeriod(groups, req.Period)
	if len(canonical) == 0 {
		return nil, fmt.Errorf("%w: %s", model.ErrEmptyPeriod, req.Period.Label())
	}
	prior := CanonicalInPeriod(groups, req.Period.Prior())

	hash := contentHash(req, canonical, prior)

	// 先查台账：相同输入的报告已生成过则直接复用
	if entry, err := s.ledger.FindByHash(ctx, hash); err != nil {
		return nil, err
	} else if entry != nil {
		return s.reuse(ctx, req, groups, entry, issues)
	}

	report, failures, err := s.build(ctx, req, groups)
	if err != nil {
		return nil, err
	}

	entry, reused, err := s.commit(ctx, req, hash, report, len(canonical))
	if err != nil {
		return nil, err
	}
	if reused {
		// 并发竞争输掉了写入：丢弃本次渲染，以第一个写入者的产物为准
		return s.reuse(ctx, req, groups, entry, issues)
	}

	slog.Info("报告生成完成",
		"kind", req.Kind, "period", req.Period.Label(),
		"records", len(canonical), "formats", len(report.Artifacts), "hash", hash)

	return &GenerateResult{
		Report:         report,
		Entry:          entry,
		Issues:         issues,
		RenderFailures: failures,
	}, nil
}

// build 聚合、叙事并逐格式渲染
func (s *ReportService) build(ctx context.Context, req model.ReportRequest, groups []model.DuplicateGroup) (*model.Report, map[model.OutputFormat]string, error) {
	snap, err := s.agg.AggregateWithComparison(groups, req.Period, req.AsOf)
	if err != nil {
		return nil, nil, err
	}

	narrative, err := s.synth.Synthesize(req, snap)
	if err != nil {
		return nil, nil, err
	}

	report := &model.Report{
		Request:   req,
		Snapshot:  snap,
		Narrative: narrative,
		Artifacts: make(map[model.OutputFormat]model.Artifact),
	}

	failures := make(map[model.OutputFormat]string)
	for _, f := range req.Formats {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		renderer, err := render.For(f)
		if err != nil {
			failures[f] = err.Error()
			continue
		}
		artifact, err := renderer.Render(report)
		if err != nil {
			// 单格式失败不拖垮整个报告
			failures[f] = err.Error()
			slog.Warn("输出格式渲染失败", "format", f, "error", err)
			continue
		}
		report.Artifacts[f] = artifact
	}
	if len(report.Artifacts) == 0 {
		return nil, nil, fmt.Errorf("%w: 所有格式均渲染失败", model.ErrIncompleteReportData)
	}
	return report, failures, nil
}

// commit 保存产物并写台账；冲突时返回第一个写入者的条目
func (s *ReportService) commit(ctx context.Context, req model.ReportRequest, hash string, report *model.Report, recordCount int) (*schema.LedgerEntry, bool, error) {
	entry := &schema.LedgerEntry{
		ID:          uuid.NewString(),
		Kind:        string(req.Kind),
		Year:        req.Period.Year,
		Quarter:     req.Period.Quarter,
		AsOf:        req.AsOf.Format("2006-01-02"),
		ContentHash: hash,
		RecordCount: recordCount,
		Docentes:    report.Snapshot.TotalDocentes,
		Artifacts:   make(schema.JSONMap),
		GeneratedAt: s.now().UTC(),
	}
	for _, f := range req.Formats {
		entry.Formats = append(entry.Formats, string(f))
	}

	for f, artifact := range report.Artifacts {
		path, err := s.store.Save(ctx, entry.ID, artifact)
		if err != nil {
			return nil, false, fmt.Errorf("保存产物 %s 失败: %w", f, err)
		}
		entry.Artifacts[string(f)] = path
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.ledger.Record(ctx, entry)
	if err == nil {
		return entry, false, nil
	}
	if !errors.Is(err, model.ErrLedgerConflict) {
		return nil, false, err
	}
	// 输掉写入竞争：本次落盘的产物不被任何台账条目引用，立即清理
	if rerr := s.store.Remove(ctx, entry.ID); rerr != nil {
		slog.Warn("清理竞争失败方的产物失败", "id", entry.ID, "error", rerr)
	}
	existing, ferr := s.ledger.FindByHash(ctx, hash)
	if ferr != nil {
		return nil, false, ferr
	}
	if existing == nil {
		return nil, false, err
	}
	return existing, true, nil
}

// reuse 复用台账条目：重算快照与叙事（确定性），产物从存储读回
func (s *ReportService) reuse(ctx context.Context, req model.ReportRequest, groups []model.DuplicateGroup, entry *schema.LedgerEntry, issues []model.RecordIssue) (*GenerateResult, error) {
	snap, err := s.agg.AggregateWithComparison(groups, req.Period, req.AsOf)
	if err != nil {
		return nil, err
	}
	narrative, err := s.synth.Synthesize(req, snap)
	if err != nil {
		return nil, err
	}

	report := &model.Report{
		Request:   req,
		Snapshot:  snap,
		Narrative: narrative,
		Artifacts: make(map[model.OutputFormat]model.Artifact),
	}
	for name, path := range entry.Artifacts {
		f := model.OutputFormat(name)
		content, err := s.store.Load(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("读取产物 %s 失败: %w", name, err)
		}
		renderer, err := render.For(f)
		if err != nil {
			continue
		}
		// 重新渲染一次只为取回文件名与 MIME；内容以存储为准
		artifact, err := renderer.Render(report)
		if err != nil {
			continue
		}
		artifact.Content = content
		report.Artifacts[f] = artifact
	}

	slog.Info("复用台账中的已有报告", "hash", entry.ContentHash, "id", entry.ID)
	return &GenerateResult{
		Report: report,
		Entry:  entry,
		Issues: issues,
		Reused: true,
	}, nil
}

// resolveAsOf 填充缺省的 as-of 日期并截断到日历日
func (s *ReportService) resolveAsOf(asOf time.Time) time.Time {
	if asOf.IsZero() {
		if s.cfg.Report.AsOfDefault != "" {
			if t, err := time.Parse("2006-01-02", s.cfg.Report.AsOfDefault); err == nil {
				return t
			}
		}
		asOf = s.now()
	}
	return time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
}

// contentHash 请求参数 + 规范记录集的 SHA-256
// 上一周期的规范记录也参与哈希：环比趋势短语出自上期数据，
// 上期变了产物就会变，不能复用。
// 记录已按 SourceID 排序，格式列表排序后写入，保证对同一输入稳定。
func contentHash(req model.ReportRequest, canonical, prior []model.NormalizedRecord) string {
	h := sha256.New()

	formats := make([]string, 0, len(req.Formats))
	for _, f := range req.Formats {
		formats = append(formats, string(f))
	}
	sort.Strings(formats)

	fmt.Fprintf(h, "kind=%s|year=%d|quarter=%d|asof=%s|formats=%s\n",
		req.Kind, req.Period.Year, req.Period.Quarter,
		req.AsOf.Format("2006-01-02"), strings.Join(formats, ","))

	hashRecords(h, canonical)
	fmt.Fprintln(h, "prior")
	hashRecords(h, prior)

	return hex.EncodeToString(h.Sum(nil))
}

func hashRecords(h io.Writer, records []model.NormalizedRecord) {
	for _, r := range records {
		end := ""
		if r.EndDate != nil {
			end = r.EndDate.Format("2006-01-02")
		}
		fmt.Fprintf(h, "%s|%s|%s|%s|%s|%s|%s|%d|%d|%s|%d\n",
			r.SourceID, r.Category, r.OwnerEmail, r.Title, r.Status,
			r.Date.Format("2006-01-02"), end, r.Hours, r.Amount, r.Label, r.SubmissionVersion)
	}
}
