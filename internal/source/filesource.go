package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/codi-diyt/actividades/internal/model"
	"github.com/codi-diyt/actividades/internal/pkg/config"
)

// SubmissionExport 审批系统导出的单个投递文件
// 持久层把已审批提交按批次导出为 JSON 文件放入导入目录。
type SubmissionExport struct {
	ExportedAt time.Time              `json:"exported_at"`
	Records    []model.ActivityRecord `json:"records"`
}

// StaticSource 固定记录集来源，测试与一次性导入用
type StaticSource struct {
	Records []model.ActivityRecord
}

func (s *StaticSource) FetchApproved(_ context.Context) ([]model.ActivityRecord, error) {
	out := make([]model.ActivityRecord, len(s.Records))
	copy(out, s.Records)
	return out, nil
}

// FileSource 从导入目录读取审批记录
// 每次 FetchApproved 重新扫描全部 *.json 文件；同一 ID 的记录
// 保留提交版本最高的一条（重复投递按升级处理）。
type FileSource struct {
	dir string

	watcher     *fsnotify.Watcher
	stopChan    chan struct{}
	stopOnce    sync.Once
	changed     chan string
	debounceMap map[string]time.Time // 防抖：file -> lastEvent
	debounceDur time.Duration
	mu          sync.Mutex
}

// NewFileSource 创建文件来源
func NewFileSource(cfg config.IntakeConfig) (*FileSource, error) {
	if cfg.WatchDir == "" {
		return nil, fmt.Errorf("intake.watch_dir 不能为空")
	}
	if err := os.MkdirAll(cfg.WatchDir, 0755); err != nil {
		return nil, fmt.Errorf("创建导入目录失败: %w", err)
	}

	debounce := cfg.DebounceSec
	if debounce <= 0 {
		debounce = 2
	}

	return &FileSource{
		dir:         cfg.WatchDir,
		stopChan:    make(chan struct{}),
		changed:     make(chan string, 64),
		debounceMap: make(map[string]time.Time),
		debounceDur: time.Duration(debounce) * time.Second,
	}, nil
}

// FetchApproved 扫描目录并合并全部导出文件
func (s *FileSource) FetchApproved(ctx context.Context) ([]model.ActivityRecord, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("读取导入目录失败: %w", err)
	}

	// 文件名排序，使相同目录内容的合并顺序稳定
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	byID := make(map[string]model.ActivityRecord)
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		export, err := readExport(filepath.Join(s.dir, name))
		if err != nil {
			slog.Warn("导入文件不合法，已跳过", "file", name, "error", err)
			continue
		}
		for _, rec := range export.Records {
			if prev, ok := byID[rec.ID]; ok && prev.SubmissionVersion >= rec.SubmissionVersion {
				continue
			}
			byID[rec.ID] = rec
		}
	}

	out := make([]model.ActivityRecord, 0, len(byID))
	for _, rec := range byID {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	slog.Debug("审批记录加载完成", "files", len(names), "records", len(out))
	return out, nil
}

func readExport(path string) (*SubmissionExport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var export SubmissionExport
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("解析 JSON 失败: %w", err)
	}
	return &export, nil
}

// Watch 启动目录监控，变化（防抖后）通过返回的通道通知
func (s *FileSource) Watch(ctx context.Context) (<-chan string, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("创建文件监控器失败: %w", err)
	}
	if err := watcher.Add(s.dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("添加监控目录失败: %w", err)
	}
	s.watcher = watcher
	slog.Info("导入目录监控启动", "dir", s.dir)

	go s.watchLoop(ctx)
	return s.changed, nil
}

// Stop 停止监控
func (s *FileSource) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		if s.watcher != nil {
			_ = s.watcher.Close()
		}
		slog.Info("导入目录监控已停止")
	})
}

func (s *FileSource) watchLoop(ctx context.Context) {
	defer close(s.changed)
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			s.handleFsEvent(event)
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("文件监控错误", "error", err)
		}
	}
}

func (s *FileSource) handleFsEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	if !strings.HasSuffix(strings.ToLower(event.Name), ".json") {
		return
	}

	// 防抖：导出工具逐块写文件时只通知一次
	s.mu.Lock()
	last, exists := s.debounceMap[event.Name]
	now := time.Now()
	if exists && now.Sub(last) < s.debounceDur {
		s.mu.Unlock()
		return
	}
	s.debounceMap[event.Name] = now
	s.mu.Unlock()

	select {
	case s.changed <- event.Name:
		slog.Debug("导入文件更新", "file", filepath.Base(event.Name))
	default:
		slog.Warn("缓冲区已满，丢弃变更通知", "file", event.Name)
	}
}
