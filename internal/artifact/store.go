package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/codi-diyt/actividades/internal/model"
)

// FileStore 基于文件系统的产物存储
// 布局：<root>/<reportID>/<filename>，台账里只记相对路径，
// 根目录可整体搬迁而不破坏历史条目。
type FileStore struct {
	root string
}

// NewFileStore 创建存储
func NewFileStore(root string) (*FileStore, error) {
	if root == "" {
		return nil, fmt.Errorf("目录不能为空")
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("创建产物目录失败: %w", err)
	}
	return &FileStore{root: root}, nil
}

// Save 保存产物，返回相对 root 的路径
func (s *FileStore) Save(ctx context.Context, reportID string, artifact model.Artifact) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if reportID == "" || artifact.Filename == "" {
		return "", fmt.Errorf("reportID 与文件名不能为空")
	}

	dir := filepath.Join(s.root, reportID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("创建报告目录失败: %w", err)
	}

	full := filepath.Join(dir, artifact.Filename)
	// 先写临时文件再改名，避免读到半个产物
	tmp := full + ".tmp"
	if err := os.WriteFile(tmp, artifact.Content, 0644); err != nil {
		return "", fmt.Errorf("写入产物失败: %w", err)
	}
	if err := os.Rename(tmp, full); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("落盘产物失败: %w", err)
	}

	return filepath.ToSlash(filepath.Join(reportID, artifact.Filename)), nil
}

// Load 按 Save 返回的相对路径读回内容
func (s *FileStore) Load(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clean := filepath.Clean(filepath.FromSlash(path))
	if filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return nil, fmt.Errorf("产物路径不合法: %q", path)
	}

	data, err := os.ReadFile(filepath.Join(s.root, clean))
	if err != nil {
		return nil, fmt.Errorf("读取产物失败: %w", err)
	}
	return data, nil
}

// Remove 删除某报告目录及其全部产物
func (s *FileStore) Remove(ctx context.Context, reportID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if reportID == "" || strings.ContainsAny(reportID, `/\`) || reportID == "." || reportID == ".." {
		return fmt.Errorf("报告 ID 不合法: %q", reportID)
	}
	if err := os.RemoveAll(filepath.Join(s.root, reportID)); err != nil {
		return fmt.Errorf("删除产物目录失败: %w", err)
	}
	return nil
}
