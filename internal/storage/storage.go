package storage

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// SavedFile 已保存文件的描述符
type SavedFile struct {
	Name        string `json:"name"`
	StoragePath string `json:"storagePath"`
	URL         string `json:"url"`
}

// Service 票据文件存储协作方接口
// 核心只把返回的描述符当作不透明数据附在申请上,不关心存储机制
type Service interface {
	Save(name string, base64Data string) (*SavedFile, error)
}

// LocalStorage 本地磁盘存储实现
type LocalStorage struct {
	dir     string
	baseURL string
}

// NewLocalStorage 创建本地磁盘存储
func NewLocalStorage(dir string, baseURL string) (*LocalStorage, error) {
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &LocalStorage{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Save 解码 base64 数据并写入本地磁盘
func (s *LocalStorage) Save(name string, base64Data string) (*SavedFile, error) {
	if name == "" {
		return nil, fmt.Errorf("file name is required")
	}

	// 兼容 data URI 前缀 (data:image/png;base64,...)
	if idx := strings.Index(base64Data, ","); idx >= 0 && strings.Contains(base64Data[:idx], ";base64") {
		base64Data = base64Data[idx+1:]
	}

	data, err := base64.StdEncoding.DecodeString(base64Data)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 data: %w", err)
	}

	// 文件名加唯一前缀,防止覆盖同名上传
	stored := uuid.New().String() + "-" + filepath.Base(name)
	path := filepath.Join(s.dir, stored)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	return &SavedFile{
		Name:        name,
		StoragePath: path,
		URL:         s.baseURL + "/uploads/" + stored,
	}, nil
}
