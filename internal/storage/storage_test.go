package storage_test

import (
	"encoding/base64"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trustspirit/reimburse-gin/internal/storage"
)

// TestLocalStorage_Save 测试票据文件保存
func TestLocalStorage_Save(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir(), "http://localhost:8080")
	require.NoError(t, err)

	content := []byte("fake receipt image")
	saved, err := store.Save("receipt-1.jpg", base64.StdEncoding.EncodeToString(content))
	require.NoError(t, err)

	assert.Equal(t, "receipt-1.jpg", saved.Name)
	assert.Contains(t, saved.StoragePath, "receipt-1.jpg")
	assert.Contains(t, saved.URL, "http://localhost:8080/uploads/")

	written, err := os.ReadFile(saved.StoragePath)
	require.NoError(t, err)
	assert.Equal(t, content, written)
}

// TestLocalStorage_Save_DataURI 测试 data URI 前缀兼容
func TestLocalStorage_Save_DataURI(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	content := []byte{0x89, 0x50, 0x4e, 0x47}
	dataURI := "data:image/png;base64," + base64.StdEncoding.EncodeToString(content)
	saved, err := store.Save("sig.png", dataURI)
	require.NoError(t, err)

	written, err := os.ReadFile(saved.StoragePath)
	require.NoError(t, err)
	assert.Equal(t, content, written)
}

// TestLocalStorage_Save_UniqueNames 测试同名上传不互相覆盖
func TestLocalStorage_Save_UniqueNames(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	first, err := store.Save("receipt.jpg", base64.StdEncoding.EncodeToString([]byte("one")))
	require.NoError(t, err)
	second, err := store.Save("receipt.jpg", base64.StdEncoding.EncodeToString([]byte("two")))
	require.NoError(t, err)

	assert.NotEqual(t, first.StoragePath, second.StoragePath)
}

// TestLocalStorage_Save_Invalid 测试非法输入
func TestLocalStorage_Save_Invalid(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	_, err = store.Save("", "aGVsbG8=")
	assert.Error(t, err)

	_, err = store.Save("receipt.jpg", "not base64 !!")
	assert.Error(t, err)
}
