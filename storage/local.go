package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Tung-Worramet/store-api/apperr"
)

const maxUploadSize = 5 << 20 // 5MB

// LocalStore keeps assets on disk under baseDir and serves them from
// publicPath via the static file route registered in main.
type LocalStore struct {
	BaseDir    string
	PublicPath string
}

func NewLocalStore(baseDir, publicPath string) *LocalStore {
	return &LocalStore{BaseDir: baseDir, PublicPath: publicPath}
}

func (s *LocalStore) Upload(file *multipart.FileHeader, label string) (Asset, error) {
	if file == nil {
		return Asset{}, apperr.Validation("No file provided", nil)
	}
	if file.Size > maxUploadSize {
		return Asset{}, apperr.Validation("File size must be less than 5MB", nil)
	}

	dir := filepath.Join(s.BaseDir, label)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Asset{}, apperr.Transient("Failed to upload image", err)
	}

	ext := filepath.Ext(file.Filename)
	base := strings.TrimSuffix(filepath.Base(file.Filename), ext)
	base = strings.ReplaceAll(base, " ", "_")
	filename := fmt.Sprintf("%s_%d_%s%s", label, time.Now().UnixNano(), base, ext)

	src, err := file.Open()
	if err != nil {
		return Asset{}, apperr.Transient("Failed to upload image", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		return Asset{}, apperr.Transient("Failed to upload image", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return Asset{}, apperr.Transient("Failed to upload image", err)
	}

	fileID := filepath.Join(label, filename)
	return Asset{
		URL:    fmt.Sprintf("%s/%s", s.PublicPath, filepath.ToSlash(fileID)),
		FileID: fileID,
	}, nil
}

func (s *LocalStore) Delete(fileID string) error {
	if fileID == "" {
		return nil
	}
	// Refuse ids that escape the base directory.
	clean := filepath.Clean(fileID)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return apperr.Validation("Invalid file id", nil)
	}
	if err := os.Remove(filepath.Join(s.BaseDir, clean)); err != nil && !os.IsNotExist(err) {
		return apperr.Transient("Failed to delete image", err)
	}
	return nil
}
