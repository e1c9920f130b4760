package storage

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tung-Worramet/store-api/apperr"
)

func testFileHeader(t *testing.T, filename, content string) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(&buf, writer.Boundary()).ReadForm(10 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	files := form.File["file"]
	require.Len(t, files, 1)
	return files[0]
}

func TestUpload(t *testing.T) {
	store := NewLocalStore(t.TempDir(), "/uploads")
	header := testFileHeader(t, "my photo.jpg", "jpeg-bytes")

	asset, err := store.Upload(header, "product")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(asset.URL, "/uploads/product/"), "URL %q", asset.URL)
	assert.True(t, strings.HasPrefix(asset.FileID, "product"+string(filepath.Separator)), "FileID %q", asset.FileID)
	assert.True(t, strings.HasSuffix(asset.URL, ".jpg"))
	assert.NotContains(t, asset.URL, " ")

	data, err := os.ReadFile(filepath.Join(store.BaseDir, asset.FileID))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))
}

func TestUploadRejectsNilFile(t *testing.T) {
	store := NewLocalStore(t.TempDir(), "/uploads")

	_, err := store.Upload(nil, "product")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestUploadRejectsOversizeFile(t *testing.T) {
	store := NewLocalStore(t.TempDir(), "/uploads")
	header := &multipart.FileHeader{Filename: "huge.jpg", Size: 6 << 20}

	_, err := store.Upload(header, "product")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestDelete(t *testing.T) {
	store := NewLocalStore(t.TempDir(), "/uploads")
	header := testFileHeader(t, "slip.png", "png-bytes")

	asset, err := store.Upload(header, "payment")
	require.NoError(t, err)

	require.NoError(t, store.Delete(asset.FileID))
	_, err = os.Stat(filepath.Join(store.BaseDir, asset.FileID))
	assert.True(t, os.IsNotExist(err))
}

func TestDeleteMissingFileIsNoop(t *testing.T) {
	store := NewLocalStore(t.TempDir(), "/uploads")
	assert.NoError(t, store.Delete("payment/never-existed.png"))
	assert.NoError(t, store.Delete(""))
}

func TestDeleteRejectsEscapingIDs(t *testing.T) {
	store := NewLocalStore(t.TempDir(), "/uploads")

	err := store.Delete("../outside.txt")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	err = store.Delete("/etc/hostname")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
