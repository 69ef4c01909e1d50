package service_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"taskManager/internal/config"
	"taskManager/internal/service"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newImageService() (*service.ImageService, afero.Fs) {
	fs := afero.NewMemMapFs()
	return service.NewImageService(fs, config.UploadConfig{
		Dir:          "uploads/images",
		MaxFileSize:  16,
		AllowedTypes: []string{"image/png", "image/jpeg"},
	}), fs
}

func upload(name, contentType, body string) service.Upload {
	return service.Upload{
		Filename:    name,
		ContentType: contentType,
		Size:        int64(len(body)),
		Content:     strings.NewReader(body),
	}
}

func TestImageService_SaveOpenDelete(t *testing.T) {
	ctx := context.Background()
	svc, fs := newImageService()

	urls, err := svc.Save(ctx, []service.Upload{
		upload("cat.png", "image/png", "png-bytes"),
		upload("empty.png", "image/png", ""),
		upload("dog.JPG", "IMAGE/JPEG", "jpg-bytes"),
	})
	require.NoError(t, err)
	require.Len(t, urls, 2)
	assert.True(t, strings.HasPrefix(urls[0], service.ImageURLPrefix))
	assert.True(t, strings.HasSuffix(urls[0], ".png"))
	assert.True(t, strings.HasSuffix(urls[1], ".JPG"))

	name := strings.TrimPrefix(urls[0], service.ImageURLPrefix)
	exists, err := afero.Exists(fs, "uploads/images/"+name)
	require.NoError(t, err)
	assert.True(t, exists)

	img, err := svc.Open(ctx, name)
	require.NoError(t, err)
	body, err := io.ReadAll(img.Content)
	require.NoError(t, err)
	require.NoError(t, img.Content.Close())
	assert.Equal(t, "png-bytes", string(body))

	require.NoError(t, svc.Delete(ctx, name))
	_, err = svc.Open(ctx, name)
	assert.True(t, service.HasCode(err, service.CodeNotFound))
	assert.True(t, service.HasCode(svc.Delete(ctx, name), service.CodeNotFound))
}

func TestImageService_Rejects(t *testing.T) {
	ctx := context.Background()

	t.Run("type", func(t *testing.T) {
		svc, fs := newImageService()
		_, err := svc.Save(ctx, []service.Upload{
			upload("ok.png", "image/png", "fine"),
			upload("doc.pdf", "application/pdf", "pdf"),
		})
		assert.True(t, service.HasCode(err, service.CodeUnsupportedMediaType))

		// Nothing is written when any upload is rejected.
		exists, _ := afero.DirExists(fs, "uploads/images")
		assert.False(t, exists)
	})

	t.Run("declared size", func(t *testing.T) {
		svc, _ := newImageService()
		_, err := svc.Save(ctx, []service.Upload{upload("big.png", "image/png", strings.Repeat("x", 17))})
		assert.True(t, service.HasCode(err, service.CodePayloadTooLarge))
	})

	t.Run("actual size", func(t *testing.T) {
		svc, fs := newImageService()
		lying := service.Upload{
			Filename:    "big.png",
			ContentType: "image/png",
			Size:        4,
			Content:     bytes.NewReader(bytes.Repeat([]byte("x"), 64)),
		}
		_, err := svc.Save(ctx, []service.Upload{lying})
		assert.True(t, service.HasCode(err, service.CodePayloadTooLarge))

		files, _ := afero.ReadDir(fs, "uploads/images")
		assert.Empty(t, files)
	})

	for _, name := range []string{"", ".", "..", "../secret", "a/b.png", `a\b.png`} {
		t.Run("name "+name, func(t *testing.T) {
			svc, _ := newImageService()
			_, err := svc.Open(ctx, name)
			assert.True(t, service.HasCode(err, service.CodeValidation))
			assert.True(t, service.HasCode(svc.Delete(ctx, name), service.CodeValidation))
		})
	}
}
