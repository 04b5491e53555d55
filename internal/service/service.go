// Package service 业务层：参数校验、存在性检查、缓存与上传编排都在这里，handler 只做编解码
package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"gestao-marketplace/internal/core/cache"
	"gestao-marketplace/internal/core/storage"
	"gestao-marketplace/internal/domain"
	"gestao-marketplace/pkg/utils"
)

const (
	DefaultMaxUploadBytes int64 = 2 << 20
	DefaultCacheTTL             = 5 * time.Minute
)

// Options 各 service 共用的可选依赖；零值可用
type Options struct {
	Cache          *cache.Cache // nil 时不走缓存
	CacheTTL       time.Duration
	MaxUploadBytes int64
	Now            func() time.Time
	Log            *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.CacheTTL <= 0 {
		o.CacheTTL = DefaultCacheTTL
	}
	if o.MaxUploadBytes <= 0 {
		o.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Log == nil {
		o.Log = zap.NewNop()
	}
	return o
}

// Upload 上传文件；Body 为 nil 表示请求里没有文件
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type ImageURL struct {
	ImageURL string `json:"imageUrl"`
}

func (o Options) checkUpload(f *Upload) error {
	if f == nil || f.Body == nil {
		return domain.Validation(domain.MsgFileRequired)
	}
	if f.Size > o.MaxUploadBytes {
		return domain.PayloadTooLarge(fmt.Sprintf("%s (max %d bytes)", domain.MsgFileTooLarge, o.MaxUploadBytes))
	}
	return nil
}

// upload 生成 {folder}/{id}-{millis}.{ext} 并上传
func (o Options) upload(ctx context.Context, gw storage.Gateway, folder, entityID string, f *Upload) (string, error) {
	obj := storage.Object{
		Folder:      folder,
		Name:        storage.ObjectName(entityID, f.Filename, o.Now()),
		ContentType: f.ContentType,
		Size:        f.Size,
		Body:        f.Body,
	}
	url, err := gw.Upload(ctx, obj)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", obj.Key(), err)
	}
	o.Log.Info("object uploaded", zap.String("key", obj.Key()), zap.Int64("size", f.Size))
	return url, nil
}

// invalidate 缓存删除失败只记日志，不影响已经落库的写操作
func (o Options) invalidate(ctx context.Context, keys ...string) {
	if err := o.Cache.Delete(ctx, keys...); err != nil {
		o.Log.Warn("cache invalidate failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

func validate(v any) error {
	if err := utils.Validate.Struct(v); err != nil {
		return &domain.Error{Kind: domain.KindValidation, Msg: utils.ValidationMessage(err), Err: err}
	}
	return nil
}

func userKey(id string) string    { return "user:" + id }
func productKey(id string) string { return "product:" + id }
