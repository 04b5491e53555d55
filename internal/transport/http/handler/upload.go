package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"gestao-marketplace/internal/domain"
	"gestao-marketplace/internal/service"
)

const (
	FieldAvatar       = "avatar"
	FieldProductImage = "productImage"
)

// formFile 取出 multipart 里的单个文件；没有文件时返回 nil，由 service 决定报什么错。
// 调用方负责 close。
func formFile(c *gin.Context, field string) (*service.Upload, func(), error) {
	fh, err := c.FormFile(field)
	switch {
	case err == nil:
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return nil, func() {}, nil
	default:
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, nil, domain.PayloadTooLarge(domain.MsgFileTooLarge)
		}
		return nil, nil, &domain.Error{Kind: domain.KindValidation, Msg: "invalid multipart form", Err: err}
	}

	f, err := fh.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("open upload: %w", err)
	}
	return &service.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}, func() { _ = f.Close() }, nil
}
