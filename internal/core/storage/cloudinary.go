package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type uploadAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
}

type Cloudinary struct {
	api uploadAPI
}

func NewCloudinary(cloudName, apiKey, apiSecret string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("storage: init cloudinary: %w", err)
	}
	return &Cloudinary{api: &cld.Upload}, nil
}

// Upload public_id 不带扩展名，cloudinary 会按内容自行识别格式
func (c *Cloudinary) Upload(ctx context.Context, obj Object) (string, error) {
	if err := validate(obj); err != nil {
		return "", err
	}
	name := obj.Name
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	res, err := c.api.Upload(ctx, obj.Body, uploader.UploadParams{
		PublicID: name,
		Folder:   obj.Folder,
	})
	if err != nil {
		return "", fmt.Errorf("storage: cloudinary upload %s: %w", obj.Key(), err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("storage: cloudinary upload %s: %s", obj.Key(), res.Error.Message)
	}
	return res.SecureURL, nil
}
