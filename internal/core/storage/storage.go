// Package storage uploads binary objects to an object store and returns their public URL.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"
)

const (
	FolderUserAvatars   = "users/avatars"
	FolderProductImages = "products/images"
)

// Object 一次上传的全部输入
type Object struct {
	Folder      string
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

func (o Object) Key() string { return path.Join(o.Folder, o.Name) }

// Gateway 上传并返回可直接访问的 URL
type Gateway interface {
	Upload(ctx context.Context, obj Object) (string, error)
}

// ObjectName 生成 {entityID}-{epochMillis}.{ext}；同一毫秒内的两次上传会同名
func ObjectName(entityID, filename string, now time.Time) string {
	return entityID + "-" + strconv.FormatInt(now.UnixMilli(), 10) + "." + Ext(filename)
}

// Ext 取原始文件名最后一个点之后的部分（小写）；没有扩展名时用 bin
func Ext(filename string) string {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 || i == len(filename)-1 {
		return "bin"
	}
	return strings.ToLower(filename[i+1:])
}

func validate(obj Object) error {
	if obj.Name == "" {
		return fmt.Errorf("storage: empty object name")
	}
	if obj.Body == nil {
		return fmt.Errorf("storage: nil body for %s", obj.Key())
	}
	return nil
}
