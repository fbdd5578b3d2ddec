package service

import (
	"errors"
	"mime/multipart"

	"go.uber.org/zap"

	"coursehub/pkg/storage"
	"coursehub/pkg/validate"
)

// ── 上传图片辅助 ──

// replaceImage 处理图片字段的替换/清除
// 返回新的相对路径与需要在提交成功后删除的旧文件
func replaceImage(images ImageStorage, dir, field, current string, fh *multipart.FileHeader, clear bool) (next, stale string, err error) {
	switch {
	case fh != nil && images != nil:
		rel, err := images.Save(dir, fh)
		if err != nil {
			return current, "", imageFieldError(field, err)
		}
		return rel, current, nil
	case clear:
		return "", current, nil
	default:
		return current, "", nil
	}
}

func imageFieldError(field string, err error) error {
	switch {
	case errors.Is(err, storage.ErrUnsupportedImage):
		return validate.Field(field, "请上传有效的图片文件")
	case errors.Is(err, storage.ErrImageTooLarge):
		return validate.Field(field, "图片文件过大")
	default:
		return err
	}
}

// removeImage 删除不再引用的文件，失败只记日志
func removeImage(images ImageStorage, rel string, logger *zap.Logger) {
	if images == nil || rel == "" {
		return
	}
	if err := images.Delete(rel); err != nil {
		logger.Warn("删除旧图片失败", zap.String("path", rel), zap.Error(err))
	}
}
