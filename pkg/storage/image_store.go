// Package storage 上传图片的本地磁盘存储：解码、按最大尺寸缩放、统一转码为 WebP
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"coursehub/config"
)

// 上传目录（相对 media 根目录）
const (
	DirUserAvatars  = "users_avatars"
	DirCourseImages = "image_courses"
	DirInfoAvatars  = "image_user_avatars"
)

var (
	ErrUnsupportedImage = errors.New("不支持的图片格式")
	ErrImageTooLarge    = errors.New("图片文件过大")
	ErrInvalidPath      = errors.New("非法的文件路径")
)

// ImageStore 图片存储
type ImageStore struct {
	root      string
	urlPrefix string
	maxBytes  int64
	maxWidth  int
	maxHeight int
	quality   float32
}

// NewImageStore 根据 media 配置创建图片存储
func NewImageStore(cfg *config.MediaConfig) *ImageStore {
	q := cfg.WebPQuality
	if q <= 0 || q > 100 {
		q = 80
	}
	return &ImageStore{
		root:      cfg.Root,
		urlPrefix: strings.TrimRight(cfg.URLPrefix, "/"),
		maxBytes:  cfg.MaxUploadMB << 20,
		maxWidth:  cfg.MaxImageWidth,
		maxHeight: cfg.MaxImageHeight,
		quality:   q,
	}
}

// Root media 根目录
func (s *ImageStore) Root() string { return s.root }

// Save 保存 multipart 上传的图片，返回相对路径（如 image_courses/20260101-<uuid>.webp）
func (s *ImageStore) Save(dir string, fh *multipart.FileHeader) (string, error) {
	if s.maxBytes > 0 && fh.Size > s.maxBytes {
		return "", ErrImageTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("打开上传文件失败: %w", err)
	}
	defer f.Close()
	return s.SaveReader(dir, f)
}

// SaveReader 从任意 Reader 读取图片并保存
func (s *ImageStore) SaveReader(dir string, r io.Reader) (string, error) {
	if s.maxBytes > 0 {
		r = io.LimitReader(r, s.maxBytes+1)
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("读取上传文件失败: %w", err)
	}
	if s.maxBytes > 0 && int64(len(raw)) > s.maxBytes {
		return "", ErrImageTooLarge
	}

	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return "", ErrUnsupportedImage
	}
	if s.maxWidth > 0 && s.maxHeight > 0 {
		img = imaging.Fit(img, s.maxWidth, s.maxHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: s.quality}); err != nil {
		return "", fmt.Errorf("WebP 编码失败: %w", err)
	}

	rel := path.Join(dir, fmt.Sprintf("%s-%s.webp", time.Now().Format("20060102"), uuid.NewString()))
	if err := s.write(rel, buf.Bytes()); err != nil {
		return "", err
	}
	return rel, nil
}

// write 先写临时文件再 rename，避免读到半截文件
func (s *ImageStore) write(rel string, data []byte) error {
	full := filepath.Join(s.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("创建上传目录失败: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return fmt.Errorf("创建临时文件失败: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("写入图片失败: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("写入图片失败: %w", err)
	}
	return os.Rename(tmp.Name(), full)
}

// Delete 删除已保存的图片，文件不存在不视为错误
func (s *ImageStore) Delete(rel string) error {
	if rel == "" {
		return nil
	}
	clean := path.Clean("/" + rel)[1:]
	if clean == "" || clean != rel {
		return ErrInvalidPath
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(clean)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// URL 相对路径转为对外访问地址，空路径返回空串
func (s *ImageStore) URL(rel string) string {
	if rel == "" {
		return ""
	}
	return s.urlPrefix + "/" + rel
}
