package storage

import (
	"context"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Local writes files under one directory per category and returns paths
// served by the application's static /uploads route.
type Local struct {
	baseDir string
	baseURL string // optional scheme://host prefix for returned URLs
	log     *zap.Logger
}

func NewLocal(baseDir, baseURL string, log *zap.Logger) (*Local, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, err
	}
	return &Local{
		baseDir: baseDir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		log:     log,
	}, nil
}

func (l *Local) Store(ctx context.Context, file *multipart.FileHeader, category string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dir := filepath.Join(l.baseDir, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := SafeFileName(file.Filename)
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", err
	}

	l.log.Info("file stored locally",
		zap.String("category", category),
		zap.String("file", name),
		zap.Int64("size", file.Size))

	return l.baseURL + "/uploads/" + category + "/" + name, nil
}

func (l *Local) Remove(ctx context.Context, url string) error {
	idx := strings.Index(url, "/uploads/")
	if idx < 0 {
		return nil
	}
	rel := path.Clean(url[idx+len("/uploads/"):])
	// never step outside the uploads root
	if rel == "." || strings.HasPrefix(rel, "..") || path.IsAbs(rel) {
		return nil
	}

	target := filepath.Join(l.baseDir, filepath.FromSlash(rel))
	if err := os.Remove(target); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	l.log.Info("file removed", zap.String("path", target))
	return nil
}
