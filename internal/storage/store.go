// Package storage сохраняет изображения рецептов локально или в S3.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// keyPrefix: каталог изображений рецептов внутри хранилища.
const keyPrefix = "recipes/images"

// Store сохраняет изображение и возвращает его публичный URL.
type Store interface {
	Save(ctx context.Context, img *Image) (string, error)
	Delete(ctx context.Context, url string) error
}

func newKey(ext string) string {
	return path.Join(keyPrefix, uuid.NewString()+ext)
}

// LocalStore пишет файлы в каталог, который раздаётся статикой по baseURL.
type LocalStore struct {
	dir     string
	baseURL string
}

func NewLocalStore(dir, baseURL string) *LocalStore {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &LocalStore{dir: dir, baseURL: baseURL}
}

func (s *LocalStore) Save(_ context.Context, img *Image) (string, error) {
	key := newKey(img.Ext)
	dst := filepath.Join(s.dir, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(dst), os.ModePerm); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}
	if err := os.WriteFile(dst, img.Data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return s.baseURL + key, nil
}

// Delete удаляет файл по его URL. URL чужого хранилища и отсутствующий
// файл не считаются ошибкой.
func (s *LocalStore) Delete(_ context.Context, url string) error {
	key, ok := strings.CutPrefix(url, s.baseURL)
	if !ok || key == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(path.Clean("/"+key))))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
