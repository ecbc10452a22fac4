package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_SaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir, "/media")
	ctx := context.Background()

	url, err := store.Save(ctx, &Image{Data: pngBytes, ContentType: "image/png", Ext: ".png"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/media/recipes/images/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	onDisk := filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(url, "/media/")))
	data, err := os.ReadFile(onDisk)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)

	require.NoError(t, store.Delete(ctx, url))
	_, err = os.Stat(onDisk)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	// повторное удаление и чужие URL: не ошибка
	assert.NoError(t, store.Delete(ctx, url))
	assert.NoError(t, store.Delete(ctx, "https://cdn.example.com/x.png"))
}

type mockObjectAPI struct {
	mock.Mock
}

func (m *mockObjectAPI) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

func (m *mockObjectAPI) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.DeleteObjectOutput), args.Error(1)
}

func TestS3Store_Save(t *testing.T) {
	api := new(mockObjectAPI)
	store := newS3Store(api, "recipes", "https://cdn.example.com/")
	ctx := context.Background()

	var key string
	api.On("PutObject", ctx, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		body, _ := io.ReadAll(in.Body)
		key = *in.Key
		return *in.Bucket == "recipes" &&
			*in.ContentType == "image/png" &&
			strings.HasPrefix(*in.Key, "recipes/images/") &&
			string(body) == string(pngBytes)
	})).Return(&s3.PutObjectOutput{}, nil)

	url, err := store.Save(ctx, &Image{Data: pngBytes, ContentType: "image/png", Ext: ".png"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/"+key, url)
	api.AssertExpectations(t)
}

func TestS3Store_SaveError(t *testing.T) {
	api := new(mockObjectAPI)
	store := newS3Store(api, "recipes", "https://cdn.example.com")
	api.On("PutObject", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))

	_, err := store.Save(context.Background(), &Image{Data: pngBytes, ContentType: "image/png", Ext: ".png"})
	assert.ErrorContains(t, err, "access denied")
}

func TestS3Store_Delete(t *testing.T) {
	api := new(mockObjectAPI)
	store := newS3Store(api, "recipes", "https://cdn.example.com")
	ctx := context.Background()

	api.On("DeleteObject", ctx, mock.MatchedBy(func(in *s3.DeleteObjectInput) bool {
		return *in.Bucket == "recipes" && *in.Key == "recipes/images/a.png"
	})).Return(&s3.DeleteObjectOutput{}, nil).Once()

	require.NoError(t, store.Delete(ctx, "https://cdn.example.com/recipes/images/a.png"))
	require.NoError(t, store.Delete(ctx, "/media/recipes/images/a.png"))
	api.AssertExpectations(t)
}
