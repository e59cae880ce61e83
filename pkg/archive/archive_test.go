package archive

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3leaps/cloudphoto/pkg/provider"
	"github.com/3leaps/cloudphoto/pkg/provider/file"
)

func newStore(t *testing.T, keys ...string) *file.Provider {
	t.Helper()
	p, err := file.New(file.Config{Root: t.TempDir(), Bucket: "photos"})
	require.NoError(t, err)
	require.NoError(t, p.CreateBucket(context.Background()))
	for _, k := range keys {
		require.NoError(t, p.PutObject(context.Background(), k, strings.NewReader("content of "+k), -1, ""))
	}
	return p
}

func keysOf(t *testing.T, p *file.Provider) []string {
	t.Helper()
	res, err := p.List(context.Background(), provider.ListOptions{})
	require.NoError(t, err)
	keys := make([]string, 0, len(res.Objects))
	for _, o := range res.Objects {
		keys = append(keys, o.Key)
	}
	return keys
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("local "+n), 0o644))
	}
}

// flakyStore fails selected calls of an otherwise working file provider.
type flakyStore struct {
	*file.Provider
	failUpload map[string]bool
	failDelete map[string]bool
	headErr    error
	deletes    []string
}

func (f *flakyStore) UploadFile(ctx context.Context, localPath, key string) error {
	if f.failUpload[filepath.Base(localPath)] {
		return &provider.ProviderError{Op: "UploadFile", Provider: provider.ProviderS3, Key: key, Err: provider.ErrThrottled}
	}
	return f.Provider.UploadFile(ctx, localPath, key)
}

func (f *flakyStore) DeleteObject(ctx context.Context, key string) error {
	f.deletes = append(f.deletes, key)
	if f.failDelete[key] {
		return &provider.ProviderError{Op: "DeleteObject", Provider: provider.ProviderS3, Key: key, Err: provider.ErrAccessDenied}
	}
	return f.Provider.DeleteObject(ctx, key)
}

func (f *flakyStore) Head(ctx context.Context, key string) (*provider.ObjectMeta, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	return f.Provider.Head(ctx, key)
}

// orderedLister returns fixed common prefixes and object keys in the given order.
type orderedLister struct {
	*file.Provider
	prefixes []string
	keys     []string
}

func (o *orderedLister) ListWithDelimiter(ctx context.Context, opts provider.ListWithDelimiterOptions) (*provider.ListWithDelimiterResult, error) {
	res := &provider.ListWithDelimiterResult{CommonPrefixes: o.prefixes}
	for _, k := range o.keys {
		res.Objects = append(res.Objects, provider.ObjectSummary{Key: k})
	}
	return res, nil
}

func TestUpload_OnlyTransfersPhotos(t *testing.T) {
	store := newStore(t)
	a := New(store, Options{})

	dir := t.TempDir()
	writeFiles(t, dir, "a.jpg", "b.jpeg", "c.png", "d.JPG", "notes.txt")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.jpg"), 0o755))
	writeFiles(t, filepath.Join(dir, "nested.jpg"), "inner.jpg")

	report, err := a.Upload(context.Background(), "trip", dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "b.jpeg"}, report.Uploaded)
	assert.Empty(t, report.Failed)
	assert.Equal(t, []string{"trip/a.jpg", "trip/b.jpeg"}, keysOf(t, store))
}

func TestUpload_ContinuesAfterFileFailure(t *testing.T) {
	store := &flakyStore{Provider: newStore(t), failUpload: map[string]bool{"a.jpg": true}}
	a := New(store, Options{})

	dir := t.TempDir()
	writeFiles(t, dir, "a.jpg", "b.jpg", "c.jpg")

	report, err := a.Upload(context.Background(), "trip", dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"b.jpg", "c.jpg"}, report.Uploaded)
	require.Len(t, report.Failed, 1)

	failed := report.Failed[0]
	assert.True(t, errors.Is(failed, ErrUploadFileFailed))
	assert.True(t, provider.IsTransient(failed))
	assert.Equal(t, "a.jpg", failed.Name)
	assert.Equal(t, "error uploading file a.jpg", failed.Message())
	assert.Equal(t, []string{"trip/b.jpg", "trip/c.jpg"}, keysOf(t, store.Provider))
}

func TestUpload_MissingDirectory(t *testing.T) {
	a := New(newStore(t), Options{})

	_, err := a.Upload(context.Background(), "trip", filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDirectoryUnavailable))
}

func TestDownload_CreatesDirectoryAndFilters(t *testing.T) {
	store := newStore(t, "trip/a.jpg", "trip/b.jpeg", "trip/c.png", "trip/d.JPG", "trip/f.Jpeg", "trip/raw/d.jpg", "other/e.jpg")
	a := New(store, Options{})

	dir := filepath.Join(t.TempDir(), "out", "trip")
	n, err := a.Download(context.Background(), "trip", dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	assert.Equal(t, []string{"a.jpg", "b.jpeg"}, names)

	data, err := os.ReadFile(filepath.Join(dir, "a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "content of trip/a.jpg", string(data))
}

func TestDownload_EmptyAlbum(t *testing.T) {
	a := New(newStore(t, "other/e.jpg"), Options{})

	n, err := a.Download(context.Background(), "trip", t.TempDir())
	require.Error(t, err)
	assert.Zero(t, n)
	assert.True(t, errors.Is(err, ErrAlbumEmptyOrMissing))
}

func TestDownload_DirectoryUnavailable(t *testing.T) {
	a := New(newStore(t, "trip/a.jpg"), Options{})

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	_, err := a.Download(context.Background(), "trip", filepath.Join(blocker, "sub"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDirectoryUnavailable))
}

func TestAlbums(t *testing.T) {
	t.Run("no albums", func(t *testing.T) {
		a := New(newStore(t, "index.html"), Options{})
		_, err := a.Albums(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNoAlbums))
	})

	t.Run("keeps listing order", func(t *testing.T) {
		a := New(&orderedLister{Provider: newStore(t), prefixes: []string{"vacation/", "family/"}}, Options{})
		names, err := a.Albums(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"vacation", "family"}, names)
	})

	t.Run("store failure", func(t *testing.T) {
		store, err := file.New(file.Config{Root: t.TempDir(), Bucket: "absent"})
		require.NoError(t, err)
		_, err = New(store, Options{}).Albums(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrStoreFailed))
		assert.True(t, provider.IsBucketNotFound(err))
	})
}

func TestAlbumNames(t *testing.T) {
	assert.Equal(t, []string{"vacation", "family"}, AlbumNames([]string{"vacation/", "family/"}))
	assert.Empty(t, AlbumNames([]string{"/"}))
	assert.Empty(t, AlbumNames(nil))
}

func TestContents(t *testing.T) {
	a := New(newStore(t, "trip/a.jpg", "trip/notes.txt", "trip/raw/x.jpg"), Options{})

	names, err := a.Contents(context.Background(), "trip")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "notes.txt"}, names)

	_, err = a.Contents(context.Background(), "absent")
	assert.True(t, errors.Is(err, ErrAlbumEmptyOrMissing))
}

func TestContents_SkipsFolderMarker(t *testing.T) {
	a := New(&orderedLister{Provider: newStore(t), keys: []string{"trip/", "trip/a.jpg"}}, Options{})

	names, err := a.Contents(context.Background(), "trip")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg"}, names)

	a = New(&orderedLister{Provider: newStore(t), keys: []string{"trip/"}}, Options{})
	_, err = a.Contents(context.Background(), "trip")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAlbumEmptyOrMissing))

	_, err = a.Download(context.Background(), "trip", t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAlbumEmptyOrMissing))
}

func TestPhotoKeys(t *testing.T) {
	a := New(newStore(t, "trip/a.jpg", "trip/notes.txt", "trip/b.jpeg"), Options{})

	keys, err := a.PhotoKeys(context.Background(), "trip")
	require.NoError(t, err)
	assert.Equal(t, []string{"trip/a.jpg", "trip/b.jpeg"}, keys)

	keys, err = a.PhotoKeys(context.Background(), "absent")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestDeleteAlbum(t *testing.T) {
	t.Run("missing album deletes nothing", func(t *testing.T) {
		store := &flakyStore{Provider: newStore(t, "other/a.jpg")}
		_, err := New(store, Options{}).DeleteAlbum(context.Background(), "trip")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrAlbumEmptyOrMissing))
		assert.Empty(t, store.deletes)
		assert.Equal(t, []string{"other/a.jpg"}, keysOf(t, store.Provider))
	})

	t.Run("deletes direct children", func(t *testing.T) {
		store := newStore(t, "trip/a.jpg", "trip/b.txt", "trip/raw/c.jpg", "other/d.jpg")
		n, err := New(store, Options{}).DeleteAlbum(context.Background(), "trip")
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, []string{"other/d.jpg", "trip/raw/c.jpg"}, keysOf(t, store))
	})

	t.Run("stops at first failure", func(t *testing.T) {
		store := &flakyStore{Provider: newStore(t, "trip/a.jpg", "trip/b.jpg", "trip/c.jpg"), failDelete: map[string]bool{"trip/b.jpg": true}}
		n, err := New(store, Options{}).DeleteAlbum(context.Background(), "trip")
		require.Error(t, err)
		assert.Equal(t, 1, n)
		assert.True(t, errors.Is(err, ErrDeleteFailed))
		assert.True(t, provider.IsAccessDenied(err))
		assert.Equal(t, "failed to delete album", err.(*Error).Message())
		assert.Equal(t, []string{"trip/b.jpg", "trip/c.jpg"}, keysOf(t, store.Provider))
	})
}

func TestDeletePhoto(t *testing.T) {
	t.Run("missing photo", func(t *testing.T) {
		store := &flakyStore{Provider: newStore(t, "trip/a.jpg")}
		err := New(store, Options{}).DeletePhoto(context.Background(), "trip", "zzz.jpg")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrPhotoNotFound))
		assert.Empty(t, store.deletes)
	})

	t.Run("deletes existing photo", func(t *testing.T) {
		store := newStore(t, "trip/a.jpg", "trip/b.jpg")
		require.NoError(t, New(store, Options{}).DeletePhoto(context.Background(), "trip", "a.jpg"))
		assert.Equal(t, []string{"trip/b.jpg"}, keysOf(t, store))
	})

	t.Run("head denied is not reported as missing", func(t *testing.T) {
		store := &flakyStore{Provider: newStore(t, "trip/a.jpg"), headErr: &provider.ProviderError{Op: "Head", Err: provider.ErrAccessDenied}}
		err := New(store, Options{}).DeletePhoto(context.Background(), "trip", "a.jpg")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrStoreFailed))
		assert.False(t, errors.Is(err, ErrPhotoNotFound))
		assert.True(t, provider.IsAccessDenied(err))
	})

	t.Run("delete failure", func(t *testing.T) {
		store := &flakyStore{Provider: newStore(t, "trip/a.jpg"), failDelete: map[string]bool{"trip/a.jpg": true}}
		err := New(store, Options{}).DeletePhoto(context.Background(), "trip", "a.jpg")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDeleteFailed))
		assert.Equal(t, "failed to delete photo", err.(*Error).Message())
	})
}

func TestEnsureBucket(t *testing.T) {
	store, err := file.New(file.Config{Root: t.TempDir(), Bucket: "photos"})
	require.NoError(t, err)
	a := New(store, Options{})

	created, err := a.EnsureBucket(context.Background())
	require.NoError(t, err)
	assert.True(t, created)

	created, err = a.EnsureBucket(context.Background())
	require.NoError(t, err)
	assert.False(t, created)
}

func TestInvalidNames(t *testing.T) {
	a := New(newStore(t), Options{})
	ctx := context.Background()

	_, err := a.Upload(ctx, "", t.TempDir())
	assert.True(t, errors.Is(err, ErrInvalidName))
	_, err = a.Download(ctx, "a/b", t.TempDir())
	assert.True(t, errors.Is(err, ErrInvalidName))
	_, err = a.DeleteAlbum(ctx, "  ")
	assert.True(t, errors.Is(err, ErrInvalidName))
	assert.True(t, errors.Is(a.DeletePhoto(ctx, "trip", "x/y.jpg"), ErrInvalidName))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, ErrNoAlbums, KindOf(&Error{Kind: ErrNoAlbums}))
	assert.Equal(t, ErrPhotoNotFound, KindOf(ErrPhotoNotFound))
	assert.Nil(t, KindOf(errors.New("other")))
}

func TestError_Error(t *testing.T) {
	err := &Error{Kind: ErrStoreFailed, Err: errors.New("boom")}
	assert.Equal(t, "object store request failed: boom", err.Error())
	assert.Equal(t, "the album is empty or it doesn't exist", (&Error{Kind: ErrAlbumEmptyOrMissing}).Error())
}
