// Package archive implements album operations over an object store.
//
// An album is not a stored entity: it is the set of objects sharing the key
// prefix "<album>/". Album names are always derived from a fresh delimiter
// listing and never cached.
package archive

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/3leaps/cloudphoto/pkg/match"
	"github.com/3leaps/cloudphoto/pkg/provider"
)

// Delimiter separates the album name from the photo name in a key.
const Delimiter = "/"

// Archive runs album operations against one bucket.
type Archive struct {
	store  provider.Provider
	photos *match.Matcher
	log    *zap.Logger
}

// Options configures an Archive.
type Options struct {
	// Photos selects which files and keys are transferred. Defaults to match.Photos().
	Photos *match.Matcher

	// Logger receives per-call diagnostics. Defaults to a no-op logger.
	Logger *zap.Logger
}

// New creates an Archive over store.
func New(store provider.Provider, opts Options) *Archive {
	if opts.Photos == nil {
		opts.Photos = match.Photos()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Archive{store: store, photos: opts.Photos, log: opts.Logger}
}

// Store returns the underlying provider.
func (a *Archive) Store() provider.Provider {
	return a.store
}

// UploadReport summarizes an Upload call.
type UploadReport struct {
	// Uploaded lists the file names stored, in directory order.
	Uploaded []string

	// Failed holds one ErrUploadFileFailed error per file that could not be stored.
	Failed []*Error
}

// Upload stores every photo directly inside dir under "<album>/<name>".
//
// Subdirectories are not descended into. A failure on one file is recorded in
// the report and the remaining files are still attempted.
func (a *Archive) Upload(ctx context.Context, album, dir string) (*UploadReport, error) {
	if err := validateName(album); err != nil {
		return nil, err
	}
	up, ok := a.store.(provider.FileUploader)
	if !ok {
		return nil, storeError(album, "", provider.Unsupported(a.store, "UploadFile"))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &Error{Kind: ErrDirectoryUnavailable, Album: album, Err: err}
	}

	report := &UploadReport{}
	for _, entry := range entries {
		name := entry.Name()
		if !a.photos.Match(name) {
			continue
		}
		local := filepath.Join(dir, name)
		if st, err := os.Stat(local); err == nil && st.IsDir() {
			continue
		}

		key := albumPrefix(album) + name
		if err := up.UploadFile(ctx, local, key); err != nil {
			a.log.Warn("Upload failed", zap.String("file", local), zap.String("key", key), zap.Error(err))
			report.Failed = append(report.Failed, &Error{Kind: ErrUploadFileFailed, Album: album, Name: name, Err: err})
			continue
		}
		a.log.Debug("Uploaded photo", zap.String("file", local), zap.String("key", key))
		report.Uploaded = append(report.Uploaded, name)
	}
	return report, nil
}

// Download copies the album's photos into dir, creating it if needed.
//
// Only objects directly under the album prefix are considered. An album with
// no objects fails with ErrAlbumEmptyOrMissing; the first transfer failure
// aborts the download.
func (a *Archive) Download(ctx context.Context, album, dir string) (int, error) {
	if err := validateName(album); err != nil {
		return 0, err
	}
	down, ok := a.store.(provider.FileDownloader)
	if !ok {
		return 0, storeError(album, "", provider.Unsupported(a.store, "DownloadFile"))
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, &Error{Kind: ErrDirectoryUnavailable, Album: album, Err: err}
	}

	objects, err := a.listAlbum(ctx, album)
	if err != nil {
		return 0, err
	}
	objects = withoutMarker(objects, album)
	if len(objects) == 0 {
		return 0, &Error{Kind: ErrAlbumEmptyOrMissing, Album: album}
	}

	n := 0
	for _, obj := range objects {
		if !a.photos.Match(obj.Key) {
			continue
		}
		local := filepath.Join(dir, path.Base(obj.Key))
		if err := down.DownloadFile(ctx, obj.Key, local); err != nil {
			return n, storeError(album, path.Base(obj.Key), err)
		}
		a.log.Debug("Downloaded photo", zap.String("key", obj.Key), zap.String("file", local))
		n++
	}
	return n, nil
}

// Albums returns album names in store listing order.
func (a *Archive) Albums(ctx context.Context) ([]string, error) {
	lister, ok := a.store.(provider.DelimiterLister)
	if !ok {
		return nil, storeError("", "", provider.Unsupported(a.store, "ListWithDelimiter"))
	}
	res, err := provider.ListAllWithDelimiter(ctx, lister, "", Delimiter)
	if err != nil {
		return nil, storeError("", "", err)
	}
	names := AlbumNames(res.CommonPrefixes)
	if len(names) == 0 {
		return nil, &Error{Kind: ErrNoAlbums}
	}
	return names, nil
}

// AlbumNames maps top-level common prefixes to album names by stripping the
// trailing delimiter.
func AlbumNames(prefixes []string) []string {
	names := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		name := strings.TrimSuffix(p, Delimiter)
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	return names
}

// Contents returns the names of every object directly under the album
// (photos or not), with the album prefix stripped. Folder marker objects
// ("<album>/" itself) are not listed.
func (a *Archive) Contents(ctx context.Context, album string) ([]string, error) {
	if err := validateName(album); err != nil {
		return nil, err
	}
	objects, err := a.listAlbum(ctx, album)
	if err != nil {
		return nil, err
	}
	prefix := albumPrefix(album)
	objects = withoutMarker(objects, album)
	names := make([]string, 0, len(objects))
	for _, obj := range objects {
		names = append(names, strings.TrimPrefix(obj.Key, prefix))
	}
	if len(names) == 0 {
		return nil, &Error{Kind: ErrAlbumEmptyOrMissing, Album: album}
	}
	return names, nil
}

// PhotoKeys returns the full keys of the album's photos in listing order.
// An album without photos yields an empty slice, not an error.
func (a *Archive) PhotoKeys(ctx context.Context, album string) ([]string, error) {
	objects, err := a.listAlbum(ctx, album)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(objects))
	for _, obj := range objects {
		if a.photos.Match(obj.Key) {
			keys = append(keys, obj.Key)
		}
	}
	return keys, nil
}

// DeleteAlbum deletes every object directly under the album prefix and
// returns how many were removed. Deletion stops at the first failure.
func (a *Archive) DeleteAlbum(ctx context.Context, album string) (int, error) {
	if err := validateName(album); err != nil {
		return 0, err
	}
	del, ok := a.store.(provider.ObjectDeleter)
	if !ok {
		return 0, storeError(album, "", provider.Unsupported(a.store, "DeleteObject"))
	}

	objects, err := a.listAlbum(ctx, album)
	if err != nil {
		return 0, err
	}
	if len(objects) == 0 {
		return 0, &Error{Kind: ErrAlbumEmptyOrMissing, Album: album}
	}

	for i, obj := range objects {
		if err := del.DeleteObject(ctx, obj.Key); err != nil {
			a.log.Warn("Album delete stopped", zap.String("key", obj.Key), zap.Int("deleted", i), zap.Error(err))
			return i, &Error{Kind: ErrDeleteFailed, Album: album, Err: err}
		}
	}
	return len(objects), nil
}

// DeletePhoto deletes "<album>/<photo>" after checking it exists.
func (a *Archive) DeletePhoto(ctx context.Context, album, photo string) error {
	if err := validateName(album); err != nil {
		return err
	}
	if err := validateName(photo); err != nil {
		return err
	}
	del, ok := a.store.(provider.ObjectDeleter)
	if !ok {
		return storeError(album, photo, provider.Unsupported(a.store, "DeleteObject"))
	}

	key := albumPrefix(album) + photo
	if _, err := a.store.Head(ctx, key); err != nil {
		if provider.IsNotFound(err) {
			return &Error{Kind: ErrPhotoNotFound, Album: album, Name: photo, Err: err}
		}
		return storeError(album, photo, err)
	}
	if err := del.DeleteObject(ctx, key); err != nil {
		return &Error{Kind: ErrDeleteFailed, Album: album, Name: photo, Err: err}
	}
	return nil
}

// EnsureBucket creates the bucket when it does not exist yet.
// created reports whether a new bucket was made.
func (a *Archive) EnsureBucket(ctx context.Context) (created bool, err error) {
	bm, ok := a.store.(provider.BucketManager)
	if !ok {
		return false, storeError("", "", provider.Unsupported(a.store, "CreateBucket"))
	}
	err = bm.HeadBucket(ctx)
	if err == nil {
		return false, nil
	}
	if !provider.IsBucketNotFound(err) {
		return false, storeError("", "", err)
	}
	if err := bm.CreateBucket(ctx); err != nil {
		return false, storeError("", "", err)
	}
	return true, nil
}

// listAlbum returns the objects directly under the album prefix.
func (a *Archive) listAlbum(ctx context.Context, album string) ([]provider.ObjectSummary, error) {
	lister, ok := a.store.(provider.DelimiterLister)
	if !ok {
		return nil, storeError(album, "", provider.Unsupported(a.store, "ListWithDelimiter"))
	}
	res, err := provider.ListAllWithDelimiter(ctx, lister, albumPrefix(album), Delimiter)
	if err != nil {
		return nil, storeError(album, "", err)
	}
	return res.Objects, nil
}

// withoutMarker drops the folder marker object whose key is the album prefix itself.
func withoutMarker(objects []provider.ObjectSummary, album string) []provider.ObjectSummary {
	prefix := albumPrefix(album)
	out := objects[:0:0]
	for _, obj := range objects {
		if obj.Key != prefix {
			out = append(out, obj)
		}
	}
	return out
}

func albumPrefix(album string) string {
	return album + Delimiter
}

// validateName rejects names that would not map to exactly one key segment.
func validateName(name string) error {
	if strings.TrimSpace(name) == "" || strings.Contains(name, Delimiter) {
		return &Error{Kind: ErrInvalidName, Name: name}
	}
	return nil
}
