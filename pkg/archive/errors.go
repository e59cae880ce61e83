package archive

import "errors"

// Error kinds. Every failure returned by this package matches exactly one of
// these with errors.Is.
var (
	// ErrNoAlbums indicates the bucket has no top-level prefixes.
	ErrNoAlbums = errors.New("there are no albums")

	// ErrAlbumEmptyOrMissing indicates a prefix listing returned no objects.
	// An empty album and a missing album look the same to the store.
	ErrAlbumEmptyOrMissing = errors.New("the album is empty or it doesn't exist")

	// ErrPhotoNotFound indicates the photo key does not exist.
	ErrPhotoNotFound = errors.New("the photo doesn't exist")

	// ErrUploadFileFailed indicates a single file could not be uploaded.
	ErrUploadFileFailed = errors.New("error uploading file")

	// ErrDeleteFailed indicates a delete call failed; earlier deletes are not rolled back.
	ErrDeleteFailed = errors.New("failed to delete")

	// ErrDirectoryUnavailable indicates a local directory could not be read or created.
	ErrDirectoryUnavailable = errors.New("the specified directory is not available")

	// ErrPublishFailed indicates the bucket ACL or website configuration was rejected.
	ErrPublishFailed = errors.New("failed to configure bucket for website hosting")

	// ErrStoreFailed indicates any other object store failure.
	ErrStoreFailed = errors.New("object store request failed")

	// ErrInvalidName indicates an album or photo name that cannot form a key.
	ErrInvalidName = errors.New("invalid album or photo name")
)

var kinds = []error{
	ErrNoAlbums,
	ErrAlbumEmptyOrMissing,
	ErrPhotoNotFound,
	ErrUploadFileFailed,
	ErrDeleteFailed,
	ErrDirectoryUnavailable,
	ErrPublishFailed,
	ErrStoreFailed,
	ErrInvalidName,
}

// Error is a classified archive failure.
type Error struct {
	// Kind is one of the Err* sentinels of this package.
	Kind error

	// Album is the album involved, if any.
	Album string

	// Name is the photo or file name involved, if any.
	Name string

	// Err is the underlying cause (usually a *provider.ProviderError or *fs.PathError).
	Err error
}

// Message returns the short user-facing description without the cause.
func (e *Error) Message() string {
	switch e.Kind {
	case ErrUploadFileFailed:
		return "error uploading file " + e.Name
	case ErrDeleteFailed:
		if e.Name != "" {
			return "failed to delete photo"
		}
		return "failed to delete album"
	case nil:
		return ErrStoreFailed.Error()
	}
	return e.Kind.Error()
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message() + ": " + e.Err.Error()
	}
	return e.Message()
}

// Is matches the error's Kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

// Unwrap returns the underlying cause so provider sentinels stay reachable.
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind sentinel err matches, or nil for foreign errors.
func KindOf(err error) error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

func storeError(album, name string, err error) error {
	return &Error{Kind: ErrStoreFailed, Album: album, Name: name, Err: err}
}
