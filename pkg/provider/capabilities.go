package provider

import (
	"context"
	"io"
)

// Optional provider capability interfaces.
//
// These interfaces are used for feature detection (type assertions). The core
// Provider interface remains intentionally small.

// ObjectPutter can create/overwrite objects from a stream.
//
// Site pages are published through this interface.
type ObjectPutter interface {
	PutObject(ctx context.Context, key string, body io.Reader, contentLength int64, contentType string) error
}

// ObjectGetter can download objects as a stream.
type ObjectGetter interface {
	GetObject(ctx context.Context, key string) (body io.ReadCloser, contentLength int64, err error)
}

// ObjectDeleter can delete objects.
type ObjectDeleter interface {
	DeleteObject(ctx context.Context, key string) error
}

// FileUploader copies a local file into the store.
type FileUploader interface {
	UploadFile(ctx context.Context, localPath, key string) error
}

// FileDownloader copies an object into a local file, creating or truncating it.
type FileDownloader interface {
	DownloadFile(ctx context.Context, key, localPath string) error
}

// BucketManager can probe and create the provider's bucket.
type BucketManager interface {
	// HeadBucket returns ErrBucketNotFound if the bucket does not exist.
	HeadBucket(ctx context.Context) error
	CreateBucket(ctx context.Context) error
}

// BucketPublisher can expose the bucket as a static website.
type BucketPublisher interface {
	// SetPublicRead grants anonymous read access to the bucket.
	SetPublicRead(ctx context.Context) error

	// ConfigureWebsite enables static website hosting with the given documents.
	ConfigureWebsite(ctx context.Context, indexDocument, errorDocument string) error
}

// ObjectURLer builds the public URL of an object.
type ObjectURLer interface {
	ObjectURL(key string) string
}

// WebsiteURLer reports where the bucket's website is served when that differs
// from the usual https://<bucket>.<website domain> form.
type WebsiteURLer interface {
	WebsiteURL() string
}
