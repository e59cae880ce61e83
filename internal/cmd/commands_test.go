package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3leaps/cloudphoto/internal/config"
	"github.com/3leaps/cloudphoto/pkg/provider"
	"github.com/3leaps/cloudphoto/pkg/provider/file"
)

type testArchive struct {
	rc     string
	root   string
	bucket string
}

// newTestArchive writes a credentials file pointing at a local directory bucket.
func newTestArchive(t *testing.T) *testArchive {
	t.Helper()
	a := &testArchive{
		rc:     filepath.Join(t.TempDir(), "cloudphotorc"),
		root:   t.TempDir(),
		bucket: "photos",
	}
	cfg := config.NewConfig("id", "secret", a.bucket)
	cfg.EndpointURL = "file://" + filepath.ToSlash(a.root)
	require.NoError(t, config.Save(a.rc, cfg))
	require.NoError(t, os.MkdirAll(a.bucketDir(), 0o755))
	return a
}

func (a *testArchive) bucketDir() string {
	return filepath.Join(a.root, a.bucket)
}

func (a *testArchive) put(t *testing.T, key, content string) {
	t.Helper()
	p := filepath.Join(a.bucketDir(), filepath.FromSlash(key))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func (a *testArchive) run(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	return runCLI(t, "", append([]string{"--config", a.rc}, args...)...)
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("data:"+n), 0o644))
	}
}

func TestConfigErrors(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		_, stderr, code := runCLI(t, "", "--config", filepath.Join(t.TempDir(), "absent"), "list")
		assert.Equal(t, exitFailure, code)
		assert.Equal(t, "Error: configuration file is missing\n", stderr)
	})

	t.Run("incomplete", func(t *testing.T) {
		rc := filepath.Join(t.TempDir(), "cloudphotorc")
		require.NoError(t, os.WriteFile(rc, []byte("[DEFAULT]\nbucket = photos\n"), 0o600))

		_, stderr, code := runCLI(t, "", "--config", rc, "mksite")
		assert.Equal(t, exitFailure, code)
		assert.Equal(t, "Error: not all parameters are defined in configuration file\n", stderr)
	})

	t.Run("env override", func(t *testing.T) {
		t.Setenv("CLOUDPHOTO_CONFIG", filepath.Join(t.TempDir(), "absent"))
		_, stderr, code := runCLI(t, "", "list")
		assert.Equal(t, exitFailure, code)
		assert.Contains(t, stderr, "configuration file is missing")
	})
}

func TestInit(t *testing.T) {
	rc := filepath.Join(t.TempDir(), "cfg", "cloudphotorc")
	root := t.TempDir()
	endpoint := "file://" + filepath.ToSlash(root)

	out, stderr, code := runCLI(t, "AKID\n\n  s3cret \nphotos\n", "--config", rc, "init", "--endpoint", endpoint)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "Enter aws_access_key_id: ")
	assert.Contains(t, out, "Enter aws_secret_access_key: ")
	assert.Contains(t, out, "Enter bucket name: ")
	assert.Contains(t, out, "Configuration saved\n")
	assert.Contains(t, out, "Created new bucket photos\n")
	assert.DirExists(t, filepath.Join(root, "photos"))

	cfg, err := config.Load(rc)
	require.NoError(t, err)
	assert.Equal(t, "AKID", cfg.AccessKeyID)
	assert.Equal(t, "s3cret", cfg.SecretAccessKey)
	assert.Equal(t, "photos", cfg.Bucket)
	assert.Equal(t, config.DefaultRegion, cfg.Region)
	assert.Equal(t, endpoint, cfg.EndpointURL)

	// The bucket exists now, so a second init only rewrites the file.
	out, _, code = runCLI(t, "AKID2\ns3cret\nphotos\n", "--config", rc, "init", "--endpoint", endpoint)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Configuration saved\n")
	assert.NotContains(t, out, "Created new bucket")
}

func TestInit_InputClosed(t *testing.T) {
	rc := filepath.Join(t.TempDir(), "cloudphotorc")
	_, stderr, code := runCLI(t, "AKID\n", "--config", rc, "init")
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "Error: failed to read aws_secret_access_key")
	assert.NoFileExists(t, rc)
}

func TestUpload(t *testing.T) {
	a := newTestArchive(t)
	dir := t.TempDir()
	writeFiles(t, dir, "a.jpg", "b.jpeg", "c.png", "d.JPG")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.jpg"), 0o755))
	require.NoError(t, os.Symlink(filepath.Join(dir, "gone"), filepath.Join(dir, "broken.jpg")))

	out, stderr, code := a.run(t, "upload", "--album", "trip", "--path", dir)
	assert.Equal(t, 0, code)
	assert.Equal(t, "Error uploading file broken.jpg\n", stderr)
	assert.Equal(t, "Uploaded 2 photos to album trip\n", out)

	assert.FileExists(t, filepath.Join(a.bucketDir(), "trip", "a.jpg"))
	assert.FileExists(t, filepath.Join(a.bucketDir(), "trip", "b.jpeg"))
	assert.NoFileExists(t, filepath.Join(a.bucketDir(), "trip", "c.png"))
	assert.NoFileExists(t, filepath.Join(a.bucketDir(), "trip", "d.JPG"))
	assert.NoDirExists(t, filepath.Join(a.bucketDir(), "trip", "nested.jpg"))
}

func TestUpload_DirectoryUnavailable(t *testing.T) {
	a := newTestArchive(t)
	_, stderr, code := a.run(t, "upload", "--album", "trip", "--path", filepath.Join(t.TempDir(), "absent"))
	assert.Equal(t, exitFailure, code)
	assert.Equal(t, "Error: the specified directory is not available\n", stderr)
}

func TestDownload(t *testing.T) {
	a := newTestArchive(t)
	a.put(t, "trip/a.jpg", "A")
	a.put(t, "trip/b.jpeg", "B")
	a.put(t, "trip/notes.txt", "N")
	a.put(t, "trip/deeper/c.jpg", "C")

	dest := filepath.Join(t.TempDir(), "new", "dir")
	out, stderr, code := a.run(t, "download", "--album", "trip", "--path", dest)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "Album downloaded successfully\n", out)

	data, err := os.ReadFile(filepath.Join(dest, "a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "A", string(data))
	assert.FileExists(t, filepath.Join(dest, "b.jpeg"))
	assert.NoFileExists(t, filepath.Join(dest, "notes.txt"))
	assert.NoFileExists(t, filepath.Join(dest, "c.jpg"))
}

func TestDownload_MissingAlbum(t *testing.T) {
	a := newTestArchive(t)
	a.put(t, "trip/a.jpg", "A")

	_, stderr, code := a.run(t, "download", "--album", "nope", "--path", t.TempDir())
	assert.Equal(t, exitFailure, code)
	assert.Equal(t, "Error: the album is empty or it doesn't exist\n", stderr)
}

func TestList(t *testing.T) {
	a := newTestArchive(t)

	_, stderr, code := a.run(t, "list")
	assert.Equal(t, exitFailure, code)
	assert.Equal(t, "Error: there are no albums\n", stderr)

	a.put(t, "vacation/1.jpg", "1")
	a.put(t, "vacation/readme.txt", "r")
	a.put(t, "family/2.jpg", "2")
	a.put(t, "index.html", "<html>")

	out, _, code := a.run(t, "list")
	assert.Equal(t, 0, code)
	assert.Equal(t, "family\nvacation\n", out)

	out, _, code = a.run(t, "list", "--album", "vacation")
	assert.Equal(t, 0, code)
	assert.Equal(t, "1.jpg\nreadme.txt\n", out)

	_, stderr, code = a.run(t, "list", "--album", "missing")
	assert.Equal(t, exitFailure, code)
	assert.Equal(t, "Error: the album is empty or it doesn't exist\n", stderr)
}

func TestDelete(t *testing.T) {
	a := newTestArchive(t)
	a.put(t, "trip/a.jpg", "A")
	a.put(t, "trip/b.jpg", "B")
	a.put(t, "home/c.jpg", "C")

	out, stderr, code := a.run(t, "delete", "--album", "trip", "--photo", "a.jpg")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "Photo deleted successfully\n", out)
	assert.NoFileExists(t, filepath.Join(a.bucketDir(), "trip", "a.jpg"))
	assert.FileExists(t, filepath.Join(a.bucketDir(), "trip", "b.jpg"))

	_, stderr, code = a.run(t, "delete", "--album", "trip", "--photo", "a.jpg")
	assert.Equal(t, exitFailure, code)
	assert.Equal(t, "Error: the photo doesn't exist\n", stderr)

	out, _, code = a.run(t, "delete", "--album", "trip")
	assert.Equal(t, 0, code)
	assert.Equal(t, "Album deleted successfully\n", out)
	assert.NoFileExists(t, filepath.Join(a.bucketDir(), "trip", "b.jpg"))
	assert.FileExists(t, filepath.Join(a.bucketDir(), "home", "c.jpg"))

	_, stderr, code = a.run(t, "delete", "--album", "trip")
	assert.Equal(t, exitFailure, code)
	assert.Equal(t, "Error: the album is empty or it doesn't exist\n", stderr)
}

func TestDelete_InvalidName(t *testing.T) {
	a := newTestArchive(t)
	_, stderr, code := a.run(t, "delete", "--album", "trip", "--photo", "../x.jpg")
	assert.Equal(t, exitFailure, code)
	assert.Equal(t, "Error: invalid album or photo name\n", stderr)
}

func TestMksite(t *testing.T) {
	a := newTestArchive(t)

	_, stderr, code := a.run(t, "mksite")
	assert.Equal(t, exitFailure, code)
	assert.Equal(t, "Error: there are no albums\n", stderr)

	a.put(t, "trip/a.jpg", "A")
	a.put(t, "trip/b.jpeg", "B")

	out, stderr, code := a.run(t, "mksite")
	require.Equal(t, 0, code, stderr)
	assert.True(t, strings.HasPrefix(out, "file://"), out)
	assert.True(t, strings.HasSuffix(out, "/photos/index.html\n"), out)

	for _, page := range []string{"index.html", "album1.html", "error.html"} {
		assert.FileExists(t, filepath.Join(a.bucketDir(), page))
	}
	album, err := os.ReadFile(filepath.Join(a.bucketDir(), "album1.html"))
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(album), "<img "))

	// Pages are regenerated and never listed as albums.
	out, _, code = a.run(t, "list")
	assert.Equal(t, 0, code)
	assert.Equal(t, "trip\n", out)
}

// deniedPublisher is a file bucket whose ACL and website calls are refused.
type deniedPublisher struct {
	*file.Provider
}

func (d deniedPublisher) SetPublicRead(ctx context.Context) error {
	return &provider.ProviderError{Op: "PutBucketAcl", Provider: provider.ProviderS3, Bucket: d.Bucket(), Err: provider.ErrAccessDenied}
}

func TestMksite_AccessDenied(t *testing.T) {
	a := newTestArchive(t)
	a.put(t, "trip/a.jpg", "A")

	orig := openStore
	t.Cleanup(func() { openStore = orig })
	openStore = func(ctx context.Context, cfg *config.Config) (provider.Provider, error) {
		root, _ := file.RootFromEndpoint(cfg.EndpointURL)
		p, err := file.New(file.Config{Root: root, Bucket: cfg.Bucket})
		if err != nil {
			return nil, err
		}
		return deniedPublisher{Provider: p}, nil
	}

	out, stderr, code := a.run(t, "mksite")
	assert.Equal(t, exitFailure, code)
	assert.Empty(t, out)
	assert.Equal(t, "Error: failed to configure bucket for website hosting: access denied\n", stderr)
	assert.NoFileExists(t, filepath.Join(a.bucketDir(), "index.html"))
}
