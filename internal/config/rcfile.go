// Package config reads and writes the cloudphoto credentials file and
// resolves the runtime settings of a CLI invocation.
package config

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gfconfig "github.com/fulmenhq/gofulmen/config"
)

// Fixed storage defaults written by init.
const (
	DefaultRegion   = "ru-central1"
	DefaultEndpoint = "https://storage.yandexcloud.net"
)

// Credentials file keys.
const (
	KeyBucket          = "bucket"
	KeyAccessKeyID     = "aws_access_key_id"
	KeySecretAccessKey = "aws_secret_access_key"
	KeyRegion          = "region"
	KeyEndpointURL     = "endpoint_url"
)

var (
	// ErrConfigMissing indicates the credentials file does not exist.
	ErrConfigMissing = errors.New("configuration file is missing")

	// ErrConfigIncomplete indicates a required key is absent or blank.
	ErrConfigIncomplete = errors.New("not all parameters are defined in configuration file")
)

// Config is the content of the credentials file.
type Config struct {
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	EndpointURL     string
}

// NewConfig returns a Config for the default storage region and endpoint.
func NewConfig(accessKeyID, secretAccessKey, bucket string) *Config {
	return &Config{
		Bucket:          bucket,
		AccessKeyID:     accessKeyID,
		SecretAccessKey: secretAccessKey,
		Region:          DefaultRegion,
		EndpointURL:     DefaultEndpoint,
	}
}

// AppName names the per-user config directory.
const AppName = "cloudphoto"

// DefaultPath returns cloudphotorc inside the user's cloudphoto config
// directory (~/.config/cloudphoto on Linux).
func DefaultPath() (string, error) {
	dir := gfconfig.GetAppConfigDir(AppName)
	if dir == "" {
		return "", errors.New("cannot resolve user config directory")
	}
	return filepath.Join(dir, "cloudphotorc"), nil
}

// Load reads the credentials file at path.
//
// Each line is split at its first '='; key and value are trimmed. Lines
// without '=' (such as the [DEFAULT] header) are ignored.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigMissing, path)
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	params := Parse(data)
	cfg := &Config{
		Bucket:          params[KeyBucket],
		AccessKeyID:     params[KeyAccessKeyID],
		SecretAccessKey: params[KeySecretAccessKey],
		Region:          params[KeyRegion],
		EndpointURL:     params[KeyEndpointURL],
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse returns the key=value pairs of a credentials file. Later keys win.
func Parse(data []byte) map[string]string {
	params := make(map[string]string)
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		key, value, ok := strings.Cut(sc.Text(), "=")
		if !ok {
			continue
		}
		params[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return params
}

// Validate reports ErrConfigIncomplete naming the first blank key.
func (c *Config) Validate() error {
	fields := []struct {
		key, value string
	}{
		{KeyBucket, c.Bucket},
		{KeyAccessKeyID, c.AccessKeyID},
		{KeySecretAccessKey, c.SecretAccessKey},
		{KeyRegion, c.Region},
		{KeyEndpointURL, c.EndpointURL},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s", ErrConfigIncomplete, f.key)
		}
	}
	return nil
}

// Save writes cfg to path, creating the parent directory and replacing any
// existing file.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("[DEFAULT]\n")
	fmt.Fprintf(&buf, "%s = %s\n", KeyBucket, cfg.Bucket)
	fmt.Fprintf(&buf, "%s = %s\n", KeyAccessKeyID, cfg.AccessKeyID)
	fmt.Fprintf(&buf, "%s = %s\n", KeySecretAccessKey, cfg.SecretAccessKey)
	fmt.Fprintf(&buf, "%s = %s\n", KeyRegion, cfg.Region)
	fmt.Fprintf(&buf, "%s = %s\n", KeyEndpointURL, cfg.EndpointURL)

	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
