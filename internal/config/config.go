// Package config layers launchdash settings: built-in defaults, an optional
// YAML file, LAUNCHDASH_* environment variables, then command-line flags
// (applied by the caller).
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"launchdash/internal/blob"
	"launchdash/internal/chart"
	"launchdash/internal/storage"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LAUNCHDASH_"

// Config is the full runtime configuration.
type Config struct {
	ListenAddr string        `yaml:"listen_addr"`
	Dataset    DatasetConfig `yaml:"dataset"`
	Blob       BlobConfig    `yaml:"blob"`
	Storage    StorageConfig `yaml:"storage"`
	Chart      ChartConfig   `yaml:"chart"`
	Exports    ExportsConfig `yaml:"exports"`
}

// DatasetConfig locates the launch CSV. BlobKey, when set, wins over Path.
type DatasetConfig struct {
	Path    string `yaml:"path"`
	BlobKey string `yaml:"blob_key"`
}

// BlobConfig selects the artifact store.
type BlobConfig struct {
	Driver string   `yaml:"driver"`
	FSRoot string   `yaml:"fs_root"`
	S3     S3Config `yaml:"s3"`
}

// S3Config configures the S3 blob driver.
type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	Prefix          string `yaml:"prefix"`
	PathStyle       bool   `yaml:"path_style"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	SessionToken    string `yaml:"session_token"`
}

// StorageConfig selects the export record store.
type StorageConfig struct {
	Driver      string `yaml:"driver"`
	SQLitePath  string `yaml:"sqlite_path"`
	PostgresDSN string `yaml:"postgres_dsn"`
}

// ChartConfig sizes rendered charts in pixels.
type ChartConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// ExportsConfig toggles the export worker and its routes.
type ExportsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ListenAddr: ":8050",
		Dataset:    DatasetConfig{Path: "spacex_launch_dash.csv"},
		Blob:       BlobConfig{Driver: string(blob.DriverFilesystem), FSRoot: "./blobdata"},
		Storage:    StorageConfig{Driver: string(storage.DriverSQLite), SQLitePath: "launchdash.db"},
		Chart:      ChartConfig{Width: chart.DefaultWidth, Height: chart.DefaultHeight},
		Exports:    ExportsConfig{Enabled: true},
	}
}

// Load returns defaults overlaid with the YAML file at path (skipped when
// path is empty) and then the process environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := cfg.decodeYAML(bytes.NewReader(b)); err != nil {
			return Config{}, fmt.Errorf("decode config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) decodeYAML(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overlays LAUNCHDASH_* variables found through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"LISTEN_ADDR":               &c.ListenAddr,
		"DATASET_PATH":              &c.Dataset.Path,
		"DATASET_BLOB_KEY":          &c.Dataset.BlobKey,
		"BLOB_DRIVER":               &c.Blob.Driver,
		"BLOB_FS_ROOT":              &c.Blob.FSRoot,
		"BLOB_S3_BUCKET":            &c.Blob.S3.Bucket,
		"BLOB_S3_REGION":            &c.Blob.S3.Region,
		"BLOB_S3_ENDPOINT":          &c.Blob.S3.Endpoint,
		"BLOB_S3_PREFIX":            &c.Blob.S3.Prefix,
		"BLOB_S3_ACCESS_KEY_ID":     &c.Blob.S3.AccessKeyID,
		"BLOB_S3_SECRET_ACCESS_KEY": &c.Blob.S3.SecretAccessKey,
		"BLOB_S3_SESSION_TOKEN":     &c.Blob.S3.SessionToken,
		"STORAGE_DRIVER":            &c.Storage.Driver,
		"SQLITE_PATH":               &c.Storage.SQLitePath,
		"POSTGRES_DSN":              &c.Storage.PostgresDSN,
	}
	for name, dst := range strs {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	ints := map[string]*int{
		"CHART_WIDTH":  &c.Chart.Width,
		"CHART_HEIGHT": &c.Chart.Height,
	}
	for name, dst := range ints {
		if v, ok := lookup(EnvPrefix + name); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
			}
			*dst = n
		}
	}
	bools := map[string]*bool{
		"BLOB_S3_PATH_STYLE": &c.Blob.S3.PathStyle,
		"EXPORTS_ENABLED":    &c.Exports.Enabled,
	}
	for name, dst := range bools {
		if v, ok := lookup(EnvPrefix + name); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
			}
			*dst = b
		}
	}
	return nil
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.ListenAddr) == "" {
		errs = append(errs, errors.New("listen_addr must not be empty"))
	}
	if c.Dataset.Path == "" && c.Dataset.BlobKey == "" {
		errs = append(errs, errors.New("dataset.path or dataset.blob_key required"))
	}
	switch blob.Driver(c.Blob.Driver) {
	case "", blob.DriverFilesystem, blob.DriverMemory:
	case blob.DriverS3:
		if c.Blob.S3.Bucket == "" {
			errs = append(errs, errors.New("blob.s3.bucket required for the s3 driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown blob.driver %q", c.Blob.Driver))
	}
	switch storage.Driver(c.Storage.Driver) {
	case "", storage.DriverMemory, storage.DriverSQLite, storage.DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("unknown storage.driver %q", c.Storage.Driver))
	}
	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		errs = append(errs, fmt.Errorf("chart size must be positive, got %dx%d", c.Chart.Width, c.Chart.Height))
	}
	return errors.Join(errs...)
}

// BlobConfig converts the blob section for blob.Open.
func (c Config) BlobConfig() blob.Config {
	s3 := c.Blob.S3
	return blob.Config{
		Driver: blob.Driver(c.Blob.Driver),
		FSRoot: c.Blob.FSRoot,
		S3: blob.S3Config{
			Bucket:          s3.Bucket,
			Region:          s3.Region,
			Endpoint:        s3.Endpoint,
			Prefix:          s3.Prefix,
			PathStyle:       s3.PathStyle,
			AccessKeyID:     s3.AccessKeyID,
			SecretAccessKey: s3.SecretAccessKey,
			SessionToken:    s3.SessionToken,
		},
	}
}

// StorageConfig converts the storage section for storage.Open.
func (c Config) StorageConfig() storage.Config {
	return storage.Config{
		Driver:      storage.Driver(c.Storage.Driver),
		SQLitePath:  c.Storage.SQLitePath,
		PostgresDSN: c.Storage.PostgresDSN,
	}
}

// ChartOptions converts the chart section for the renderer.
func (c Config) ChartOptions() chart.Options {
	return chart.Options{Width: c.Chart.Width, Height: c.Chart.Height}
}
