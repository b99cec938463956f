package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/artsfront/internal/observability"
	"github.com/yungbote/artsfront/internal/platform/envutil"
)

const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", node.Line)
	}
	v, err := parseDuration(node.Value, node.ShortTag() == "!!str")
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	d.Duration = v
	return nil
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		d.Duration = 0
		return nil
	}
	quoted := len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"'
	if quoted {
		u, err := strconv.Unquote(s)
		if err != nil {
			return err
		}
		s = u
	}
	v, err := parseDuration(s, quoted)
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// parseDuration accepts "5s"-style strings or integer nanoseconds.
func parseDuration(s string, quoted bool) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "~" || s == "null" {
		return 0, nil
	}
	if !quoted {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.Duration(n), nil
		}
	}
	dd, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("duration must be a string like \"5s\" or an int nanoseconds: %w", err)
	}
	return dd, nil
}

func defaultConfig() *Config {
	return &Config{
		Env: "development",
		HTTP: HTTPConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: Duration{Duration: 5 * time.Second},
			IdleTimeout:       Duration{Duration: 2 * time.Minute},
			ShutdownTimeout:   Duration{Duration: 15 * time.Second},
			MaxRequestBytes:   1 << 20,
		},
		Catalog: CatalogConfig{
			BaseURL:       "http://localhost:9000",
			LookupTimeout: Duration{Duration: 10 * time.Second},
			ImageTimeout:  Duration{Duration: 15 * time.Second},
			MaxRetries:    0,
			MaxImageBytes: 10 << 20,
		},
		Images: ImagesConfig{
			MaxConcurrency: 0,
			ThumbnailSize:  320,
			MaxPixels:      40_000_000,
			FallbackPath:   "/placeholder-image.png",
		},
		Blobstore: BlobstoreConfig{
			Driver: DriverMemory,
			Redis: RedisConfig{
				Addr:      "localhost:6379",
				KeyPrefix: "artsfront:blob:",
				TTL:       Duration{Duration: time.Hour},
			},
		},
		Summary: SummaryConfig{
			SessionTTL:      Duration{Duration: 30 * time.Minute},
			JanitorInterval: Duration{Duration: time.Minute},
		},
		Telemetry: TelemetryConfig{
			ServiceName: "artsfront",
			SampleRatio: 1,
		},
	}
}

// Load builds the config from defaults, then the YAML file at
// ARTSFRONT_CONFIG_PATH (or ./config/config.yaml if present), then env overrides.
func Load() (*Config, error) {
	cfg := defaultConfig()

	cfgPath := strings.TrimSpace(os.Getenv("ARTSFRONT_CONFIG_PATH"))
	if cfgPath == "" {
		if wd, err := os.Getwd(); err == nil {
			p := filepath.Join(wd, "config", "config.yaml")
			if _, err := os.Stat(p); err == nil {
				cfgPath = p
			}
		}
	}
	if cfgPath != "" {
		b, err := os.ReadFile(cfgPath)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", cfgPath, err)
		}
	}

	applyEnv(cfg)
	if err := normalize(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v, ok := envutil.String("LOG_MODE"); ok {
		cfg.Env = v
	}
	if v, ok := envutil.String("ARTSFRONT_HTTP_ADDR"); ok {
		cfg.HTTP.Addr = v
	}
	if v, ok := envutil.String("ARTSFRONT_CORS_ORIGINS"); ok {
		cfg.HTTP.CORSOrigins = strings.Split(v, ",")
	}
	if v, ok := envutil.String("ARTSFRONT_CATALOG_BASE_URL"); ok {
		cfg.Catalog.BaseURL = v
	}
	cfg.Catalog.LookupTimeout.Duration = envutil.Duration("ARTSFRONT_CATALOG_LOOKUP_TIMEOUT", cfg.Catalog.LookupTimeout.Duration)
	cfg.Catalog.ImageTimeout.Duration = envutil.Duration("ARTSFRONT_CATALOG_IMAGE_TIMEOUT", cfg.Catalog.ImageTimeout.Duration)
	cfg.Catalog.MaxRetries = envutil.Int("ARTSFRONT_CATALOG_MAX_RETRIES", cfg.Catalog.MaxRetries)
	cfg.Images.MaxConcurrency = envutil.Int("ARTSFRONT_IMAGES_MAX_CONCURRENCY", cfg.Images.MaxConcurrency)
	if v, ok := envutil.String("ARTSFRONT_BLOBSTORE_DRIVER"); ok {
		cfg.Blobstore.Driver = v
	}
	if v, ok := envutil.String("ARTSFRONT_REDIS_ADDR"); ok {
		cfg.Blobstore.Redis.Addr = v
	}
	if v, ok := envutil.String("ARTSFRONT_REDIS_PASSWORD"); ok {
		cfg.Blobstore.Redis.Password = v
	}
	cfg.Telemetry.OtelEnabled = envutil.Bool("OTEL_ENABLED", cfg.Telemetry.OtelEnabled)
	if v, ok := envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT"); ok {
		cfg.Telemetry.OtelEndpoint = v
	}
	if v, ok := envutil.String("OTEL_EXPORTER_OTLP_HEADERS"); ok {
		cfg.Telemetry.OtelHeaders = observability.ParseHeaders(v)
	}
	if v, ok := envutil.String("OTEL_SERVICE_NAME"); ok {
		cfg.Telemetry.ServiceName = v
	}
}

func normalize(cfg *Config) error {
	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if strings.TrimSpace(cfg.HTTP.Addr) == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.HTTP.MaxRequestBytes <= 0 {
		cfg.HTTP.MaxRequestBytes = 1 << 20
	}
	if cfg.HTTP.ShutdownTimeout.Duration <= 0 {
		cfg.HTTP.ShutdownTimeout = Duration{Duration: 15 * time.Second}
	}
	origins := cfg.HTTP.CORSOrigins[:0]
	for _, o := range cfg.HTTP.CORSOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	cfg.HTTP.CORSOrigins = origins

	cfg.Catalog.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Catalog.BaseURL), "/")
	if cfg.Catalog.BaseURL == "" {
		return errors.New("catalog.base_url is required")
	}
	u, err := url.Parse(cfg.Catalog.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("catalog.base_url %q must be an absolute URL", cfg.Catalog.BaseURL)
	}
	if cfg.Catalog.LookupTimeout.Duration <= 0 {
		return errors.New("catalog.lookup_timeout must be > 0")
	}
	if cfg.Catalog.ImageTimeout.Duration <= 0 {
		return errors.New("catalog.image_timeout must be > 0")
	}
	if cfg.Catalog.MaxRetries < 0 {
		return errors.New("catalog.max_retries must be >= 0")
	}
	if cfg.Catalog.MaxImageBytes <= 0 {
		cfg.Catalog.MaxImageBytes = 10 << 20
	}

	if cfg.Images.MaxConcurrency < 0 {
		return errors.New("images.max_concurrency must be >= 0")
	}
	if cfg.Images.ThumbnailSize < 0 {
		return errors.New("images.thumbnail_size must be >= 0")
	}
	if cfg.Images.MaxPixels < 0 {
		return errors.New("images.max_pixels must be >= 0")
	}
	if cfg.Images.MaxPixels == 0 {
		cfg.Images.MaxPixels = 40_000_000
	}
	cfg.Images.FallbackPath = strings.TrimSpace(cfg.Images.FallbackPath)
	if cfg.Images.FallbackPath == "" {
		cfg.Images.FallbackPath = "/placeholder-image.png"
	}
	if !strings.HasPrefix(cfg.Images.FallbackPath, "/") {
		cfg.Images.FallbackPath = "/" + cfg.Images.FallbackPath
	}

	cfg.Blobstore.Driver = strings.ToLower(strings.TrimSpace(cfg.Blobstore.Driver))
	switch cfg.Blobstore.Driver {
	case "":
		cfg.Blobstore.Driver = DriverMemory
	case DriverMemory:
	case DriverRedis:
		if strings.TrimSpace(cfg.Blobstore.Redis.Addr) == "" {
			return errors.New("blobstore.redis.addr is required for the redis driver")
		}
		if cfg.Blobstore.Redis.TTL.Duration < 0 {
			return errors.New("blobstore.redis.ttl must be >= 0")
		}
	default:
		return fmt.Errorf("invalid blobstore.driver=%q", cfg.Blobstore.Driver)
	}

	if cfg.Summary.SessionTTL.Duration < 0 {
		return errors.New("summary.session_ttl must be >= 0")
	}
	if cfg.Summary.JanitorInterval.Duration <= 0 {
		cfg.Summary.JanitorInterval = Duration{Duration: time.Minute}
	}

	if strings.TrimSpace(cfg.Telemetry.ServiceName) == "" {
		cfg.Telemetry.ServiceName = "artsfront"
	}
	if cfg.Telemetry.SampleRatio <= 0 || cfg.Telemetry.SampleRatio > 1 {
		cfg.Telemetry.SampleRatio = 1
	}
	return nil
}
