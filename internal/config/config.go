package config

import "time"

type Duration struct {
	Duration time.Duration
}

type HTTPConfig struct {
	Addr              string   `yaml:"addr"`
	ReadHeaderTimeout Duration `yaml:"read_header_timeout"`
	IdleTimeout       Duration `yaml:"idle_timeout"`
	ShutdownTimeout   Duration `yaml:"shutdown_timeout"`
	MaxRequestBytes   int64    `yaml:"max_request_bytes"`

	// CORSOrigins lists allowed browser origins. Empty allows none.
	CORSOrigins []string `yaml:"cors_origins"`
}

type CatalogConfig struct {
	// BaseURL is the catalog backend root, e.g. http://catalog:9000.
	BaseURL       string   `yaml:"base_url"`
	LookupTimeout Duration `yaml:"lookup_timeout"`
	ImageTimeout  Duration `yaml:"image_timeout"`
	// MaxRetries is the number of additional attempts on transport errors and 5xx.
	MaxRetries    int   `yaml:"max_retries"`
	MaxImageBytes int64 `yaml:"max_image_bytes"`
}

type ImagesConfig struct {
	// MaxConcurrency caps in-flight image fetches per summary; 0 means one per item.
	MaxConcurrency int `yaml:"max_concurrency"`
	ThumbnailSize  int `yaml:"thumbnail_size"`
	// MaxPixels bounds width*height of a decoded image payload.
	MaxPixels int64 `yaml:"max_pixels"`
	// FallbackPath is where the placeholder image is served.
	FallbackPath string `yaml:"fallback_path"`
}

type RedisConfig struct {
	Addr      string   `yaml:"addr"`
	Password  string   `yaml:"password"`
	DB        int      `yaml:"db"`
	KeyPrefix string   `yaml:"key_prefix"`
	TTL       Duration `yaml:"ttl"`
}

type BlobstoreConfig struct {
	// Driver is "memory" or "redis".
	Driver string      `yaml:"driver"`
	Redis  RedisConfig `yaml:"redis"`
}

type SummaryConfig struct {
	SessionTTL      Duration `yaml:"session_ttl"`
	JanitorInterval Duration `yaml:"janitor_interval"`
}

type TelemetryConfig struct {
	ServiceName  string            `yaml:"service_name"`
	Version      string            `yaml:"version"`
	OtelEnabled  bool              `yaml:"otel_enabled"`
	OtelEndpoint string            `yaml:"otel_endpoint"`
	OtelInsecure bool              `yaml:"otel_insecure"`
	OtelHeaders  map[string]string `yaml:"otel_headers"`
	SampleRatio  float64           `yaml:"sample_ratio"`
}

type Config struct {
	Env       string          `yaml:"env"`
	HTTP      HTTPConfig      `yaml:"http"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Images    ImagesConfig    `yaml:"images"`
	Blobstore BlobstoreConfig `yaml:"blobstore"`
	Summary   SummaryConfig   `yaml:"summary"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

func (c *Config) IsProduction() bool {
	return c.Env == "prod" || c.Env == "production"
}
