package main

import (
	"strings"
	"time"

	"github.com/samber/lo"
)

type Config struct {
	Host                 string        `env:"HOST,default=localhost"`
	Port                 int           `env:"PORT,default=8080"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
	JWTSecret            string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration    time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	BufferSize           int           `env:"BUFFER_SIZE,default=1024"` // per fan-out worker queue
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	NumberOfWorkers      int           `env:"NUMBER_OF_WORKERS,default=4"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,default=2s"`
	MetricInterval       time.Duration `env:"METRIC_INTERVAL,default=30s"`
	LowCapacityThreshold int           `env:"LOW_CAPACITY_THRESHOLD,default=16"`
	CORSAllowedOrigins   string        `env:"CORS_ALLOWED_ORIGINS,default=*"`
	CookieSecure         bool          `env:"COOKIE_SECURE,default=false"`
	LoginRateLimit       int           `env:"LOGIN_RATE_LIMIT,default=20"`
}

// AllowedOrigins splits the comma separated origin list.
func (c Config) AllowedOrigins() []string {
	origins := lo.Map(strings.Split(c.CORSAllowedOrigins, ","), func(origin string, _ int) string {
		return strings.TrimSpace(origin)
	})
	return lo.Compact(origins)
}
