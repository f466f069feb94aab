package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/apascualco/campusgate/internal/domain"
)

type Config struct {
	Port               int      `envconfig:"PORT" default:"3000"`
	Env                string   `envconfig:"ENV" default:"development"`
	LogLevel           string   `envconfig:"LOG_LEVEL" default:"debug"`
	LogFormat          string   `envconfig:"LOG_FORMAT"`
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	CORSAllowedMethods []string `envconfig:"CORS_ALLOWED_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	CORSAllowedHeaders []string `envconfig:"CORS_ALLOWED_HEADERS" default:"Origin,Content-Type,Accept,Authorization,X-Request-ID"`
	ServiceToken       string   `envconfig:"SERVICE_TOKEN"`

	AuthServiceURL       string `envconfig:"AUTH_SERVICE_URL" default:"http://localhost:3002"`
	ProjectServiceURL    string `envconfig:"PROJECT_SERVICE_URL" default:"http://localhost:3003"`
	FilesServiceURL      string `envconfig:"FILES_SERVICE_URL" default:"http://localhost:3004"`
	ReportServiceURL     string `envconfig:"REPORT_SERVICE_URL" default:"http://localhost:3005"`
	EvaluationServiceURL string `envconfig:"EVALUATION_SERVICE_URL" default:"http://localhost:3006"`
	NotifServiceURL      string `envconfig:"NOTIF_SERVICE_URL" default:"http://localhost:3007"`
	PlagiarismServiceURL string `envconfig:"PLAGIARISM_SERVICE_URL" default:"http://localhost:3008"`

	DownstreamTimeout  time.Duration `envconfig:"DOWNSTREAM_TIMEOUT" default:"0s"`
	AggregationTimeout time.Duration `envconfig:"AGGREGATION_TIMEOUT" default:"0s"`
	ShutdownTimeout    time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	JWTSecret string `envconfig:"JWT_SECRET"`
	JWTIssuer string `envconfig:"JWT_ISSUER"`

	RedisURL          string        `envconfig:"REDIS_URL" default:""`
	RedisPoolSize     int           `envconfig:"REDIS_POOL_SIZE" default:"10"`
	RedisTimeout      time.Duration `envconfig:"REDIS_TIMEOUT" default:"3s"`
	RateLimitEnabled  bool          `envconfig:"RATE_LIMIT_ENABLED" default:"false"`
	RateLimitUserRPM  int           `envconfig:"RATE_LIMIT_USER_RPM" default:"100"`
	RateLimitIPRPM    int           `envconfig:"RATE_LIMIT_IP_RPM" default:"60"`
	RateLimitLoginRPM int           `envconfig:"RATE_LIMIT_LOGIN_RPM" default:"10"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`

	MetricsEnabled     bool              `envconfig:"METRICS_ENABLED" default:"true"`
	TraceExporter      string            `envconfig:"TRACE_EXPORTER" default:"noop"`
	TraceOTLPEndpoint  string            `envconfig:"TRACE_OTLP_ENDPOINT"`
	TraceOTLPHeaders   map[string]string `envconfig:"TRACE_OTLP_HEADERS"`
	TraceServiceName   string            `envconfig:"TRACE_SERVICE_NAME" default:"campusgate"`
	TraceBatchSize     int               `envconfig:"TRACE_BATCH_SIZE" default:"64"`
	TraceFlushInterval time.Duration     `envconfig:"TRACE_FLUSH_INTERVAL" default:"5s"`

	Version, Commit, BuildDate string
}

func Load(version, commit, buildDate string) (*Config, error) {
	if err := loadEnvFile(os.Getenv("ENV_FILE")); err != nil {
		return nil, err
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	cfg.Version, cfg.Commit, cfg.BuildDate = version, commit, buildDate
	return &cfg, nil
}

// loadEnvFile fills unset variables from a dotenv file. Variables already in
// the environment win. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (c *Config) ServiceURLs() map[domain.ServiceName]string {
	return map[domain.ServiceName]string{
		domain.ServiceAuth:       c.AuthServiceURL,
		domain.ServiceProject:    c.ProjectServiceURL,
		domain.ServiceFiles:      c.FilesServiceURL,
		domain.ServiceReport:     c.ReportServiceURL,
		domain.ServiceEvaluation: c.EvaluationServiceURL,
		domain.ServiceNotif:      c.NotifServiceURL,
		domain.ServicePlagiarism: c.PlagiarismServiceURL,
	}
}
