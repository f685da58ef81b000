package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates application configuration values loaded from environment variables.
type Config struct {
	Env                string
	LogLevel           string
	HTTPAddr           string
	CORSOrigins        []string
	DefaultCurrency    string
	MongoURI           string
	MongoDB            string
	KafkaBrokers       []string
	KafkaTopicPrefix   string
	KafkaConsumerGroup string
	ChannelEventsTopic string
	IdempotencyTTL     time.Duration
	OutboxPollInterval time.Duration
	RetryBackoff       []time.Duration
	Fees               FeeSettings
	Calendar           CalendarSettings
	Schedules          ScheduleSettings
	FeedFetchTimeout   time.Duration
	JobTimeout         time.Duration
	S3Endpoint         string
	S3PublicEndpoint   string
	S3AccessKey        string
	S3SecretKey        string
	S3Bucket           string
	S3UseSSL           bool
	SeedUnitsFile      string
}

// FeeSettings are the raw fee terms. Rates are decimal fractions ("0.06").
// A non-empty Tiers table switches the service fee from flat to tiered.
type FeeSettings struct {
	ServiceFeeRate       string
	ProcessorPercentRate string
	ProcessorFixedMinor  int64
	Tiers                string
	CapMinor             int64
	WaiveFirstCompleted  bool
}

// CalendarSettings size occupancy windows, in days.
type CalendarSettings struct {
	MaxSpanDays     int
	WindowHorizon   int
	WindowThreshold int
	WindowExtension int
	WindowViewSpan  int
	SessionIdleTTL  time.Duration
}

// ScheduleSettings are cron specs; an empty spec disables the job.
type ScheduleSettings struct {
	SessionEviction     string
	FeedSync            string
	CalendarPublish     string
	IdempotencyEviction string
}

// InMemory reports whether record stores run in process. Only dev and local
// environments may run without Mongo.
func (c Config) InMemory() bool {
	return c.MongoURI == ""
}

// Load parses configuration from the current environment.
func Load() (Config, error) {
	cfg := Config{
		Env:                getEnv("APP_ENV", "dev"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		CORSOrigins:        strings.Split(getEnv("CORS_ORIGINS", "http://localhost:5173"), ","),
		DefaultCurrency:    strings.ToUpper(getEnv("CURRENCY", "USD")),
		MongoURI:           os.Getenv("MONGO_URI"),
		MongoDB:            getEnv("MONGO_DB", "rentavail"),
		KafkaTopicPrefix:   getEnv("KAFKA_TOPIC_PREFIX", ""),
		KafkaConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "rentavail-channel-import"),
		ChannelEventsTopic: getEnv("CHANNEL_EVENTS_TOPIC", "channel.events.v1"),
		S3Endpoint:         getEnv("S3_ENDPOINT", "http://localhost:9000"),
		S3PublicEndpoint:   getEnv("S3_PUBLIC_ENDPOINT", ""),
		S3AccessKey:        getEnv("S3_ACCESS_KEY", "minioadmin"),
		S3SecretKey:        getEnv("S3_SECRET_KEY", "minioadmin"),
		S3Bucket:           getEnv("S3_BUCKET", ""),
		SeedUnitsFile:      os.Getenv("SEED_UNITS_FILE"),
		Fees: FeeSettings{
			ServiceFeeRate:       getEnv("SERVICE_FEE_RATE", "0.06"),
			ProcessorPercentRate: getEnv("PROCESSOR_PERCENT_RATE", "0.029"),
			Tiers:                os.Getenv("SERVICE_FEE_TIERS"),
		},
		Schedules: ScheduleSettings{
			SessionEviction:     getEnv("SESSION_EVICT_CRON", "@every 5m"),
			FeedSync:            getEnv("FEED_SYNC_CRON", "@every 15m"),
			CalendarPublish:     getEnv("CALENDAR_PUBLISH_CRON", "@hourly"),
			IdempotencyEviction: getEnv("IDEMP_EVICT_CRON", "@every 10m"),
		},
	}
	brokers := getEnv("KAFKA_BROKERS", "")
	if brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	var err error
	if cfg.IdempotencyTTL, err = parseDurationEnv("IDEMP_TTL", 168*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.OutboxPollInterval, err = parseDurationEnv("OUTBOX_POLL_INTERVAL", 500*time.Millisecond); err != nil {
		return Config{}, err
	}
	if cfg.FeedFetchTimeout, err = parseDurationEnv("FEED_FETCH_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.JobTimeout, err = parseDurationEnv("JOB_TIMEOUT", 2*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.Calendar.SessionIdleTTL, err = parseDurationEnv("SESSION_IDLE_TTL", 30*time.Minute); err != nil {
		return Config{}, err
	}

	ints := []struct {
		key    string
		def    int
		target *int
	}{
		{"OCCUPANCY_MAX_SPAN_DAYS", 120, &cfg.Calendar.MaxSpanDays},
		{"WINDOW_HORIZON_DAYS", 90, &cfg.Calendar.WindowHorizon},
		{"WINDOW_THRESHOLD_DAYS", 30, &cfg.Calendar.WindowThreshold},
		{"WINDOW_EXTENSION_DAYS", 60, &cfg.Calendar.WindowExtension},
		{"WINDOW_VIEW_SPAN_DAYS", 31, &cfg.Calendar.WindowViewSpan},
	}
	for _, item := range ints {
		v, err := parseIntEnv(item.key, int64(item.def))
		if err != nil {
			return Config{}, err
		}
		*item.target = int(v)
	}
	if cfg.Fees.ProcessorFixedMinor, err = parseIntEnv("PROCESSOR_FIXED_MINOR", 20); err != nil {
		return Config{}, err
	}
	if cfg.Fees.CapMinor, err = parseIntEnv("SERVICE_FEE_CAP_MINOR", 0); err != nil {
		return Config{}, err
	}
	if cfg.Fees.WaiveFirstCompleted, err = parseBoolEnv("SERVICE_FEE_WAIVE_FIRST", false); err != nil {
		return Config{}, err
	}

	retryStr := getEnv("RETRY_BACKOFF", "1s,5s,30s")
	for _, raw := range strings.Split(retryStr, ",") {
		val := strings.TrimSpace(raw)
		if val == "" {
			continue
		}
		d, err := time.ParseDuration(val)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RETRY_BACKOFF component %q: %w", raw, err)
		}
		cfg.RetryBackoff = append(cfg.RetryBackoff, d)
	}
	useSSL, err := parseBoolEnv("S3_USE_SSL", false)
	if err != nil {
		return Config{}, err
	}
	cfg.S3UseSSL = useSSL
	if cfg.S3PublicEndpoint == "" {
		cfg.S3PublicEndpoint = cfg.S3Endpoint
	}

	if !devEnv(cfg.Env) {
		if cfg.MongoURI == "" {
			return Config{}, fmt.Errorf("MONGO_URI is required")
		}
		if len(cfg.KafkaBrokers) == 0 {
			return Config{}, fmt.Errorf("KAFKA_BROKERS is required")
		}
	}
	if cfg.Calendar.MaxSpanDays <= 0 {
		return Config{}, fmt.Errorf("OCCUPANCY_MAX_SPAN_DAYS must be positive")
	}
	return cfg, nil
}

func devEnv(env string) bool {
	switch strings.ToLower(env) {
	case "dev", "local", "test":
		return true
	}
	return false
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func parseIntEnv(key string, def int64) (int64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s integer: %w", key, err)
	}
	return v, nil
}

func parseBoolEnv(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "yes", "y", "on":
		return true, nil
	case "0", "f", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid %s boolean: %q", key, raw)
	}
}
