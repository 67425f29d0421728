package config

import (
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション設定を表す
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Reservation ReservationConfig
	Coupon      CouponConfig
	Metrics     MetricsConfig
}

// ServerConfig はサーバー設定
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig はデータベース設定
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig はRedis設定
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// ReservationConfig はホールド・リーパーの動作設定
type ReservationConfig struct {
	// TTL はホールドの有効期限（作成時に固定、延長不可）
	TTL time.Duration
	// ReaperInterval はリーパーの実行間隔
	ReaperInterval time.Duration
	// ReaperBatchSize は1回のスイープで処理する最大件数
	ReaperBatchSize int
	// PriceTolerance はクライアント提示額とサーバー再計算額の許容差（円）
	PriceTolerance int
	// AvailabilityCacheTTL は空席スナップショットキャッシュの有効期限
	AvailabilityCacheTTL time.Duration
	// CheckoutTTL はチェックアウトセッションの保持期限
	CheckoutTTL time.Duration
}

// CouponConfig は外部クーポン検証サービスの設定
type CouponConfig struct {
	BaseURL string
	Timeout time.Duration
}

// MetricsConfig はメトリクスエンドポイントの設定
type MetricsConfig struct {
	AuthToken string
}

// Load は環境変数から設定を読み込む
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "ticket_inventory"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Reservation: ReservationConfig{
			TTL:                  getDurationEnv("RESERVATION_TTL", 15*time.Minute),
			ReaperInterval:       getDurationEnv("REAPER_INTERVAL", 30*time.Second),
			ReaperBatchSize:      getIntEnv("REAPER_BATCH_SIZE", 100),
			PriceTolerance:       getIntEnv("PRICE_TOLERANCE", 0),
			AvailabilityCacheTTL: getDurationEnv("AVAILABILITY_CACHE_TTL", 10*time.Second),
			CheckoutTTL:          getDurationEnv("CHECKOUT_TTL", time.Hour),
		},
		Coupon: CouponConfig{
			BaseURL: getEnv("COUPON_SERVICE_URL", "http://localhost:8090"),
			Timeout: getDurationEnv("COUPON_SERVICE_TIMEOUT", 3*time.Second),
		},
		Metrics: MetricsConfig{
			AuthToken: getEnv("METRICS_AUTH_TOKEN", ""),
		},
	}
}

// DSN はPostgreSQL接続文字列を返す
func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" port=" + c.Port +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.DBName +
		" sslmode=" + c.SSLMode
}

// Addr はRedis接続アドレスを返す
func (c *RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
