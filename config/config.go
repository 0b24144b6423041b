package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration loaded from environment variables
// Provide sane defaults for local development.
type Config struct {
	AppName string
	Env     string // development, staging, production
	Port    string
	GinMode string

	// Store: "mongodb" or "memory"
	StoreDriver string

	// MongoDB
	MongoURL             string
	MongoDatabase        string
	MongoUsersCollection string
	MongoConnectTimeout  time.Duration

	// Password hashing
	BcryptCost int

	// Redis (rate limiting); disabled when RedisAddr is empty
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	RateLimitPerMinute int
	RateLimitExempt    string // comma-separated CIDRs that skip the limiter

	// Client IP resolution
	TrustedProxies  string // comma-separated IPs/CIDRs allowed to set X-Forwarded-For
	TrustCloudflare bool   // read CF-Connecting-IP; only when reachable through Cloudflare alone

	// CORS
	CORSAllowedOrigins string // comma-separated

	// Mailgun
	MailgunDomain      string
	MailgunAPIKey      string
	MailgunSender      string
	MailgunAPIBase     string // empty keeps the US endpoint
	MailgunSendTimeout time.Duration

	// RabbitMQ; email jobs are not published when RabbitMQURL is empty
	RabbitMQURL        string
	RabbitMQEmailQueue string

	// Elasticsearch; search is disabled when ElasticsearchAddrs is empty
	ElasticsearchAddrs string // comma-separated
	ElasticsearchUser  string
	ElasticsearchPass  string
	ESUsersIndex       string

	// Company/Links for emails
	CompanyName    string
	CompanyAddress string
	LogoURL        string
	SupportURL     string
	PrivacyURL     string
	UnsubscribeURL string

	// Email sending toggle
	MailSendEnabled bool

	// Debug metrics (/api/debug/vars)
	DebugMetricsEnabled bool

	// HTTP access log toggle (Gin logger)
	HTTPLogEnabled bool
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getbool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid boolean for %s: %v, using default %v", key, err, def)
			return def
		}
		return b
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("invalid int for %s: %v, using default %d", key, err, def)
			return def
		}
		return i
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using default %v", key, err, def)
			return def
		}
		return d
	}
	return def
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		AppName: getenv("APP_NAME", "user-orders-api"),
		Env:     getenv("APP_ENV", "development"),
		Port:    getenv("PORT", "5000"),
		GinMode: getenv("GIN_MODE", "release"),

		StoreDriver: strings.ToLower(getenv("STORE_DRIVER", "mongodb")),

		MongoURL:             getenv("MONGODB_URL", "mongodb://localhost:27017"),
		MongoDatabase:        getenv("MONGODB_DATABASE", "usersdb"),
		MongoUsersCollection: getenv("MONGODB_USERS_COLLECTION", "users"),
		MongoConnectTimeout:  getdur("MONGODB_CONNECT_TIMEOUT", 10*time.Second),

		BcryptCost: getint("BCRYPT_COST", 10),

		RedisAddr:          getenv("REDIS_ADDR", ""),
		RedisPassword:      getenv("REDIS_PASSWORD", ""),
		RedisDB:            getint("REDIS_DB", 0),
		RateLimitPerMinute: getint("RATE_LIMIT_PER_MINUTE", 300),
		RateLimitExempt:    getenv("RATE_LIMIT_EXEMPT_CIDRS", ""),

		TrustedProxies:  getenv("TRUSTED_PROXIES", ""),
		TrustCloudflare: getbool("TRUST_CLOUDFLARE", false),

		CORSAllowedOrigins: getenv("CORS_ALLOWED_ORIGINS", "*"),

		MailgunDomain:      getenv("MAILGUN_DOMAIN", ""),
		MailgunAPIKey:      getenv("MAILGUN_API_KEY", ""),
		MailgunSender:      getenv("MAILGUN_SENDER", ""),
		MailgunAPIBase:     getenv("MAILGUN_API_BASE", ""),
		MailgunSendTimeout: getdur("MAILGUN_SEND_TIMEOUT", 10*time.Second),

		RabbitMQURL:        getenv("RABBITMQ_URL", ""),
		RabbitMQEmailQueue: getenv("RABBITMQ_EMAIL_QUEUE", "emails"),

		ElasticsearchAddrs: getenv("ELASTICSEARCH_ADDRS", ""),
		ElasticsearchUser:  getenv("ELASTICSEARCH_USERNAME", ""),
		ElasticsearchPass:  getenv("ELASTICSEARCH_PASSWORD", ""),
		ESUsersIndex:       getenv("ES_USERS_INDEX", "users"),

		CompanyName:    getenv("COMPANY_NAME", ""),
		CompanyAddress: getenv("COMPANY_ADDRESS", ""),
		LogoURL:        getenv("LOGO_URL", ""),
		SupportURL:     getenv("SUPPORT_URL", ""),
		PrivacyURL:     getenv("PRIVACY_URL", ""),
		UnsubscribeURL: getenv("UNSUBSCRIBE_URL", ""),

		MailSendEnabled: getbool("MAIL_SEND_ENABLED", false),

		DebugMetricsEnabled: getbool("DEBUG_METRICS_ENABLED", false),

		HTTPLogEnabled: getbool("HTTP_LOG_ENABLED", false),
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}

// CORSOrigins returns the allowed origins as slice
func (c *Config) CORSOrigins() []string {
	return splitList(c.CORSAllowedOrigins)
}

// AllowAllOrigins reports whether CORS_ALLOWED_ORIGINS is the wildcard.
func (c *Config) AllowAllOrigins() bool {
	origins := c.CORSOrigins()
	return len(origins) == 0 || (len(origins) == 1 && origins[0] == "*")
}

// ESAddrs returns Elasticsearch addresses as a slice
func (c *Config) ESAddrs() []string {
	return splitList(c.ElasticsearchAddrs)
}

// TrustedProxyList returns TRUSTED_PROXIES as a slice; empty means trust no proxy.
func (c *Config) TrustedProxyList() []string {
	return splitList(c.TrustedProxies)
}

// RateLimitExemptCIDRs returns RATE_LIMIT_EXEMPT_CIDRS as a slice.
func (c *Config) RateLimitExemptCIDRs() []string {
	return splitList(c.RateLimitExempt)
}
