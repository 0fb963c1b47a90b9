package config

import "os"

type Config struct {
	Server    ServerConfig
	Auth      AuthConfig
	OIDC      OIDCConfig
	Postgres  PostgresConfig
	Storage   StorageConfig
	Embedding EmbeddingConfig
}

type ServerConfig struct {
	Addr           string
	BaseURL        string
	AllowedOrigins string
}

type AuthConfig struct {
	JWTSecret      string
	JWTAccessTTL   string
	JWTRefreshTTL  string
	AllowSignup    string
	CookieSecure   string
	CookieSameSite string
	CookieDomain   string
	CookiePath     string
	AdminUsername  string
	AdminEmail     string
	AdminPassword  string
}

type OIDCConfig struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

type StorageConfig struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

type EmbeddingConfig struct {
	APIKey string
}

func Load() Config {
	return Config{
		Server: ServerConfig{
			Addr:           getenv("LISTEN_ADDR", ":8080"),
			BaseURL:        getenv("BASE_URL", "http://localhost:8080"),
			AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
		},
		Auth: AuthConfig{
			JWTSecret:      os.Getenv("JWT_SECRET"),
			JWTAccessTTL:   getenv("JWT_ACCESS_TTL", "1h"),
			JWTRefreshTTL:  getenv("JWT_REFRESH_TTL", "168h"),
			AllowSignup:    os.Getenv("ALLOW_SIGNUP"),
			CookieSecure:   os.Getenv("AUTH_COOKIE_SECURE"),
			CookieSameSite: os.Getenv("AUTH_COOKIE_SAMESITE"),
			CookieDomain:   os.Getenv("AUTH_COOKIE_DOMAIN"),
			CookiePath:     os.Getenv("AUTH_COOKIE_PATH"),
			AdminUsername:  os.Getenv("ADMIN_USERNAME"),
			AdminEmail:     os.Getenv("ADMIN_EMAIL"),
			AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
		},
		OIDC: OIDCConfig{
			IssuerURL:    os.Getenv("OIDC_ISSUER"),
			ClientID:     os.Getenv("OIDC_CLIENT_ID"),
			ClientSecret: os.Getenv("OIDC_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("OIDC_REDIRECT_URL"),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getenv("PGHOST", "localhost"),
			Port:        getenv("PGPORT", "5432"),
			User:        os.Getenv("PGUSER"),
			Password:    os.Getenv("PGPASSWORD"),
			Database:    os.Getenv("PGDATABASE"),
			SSLMode:     getenv("PGSSLMODE", "disable"),
		},
		Storage: StorageConfig{
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			Region:    getenv("S3_REGION", "us-east-1"),
			Bucket:    os.Getenv("S3_BUCKET"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
		},
		Embedding: EmbeddingConfig{
			APIKey: os.Getenv("AI_API_KEY"),
		},
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
