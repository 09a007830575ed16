package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port string

	Store         string // memory | redis | sql
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	DatabaseURL   string

	Advisor        string // heuristic | remote
	AdvisorURL     string
	AdvisorTimeout time.Duration

	ExportEnabled     bool
	ExportDir         string
	ExportBucket      string
	S3Endpoint        string
	S3Region          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3PublicURL       string

	IdleLogout     time.Duration
	APIUser        string
	APIPass        string
	AllowedOrigins []string
}

// Load reads an optional .env file before FromEnv. Variables already set in
// the environment win.
func Load(files ...string) Config {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("could not read .env")
	}
	return FromEnv()
}

func FromEnv() Config {
	c := Config{}
	c.Port = getenv("PORT", "8080")
	c.Store = strings.ToLower(getenv("STORE", "memory"))
	c.RedisAddr = getenv("REDIS_ADDR", "localhost:6379")
	c.RedisPassword = os.Getenv("REDIS_PASSWORD")
	c.RedisDB = getint("REDIS_DB", 0)
	c.DatabaseURL = os.Getenv("DATABASE_URL")
	c.Advisor = strings.ToLower(getenv("ADVISOR", "heuristic"))
	c.AdvisorURL = os.Getenv("ADVISOR_URL")
	c.AdvisorTimeout = getduration("ADVISOR_TIMEOUT", 5*time.Second)
	c.ExportEnabled = getenv("EXPORT_ENABLED", "true") == "true"
	c.ExportDir = getenv("EXPORT_DIR", "./exports")
	c.ExportBucket = os.Getenv("EXPORT_BUCKET")
	c.S3Endpoint = os.Getenv("S3_ENDPOINT")
	c.S3Region = getenv("S3_REGION", "auto")
	c.S3AccessKeyID = os.Getenv("S3_ACCESS_KEY_ID")
	c.S3SecretAccessKey = os.Getenv("S3_SECRET_ACCESS_KEY")
	c.S3PublicURL = os.Getenv("S3_PUBLIC_URL")
	c.IdleLogout = getduration("IDLE_LOGOUT", time.Hour)
	c.APIUser = os.Getenv("API_USER")
	c.APIPass = os.Getenv("API_PASS")
	for _, o := range strings.Split(os.Getenv("ALLOWED_ORIGIN"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			c.AllowedOrigins = append(c.AllowedOrigins, o)
		}
	}
	return c
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	n, err := strconv.Atoi(os.Getenv(k))
	if err != nil {
		return def
	}
	return n
}

func getduration(k string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(k))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
