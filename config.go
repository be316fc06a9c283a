package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config is read once at startup from the environment. A local .env file is
// loaded first without overriding variables that are already set.
type Config struct {
	Addr        string
	DataFile    string
	DatabaseDSN string
	JWTSecret   string
	// AdminToken protects mutating endpoints when no user database is
	// configured. Empty leaves them open, like the original deployment.
	AdminToken string
	BagCost    decimal.Decimal

	GmailCredentials string // OAuth client secret JSON path
	GmailToken       string // cached OAuth token path
	GmailSender      string // SMS-forwarder address to consume from

	IMAPAddr     string // host:port, implicit TLS
	IMAPUsername string
	IMAPPassword string
	IMAPSender   string

	SpoolDir     string
	PollInterval time.Duration
}

// defaultBagCost is the Rs. price of one ration bag.
const defaultBagCost = 4500

func LoadConfig() Config {
	_ = godotenv.Load()

	cfg := Config{
		Addr:             envDefault("ADDR", ":8081"),
		DataFile:         envDefault("DATA_FILE", "donations.json"),
		DatabaseDSN:      os.Getenv("DB_DSN"),
		JWTSecret:        envDefault("JWT_SECRET", "dev-insecure-secret-change"),
		AdminToken:       os.Getenv("ADMIN_TOKEN"),
		BagCost:          decimal.NewFromInt(defaultBagCost),
		GmailCredentials: os.Getenv("GMAIL_CREDENTIALS"),
		GmailToken:       envDefault("GMAIL_TOKEN", "token.json"),
		GmailSender:      os.Getenv("GMAIL_SENDER"),
		IMAPAddr:         os.Getenv("IMAP_ADDR"),
		IMAPUsername:     os.Getenv("IMAP_USERNAME"),
		IMAPPassword:     os.Getenv("IMAP_PASSWORD"),
		IMAPSender:       os.Getenv("IMAP_SENDER"),
		SpoolDir:         os.Getenv("SPOOL_DIR"),
		PollInterval:     30 * time.Second,
	}
	if v := os.Getenv("BAG_COST"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil && d.IsPositive() {
			cfg.BagCost = d
		}
	}
	if v := os.Getenv("POLL_INTERVAL"); v != "" {
		if dur, err := time.ParseDuration(v); err == nil && dur > 0 {
			cfg.PollInterval = dur
		}
	}
	return cfg
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
