package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Server struct {
		Port string
		Host string
		TLS  struct {
			Enabled  bool
			CertFile string
			KeyFile  string
		}
		DeployDomain string
	}
	Database struct {
		DSN string
	}
	Invites struct {
		// BaseURL is the public address redemption links are built from
		BaseURL string
		// BlockDisposable rejects burner addresses at invite time. Off by
		// default: addresses are normally only validated at redemption.
		BlockDisposable bool
	}
	Resend struct {
		APIKey        string
		DefaultSender string
	}
	SMTP struct {
		Server        string
		Port          string
		Username      string
		Password      string
		UseTLS        bool
		UseSSL        bool
		DefaultSender string
	}
	Sentry struct {
		DSN string
	}
}

func Load() (*Config, error) {

	envStack := os.Getenv("ENV_STACK")

	if envStack != "" {
		filePath := "./env-files/.env." + envStack
		err := godotenv.Load(filePath)
		if err != nil {
			fmt.Printf("Error loading .env file: %s\n", err)
		}
	} else if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			fmt.Printf("Error loading .env file: %s\n", err)
		}
	}

	c := &Config{}

	// Server configuration with environment variable support
	c.Server.Port = os.Getenv("SERVER_PORT")
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}

	c.Server.Host = os.Getenv("SERVER_HOST")
	if c.Server.Host == "" {
		c.Server.Host = "localhost"
	}

	c.Server.DeployDomain = os.Getenv("DEPLOY_DOMAIN")
	if c.Server.DeployDomain == "" {
		c.Server.DeployDomain = c.Server.Host + ":" + c.Server.Port
	}

	// TLS Configuration
	useTLS := os.Getenv("USE_TLS")
	c.Server.TLS.Enabled = useTLS != "false" && useTLS != "0"
	c.Server.TLS.CertFile = "./certs/localhost.pem"
	c.Server.TLS.KeyFile = "./certs/localhost-key.pem"

	// The file: prefix selects the bundled sqlite driver, anything else
	// is treated as a postgres DSN
	c.Database.DSN = os.Getenv("DATABASE_DSN")
	if c.Database.DSN == "" {
		c.Database.DSN = "file:feedback.db"
	}

	c.Invites.BaseURL = os.Getenv("BASE_URL")
	if c.Invites.BaseURL == "" {
		c.Invites.BaseURL = fmt.Sprintf("https://%s", c.Server.DeployDomain)
	}
	c.Invites.BlockDisposable = os.Getenv("BLOCK_DISPOSABLE_EMAILS") == "true"

	c.Resend.APIKey = os.Getenv("RESEND_API_KEY")
	c.Resend.DefaultSender = os.Getenv("RESEND_DEFAULT_SENDER")
	if c.Resend.DefaultSender == "" {
		c.Resend.DefaultSender = "noreply@candorfeedback.com"
	}

	c.SMTP.Server = os.Getenv("MAIL_SERVER")
	c.SMTP.Port = os.Getenv("MAIL_PORT")
	if c.SMTP.Port == "" {
		c.SMTP.Port = "587"
	}
	c.SMTP.Username = os.Getenv("MAIL_USERNAME")
	c.SMTP.Password = os.Getenv("MAIL_PASSWORD")
	c.SMTP.UseTLS = os.Getenv("MAIL_USE_TLS") == "true"
	c.SMTP.UseSSL = os.Getenv("MAIL_USE_SSL") == "true"
	c.SMTP.DefaultSender = os.Getenv("MAIL_DEFAULT_SENDER")
	if c.SMTP.DefaultSender == "" {
		c.SMTP.DefaultSender = c.Resend.DefaultSender
	}

	c.Sentry.DSN = os.Getenv("SENTRY_DSN")

	return c, nil
}
