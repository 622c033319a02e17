package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// App holds every environment-provided setting the service reads.
type App struct {
	// Server
	AppHost     string `envconfig:"APP_HOST" default:""`
	AppPort     string `envconfig:"APP_PORT" default:"5000"`
	FrontendURL string `envconfig:"FRONTEND_URL" default:"*"`

	Database

	// Identity provider
	PublicKeyURL string `envconfig:"PUBLIC_KEY_URL" required:"true"`

	// Payment processor
	StripeSecretKey string `envconfig:"STRIPE_SECRET_KEY" required:"true"`

	// Events (optional)
	RabbitURL      string `envconfig:"RABBIT_URL"`
	EventsExchange string `envconfig:"EVENTS_EXCHANGE" default:"parcel.events"`

	// Logging
	LogDir string `envconfig:"LOG_DIR" default:"log/app"`

	// Comma separated emails that always hold the admin role.
	AdminEmails []string `envconfig:"ADMIN_EMAILS"`
}

// Database holds the connection settings. DB_DSN wins over the individual
// fields when set.
type Database struct {
	DBDSN      string `envconfig:"DB_DSN"`
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBDatabase string `envconfig:"DB_DATABASE" default:"parcel_delivery"`
	DBUsername string `envconfig:"DB_USERNAME" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
}

// Load reads a .env file when present and then the process environment.
// A missing .env file is not an error.
func Load() (App, error) {
	loadErr := godotenv.Load()

	var c App
	if err := envconfig.Process("", &c); err != nil {
		if loadErr != nil {
			return c, fmt.Errorf("%w (no .env file: %v)", err, loadErr)
		}
		return c, err
	}
	return c, nil
}

// LoadDatabase reads only the database settings. The operator tools use it
// so they run without the server's credentials.
func LoadDatabase() (Database, error) {
	_ = godotenv.Load()

	var c Database
	err := envconfig.Process("", &c)
	return c, err
}

// DSN returns the PostgreSQL connection string.
func (c Database) DSN() string {
	if c.DBDSN != "" {
		return c.DBDSN
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUsername, c.DBPassword, c.DBDatabase, c.DBSSLMode)
}

// ListenAddr returns host:port for fiber's Listen.
func (c App) ListenAddr() string {
	return c.AppHost + ":" + c.AppPort
}
