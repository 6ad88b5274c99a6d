package config

import (
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"rentflow/internal/infrastructure/db"

	"github.com/joho/godotenv"
	"github.com/teambition/rrule-go"
	"gorm.io/gorm/logger"
)

type Config struct {
	AppPort string

	DBDriver string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	PGHost    string
	PGPort    string
	PGDB      string
	PGUser    string
	PGPass    string
	PGSSLMode string

	SQLitePath string

	DBLogLevel string

	RedisAddr string
	RedisPass string
	RedisDB   int

	IdempTTLSecs int

	AccrualRule  string
	ReminderRule string
	CleanupRule  string
	LeaseTTLSecs int
	SchedulerTZ  string
	RunOnStartup bool
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getint(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("config: ignoring %s=%q, not a number", k, v)
	}
	return d
}

// Load reads the environment, preloading .env when there is one.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("config: loaded .env")
	}
	c := &Config{
		AppPort:  getenv("APP_PORT", "8080"),
		DBDriver: strings.ToLower(getenv("DB_DRIVER", db.DriverMySQL)),

		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "rentflow"),
		MySQLUser: getenv("MYSQL_USER", "rentflow"),
		MySQLPass: getenv("MYSQL_PASS", "rentflow"),

		PGHost:    getenv("PG_HOST", "postgres"),
		PGPort:    getenv("PG_PORT", "5432"),
		PGDB:      getenv("PG_DB", "rentflow"),
		PGUser:    getenv("PG_USER", "rentflow"),
		PGPass:    getenv("PG_PASS", "rentflow"),
		PGSSLMode: getenv("PG_SSLMODE", "disable"),

		SQLitePath: getenv("SQLITE_PATH", "rentflow.db"),

		DBLogLevel: strings.ToLower(getenv("DB_LOG_LEVEL", "warn")),

		RedisAddr: getenv("REDIS_ADDR", "redis:6379"),
		RedisPass: os.Getenv("REDIS_PASSWORD"),
		RedisDB:   getint("REDIS_DB", 0),

		IdempTTLSecs: getint("IDEMPOTENCY_TTL_SECONDS", 300),

		AccrualRule:  getenv("ACCRUAL_RRULE", "FREQ=DAILY;BYHOUR=2;BYMINUTE=0;BYSECOND=0"),
		ReminderRule: getenv("REMINDER_RRULE", "FREQ=WEEKLY;BYDAY=MO;BYHOUR=9;BYMINUTE=0;BYSECOND=0"),
		CleanupRule:  getenv("CLEANUP_RRULE", "FREQ=DAILY;BYHOUR=3;BYMINUTE=30;BYSECOND=0"),
		LeaseTTLSecs: getint("LEASE_TTL_SECONDS", 900),
		SchedulerTZ:  getenv("SCHEDULER_TZ", "UTC"),
	}
	c.RunOnStartup, _ = strconv.ParseBool(os.Getenv("SCHEDULER_RUN_ON_STARTUP"))
	return c
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.DBDriver {
	case db.DriverMySQL:
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case db.DriverPostgres:
		if c.PGHost == "" || c.PGPort == "" || c.PGDB == "" || c.PGUser == "" {
			return errors.New("missing Postgres config (PG_HOST/PORT/DB/USER)")
		}
		if _, err := net.LookupPort("tcp", c.PGPort); err != nil {
			return fmt.Errorf("invalid PG_PORT %q: %w", c.PGPort, err)
		}
	case db.DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.IdempTTLSecs <= 0 {
		return errors.New("IDEMPOTENCY_TTL_SECONDS must be positive")
	}
	if c.LeaseTTLSecs <= 0 {
		return errors.New("LEASE_TTL_SECONDS must be positive")
	}
	if _, err := time.LoadLocation(c.SchedulerTZ); err != nil {
		return fmt.Errorf("invalid SCHEDULER_TZ %q: %w", c.SchedulerTZ, err)
	}
	for name, rule := range map[string]string{
		"ACCRUAL_RRULE":  c.AccrualRule,
		"REMINDER_RRULE": c.ReminderRule,
		"CLEANUP_RRULE":  c.CleanupRule,
	} {
		if _, err := rrule.StrToROption(rule); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, rule, err)
		}
	}
	if _, ok := logLevels[c.DBLogLevel]; !ok {
		return fmt.Errorf("invalid DB_LOG_LEVEL %q", c.DBLogLevel)
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&loc=UTC&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.PGHost, c.PGPort, c.PGUser, c.PGPass, c.PGDB, c.PGSSLMode)
}

// DSN is the connection string for the configured driver.
func (c *Config) DSN() string {
	switch c.DBDriver {
	case db.DriverPostgres:
		return c.PostgresDSN()
	case db.DriverSQLite:
		return c.SQLitePath
	}
	return c.MySQLDSN()
}

var logLevels = map[string]logger.LogLevel{
	"silent": logger.Silent,
	"error":  logger.Error,
	"warn":   logger.Warn,
	"info":   logger.Info,
}

func (c *Config) GormLogLevel() logger.LogLevel {
	if l, ok := logLevels[c.DBLogLevel]; ok {
		return l
	}
	return logger.Warn
}

func (c *Config) IdempotencyTTL() time.Duration { return time.Duration(c.IdempTTLSecs) * time.Second }

func (c *Config) LeaseTTL() time.Duration { return time.Duration(c.LeaseTTLSecs) * time.Second }

// Location is the zone the schedules are evaluated in.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.SchedulerTZ)
	if err != nil {
		return time.UTC
	}
	return loc
}
