package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/example/room-booking/internal/semester"
)

// SMTP holds the outbound mail relay settings. An empty Host disables mail.
type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Config captures environment driven configuration values for the booking
// server and the lesson importer.
type Config struct {
	HTTPPort int
	DBDriver string
	DBDSN    string

	JWTSecret      string
	TokenTTL       time.Duration
	CodeTTL        time.Duration
	BootstrapAdmin string

	Location       *time.Location
	SemesterStart  time.Time
	LessonBlocking bool

	MissedThreshold int
	MissedWindow    time.Duration
	SweepCron       string
	ImportCron      string

	ImportDir       string
	ImportOutput    string
	CrawlerCommand  []string
	CrawlerAttempts int
	CrawlerBackoff  time.Duration

	SMTP     SMTP
	LogLevel slog.Level
}

// DefaultDotEnv is the file LoadDotEnv reads when no paths are given.
const DefaultDotEnv = ".env"

// LoadDotEnv copies variables from the given files into the process
// environment without overriding values that are already set. Missing files
// are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{DefaultDotEnv}
	}
	present := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			present = append(present, p)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat %s: %w", p, err)
		}
	}
	if len(present) == 0 {
		return nil
	}
	if err := godotenv.Load(present...); err != nil {
		return fmt.Errorf("load %s: %w", strings.Join(present, ", "), err)
	}
	return nil
}

// Load parses configuration values from the current process environment.
//
// Optional values fall back to defaults. Every malformed value is collected
// and reported in a single error.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:        8080,
		DBDriver:        "sqlite",
		DBDSN:           "file:booking.db?_pragma=foreign_keys(1)",
		TokenTTL:        24 * time.Hour,
		CodeTTL:         60 * time.Second,
		SemesterStart:   semester.DefaultStart,
		LessonBlocking:  true,
		MissedThreshold: 3,
		MissedWindow:    30 * 24 * time.Hour,
		SweepCron:       "55 23 * * *",
		ImportCron:      "@every 1h",
		ImportDir:       "classroom_schedules",
		ImportOutput:    "all_lessons.csv",
		CrawlerAttempts: 5,
		CrawlerBackoff:  10 * time.Second,
		SMTP:            SMTP{Port: 465},
		LogLevel:        slog.LevelInfo,
	}

	r := &reader{}

	r.positiveInt("BOOKING_HTTP_PORT", &cfg.HTTPPort)
	if driver := r.value("BOOKING_DB_DRIVER"); driver != "" {
		switch driver {
		case "sqlite", "mysql":
			cfg.DBDriver = driver
		default:
			r.invalid = append(r.invalid, "BOOKING_DB_DRIVER")
		}
	}
	r.str("BOOKING_DB_DSN", &cfg.DBDSN)

	r.str("BOOKING_JWT_SECRET", &cfg.JWTSecret)
	r.duration("BOOKING_TOKEN_TTL", &cfg.TokenTTL)
	r.duration("BOOKING_CODE_TTL", &cfg.CodeTTL)
	r.str("BOOKING_BOOTSTRAP_ADMIN", &cfg.BootstrapAdmin)
	cfg.BootstrapAdmin = strings.ToLower(cfg.BootstrapAdmin)

	tz := "Asia/Shanghai"
	r.str("BOOKING_TIMEZONE", &tz)
	if loc, err := time.LoadLocation(tz); err != nil {
		r.invalid = append(r.invalid, "BOOKING_TIMEZONE")
	} else {
		cfg.Location = loc
	}

	if start := r.value("BOOKING_SEMESTER_START"); start != "" {
		parsed, err := time.Parse("2006-01-02", start)
		if err != nil {
			r.invalid = append(r.invalid, "BOOKING_SEMESTER_START")
		} else {
			cfg.SemesterStart = parsed
		}
	}
	r.boolean("BOOKING_LESSON_BLOCKING", &cfg.LessonBlocking)

	r.positiveInt("BOOKING_MISSED_THRESHOLD", &cfg.MissedThreshold)
	r.duration("BOOKING_MISSED_WINDOW", &cfg.MissedWindow)
	r.cronSpec("BOOKING_SWEEP_CRON", &cfg.SweepCron)
	r.cronSpec("BOOKING_IMPORT_CRON", &cfg.ImportCron)

	r.str("BOOKING_IMPORT_DIR", &cfg.ImportDir)
	r.str("BOOKING_IMPORT_OUTPUT", &cfg.ImportOutput)
	if cmd := r.value("BOOKING_CRAWLER_CMD"); cmd != "" {
		cfg.CrawlerCommand = strings.Fields(cmd)
	}
	r.positiveInt("BOOKING_CRAWLER_ATTEMPTS", &cfg.CrawlerAttempts)
	r.duration("BOOKING_CRAWLER_BACKOFF", &cfg.CrawlerBackoff)

	r.str("BOOKING_SMTP_HOST", &cfg.SMTP.Host)
	r.positiveInt("BOOKING_SMTP_PORT", &cfg.SMTP.Port)
	r.str("BOOKING_SMTP_USERNAME", &cfg.SMTP.Username)
	cfg.SMTP.Password = os.Getenv("BOOKING_SMTP_PASSWORD")
	r.str("BOOKING_SMTP_FROM", &cfg.SMTP.From)
	if cfg.SMTP.Host != "" && cfg.SMTP.From == "" {
		r.missing = append(r.missing, "BOOKING_SMTP_FROM")
	}

	if level := r.value("BOOKING_LOG_LEVEL"); level != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
			r.invalid = append(r.invalid, "BOOKING_LOG_LEVEL")
		}
	}

	if err := r.err(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// RequireServer reports the settings the HTTP server cannot run without.
func (c Config) RequireServer() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("missing required environment variables: BOOKING_JWT_SECRET")
	}
	return nil
}

// Calendar returns the semester calendar anchored at SemesterStart.
func (c Config) Calendar() semester.Calendar {
	return semester.NewCalendar(c.SemesterStart)
}

// Addr is the HTTP listen address.
func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.HTTPPort)
}

// reader collects missing and invalid variable names while parsing.
type reader struct {
	missing []string
	invalid []string
}

func (r *reader) value(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func (r *reader) str(key string, dst *string) {
	if v := r.value(key); v != "" {
		*dst = v
	}
}

func (r *reader) positiveInt(key string, dst *int) {
	v := r.value(key)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		r.invalid = append(r.invalid, key)
		return
	}
	*dst = n
}

func (r *reader) duration(key string, dst *time.Duration) {
	v := r.value(key)
	if v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		r.invalid = append(r.invalid, key)
		return
	}
	*dst = d
}

func (r *reader) boolean(key string, dst *bool) {
	v := r.value(key)
	if v == "" {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.invalid = append(r.invalid, key)
		return
	}
	*dst = b
}

// cronSpec accepts standard five-field expressions and descriptors. A
// variable set to "off" clears the schedule.
func (r *reader) cronSpec(key string, dst *string) {
	v := r.value(key)
	if v == "" {
		return
	}
	if strings.EqualFold(v, "off") {
		*dst = ""
		return
	}
	if _, err := cron.ParseStandard(v); err != nil {
		r.invalid = append(r.invalid, key)
		return
	}
	*dst = v
}

func (r *reader) err() error {
	if len(r.missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(r.missing, ", "))
	}
	if len(r.invalid) > 0 {
		return fmt.Errorf("invalid environment values: %s", strings.Join(r.invalid, ", "))
	}
	return nil
}
