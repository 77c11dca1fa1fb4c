package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"appointment-scheduler/internal/domain/entity"
	"appointment-scheduler/pkg/apperror"
	"appointment-scheduler/pkg/calendar"

	"github.com/spf13/viper"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Schedule     ScheduleConfig
	Notification NotificationConfig
}

type AppConfig struct {
	Port     string
	Env      string
	LogLevel string
	Timezone string
	Location *time.Location
	// CORSAllowedOrigins lists browser origins allowed to call the API; "*" allows any.
	CORSAllowedOrigins []string
}

type DBConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	AutoMigrate  bool
}

type RedisConfig struct {
	Enabled     bool
	Host        string
	Port        string
	Password    string
	DB          int
	PoolSize    int
	DialTimeout time.Duration
}

type JWTConfig struct {
	Secret       string
	AccessExpiry time.Duration
}

// ScheduleConfig holds the system-wide working hours and booking concurrency settings.
type ScheduleConfig struct {
	WorkStartHour   int
	WorkEndHour     int
	SlotMinutes     int
	AllowReopen     bool
	LockDriver      string
	LockTTL         time.Duration
	LockWait        time.Duration
	DoctorCacheSize int
	DoctorCacheTTL  time.Duration
}

type NotificationConfig struct {
	Driver         string
	RedisChannel   string
	AMQPURI        string
	AMQPExchange   string
	BufferSize     int
	Workers        int
	PublishTimeout time.Duration
}

const (
	LockDriverLocal = "local"
	LockDriverRedis = "redis"

	NotifyDriverLog      = "log"
	NotifyDriverRedis    = "redis"
	NotifyDriverRabbitMQ = "rabbitmq"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_LOG_LEVEL", "info")
	v.SetDefault("APP_TIMEZONE", "Local")
	v.SetDefault("APP_CORS_ALLOWED_ORIGINS", "*")

	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_AUTO_MIGRATE", false)

	v.SetDefault("REDIS_ENABLED", true)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_POOL_SIZE", 20)
	v.SetDefault("REDIS_DIAL_TIMEOUT", "5s")

	v.SetDefault("JWT_ACCESS_EXPIRY", "15m")

	v.SetDefault("SCHEDULE_WORK_START_HOUR", 9)
	v.SetDefault("SCHEDULE_WORK_END_HOUR", 17)
	v.SetDefault("SCHEDULE_SLOT_MINUTES", 30)
	v.SetDefault("SCHEDULE_ALLOW_REOPEN", false)
	v.SetDefault("SCHEDULE_LOCK_DRIVER", LockDriverLocal)
	v.SetDefault("SCHEDULE_LOCK_TTL", "10s")
	v.SetDefault("SCHEDULE_LOCK_WAIT", "3s")
	v.SetDefault("SCHEDULE_DOCTOR_CACHE_SIZE", 1024)
	v.SetDefault("SCHEDULE_DOCTOR_CACHE_TTL", "1m")

	v.SetDefault("NOTIFY_DRIVER", NotifyDriverLog)
	v.SetDefault("NOTIFY_REDIS_CHANNEL", "appointments:events")
	v.SetDefault("NOTIFY_AMQP_EXCHANGE", "appointments")
	v.SetDefault("NOTIFY_BUFFER_SIZE", 256)
	v.SetDefault("NOTIFY_WORKERS", 2)
	v.SetDefault("NOTIFY_PUBLISH_TIMEOUT", "5s")
}

// LoadConfig reads path (an optional .env file) and the environment.
// Environment variables win over the file.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var pathErr *fs.PathError
		if !errors.As(err, &pathErr) {
			return nil, err
		}
	}

	loc, err := time.LoadLocation(v.GetString("APP_TIMEZONE"))
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInvalidConfiguration, "invalid APP_TIMEZONE", err)
	}

	config := &Config{
		App: AppConfig{
			Port:     v.GetString("APP_PORT"),
			Env:      v.GetString("APP_ENV"),
			LogLevel: v.GetString("APP_LOG_LEVEL"),
			Timezone: v.GetString("APP_TIMEZONE"),
			Location: loc,

			CORSAllowedOrigins: splitList(v.GetString("APP_CORS_ALLOWED_ORIGINS")),
		},
		DB: DBConfig{
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetString("DB_PORT"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			Name:         v.GetString("DB_NAME"),
			SSLMode:      v.GetString("DB_SSLMODE"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
			AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
		},
		Redis: RedisConfig{
			Enabled:     v.GetBool("REDIS_ENABLED"),
			Host:        v.GetString("REDIS_HOST"),
			Port:        v.GetString("REDIS_PORT"),
			Password:    v.GetString("REDIS_PASSWORD"),
			DB:          v.GetInt("REDIS_DB"),
			PoolSize:    v.GetInt("REDIS_POOL_SIZE"),
			DialTimeout: v.GetDuration("REDIS_DIAL_TIMEOUT"),
		},
		JWT: JWTConfig{
			Secret:       v.GetString("JWT_SECRET"),
			AccessExpiry: v.GetDuration("JWT_ACCESS_EXPIRY"),
		},
		Schedule: ScheduleConfig{
			WorkStartHour:   v.GetInt("SCHEDULE_WORK_START_HOUR"),
			WorkEndHour:     v.GetInt("SCHEDULE_WORK_END_HOUR"),
			SlotMinutes:     v.GetInt("SCHEDULE_SLOT_MINUTES"),
			AllowReopen:     v.GetBool("SCHEDULE_ALLOW_REOPEN"),
			LockDriver:      v.GetString("SCHEDULE_LOCK_DRIVER"),
			LockTTL:         v.GetDuration("SCHEDULE_LOCK_TTL"),
			LockWait:        v.GetDuration("SCHEDULE_LOCK_WAIT"),
			DoctorCacheSize: v.GetInt("SCHEDULE_DOCTOR_CACHE_SIZE"),
			DoctorCacheTTL:  v.GetDuration("SCHEDULE_DOCTOR_CACHE_TTL"),
		},
		Notification: NotificationConfig{
			Driver:         v.GetString("NOTIFY_DRIVER"),
			RedisChannel:   v.GetString("NOTIFY_REDIS_CHANNEL"),
			AMQPURI:        v.GetString("NOTIFY_AMQP_URI"),
			AMQPExchange:   v.GetString("NOTIFY_AMQP_EXCHANGE"),
			BufferSize:     v.GetInt("NOTIFY_BUFFER_SIZE"),
			Workers:        v.GetInt("NOTIFY_WORKERS"),
			PublishTimeout: v.GetDuration("NOTIFY_PUBLISH_TIMEOUT"),
		},
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	s := c.Schedule
	if err := calendar.Validate(s.WorkStartHour, s.WorkEndHour, s.SlotMinutes); err != nil {
		return err
	}

	switch s.LockDriver {
	case LockDriverLocal:
	case LockDriverRedis:
		if !c.Redis.Enabled {
			return apperror.New(apperror.KindInvalidConfiguration, "SCHEDULE_LOCK_DRIVER=redis requires REDIS_ENABLED")
		}
	default:
		return apperror.Newf(apperror.KindInvalidConfiguration, "unknown SCHEDULE_LOCK_DRIVER %q", s.LockDriver)
	}

	switch c.Notification.Driver {
	case NotifyDriverLog:
	case NotifyDriverRedis:
		if !c.Redis.Enabled {
			return apperror.New(apperror.KindInvalidConfiguration, "NOTIFY_DRIVER=redis requires REDIS_ENABLED")
		}
	case NotifyDriverRabbitMQ:
		if c.Notification.AMQPURI == "" {
			return apperror.New(apperror.KindInvalidConfiguration, "NOTIFY_DRIVER=rabbitmq requires NOTIFY_AMQP_URI")
		}
	default:
		return apperror.Newf(apperror.KindInvalidConfiguration, "unknown NOTIFY_DRIVER %q", c.Notification.Driver)
	}

	if s.LockWait <= 0 || s.LockTTL <= 0 {
		return apperror.New(apperror.KindInvalidConfiguration, "SCHEDULE_LOCK_WAIT and SCHEDULE_LOCK_TTL must be positive")
	}

	if c.Notification.PublishTimeout <= 0 {
		return apperror.New(apperror.KindInvalidConfiguration, "NOTIFY_PUBLISH_TIMEOUT must be positive")
	}

	if c.Notification.BufferSize <= 0 || c.Notification.Workers <= 0 {
		return apperror.New(apperror.KindInvalidConfiguration, "NOTIFY_BUFFER_SIZE and NOTIFY_WORKERS must be positive")
	}

	return nil
}

// splitList parses a comma separated env value, dropping blanks.
func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// DefaultWorkingHours returns the system-wide slot policy.
func (s ScheduleConfig) DefaultWorkingHours() entity.WorkingHours {
	return entity.WorkingHours{
		StartHour:   s.WorkStartHour,
		EndHour:     s.WorkEndHour,
		SlotMinutes: s.SlotMinutes,
	}
}
