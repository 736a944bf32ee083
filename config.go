package ulisp

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"github.com/AppKaki/blockly-ulisp/internal/gen"
)

type DatabaseConfig struct {
	Host         string
	Port         string `validate:"required_with=Host"`
	User         string
	Password     string
	DatabaseName string `validate:"required_with=Host"`
	SSLMode      string `validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`
}

// Enabled reports whether a database was configured.
func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

type RedisConfig struct {
	Host     string
	Port     string `validate:"required_with=Host"`
	Password string
	DB       int `validate:"min=0"`
	TTL      time.Duration
}

func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

type NatsConfig struct {
	URL     string
	Subject string `validate:"required_with=URL"`
}

func (n NatsConfig) Enabled() bool {
	return n.URL != ""
}

// JWTConfig protects the workspace and websocket routes when Secret is set.
type JWTConfig struct {
	Secret string `validate:"omitempty,min=16"`
}

type GeneratorConfig struct {
	Indent           string
	OneBasedIndex    bool
	StatementPrefix  string
	StatementSuffix  string
	InfiniteLoopTrap string
	CommentWrap      int `validate:"min=10"`
}

type AppConfig struct {
	Mode         string `validate:"oneof=dev prod test"`
	ApiPort      string `validate:"required"`
	LogLevel     string `validate:"oneof=debug info warn error"`
	Generator    GeneratorConfig
	MainDatabase DatabaseConfig
	RedisConfig  RedisConfig
	NatsConfig   NatsConfig
	JWTConfig    JWTConfig
}

// GeneratorOptions converts the generator settings for gen.NewGenerator.
func (c AppConfig) GeneratorOptions() gen.Options {
	return gen.Options{
		Indent:           c.Generator.Indent,
		OneBasedIndex:    c.Generator.OneBasedIndex,
		StatementPrefix:  c.Generator.StatementPrefix,
		StatementSuffix:  c.Generator.StatementSuffix,
		InfiniteLoopTrap: c.Generator.InfiniteLoopTrap,
		CommentWrap:      c.Generator.CommentWrap,
	}
}

var (
	config   AppConfig
	validate = validator.New()
)

// LoadConfig reads envfile, when given, then the environment. An empty
// envfile tries ".env" and tolerates its absence.
func LoadConfig(envfile string) (AppConfig, error) {
	if envfile == "" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return AppConfig{}, fmt.Errorf("load .env: %w", err)
		}
	} else if err := godotenv.Load(envfile); err != nil {
		return AppConfig{}, fmt.Errorf("load %s: %w", envfile, err)
	}

	var errs []error
	intEnv := func(key string, def int) int {
		v, err := getIntEnv(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}
	boolEnv := func(key string, def bool) bool {
		v, err := getBoolEnv(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}

	defaults := gen.DefaultOptions()
	cfg := AppConfig{
		Mode:     GetEnv("RUN_MODE", "prod"),
		ApiPort:  GetEnv("API_PORT", ":8080"),
		LogLevel: strings.ToLower(GetEnv("LOG_LEVEL", "info")),
		Generator: GeneratorConfig{
			Indent:           GetEnv("GEN_INDENT", defaults.Indent),
			OneBasedIndex:    boolEnv("GEN_ONE_BASED_INDEX", defaults.OneBasedIndex),
			StatementPrefix:  os.Getenv("GEN_STATEMENT_PREFIX"),
			StatementSuffix:  os.Getenv("GEN_STATEMENT_SUFFIX"),
			InfiniteLoopTrap: os.Getenv("GEN_INFINITE_LOOP_TRAP"),
			CommentWrap:      intEnv("GEN_COMMENT_WRAP", defaults.CommentWrap),
		},
		MainDatabase: DatabaseConfig{
			Host:         os.Getenv("DB_HOSTNAME"),
			Port:         GetEnv("DB_PORT", "5432"),
			User:         os.Getenv("DB_USERNAME"),
			Password:     os.Getenv("DB_PASSWORD"),
			DatabaseName: os.Getenv("DB_NAME"),
			SSLMode:      GetEnv("DB_SSL_MODE", "disable"),
		},
		RedisConfig: RedisConfig{
			Host:     os.Getenv("REDIS_HOST"),
			Port:     GetEnv("REDIS_PORT", "6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       intEnv("REDIS_DB", 0),
			TTL:      time.Duration(intEnv("REDIS_TTL_SECONDS", 3600)) * time.Second,
		},
		NatsConfig: NatsConfig{
			URL:     os.Getenv("NATS_URL"),
			Subject: GetEnv("NATS_SUBJECT", "program.generated"),
		},
		JWTConfig: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
		},
	}
	if err := errors.Join(errs...); err != nil {
		return AppConfig{}, err
	}
	if err := validate.Struct(cfg); err != nil {
		return AppConfig{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// InitConfig loads the configuration and connects every configured backend.
// Any failure is fatal.
func InitConfig(envfile string) {
	cfg, err := LoadConfig(envfile)
	if err != nil {
		log.Fatalf("Error loading configuration: %s", err)
	}
	config = cfg
	Logger = NewLogger(os.Stdout, cfg.LogLevel)

	if cfg.MainDatabase.Enabled() {
		db := cfg.MainDatabase
		DB = connectToPostgres(db.Host, db.User, db.Password, db.DatabaseName, db.Port, db.SSLMode)
	}
	if cfg.RedisConfig.Enabled() {
		r := cfg.RedisConfig
		Redis = connectToRedis(r.Host, r.Port, r.Password, r.DB)
	}
	if cfg.NatsConfig.Enabled() {
		Nats = connectToNats(cfg.NatsConfig.URL)
	}
}

func GetConfig() AppConfig {
	return config
}

func GetEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntEnv(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, raw)
	}
	return value, nil
}

func getBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", key, raw)
	}
	return value, nil
}

func connectToPostgres(host string, username string, password string, dbname string, port string, ssl string) *gorm.DB {
	var err error
	var db *gorm.DB
	var conn *sql.DB

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		host, username, password, dbname, port, ssl)
	if db, err = gorm.Open(postgres.Open(dsn),
		&gorm.Config{
			Logger: logger.New(
				log.New(os.Stdout, "\r\n", log.LstdFlags),
				logger.Config{
					SlowThreshold: 0,
					LogLevel:      logger.Error,
				},
			),
			TranslateError: true,
			NamingStrategy: schema.NamingStrategy{
				SingularTable: true,
			}}); err != nil {
		panic(err)
	}
	if conn, err = db.DB(); err != nil {
		panic(err)
	}
	conn.SetMaxIdleConns(10)
	conn.SetMaxOpenConns(10)
	conn.SetConnMaxLifetime(time.Hour)
	return db
}

// NewLogger builds the console logger writing to out at the named level;
// unknown levels fall back to info.
func NewLogger(out io.Writer, level string) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: "15:04:05",
		NoColor:    false,
		FormatLevel: func(i interface{}) string {
			return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
		},
		FormatMessage: func(i interface{}) string {
			return fmt.Sprintf("  %s  ", i)
		},
		FormatFieldName: func(i interface{}) string {
			return fmt.Sprintf("%s=", i)
		},
		FormatFieldValue: func(i interface{}) string {
			return fmt.Sprintf("%s", i)
		},
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(output).Level(lvl).With().Timestamp().Caller().Logger()
}

func connectToRedis(host string, port string, password string, db int) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		panic(fmt.Sprintf("Failed to connect to Redis: %v", err))
	}

	return client
}

func connectToNats(url string) *nats.Conn {
	nc, err := nats.Connect(url,
		nats.Name("blockly-ulisp"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				Logger.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			Logger.Info().Str("url", c.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to NATS: %v", err))
	}
	return nc
}
