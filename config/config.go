package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/xhit/go-str2duration/v2"
)

type App struct {
	Symbol    string `validate:"required"`
	Interval  string `validate:"required"`
	Mode      string `validate:"required,oneof=PAPER LIVE SHADOW"`
	Bus       string `validate:"required,oneof=redis memory"`
	LogLevel  string `validate:"required"`
	LogFormat string `validate:"oneof=plain json"`
	LogFile   string
}

type Database struct {
	Driver   string `validate:"required,oneof=mysql postgres sqlite"`
	Host     string `validate:"required_unless=Driver sqlite"`
	Port     string `validate:"required_unless=Driver sqlite"`
	Name     string `validate:"required"`
	User     string
	Password string
}

type Redis struct {
	Addr          string `validate:"required"`
	Password      string
	DB            int   `validate:"gte=0"`
	StreamMaxLen  int64 `validate:"gt=0"`
	Group         string
	MaxDeliveries int64         `validate:"gt=0"`
	ClaimIdle     time.Duration `validate:"gt=0"`
}

type Strategy struct {
	EMAFast       int     `validate:"gt=0"`
	EMASlow       int     `validate:"gtfield=EMAFast"`
	RSIOversold   float64 `validate:"gte=0,lte=100"`
	RSIOverbought float64 `validate:"gtfield=RSIOversold,lte=100"`
}

type Risk struct {
	MaxPositionSize      float64 `validate:"gt=0"`
	MaxDailyLoss         float64 `validate:"gt=0"`
	MaxConsecutiveLosses int     `validate:"gt=0"`
}

type Execution struct {
	FeePct           float64 `validate:"gte=0,lt=1"`
	SlippagePct      float64 `validate:"gte=0,lt=1"`
	PositionSizeUSDT float64 `validate:"gt=0"`
}

type Backtest struct {
	InitialCapital  float64 `validate:"gt=0"`
	MinSharpe       float64
	MinWinRate      float64 `validate:"gte=0,lte=1"`
	MinProfitFactor float64 `validate:"gte=0"`
	MaxDrawdownPct  float64 `validate:"gt=0"`
	TrainingDays    int     `validate:"gt=0"`
	ValidationDays  int     `validate:"gte=0,ltfield=TrainingDays"`
	Activate        bool
	ExportPath      string
}

type Executor struct {
	WindowSize          int           `validate:"gt=0"`
	MaxSignalsPerMinute int           `validate:"gt=0"`
	CheckInterval       time.Duration `validate:"gt=0"`
	BlockTimeout        time.Duration `validate:"gt=0"`
	RetryBackoff        time.Duration `validate:"gt=0"`
	ModelPollInterval   time.Duration `validate:"gt=0"`
}

type Telegram struct {
	Enabled bool
	Token   string `validate:"required_if=Enabled true"`
	ChatID  string `validate:"required_if=Enabled true"`
}

type Binance struct {
	APIKey    string
	APISecret string
	Testnet   bool
}

type Config struct {
	App       App
	Database  Database
	Redis     Redis
	Strategy  Strategy
	Risk      Risk
	Execution Execution
	Backtest  Backtest
	Executor  Executor
	Telegram  Telegram
	Binance   Binance
}

// LoadFile loads the env file into the process environment when it exists,
// then reads the configuration.
func LoadFile(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err != nil {
				return nil, fmt.Errorf("error loading %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}
	return Load()
}

// Load reads the configuration from the environment, applying defaults
func Load() (*Config, error) {
	r := &reader{}
	cfg := &Config{
		App: App{
			Symbol:    strings.ToUpper(r.str("SYMBOL", "BTCUSDT")),
			Interval:  r.str("INTERVAL", "1m"),
			Mode:      strings.ToUpper(r.str("TRADING_MODE", "PAPER")),
			Bus:       strings.ToLower(r.str("BUS", "redis")),
			LogLevel:  r.str("LOG_LEVEL", "info"),
			LogFormat: strings.ToLower(r.str("LOG_FORMAT", "plain")),
			LogFile:   r.str("LOG_FILE", ""),
		},
		Database: Database{
			Driver:   strings.ToLower(r.str("DB_DRIVER", "postgres")),
			Host:     r.str("DB_HOST", "localhost"),
			Port:     r.str("DB_PORT", "5432"),
			Name:     r.str("DB_NAME", "trading"),
			User:     r.str("DB_USER", "trader"),
			Password: r.str("DB_PASSWORD", ""),
		},
		Redis: Redis{
			Addr:          r.str("REDIS_ADDR", "localhost:6379"),
			Password:      r.str("REDIS_PASSWORD", ""),
			DB:            r.int("REDIS_DB", 0),
			StreamMaxLen:  int64(r.int("REDIS_STREAM_MAXLEN", 10000)),
			Group:         r.str("REDIS_GROUP", "trader"),
			MaxDeliveries: int64(r.int("REDIS_MAX_DELIVERIES", 5)),
			ClaimIdle:     r.duration("REDIS_CLAIM_IDLE", time.Minute),
		},
		Strategy: Strategy{
			EMAFast:       r.int("STRATEGY_EMA_FAST", 9),
			EMASlow:       r.int("STRATEGY_EMA_SLOW", 21),
			RSIOversold:   r.float("STRATEGY_RSI_OVERSOLD", 30),
			RSIOverbought: r.float("STRATEGY_RSI_OVERBOUGHT", 70),
		},
		Risk: Risk{
			MaxPositionSize:      r.float("RISK_MAX_POSITION_SIZE", 1000),
			MaxDailyLoss:         r.float("RISK_MAX_DAILY_LOSS", 500),
			MaxConsecutiveLosses: r.int("RISK_MAX_CONSECUTIVE_LOSSES", 3),
		},
		Execution: Execution{
			FeePct:           r.float("EXECUTION_FEE_PCT", 0.001),
			SlippagePct:      r.float("EXECUTION_SLIPPAGE_PCT", 0.001),
			PositionSizeUSDT: r.float("EXECUTION_POSITION_SIZE_USDT", 100),
		},
		Backtest: Backtest{
			InitialCapital:  r.float("BACKTEST_INITIAL_CAPITAL", 10000),
			MinSharpe:       r.float("BACKTEST_MIN_SHARPE", 1.2),
			MinWinRate:      r.float("BACKTEST_MIN_WIN_RATE", 0.45),
			MinProfitFactor: r.float("BACKTEST_MIN_PROFIT_FACTOR", 1.5),
			MaxDrawdownPct:  r.float("BACKTEST_MAX_DRAWDOWN_PCT", 15),
			TrainingDays:    r.int("BACKTEST_TRAINING_DAYS", 180),
			ValidationDays:  r.int("BACKTEST_VALIDATION_DAYS", 30),
			Activate:        r.bool("BACKTEST_ACTIVATE", true),
			ExportPath:      r.str("BACKTEST_EXPORT_PATH", ""),
		},
		Executor: Executor{
			WindowSize:          r.int("EXECUTOR_WINDOW_SIZE", 250),
			MaxSignalsPerMinute: r.int("EXECUTOR_MAX_SIGNALS_PER_MINUTE", 5),
			CheckInterval:       r.duration("EXECUTOR_CHECK_INTERVAL", 60*time.Second),
			BlockTimeout:        r.duration("EXECUTOR_BLOCK_TIMEOUT", 5*time.Second),
			RetryBackoff:        r.duration("EXECUTOR_RETRY_BACKOFF", 10*time.Second),
			ModelPollInterval:   r.duration("EXECUTOR_MODEL_POLL_INTERVAL", 60*time.Second),
		},
		Telegram: Telegram{
			Enabled: r.bool("TELEGRAM_ENABLED", false),
			Token:   r.str("TELEGRAM_TOKEN", ""),
			ChatID:  r.str("TELEGRAM_CHAT_ID", ""),
		},
		Binance: Binance{
			APIKey:    r.str("BINANCE_API_KEY", ""),
			APISecret: r.str("BINANCE_API_SECRET", ""),
			Testnet:   r.bool("BINANCE_TESTNET", true),
		},
	}
	if r.err != nil {
		return nil, r.err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New()

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.App.Mode == "LIVE" && (c.Binance.APIKey == "" || c.Binance.APISecret == "") {
		return fmt.Errorf("invalid configuration: LIVE mode requires BINANCE_API_KEY and BINANCE_API_SECRET")
	}
	return nil
}

// reader keeps the first parse error so Load can report it once
type reader struct {
	err error
}

func (r *reader) str(key string, def string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return def
}

func (r *reader) int(key string, def int) int {
	value := r.str(key, "")
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		r.fail(key, value, err)
		return def
	}
	return parsed
}

func (r *reader) float(key string, def float64) float64 {
	value := r.str(key, "")
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		r.fail(key, value, err)
		return def
	}
	return parsed
}

func (r *reader) bool(key string, def bool) bool {
	value := r.str(key, "")
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		r.fail(key, value, err)
		return def
	}
	return parsed
}

func (r *reader) duration(key string, def time.Duration) time.Duration {
	value := r.str(key, "")
	if value == "" {
		return def
	}
	parsed, err := str2duration.ParseDuration(value)
	if err != nil {
		r.fail(key, value, err)
		return def
	}
	return parsed
}

func (r *reader) fail(key string, value string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("invalid value %q for %s: %w", value, key, err)
	}
}
