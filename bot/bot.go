package bot

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"gitlab.com/aoterocom/AORiskTrader/config"
	"gitlab.com/aoterocom/AORiskTrader/database"
	"gitlab.com/aoterocom/AORiskTrader/helpers"
	"gitlab.com/aoterocom/AORiskTrader/interfaces"
	"gitlab.com/aoterocom/AORiskTrader/streams"
)

// Bot holds the configuration shared by every command
type Bot struct {
	Config *config.Config
}

// Setup loads the configuration file named by --config. Global flags win over the
// file because godotenv never overrides variables already set.
func Setup(c *cli.Context) (*Bot, error) {
	overrides := map[string]string{
		"symbol":   "SYMBOL",
		"interval": "INTERVAL",
		"mode":     "TRADING_MODE",
		"bus":      "BUS",
	}
	for flag, key := range overrides {
		if c.IsSet(flag) {
			if err := os.Setenv(key, c.String(flag)); err != nil {
				return nil, err
			}
		}
	}

	cfg, err := config.LoadFile(c.String("config"))
	if err != nil {
		return nil, err
	}
	if err := helpers.ConfigureLogger(cfg.App.LogLevel, cfg.App.LogFormat, cfg.App.LogFile); err != nil {
		return nil, err
	}
	return &Bot{Config: cfg}, nil
}

func (b *Bot) OpenStore() (*database.DBService, error) {
	return database.Open(b.Config.Database)
}

func (b *Bot) OpenBus(ctx context.Context) (interfaces.Bus, error) {
	options := streams.RedisBusOptions{
		MaxLen:        b.Config.Redis.StreamMaxLen,
		MaxDeliveries: b.Config.Redis.MaxDeliveries,
		ClaimIdle:     b.Config.Redis.ClaimIdle,
	}
	switch b.Config.App.Bus {
	case "redis":
		client, err := streams.DialRedis(ctx, b.Config.Redis.Addr, b.Config.Redis.Password, b.Config.Redis.DB)
		if err != nil {
			return nil, err
		}
		return streams.NewRedisBus(client, options), nil
	case "memory":
		helpers.Logger.Warnln("Using the in-process bus, messages are not shared with other processes")
		return streams.NewMemoryBus(options), nil
	default:
		return nil, fmt.Errorf("unknown bus %q", b.Config.App.Bus)
	}
}

// consumerName identifies this process inside a consumer group
func consumerName(role string) string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("%s-%s-%d", role, strings.ToLower(host), os.Getpid())
}
