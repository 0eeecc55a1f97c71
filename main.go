package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"gitlab.com/aoterocom/AORiskTrader/bot"
	"gitlab.com/aoterocom/AORiskTrader/helpers"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Name:  "aoriskt",
		Usage: "risk bounded strategy selection, signal generation and execution",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "conf.env", EnvVars: []string{"CONF_FILE"}, Usage: "env file"},
			&cli.StringFlag{Name: "symbol", Usage: "market symbol, e.g. BTCUSDT"},
			&cli.StringFlag{Name: "interval", Usage: "bar interval, e.g. 1m"},
			&cli.StringFlag{Name: "mode", Usage: "PAPER, LIVE or SHADOW"},
			&cli.StringFlag{Name: "bus", Usage: "redis or memory"},
		},
		Commands: []*cli.Command{
			{
				Name:  "modelgen",
				Usage: "backtest the candidate strategies and save the best one as a model",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "activate", Usage: "activate the selected model"},
					&cli.StringFlag{Name: "export", Usage: "parquet file for the selected model trades"},
				},
				Action: (&bot.ModelGenerator{}).Run,
			},
			{
				Name:   "executor",
				Usage:  "evaluate the active model on every new bar and publish signals",
				Action: (&bot.SignalExecutor{}).Run,
			},
			{
				Name:   "trader",
				Usage:  "execute risk checked signals",
				Action: (&bot.Trader{}).Run,
			},
			{
				Name:  "backtest",
				Usage: "backtest the candidate strategies over the stored history",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "strategy", Usage: "EMA_RSI or MACD_BB"},
					&cli.IntFlag{Name: "days", Usage: "history length in days"},
					&cli.StringFlag{Name: "export", Usage: "parquet file prefix for the trades"},
				},
				Action: (&bot.Backtester{}).Run,
			},
			{
				Name:  "ingest",
				Usage: "store exchange klines and publish candle events",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: 500, Usage: "klines per request"},
					&cli.BoolFlag{Name: "follow", Usage: "keep polling every interval"},
					&cli.StringFlag{Name: "replay", Usage: "sqlite file whose stored bars are replayed instead of the exchange"},
				},
				Action: (&bot.Ingestor{}).Run,
			},
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		helpers.Logger.Fatalln(err)
	}
}
