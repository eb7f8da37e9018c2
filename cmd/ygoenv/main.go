package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/peterkuimelis/ygoenv/internal/app"
	"github.com/peterkuimelis/ygoenv/internal/config"
	"github.com/peterkuimelis/ygoenv/internal/core"
	"github.com/peterkuimelis/ygoenv/internal/duel"
	"github.com/peterkuimelis/ygoenv/internal/log"
	ygonet "github.com/peterkuimelis/ygoenv/internal/net"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch os.Args[1] {
	case "play":
		err = runPlay(ctx, os.Args[2:])
	case "serve":
		err = runServe(ctx, os.Args[2:])
	case "bench":
		err = runBench(ctx, os.Args[2:])
	case "connect":
		err = runConnect(ctx, os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
	if err != nil && !errors.Is(err, duel.ErrQuit) && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  ygoenv play    [--config FILE] [--episodes N]")
	fmt.Println("  ygoenv serve   [--config FILE] [--addr ADDR]")
	fmt.Println("  ygoenv bench   [--config FILE] [--episodes N] [--workers W]")
	fmt.Println("  ygoenv connect [--url ws://HOST:PORT/ws]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  play     Run narrated episodes in the console; play_mode human lets you take the opponent seat")
	fmt.Println("  serve    Serve environments to remote agents over websocket")
	fmt.Println("  bench    Run random-agent episodes in parallel and report throughput")
	fmt.Println("  connect  Drive a served environment from the terminal")
}

// open loads the config named by --config and the card store.
func open(ctx context.Context, path string) (*app.App, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logger, err := log.Setup(cfg.LogLevel, cfg.LogPretty)
	if err != nil {
		return nil, err
	}
	engine, err := core.Default()
	if err != nil {
		return nil, err
	}
	return app.Open(ctx, cfg, engine, logger)
}

func runPlay(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	cfgPath := fs.String("config", "", "path to config YAML file")
	episodes := fs.Int("episodes", 1, "number of episodes to play")
	fs.Parse(args)

	a, err := open(ctx, *cfgPath)
	if err != nil {
		return err
	}
	var narrator *log.TextLogger
	if a.Config.PlayMode == string(duel.ModeHuman) && a.Config.Player >= 0 {
		narrator = log.NewViewerLogger(os.Stdout, 1-a.Config.Player)
	} else {
		narrator = log.NewTextLogger(os.Stdout)
	}
	cfg, err := a.EnvConfig(narrator)
	if err != nil {
		return err
	}
	cfg.HumanIn, cfg.HumanOut = os.Stdin, os.Stdout
	env, err := a.NewEnv(cfg)
	if err != nil {
		return err
	}
	defer env.Close()

	agent := duel.NewRandomBot(rand.New(rand.NewPCG(cfg.Seed, 1)))
	for i := 0; i < *episodes; i++ {
		res, err := env.Reset(ctx)
		for err == nil && !res.Done {
			var idx int
			if idx, err = agent.Choose(ctx, env.Pending()); err != nil {
				break
			}
			res, err = env.Step(ctx, idx)
		}
		if err != nil {
			return err
		}
		fmt.Printf("Episode %d: reward %+.0f after %d steps\n", i+1, res.Reward, env.Steps())
	}
	return nil
}

func runServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("config", "", "path to config YAML file")
	addr := fs.String("addr", "", "listen address (overrides the config)")
	fs.Parse(args)

	a, err := open(ctx, *cfgPath)
	if err != nil {
		return err
	}
	if *addr != "" {
		a.Config.Listen = *addr
	}
	srv := &ygonet.Server{
		Addr:    a.Config.Listen,
		NewEnv:  a.EnvFactory,
		Encoder: a.Encoder,
		Verbose: a.Config.Verbose,
		Logger:  a.Logger,
	}
	return srv.Run(ctx)
}

func runBench(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("bench", flag.ExitOnError)
	cfgPath := fs.String("config", "", "path to config YAML file")
	episodes := fs.Int("episodes", 100, "total episodes")
	workers := fs.Int("workers", 4, "parallel environments")
	fs.Parse(args)

	a, err := open(ctx, *cfgPath)
	if err != nil {
		return err
	}
	if a.Config.PlayMode == string(duel.ModeHuman) {
		return errors.New("bench cannot run human play")
	}

	var next, steps, wins, losses atomic.Int64
	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < *workers; w++ {
		g.Go(func() error {
			env, err := a.EnvFactory(nil)
			if err != nil {
				return err
			}
			defer env.Close()
			agent := duel.NewRandomBot(rand.New(rand.NewPCG(uint64(w), uint64(time.Now().UnixNano()))))
			for next.Add(1) <= int64(*episodes) {
				res, err := env.Reset(ctx)
				for err == nil && !res.Done {
					var idx int
					if idx, err = agent.Choose(ctx, env.Pending()); err == nil {
						res, err = env.Step(ctx, idx)
					}
				}
				if err != nil {
					return fmt.Errorf("worker %d: %w", w, err)
				}
				steps.Add(int64(env.Steps()))
				switch {
				case res.Reward > 0:
					wins.Add(1)
				case res.Reward < 0:
					losses.Add(1)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	elapsed := time.Since(start)
	a.Logger.Info().
		Int("episodes", *episodes).
		Int64("steps", steps.Load()).
		Int64("wins", wins.Load()).
		Int64("losses", losses.Load()).
		Dur("elapsed", elapsed).
		Float64("steps_per_sec", float64(steps.Load())/elapsed.Seconds()).
		Msg("bench finished")
	return nil
}

func runConnect(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("connect", flag.ExitOnError)
	url := fs.String("url", "ws://localhost:9000/ws", "server websocket URL")
	fs.Parse(args)

	c, err := ygonet.Dial(ctx, *url)
	if err != nil {
		return err
	}
	defer c.Close()
	return c.RunREPL(ctx, os.Stdin, os.Stdout)
}
