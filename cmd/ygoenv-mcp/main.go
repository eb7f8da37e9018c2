package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"

	"github.com/peterkuimelis/ygoenv/internal/app"
	"github.com/peterkuimelis/ygoenv/internal/config"
	"github.com/peterkuimelis/ygoenv/internal/core"
	"github.com/peterkuimelis/ygoenv/internal/log"
	ygomcp "github.com/peterkuimelis/ygoenv/internal/mcp"
)

func main() {
	cfgPath := flag.String("config", "", "path to config YAML file")
	flag.Parse()
	_ = godotenv.Load()

	if err := run(*cfgPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	// stdout carries the protocol; logs go to stderr.
	logger, err := log.Setup(cfg.LogLevel, false)
	if err != nil {
		return err
	}
	engine, err := core.Default()
	if err != nil {
		return err
	}
	a, err := app.Open(context.Background(), cfg, engine, logger)
	if err != nil {
		return err
	}

	s := server.NewMCPServer("ygoenv", "1.0.0")
	ygomcp.RegisterTools(s, ygomcp.NewEpisode(a.EnvFactory, a.Encoder))
	return server.ServeStdio(s)
}
