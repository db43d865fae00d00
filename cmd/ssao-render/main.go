// Package main renders SSAO frames headlessly on the CPU and writes PNGs.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/ssao/internal/config"
	"github.com/Faultbox/ssao/internal/headless"
	"github.com/Faultbox/ssao/internal/logger"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	res, err := headless.Run(cfg)
	if err != nil {
		logger.Error("render failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	for _, p := range res.Frames {
		fmt.Println(p)
	}
	if res.Sheet != "" {
		fmt.Println(res.Sheet)
	}
}
