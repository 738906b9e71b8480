// Package main shows the signed-in user's profile once and exits.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	profilecmd "github.com/louisbranch/backer.space/internal/cmd/profile"
	"github.com/louisbranch/backer.space/internal/platform/config"
)

func main() {
	cfg, err := profilecmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf(config.ExitUsage, "profile: parse flags: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := profilecmd.Run(ctx, cfg); err != nil {
		stop()
		config.Exitf(config.ExitFailure, "profile: %v", err)
	}
}
