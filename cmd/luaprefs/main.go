// Package main provides a CLI for running Lua scripts with host
// preference access.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/louisbranch/luaprefs/internal/platform/config"

	luaprefscmd "github.com/louisbranch/luaprefs/internal/cmd/luaprefs"
)

func main() {
	cfg, err := luaprefscmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := luaprefscmd.Run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		config.Exitf("Error: %v", err)
	}
}
