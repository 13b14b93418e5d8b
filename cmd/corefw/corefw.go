package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "go.uber.org/automaxprocs"

	"github.com/kiosk404/coreframework/internal/corefw/cmd"
	"github.com/kiosk404/coreframework/internal/corefw/cmd/util"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command := cmd.NewDefaultCorefwCommand()
	util.CheckErr(command.ExecuteContext(ctx))
}
