package main

import (
	"context"
	"log"
	"os"

	"github.com/budda-star9/reelforge/internal/admin"
	"github.com/budda-star9/reelforge/internal/server/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := admin.NewApp(ctx, cfg, os.Stdout)
	if err != nil {
		log.Printf("%v", err)
		return 1
	}
	defer app.Close()

	if err := app.Run(ctx, admin.CommandArgs(os.Args[1:])); err != nil {
		log.Printf("%v", err)
		return 1
	}
	return 0
}
