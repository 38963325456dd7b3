package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/chatkeeper/internal/app"
	"github.com/dmitrijs2005/chatkeeper/internal/buildinfo"
	"github.com/dmitrijs2005/chatkeeper/internal/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	a, err := app.NewApp(ctx, cfg, os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := a.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
