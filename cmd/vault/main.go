package main

import (
	"context"
	"log"
	"os"

	"github.com/spknetwork/oratr-vault/internal/buildinfo"
	"github.com/spknetwork/oratr-vault/internal/cli"
	"github.com/spknetwork/oratr-vault/internal/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
