package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/kariosv/collinsbot/core/bootstrap"
	"github.com/kariosv/collinsbot/core/buildinfo"
	"github.com/kariosv/collinsbot/core/cmd"
	"github.com/kariosv/collinsbot/core/config"
	"github.com/kariosv/collinsbot/internal/app"
)

func main() {
	_ = godotenv.Load()

	log.Printf("collinsbot %s (%s)", buildinfo.Version, buildinfo.Commit)

	err := cmd.Run(cmd.Options{
		DefaultConfigPath: "config.yaml",

		LoadConfig: func(path string) (cmd.ConfigCarrier, error) {
			cfg, err := config.Load(path)
			if err != nil {
				return nil, err
			}
			return carrier{cfg: cfg}, nil
		},

		Bootstrap: func(c cmd.ConfigCarrier) (cmd.TelegramApp, error) {
			cfg := c.CoreConfig()
			res, err := bootstrap.Run(bootstrap.Options{Config: cfg})
			if err != nil {
				return nil, err
			}
			return app.New(cfg, res.Store), nil
		},
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type carrier struct {
	cfg *config.Config
}

func (c carrier) CoreConfig() *config.Config { return c.cfg }
