package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"glade/client"
	"glade/server"
	"glade/utils"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Llongfile)

	if len(os.Args) > 1 && os.Args[1] == "server" {
		if err := server.Run(os.Args[1:]); err != nil {
			log.Fatal(err)
		}
		return
	}

	configPath := flag.String("config", "config.toml", "path to the TOML config")
	nickname := flag.String("nickname", "", "nickname to join with")
	skin := flag.String("skin", "", "skin to join with")
	local := flag.Bool("local", false, "spin up a local relay before connecting")
	flag.Parse()

	cfg, err := utils.ReadTOML(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	logger, err := utils.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	assets, err := client.LoadAssets()
	if err != nil {
		logger.Fatal("loading assets", zap.Error(err))
	}

	resolutionConfig := cfg.UI.Resolution
	ebiten.SetWindowSize(resolutionConfig.X, resolutionConfig.Y)
	ebiten.SetWindowTitle("Glade")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	game, err := client.NewGame(cfg, logger, assets)
	if err != nil {
		logger.Fatal("creating game", zap.Error(err))
	}
	defer game.Close()

	if *local {
		go func() {
			if err := server.Run([]string{"server", cfg.Server.Address}); err != nil {
				logger.Fatal("local relay", zap.Error(err))
			}
		}()
		// TODO: Should have a good way of testing if the relay is up.
		time.Sleep(50 * time.Millisecond)
	}

	name := cfg.Player.Nickname
	if *nickname != "" {
		name = *nickname
	}
	look := cfg.Player.Skin
	if *skin != "" {
		look = *skin
	}
	game.Join(context.Background(), name, look, cfg.Player.Token)

	if err := ebiten.RunGame(game); err != nil {
		logger.Fatal("game exited", zap.Error(err))
	}
}
