// @title Goalshare Sync API
// @version 1.0
// @description Client-side goal cache, media pipeline and social fan-out for Goalshare.

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"flag"
	"log"

	"github.com/jcthewizard/Goalshare-sub000/internal/app"
	"github.com/jcthewizard/Goalshare-sub000/internal/config"
	"github.com/jcthewizard/Goalshare-sub000/pkg/configwatcher"
)

func main() {
	configPath := flag.String("config", "configs", "directory holding config.yaml")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)

	go configwatcher.WatchConfig(*configPath+"/config.yaml", cfg, func(newCfg interface{}) {
		log.Println("Config file changed, restart to apply")
	})

	application.Run()
}
