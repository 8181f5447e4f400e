package main

import (
	"flag"
	"log"
	"skillverify_backend/internal/app"
	"skillverify_backend/internal/config"
	"skillverify_backend/pkg/logger"
)

func main() {
	configPath := flag.String("config", "configs", "配置文件所在目录")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	application.Run()
}
