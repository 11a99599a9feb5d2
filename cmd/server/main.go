package main

import (
	"flag"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/sleepstars/llmsim/internal/config"
	"github.com/sleepstars/llmsim/internal/logger"
	"github.com/sleepstars/llmsim/internal/server"
)

func main() {
	configPath := flag.String("config", "", "Path to the configuration file (optional)")
	host := flag.String("host", "", "Bind host, overrides the config file")
	port := flag.Int("port", 0, "Bind port, overrides the config file")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatal(err)
		}
		cfg = loaded
	}
	if *host != "" {
		cfg.Host = *host
	}
	if *port != 0 {
		cfg.Port = *port
	}

	logger.InitLogger(logger.ParseLevel(cfg.LogLevel), "server")

	gin.SetMode(gin.ReleaseMode)
	srv := server.New(cfg)
	if err := srv.Run(); err != nil {
		log.Fatal(err)
	}
}
