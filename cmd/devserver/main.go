package main

import (
	"net/http"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/washlink/app/internal/config"
	"github.com/washlink/app/internal/devserver"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("FATAL: %v", err)
	}

	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{})
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	srv := devserver.New(cfg.JWTSecret, logger)

	logger.Infof("WashLink dev server listening on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, srv.Router()); err != nil {
		logger.Fatalf("server stopped: %v", err)
	}
}
