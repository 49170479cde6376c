package main

import (
	_ "taskboard/docs"
	"taskboard/internal/config"
	"taskboard/internal/server"

	log "github.com/sirupsen/logrus"
)

// @title           Taskboard API
// @version         1.0
// @description     Personal boards and tasks with email and Google sign-in.

// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http https
func main() {
	logger := log.New()
	logger.SetFormatter(&log.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}
	if cfg.Debug {
		logger.SetLevel(log.DebugLevel)
	}

	s, err := server.Init(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("server initialization failed")
	}

	if err := s.Run(); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}
