package main

import (
	"log"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/uniadmit/backoffice/config"
	"github.com/uniadmit/backoffice/database"
	"github.com/uniadmit/backoffice/engine"
	"github.com/uniadmit/backoffice/routes"
)

func main() {
	cfg := config.Load()

	// fail fast when the DB is not up
	database.Connect(cfg)

	// deployment-specific discipline aliases layered over the built-ins
	if cfg.AliasFile != "" {
		if err := engine.LoadDisciplineAliases(cfg.AliasFile); err != nil {
			log.Fatalf("failed to load discipline aliases: %v", err)
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORS())

	routes.Register(e, cfg)

	addr := ":" + cfg.AppPort
	log.Printf("admissions backend listening on %s (env=%s)", addr, cfg.AppEnv)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
