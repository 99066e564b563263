package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/ManuelReschke/TokenFox/app/controllers"
	"github.com/ManuelReschke/TokenFox/app/repository"
	"github.com/ManuelReschke/TokenFox/internal/pkg/cache"
	"github.com/ManuelReschke/TokenFox/internal/pkg/config"
	"github.com/ManuelReschke/TokenFox/internal/pkg/database"
	"github.com/ManuelReschke/TokenFox/internal/pkg/env"
	"github.com/ManuelReschke/TokenFox/internal/pkg/identity"
	"github.com/ManuelReschke/TokenFox/internal/pkg/oauth"
	"github.com/ManuelReschke/TokenFox/internal/pkg/router"
	"github.com/ManuelReschke/TokenFox/internal/pkg/session"
)

func main() {
	env.SetupEnvFile()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	app, err := NewApplication(cfg)
	if err != nil {
		log.Fatal(err)
	}
	log.Fatal(app.Listen(cfg.ListenAddr()))
}

func NewApplication(cfg *config.Config) (*fiber.App, error) {
	db, err := database.Setup(cfg.Database, cfg.Debug)
	if err != nil {
		return nil, err
	}
	repos := repository.NewRepositories(db)

	checks := []controllers.HealthCheck{{Name: "database", Ping: repos.Ping}}

	var cacheClient *redis.Client
	if cfg.Session.Storage == config.SessionRedis {
		cacheClient = cache.SetupCache(cfg.Cache)
		checks = append(checks, controllers.HealthCheck{Name: "cache", Ping: cache.Pinger(cacheClient)})
	}

	store, err := session.NewStore(cfg, cacheClient)
	if err != nil {
		return nil, err
	}

	provider, err := oauth.Setup(cfg)
	if err != nil {
		return nil, err
	}

	return router.NewApp(router.Dependencies{
		Config:   cfg,
		Repos:    repos,
		OAuth:    oauth.NewClient(cfg.OAuth.Timeout, provider),
		Resolver: identity.NewResolver(repos, cfg.OAuth.LinkByEmail),
		Sessions: store,
		Health:   checks,
	}), nil
}
