package main

import (
	"context"
	"log"

	"github.com/kahenya/sales-crm/auth"
	"github.com/kahenya/sales-crm/config"
	"github.com/kahenya/sales-crm/routes"
)

func main() {
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	db, err := config.ConnectDB(cfg)
	if err != nil {
		log.Fatal(err)
	}

	rdb := config.ConnectRedis(cfg)

	var oidcVerifier *auth.OIDCVerifier
	if cfg.OIDCIssuer != "" && cfg.OIDCClientID != "" {
		oidcVerifier, err = auth.NewOIDCVerifier(context.Background(), cfg.OIDCIssuer, cfg.OIDCClientID)
		if err != nil {
			log.Fatal(err)
		}
	}

	r := routes.SetupRouter(db, rdb, cfg.JWTSecret, oidcVerifier)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
