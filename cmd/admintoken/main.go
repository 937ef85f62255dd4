// Command admintoken mints a bearer token for the diagnostic SMS API.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"cwportal/internal/config"
	"cwportal/internal/middleware"
)

func main() {
	subject := flag.String("subject", "operator", "token subject")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	cfg := config.LoadConfig()
	if cfg.Admin.Secret == "" {
		log.Fatal("admin secret not configured; set ADMIN_API_SECRET or admin.secret in config/config.yaml")
	}

	token, err := middleware.MintAdminToken(cfg.Admin.Secret, *subject, *ttl)
	if err != nil {
		log.Fatal("sign token: ", err)
	}
	fmt.Println(token)
}
