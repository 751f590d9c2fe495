//go:build integration

package seed

import (
	"context"
	"net/url"
	"os"
	"strings"
	"testing"

	"litreview/internal/config"
	"litreview/internal/database"
	"litreview/internal/models"
)

func parseDatabaseURLToConfig(dsn string) (*config.Config, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, err
	}
	password := ""
	if u.User != nil {
		password, _ = u.User.Password()
	}
	port := u.Port()
	if port == "" {
		port = "5432"
	}
	return &config.Config{
		DBHost:       u.Hostname(),
		DBPort:       port,
		DBUser:       u.User.Username(),
		DBPassword:   password,
		DBName:       strings.TrimPrefix(u.Path, "/"),
		DBSSLMode:    "disable",
		Env:          "test",
		DBSchemaMode: "auto",
	}, nil
}

func TestIntegration_RunSmallPlanOnPostgres(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping integration seed test")
	}
	cfg, err := parseDatabaseURLToConfig(dsn)
	if err != nil {
		t.Fatalf("failed parse dsn: %v", err)
	}
	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: true})
	if err != nil {
		t.Fatalf("db connect failed: %v", err)
	}

	ctx := context.Background()
	if err := Clean(ctx, db); err != nil {
		t.Fatalf("clean failed: %v", err)
	}

	res, err := Run(ctx, db, Presets["small"], Options{FastHash: true, RandSeed: 7})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	var tickets int64
	if err := db.Model(&models.Ticket{}).Count(&tickets).Error; err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if int(tickets) != res.Tickets {
		t.Fatalf("expected %d tickets, got %d", res.Tickets, tickets)
	}
}
