// Package db connects to MongoDB and owns the index migrations.
package db

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/forumhub/apiserver/config"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mongodb"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	defaultPingTimeout     = 5 * time.Second
	defaultSelectTimeout   = 10 * time.Second
	defaultMaxPoolSize     = 50
	defaultMaxConnIdleTime = 2 * time.Minute
)

//go:embed migrations/*.json
var migrations embed.FS

// Connect opens a client for cfg.URI and verifies it with a ping.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*mongo.Client, error) {
	if strings.TrimSpace(cfg.URI) == "" {
		return nil, errors.New("mongo uri is required")
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(defaultSelectTimeout).
		SetMaxPoolSize(defaultMaxPoolSize).
		SetMaxConnIdleTime(defaultMaxConnIdleTime)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// NewMigrator returns a migrator applying the embedded index migrations to
// the named database. The caller must Close it.
func NewMigrator(client *mongo.Client, database string) (*migrate.Migrate, error) {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("open migrations: %w", err)
	}
	driver, err := mongodb.WithInstance(client, &mongodb.Config{DatabaseName: database})
	if err != nil {
		return nil, fmt.Errorf("init mongodb migration driver: %w", err)
	}
	return migrate.NewWithInstance("iofs", src, database, driver)
}
