// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/waffle/config"
	agentstore "github.com/evaluation-alex/dogstack-agents/internal/app/store/agents"
	"github.com/evaluation-alex/dogstack-agents/internal/app/store/audit"
	credentialstore "github.com/evaluation-alex/dogstack-agents/internal/app/store/credentials"
	profilestore "github.com/evaluation-alex/dogstack-agents/internal/app/store/profiles"
	relationshipstore "github.com/evaluation-alex/dogstack-agents/internal/app/store/relationships"
	"github.com/evaluation-alex/dogstack-agents/internal/app/store/sessions"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/validators"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB opens the MongoDB client and verifies it with a ping.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().ApplyURI(appCfg.MongoURI)
	if appCfg.MongoMaxPoolSize > 0 {
		opts.SetMaxPoolSize(appCfg.MongoMaxPoolSize)
	}
	if appCfg.MongoMinPoolSize > 0 {
		opts.SetMinPoolSize(appCfg.MongoMinPoolSize)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		logger.Error("MongoDB connect failed", zap.Error(err))
		return DBDeps{}, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		logger.Error("MongoDB ping failed", zap.Error(err))
		return DBDeps{}, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(appCfg.MongoDatabase)
	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool", appCfg.MongoMaxPoolSize))

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: db,
		SessionSweeper: workers.NewSessionCleanup(sessions.New(db), logger,
			appCfg.SessionSweepInterval, appCfg.SessionIdleTimeout),
	}, nil
}

// indexer is implemented by every store that owns indexes.
type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

// EnsureSchema creates collections with their validators, then the indexes
// each store depends on. Problems are aggregated so startup fails with the
// whole picture.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase
	if err := validators.EnsureAll(ctx, db); err != nil {
		logger.Error("collection validators failed", zap.Error(err))
		return fmt.Errorf("validators: %w", err)
	}

	stores := []struct {
		name string
		ix   indexer
	}{
		{"agents", agentstore.New(db)},
		{"credentials", credentialstore.New(db)},
		{"profiles", profilestore.New(db)},
		{"relationships", relationshipstore.New(db)},
		{"sessions", sessions.New(db)},
		{"audit_events", audit.New(db)},
	}

	var problems []string
	for _, s := range stores {
		if err := s.ix.EnsureIndexes(ctx); err != nil {
			logger.Error("ensure indexes failed", zap.String("collection", s.name), zap.Error(err))
			problems = append(problems, s.name+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New("indexes: " + strings.Join(problems, "; "))
	}
	logger.Info("schema ensured", zap.Int("collections", len(stores)))
	return nil
}
