// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Started by Startup when session_idle_timeout is set, stopped by Shutdown.
	SessionSweeper *workers.SessionCleanup
}
