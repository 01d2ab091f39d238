// Command migrate applies the embedded goose migrations.
//
// Usage: migrate [up|down|status|version|redo|reset|up-to VERSION|down-to VERSION]
package main

import (
	"flag"
	"log"

	"go.uber.org/zap"

	"github.com/noah-isme/school-records/migrations"
	"github.com/noah-isme/school-records/pkg/config"
	"github.com/noah-isme/school-records/pkg/database"
	"github.com/noah-isme/school-records/pkg/logger"
)

func main() {
	flag.Parse()
	command := "up"
	var args []string
	if flag.NArg() > 0 {
		command = flag.Arg(0)
		args = flag.Args()[1:]
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("connect database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(db.DB, migrations.FS, ".", command, args...); err != nil {
		logr.Fatal("migration failed", zap.String("command", command), zap.Error(err))
	}
	logr.Info("migration finished", zap.String("command", command))
}
