package main

import (
	"context"
	"flag"
	"time"

	"github.com/2beens/expfit/internal/config"
	"github.com/2beens/expfit/internal/logging"
	"github.com/2beens/expfit/internal/store"

	log "github.com/sirupsen/logrus"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	backupDir := flag.String("dir", "./backups", "directory the store backups are written to")
	keep := flag.Int("keep", 30, "number of newest backups to keep (0 keeps all)")
	logsPath := flag.String("logs-path", "", "backup logs file path (empty for stdout)")
	flag.Parse()

	logging.Setup(logging.LoggerSetupParams{
		LogFileName: *logsPath,
		LogLevel:    "debug",
	})

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %s", err)
	}

	log.Println("starting store backup ...")

	backupPath, err := store.Backup(
		context.Background(),
		store.NewFileStore(cfg.StorePath),
		*backupDir,
		time.Now(),
		*keep,
	)
	if err != nil {
		log.Fatalf("store backup: %s", err)
	}

	log.Printf("store backup done: %s", backupPath)
}
