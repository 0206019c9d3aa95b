// This program performs administrative tasks on the store database.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ardanlabs/conf/v3"
	"github.com/irsalhamdi/uma-store/config"
	"github.com/irsalhamdi/uma-store/core/dev"
	"github.com/irsalhamdi/uma-store/database"
	"github.com/sirupsen/logrus"
)

const usage = "usage: admin <migrate|rollback|version|seed>"

type adminConfig struct {
	DB   config.DB
	Args conf.Args
}

func main() {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if err := run(log); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func run(log *logrus.Logger) error {
	var cfg adminConfig
	help, err := conf.Parse("UMA", &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			fmt.Println(usage)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	db, err := database.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to db: %w", err)
	}
	defer db.Close()

	switch cfg.Args.Num(0) {
	case "migrate":
		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("migrating: %w", err)
		}
		log.Info("migrations applied")

	case "rollback":
		if err := database.Rollback(db); err != nil {
			return fmt.Errorf("rolling back: %w", err)
		}
		log.Info("last migration rolled back")

	case "version":
		v, dirty, err := database.Version(db)
		if err != nil {
			return fmt.Errorf("reading version: %w", err)
		}
		log.WithFields(logrus.Fields{"version": v, "dirty": dirty}).Info("current migration version")

	case "seed":
		if err := dev.Seed(context.Background(), db, log); err != nil {
			return fmt.Errorf("seeding: %w", err)
		}
		log.Info("demo data seeded")

	default:
		return errors.New(usage)
	}

	return nil
}
