package main

import (
	"context"
	"flag"
	"strings"
	"time"

	"shelfapi/internal/config"
	"shelfapi/internal/logger"
	"shelfapi/internal/platform/bigbook"
	"shelfapi/internal/search"
	"shelfapi/internal/shelf"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// seed shelves a list of catalog books, e.g.
//
//	go run ./cmd/seed -ids 2927391,9443321 -status TBR
func main() {
	var (
		ids    = flag.String("ids", "", "Comma separated catalog book IDs")
		status = flag.String("status", shelf.StatusTBR, "Shelf to put the books on: TBR, READ, DNF")
	)
	flag.Parse()

	config.LoadEnvFiles()
	cfg, err := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logrus.Fatal(err)
	}

	externalIDs := parseIDs(*ids)
	if len(externalIDs) == 0 {
		logrus.Fatal("at least one catalog ID is required (-ids)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to database")
	}
	defer pool.Close()

	client := bigbook.NewClient(cfg.BigBook)
	service := shelf.NewService(shelf.NewPostgresRepo(pool, cfg.DBTimeout), search.NewCachedCatalog(client, nil))

	added, failed := seed(ctx, service, externalIDs, *status)
	logrus.WithFields(logrus.Fields{"added": added, "failed": failed}).Info("seeding finished")
}

type shelver interface {
	Add(ctx context.Context, externalID, status string) (shelf.Book, bool, error)
}

func seed(ctx context.Context, s shelver, externalIDs []string, status string) (added, failed int) {
	for _, id := range externalIDs {
		b, _, err := s.Add(ctx, id, status)
		if err != nil {
			logrus.WithError(err).WithField("external_id", id).Warn("failed to shelve book")
			failed++
			continue
		}
		logrus.WithField("title", b.Title).Info("shelved")
		added++
	}
	return added, failed
}

func parseIDs(v string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, id := range strings.Split(v, ",") {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
