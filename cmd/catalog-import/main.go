// Command catalog-import bulk-loads gzipped catalog dump files into the
// database. Dumps share the seed JSON layout; files are decompressed and
// parsed concurrently, then applied in argument order so later files win on
// conflicting entries.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/fornero/pizzeria-storefront/internal/seed"
	"github.com/fornero/pizzeria-storefront/internal/storage/postgres"
)

func main() {
	var databaseURL string

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: catalog-import [flags] dump.json.gz [dump2.json.gz ...]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, flag.Args()); err != nil {
		slog.Error("catalog import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog import completed successfully")
}

func run(ctx context.Context, databaseURL string, paths []string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			return errors.Wrapf(err, "check file %s", p)
		}
	}

	// Decompress and parse all dumps concurrently.
	files := make([]*seed.File, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			f, err := readDump(gctx, path)
			if err != nil {
				return errors.Wrapf(err, "read dump %s", path)
			}
			files[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	repo := postgres.NewCatalogRepository(pool)
	for i, f := range files {
		slog.Info("applying dump",
			slog.String("path", paths[i]),
			slog.Int("categories", len(f.Categories)),
			slog.Int("ingredients", len(f.Ingredients)),
		)
		if err := seed.Apply(ctx, repo, f); err != nil {
			return errors.Wrapf(err, "apply dump %s", paths[i])
		}
	}
	return nil
}

func readDump(ctx context.Context, path string) (*seed.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return nil, errors.Wrap(err, "gzip reader")
	}
	defer func() { _ = gz.Close() }()

	var out seed.File
	if err := json.NewDecoder(gz).Decode(&out); err != nil {
		return nil, errors.Wrap(err, "decode JSON")
	}
	return &out, nil
}
