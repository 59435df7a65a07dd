package cmd

import (
	"context"
	"log/slog"

	"github.com/facilityops/flowdesk/pkg/seed"
	"github.com/viant/afs"
)

// SeedWorkflows imports the seed document at url. "sample" loads the bundled
// sample workflows and an empty url leaves the store empty.
func SeedWorkflows(ctx context.Context, logger *slog.Logger, importer seed.Importer, url string) error {
	switch url {
	case "":
		return nil
	case "sample":
		url = seed.SampleURL
	}

	_, err := seed.NewLoader(afs.New(), seed.WithLogger(logger)).Seed(ctx, importer, url)

	return err
}
