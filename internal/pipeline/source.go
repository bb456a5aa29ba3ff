package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/couchcryptid/wildlife-health-watch/internal/domain"
	"github.com/couchcryptid/wildlife-health-watch/internal/generator"
	"github.com/couchcryptid/wildlife-health-watch/internal/store"
	"github.com/jonboulle/clockwork"
)

// GeneratorSource synthesizes the snapshot. The reference time is read from
// the clock when the snapshot is first loaded.
type GeneratorSource struct {
	req   generator.Request
	clock clockwork.Clock
}

// NewGeneratorSource creates a source for req. req.Now is ignored.
func NewGeneratorSource(req generator.Request, clock clockwork.Clock) *GeneratorSource {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &GeneratorSource{req: req, clock: clock}
}

func (s *GeneratorSource) Key() string {
	return fmt.Sprintf("generated:count=%d,seed=%d,window=%d,prefix=%s",
		s.req.Count, s.req.Seed, s.req.WindowDays, s.req.Prefix)
}

func (s *GeneratorSource) Load(ctx context.Context) ([]domain.CaseRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	req := s.req
	req.Now = s.clock.Now()
	return generator.Generate(req)
}

// CSVSource reads the snapshot from a case export on disk.
type CSVSource struct {
	path string
}

// NewCSVSource creates a source reading path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

func (s *CSVSource) Key() string { return "csv:" + s.path }

func (s *CSVSource) Load(ctx context.Context) ([]domain.CaseRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	records, err := store.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", s.path, err)
	}
	return records, nil
}
