// ABOUTME: Seeds the REST backend with generated records through the transport layer.
// ABOUTME: Generates every resource in parallel, then creates them in tab order.

package seed

import (
	"context"
	"fmt"
	"log"

	"github.com/2389/joinlab/internal/resource"
)

// Creator is the part of the transport layer seeding needs.
type Creator interface {
	Create(ctx context.Context, path string, draft resource.Record) (resource.Record, error)
}

// Report counts the outcome for one resource.
type Report struct {
	Resource string
	Created  int
	Failed   int
	LastErr  error
}

// Seed creates count records for each schema. Records are generated
// concurrently but created in the order given, so referenced tables are
// filled before the tables that point at them. A failed create is counted
// and seeding continues.
func (g *Generator) Seed(ctx context.Context, c Creator, schemas []resource.Schema, count int) ([]Report, error) {
	if count <= 0 {
		return nil, fmt.Errorf("count must be positive, got %d", count)
	}

	type result struct {
		index   int
		records []resource.Record
	}

	// Generate in parallel for speed
	resultCh := make(chan result, len(schemas))

	source := "static data"
	if g.useAI {
		source = "AI"
	}
	log.Printf("Generating %d records for %d resources via %s...", count, len(schemas), source)

	for i, schema := range schemas {
		go func() {
			log.Printf("  ⏳ Generating %s...", schema.Label)
			records := g.Records(ctx, schema, count)
			log.Printf("  ✓ Generated %d %s", len(records), schema.Label)
			resultCh <- result{i, records}
		}()
	}

	generated := make([][]resource.Record, len(schemas))
	for range schemas {
		r := <-resultCh
		generated[r.index] = r.records
	}

	reports := make([]Report, 0, len(schemas))
	for i, schema := range schemas {
		rep := Report{Resource: schema.Name}
		for _, rec := range generated[i] {
			if err := ctx.Err(); err != nil {
				return append(reports, rep), err
			}
			if _, err := c.Create(ctx, schema.Path, rec); err != nil {
				rep.Failed++
				rep.LastErr = err
				continue
			}
			rep.Created++
		}
		if rep.Failed > 0 {
			log.Printf("  ✗ %s: %d created, %d failed (last: %v)", schema.Name, rep.Created, rep.Failed, rep.LastErr)
		} else {
			log.Printf("  ✓ Created %d %s", rep.Created, schema.Label)
		}
		reports = append(reports, rep)
	}

	log.Print("Seeding complete!")
	return reports, nil
}
