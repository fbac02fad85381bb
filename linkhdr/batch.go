package linkhdr

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ParseBatch parses independent header values concurrently, with at most
// workers values in flight (unlimited if workers <= 0).
// The results are in the order of values. The first error is returned.
func (o *Options) ParseBatch(values []string, workers int) ([]Entries, error) {
	ret := make([]Entries, len(values))
	g := &errgroup.Group{}
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, v := range values {
		i, v := i, v
		g.Go(func() error {
			entries, err := o.ParseValue(v)
			if err != nil {
				return fmt.Errorf("value %d: %w", i, err)
			}
			ret[i] = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ret, nil
}
