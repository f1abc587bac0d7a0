package classify

import (
	"fmt"

	"github.com/IshaanNene/unioncorpus/internal/types"
)

// Result is the outcome of one filter, classify and partition pass.
type Result struct {
	Kept       int
	Eliminated int
	Partitions []Partition
}

// Run filters the normalized articles, classifies the kept ones and splits
// them into partitions. A taxonomy lookup failure aborts the run.
func Run(articles []types.Article, m *Matcher, c *Classifier, p *Partitioner) (*Result, error) {
	kept, eliminated := Filter(articles, m)
	classified, err := c.ClassifyAll(kept)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}
	return &Result{
		Kept:       len(kept),
		Eliminated: len(eliminated),
		Partitions: p.Split(classified, eliminated),
	}, nil
}
