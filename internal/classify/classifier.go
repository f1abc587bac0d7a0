package classify

import (
	"github.com/IshaanNene/unioncorpus/internal/taxonomy"
	"github.com/IshaanNene/unioncorpus/internal/types"
)

// Classifier labels articles with their outlet's leaning.
type Classifier struct {
	tax *taxonomy.Taxonomy
}

// NewClassifier creates a classifier over tax.
func NewClassifier(tax *taxonomy.Taxonomy) *Classifier {
	return &Classifier{tax: tax}
}

// Classify returns the labelled article, or a *types.LookupError when the
// outlet is not in the taxonomy.
func (c *Classifier) Classify(a types.Article) (types.ClassifiedArticle, error) {
	e, err := c.tax.Lookup(a.Outlet)
	if err != nil {
		return types.ClassifiedArticle{}, err
	}
	return types.ClassifiedArticle{
		Article: a,
		Leaning: e.Leaning,
		Far:     e.FarLabel(),
	}, nil
}

// ClassifyAll labels every article and stops at the first lookup failure:
// an outlet missing from the taxonomy invalidates the whole run.
func (c *Classifier) ClassifyAll(articles []types.Article) ([]types.ClassifiedArticle, error) {
	out := make([]types.ClassifiedArticle, 0, len(articles))
	for _, a := range articles {
		ca, err := c.Classify(a)
		if err != nil {
			return nil, err
		}
		out = append(out, ca)
	}
	return out, nil
}
