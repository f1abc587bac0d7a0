package classify

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"

	"github.com/IshaanNene/unioncorpus/internal/config"
	"github.com/IshaanNene/unioncorpus/internal/types"
)

// Partition names.
const (
	PartitionFull       = "full"
	PartitionEliminated = "eliminated"
	PartitionFar        = "far"
)

// Subset bases.
const (
	BaseFar  = "far"
	BaseFull = "full"
)

// Partition is a named view over the classified set.
type Partition struct {
	Name string
	// Labelled is false for the eliminated partition, which is split off
	// before classification.
	Labelled bool
	Records  []types.ClassifiedArticle
}

// Len returns the number of records.
func (p Partition) Len() int { return len(p.Records) }

type topic struct {
	name    string
	matcher *Matcher
}

// Partitioner splits a classified set into output partitions.
type Partitioner struct {
	base   string
	topics []topic
	years  []int
	logger *slog.Logger
}

// NewPartitioner builds the topical matchers from cfg.
func NewPartitioner(cfg config.PartitionConfig, logger *slog.Logger) (*Partitioner, error) {
	base := cfg.SubsetBase
	if base == "" {
		base = BaseFar
	}
	if base != BaseFar && base != BaseFull {
		return nil, fmt.Errorf("unknown subset base %q", base)
	}

	p := &Partitioner{
		base:   base,
		years:  cfg.Years,
		logger: logger.With("component", "partitioner"),
	}
	names := make([]string, 0, len(cfg.Topics))
	for name := range cfg.Topics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		m, err := NewTermMatcher(cfg.Topics[name])
		if err != nil {
			return nil, fmt.Errorf("topic %s: %w", name, err)
		}
		p.topics = append(p.topics, topic{name: name, matcher: m})
	}
	return p, nil
}

// Base returns the subset base, "far" or "full".
func (p *Partitioner) Base() string { return p.base }

// Split produces, in fixed order: full, eliminated, far, one partition per
// topic (sorted by name) and one per configured year. Topic and year
// subsets are drawn from the far partition or the full set, per the subset
// base. All partitions share the classified records.
func (p *Partitioner) Split(classified []types.ClassifiedArticle, eliminated []types.Article) []Partition {
	far := make([]types.ClassifiedArticle, 0)
	for _, r := range classified {
		if r.Far != types.FarNone {
			far = append(far, r)
		}
	}

	elim := make([]types.ClassifiedArticle, len(eliminated))
	for i, a := range eliminated {
		elim[i] = types.ClassifiedArticle{Article: a}
	}

	out := []Partition{
		{Name: PartitionFull, Labelled: true, Records: classified},
		{Name: PartitionEliminated, Records: elim},
		{Name: PartitionFar, Labelled: true, Records: far},
	}

	base := far
	if p.base == BaseFull {
		base = classified
	}
	for _, t := range p.topics {
		var recs []types.ClassifiedArticle
		for i := range base {
			if t.matcher.Matches(&base[i].Article) {
				recs = append(recs, base[i])
			}
		}
		out = append(out, Partition{Name: t.name, Labelled: true, Records: recs})
	}
	for _, y := range p.years {
		var recs []types.ClassifiedArticle
		for _, r := range base {
			if r.Year() == y {
				recs = append(recs, r)
			}
		}
		out = append(out, Partition{Name: YearPartition(y), Labelled: true, Records: recs})
	}

	for _, part := range out {
		p.logger.Debug("partition built", "name", part.Name, "records", part.Len())
	}
	return out
}

// YearPartition names the subset for year y.
func YearPartition(y int) string {
	return "year" + strconv.Itoa(y)
}

// Report prints the run summary: document, outlet and leaning counts of the
// full partition, then every partition count in Split order.
func (p *Partitioner) Report(w io.Writer, parts []Partition) {
	var full []types.ClassifiedArticle
	for _, part := range parts {
		if part.Name == PartitionFull {
			full = part.Records
		}
	}

	outlets := make(map[string]struct{})
	leanings := make(map[types.Leaning]int)
	for _, r := range full {
		outlets[r.Outlet] = struct{}{}
		leanings[r.Leaning]++
	}

	prefix := ""
	if p.base == BaseFar {
		prefix = "highly polarized "
	}

	fmt.Fprintln(w, "Summary Report")
	fmt.Fprintln(w, "Number of documents:", len(full))
	fmt.Fprintln(w, "Number of domains:", len(outlets))
	fmt.Fprintln(w, "Number of left-leaning documents:", leanings[types.LeaningLeft])
	fmt.Fprintln(w, "Number of centre-leaning documents:", leanings[types.LeaningCentre])
	fmt.Fprintln(w, "Number of right-leaning documents:", leanings[types.LeaningRight])
	for _, part := range parts {
		switch part.Name {
		case PartitionFull:
		case PartitionEliminated:
			fmt.Fprintln(w, "Number of eliminated documents:", part.Len())
		case PartitionFar:
			fmt.Fprintln(w, "Number of highly polarized documents:", part.Len())
		default:
			fmt.Fprintf(w, "Number of %s%s documents: %d\n", prefix, subsetLabel(part.Name), part.Len())
		}
	}
}

func subsetLabel(name string) string {
	if y, ok := yearOf(name); ok {
		return strconv.Itoa(y)
	}
	return name
}

func yearOf(name string) (int, bool) {
	if len(name) <= 4 || name[:4] != "year" {
		return 0, false
	}
	y, err := strconv.Atoi(name[4:])
	return y, err == nil
}
