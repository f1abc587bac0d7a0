package dataset

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IshaanNene/unioncorpus/internal/config"
	"github.com/IshaanNene/unioncorpus/internal/observability"
	"github.com/IshaanNene/unioncorpus/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

const rawCSV = `url,title
https://a.test/1,Strike
https://a.test/2,Strike
https://a.test/3,Old story
https://a.test/4,No metadata
https://a.test/5,Fresh
`

// created_utc 1167609600 = 2007-01-01, 1546300800 = 2019-01-01
const metaCSV = `url,title,actual_domain,body,created_utc
https://a.test/1,ignored,nytimes,The UFT announced a strike,1546300800
https://a.test/2,ignored,bbc,duplicate title body,1546300801
https://a.test/3,ignored,bbc,old body,1167609600
https://a.test/5,ignored,breitbart,"body, with comma",1546300900
https://a.test/1,ignored,cnn,second metadata row,1546300800
`

func table(t *testing.T, name, data string) *Table {
	t.Helper()
	tab, err := ReadTable(name, strings.NewReader(data))
	require.NoError(t, err)
	return tab
}

func TestReadTable(t *testing.T) {
	tab := table(t, "x.csv", "\ufeff,url,title\n0,https://a,One\n1,https://b\n")
	assert.Equal(t, []string{"", "url", "title"}, tab.Header)
	assert.Equal(t, 2, tab.Len())
	assert.Equal(t, "", tab.Rows[1][2], "short rows are padded")

	i, ok := tab.Column("missing", "url")
	assert.True(t, ok)
	assert.Equal(t, 1, i)

	_, err := ReadTable("empty.csv", strings.NewReader(""))
	assert.Error(t, err)
}

func TestJoin(t *testing.T) {
	joined, err := Join(table(t, "raw", rawCSV), table(t, "meta", metaCSV))
	require.NoError(t, err)

	assert.Equal(t, []string{"url", "title", "actual_domain", "body", "created_utc"}, joined.Header)
	require.Equal(t, 4, joined.Len(), "url without metadata is dropped")
	assert.Equal(t, []string{"https://a.test/1", "Strike", "nytimes", "The UFT announced a strike", "1546300800"}, joined.Rows[0])

	_, err = Join(table(t, "nourl", "a,b\n1,2\n"), table(t, "meta", metaCSV))
	assert.Error(t, err)
}

func TestJoinPrefersMetadataFields(t *testing.T) {
	raw := table(t, "raw", `,url,date,title,content,domain,section
0,https://a.test/1,2023-01-01,Strike,raw snippet,nyt.com,labor
`)
	meta := table(t, "meta", metaCSV)

	joined, err := Join(raw, meta)
	require.NoError(t, err)
	assert.Equal(t, []string{"", "url", "title", "section", "actual_domain", "body", "created_utc"}, joined.Header)

	arts, rowErrs, err := Project(joined)
	require.NoError(t, err)
	require.Empty(t, rowErrs)
	require.Len(t, arts, 1)
	assert.Equal(t, "The UFT announced a strike", arts[0].Content)
	assert.Equal(t, "nytimes", arts[0].Outlet)
	assert.Equal(t, 2019, arts[0].Year())
	assert.Equal(t, "Strike", arts[0].Title, "raw title is kept")
}

func TestProject(t *testing.T) {
	tab := table(t, "scrape.csv", `,url,date,title,content,domain
0,https://v.test/a,2023-03-05T09:30:00-05:00,T1,C1,vox
1,https://v.test/b,garbage,T2,C2,vox
`)
	arts, rowErrs, err := Project(tab)
	require.NoError(t, err)
	require.Len(t, arts, 1)
	assert.Equal(t, "vox", arts[0].Outlet)
	assert.Equal(t, "C1", arts[0].Content)
	assert.Equal(t, 2023, arts[0].Year())

	require.Len(t, rowErrs, 1)
	var re *RowError
	require.True(t, errors.As(rowErrs[0], &re))
	assert.Equal(t, 2, re.Row)

	_, _, err = Project(table(t, "bad.csv", "url,title\nx,y\n"))
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	metrics := observability.NewMetrics(testLogger)
	n := NewNormalizer(config.DefaultConfig().Normalize, metrics, testLogger)

	out, err := n.Normalize([]*Table{table(t, "raw", rawCSV)}, table(t, "meta", metaCSV))
	require.NoError(t, err)

	require.Len(t, out, 2)
	assert.Equal(t, "https://a.test/1", out[0].URL, "first Strike wins")
	assert.Equal(t, "nytimes", out[0].Outlet)
	assert.Equal(t, "The UFT announced a strike", out[0].Content)
	assert.True(t, time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC).Equal(out[0].PublishedAt))
	assert.Equal(t, "https://a.test/5", out[1].URL, "2007 story dropped")
	assert.Equal(t, "body, with comma", out[1].Content)

	assert.EqualValues(t, 4, metrics.RecordsLoaded.Load())
	assert.EqualValues(t, 2, metrics.RecordsNormalized.Load())

	// Dedup state does not leak between runs.
	again, err := n.Normalize([]*Table{table(t, "raw", rawCSV)}, table(t, "meta", metaCSV))
	require.NoError(t, err)
	assert.Len(t, again, 2)
}

func TestNormalizeDropsSentinelsAndMonths(t *testing.T) {
	cfg := config.DefaultConfig().Normalize
	cfg.ExcludedMonths = []int{12}
	cfg.StripHTML = true
	n := NewNormalizer(cfg, nil, testLogger)

	scraped := table(t, "breitbart11.csv", `,url,date,title,content,domain
0,https://b.test/1,2023-11-02T10:00:00-04:00,Deal,<p>Union &amp; company</p>,breitbart
1,https://b.test/2,2023-11-03T10:00:00-04:00,No title found,body,breitbart
2,https://b.test/3,2023-12-03T10:00:00-04:00,December,body,breitbart
3,https://b.test/4,2023-11-04T10:00:00-04:00,Empty,,breitbart
4,https://b.test/5,2023-11-05T10:00:00-04:00,No outlet,body,
5,,2023-11-06T10:00:00-04:00,No url,body,breitbart
`)
	out, err := n.Normalize([]*Table{scraped}, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Union & company", out[0].Content)
	for _, a := range out {
		assert.True(t, a.Complete())
	}
}

func TestLoadTablesDirectory(t *testing.T) {
	dir := t.TempDir()
	header := ",url,date,title,content,domain\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.csv"), []byte(header+"0,https://x/2,2023-01-02,B,b,vox\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte(header+"0,https://x/1,2023-01-01,A,a,vox\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	tables, err := LoadTables(dir)
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, "a.csv", tables[0].Name)

	n := NewNormalizer(config.DefaultConfig().Normalize, nil, testLogger)
	out, err := n.Normalize(tables, nil)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "A", out[0].Title)

	single, err := LoadTables(filepath.Join(dir, "b.csv"))
	require.NoError(t, err)
	assert.Len(t, single, 1)

	_, err = LoadTables(t.TempDir())
	assert.Error(t, err, "directory without csv files")
	_, err = LoadTables(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

func TestSample(t *testing.T) {
	var arts []types.Article
	for i := 0; i < 50; i++ {
		arts = append(arts, types.Article{URL: string(rune('a' + i%26)), Title: strings.Repeat("x", i+1)})
	}

	s1 := Sample(arts, 10, 7)
	s2 := Sample(arts, 10, 7)
	require.Len(t, s1, 10)
	assert.Equal(t, s1, s2, "same seed, same sample")

	for i := 1; i < len(s1); i++ {
		assert.Less(t, len(s1[i-1].Title), len(s1[i].Title), "input order is kept")
	}

	assert.Len(t, Sample(arts, 100, 1), 50)
}
