// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/scholar-mail/pkg/types"
)

// --- test helpers ---

func testSetup(t *testing.T) (*Store, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "knowledge")

	store, err := NewStore(types.LedgerConfig{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return store, dir
}

func samplePapers() []types.PaperRecord {
	return []types.PaperRecord{
		{Title: "Attention Is All You Need", URL: "https://arxiv.org/abs/1706.03762"},
		{Title: "Highly accurate protein structure prediction", URL: "https://www.nature.com/articles/s41586-021-03819-2"},
	}
}

// --- schema tests ---

func TestNewStoreCreatesDBFile(t *testing.T) {
	_, dir := testSetup(t)

	if _, err := os.Stat(filepath.Join(dir, indexDir, dbFile)); os.IsNotExist(err) {
		t.Errorf("database file not created")
	}
}

// --- record tests ---

func TestRecordReportsNewPapers(t *testing.T) {
	store, _ := testSetup(t)
	ctx := context.Background()

	first, err := store.Record(ctx, "alert 1", samplePapers())
	require.NoError(t, err)
	assert.Len(t, first.New, 2)
	assert.Equal(t, 0, first.Seen)

	more := append(samplePapers(), types.PaperRecord{
		Title: "Graph neural networks in chemistry", URL: "https://link.springer.com/article/1",
	})
	second, err := store.Record(ctx, "alert 2", more)
	require.NoError(t, err)
	require.Len(t, second.New, 1)
	assert.Equal(t, "https://link.springer.com/article/1", second.New[0].URL)
	assert.Equal(t, 2, second.Seen)
}

func TestListMostRecentFirst(t *testing.T) {
	store, _ := testSetup(t)
	ctx := context.Background()

	papers := samplePapers()
	_, err := store.Record(ctx, "later", papers[1:])
	require.NoError(t, err)
	_, err = store.Record(ctx, "latest", papers[:1])
	require.NoError(t, err)

	entries, err := store.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, papers[0].URL, entries[0].URL)
	assert.Equal(t, papers[1].URL, entries[1].URL)
}

func TestRecordEmpty(t *testing.T) {
	store, _ := testSetup(t)

	summary, err := store.Record(context.Background(), "nothing", nil)
	require.NoError(t, err)
	assert.Empty(t, summary.New)
	assert.Zero(t, summary.Seen)
}

func TestRecordLastTitleWins(t *testing.T) {
	store, _ := testSetup(t)
	ctx := context.Background()

	url := "https://arxiv.org/abs/1706.03762"
	_, err := store.Record(ctx, "a", []types.PaperRecord{{Title: "Old title of the paper", URL: url}})
	require.NoError(t, err)
	_, err = store.Record(ctx, "b", []types.PaperRecord{{Title: "New title of the paper", URL: url}})
	require.NoError(t, err)

	entries, err := store.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "New title of the paper", e.Title)
	assert.Equal(t, "b", e.Source)
	assert.Equal(t, 2, e.TimesSeen)
	assert.True(t, e.LastSeen.After(e.FirstSeen))
}

// --- list tests ---

func TestList(t *testing.T) {
	store, _ := testSetup(t)
	ctx := context.Background()

	_, err := store.Record(ctx, "alert", samplePapers())
	require.NoError(t, err)

	tests := []struct {
		name     string
		opts     ListOptions
		wantURLs []string
	}{
		{
			name: "same timestamp orders by url",
			opts: ListOptions{},
			wantURLs: []string{
				"https://arxiv.org/abs/1706.03762",
				"https://www.nature.com/articles/s41586-021-03819-2",
			},
		},
		{
			name:     "title query is case-insensitive",
			opts:     ListOptions{Query: "PROTEIN"},
			wantURLs: []string{"https://www.nature.com/articles/s41586-021-03819-2"},
		},
		{
			name:     "domain filter",
			opts:     ListOptions{Domain: "arxiv.org"},
			wantURLs: []string{"https://arxiv.org/abs/1706.03762"},
		},
		{
			name:     "max results",
			opts:     ListOptions{MaxResults: 1},
			wantURLs: []string{"https://arxiv.org/abs/1706.03762"},
		},
		{
			name:     "no match",
			opts:     ListOptions{Domain: "ieee.org"},
			wantURLs: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := store.List(ctx, tt.opts)
			require.NoError(t, err)
			var urls []string
			for _, e := range entries {
				urls = append(urls, e.URL)
			}
			assert.Equal(t, tt.wantURLs, urls)
		})
	}
}

func TestListCorruptTimestamp(t *testing.T) {
	store, _ := testSetup(t)
	ctx := context.Background()

	_, err := store.db.Exec(
		`INSERT INTO papers (url, title, first_seen, last_seen) VALUES (?, ?, ?, ?)`,
		"https://arxiv.org/abs/1", "A paper with a broken row", "not-a-time", "2026-03-01T09:00:00Z",
	)
	require.NoError(t, err)

	_, err = store.List(ctx, ListOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing first_seen of https://arxiv.org/abs/1")
}

// --- export tests ---

func TestExportYAML(t *testing.T) {
	store, dir := testSetup(t)
	ctx := context.Background()
	_, err := store.Record(ctx, "alert", samplePapers())
	require.NoError(t, err)

	path, err := store.ExportYAML(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, indexDir, "export.yaml"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var entries []types.LedgerEntry
	require.NoError(t, yaml.Unmarshal(data, &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "Attention Is All You Need", entries[0].Title)
	assert.Contains(t, string(data), "url: https://arxiv.org/abs/1706.03762")
}

func TestExportJSON(t *testing.T) {
	store, _ := testSetup(t)
	ctx := context.Background()
	_, err := store.Record(ctx, "alert", samplePapers())
	require.NoError(t, err)

	path, err := store.ExportJSON(ctx, ListOptions{Domain: "nature.com"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var entries []map[string]any
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "https://www.nature.com/articles/s41586-021-03819-2", entries[0]["url"])
	assert.Equal(t, "alert", entries[0]["source"])
}
