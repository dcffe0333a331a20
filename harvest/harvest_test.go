package harvest_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/fwojciec/devharvest"
	"github.com/fwojciec/devharvest/harvest"
	"github.com/fwojciec/devharvest/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Story: Checkpointed scraping
//
// The harvester scrapes project pages strictly in order, retries transient
// failures, records a sentinel when an item cannot be scraped, and rewrites
// the whole progress store after every item so reruns resume cleanly.

func item(name string) devharvest.WorkItem {
	return devharvest.WorkItem{Name: name, Link: "https://devpost.com/software/" + name}
}

func done(name string) *devharvest.Result {
	return &devharvest.Result{
		Name:  name,
		Link:  "https://devpost.com/software/" + name,
		About: devharvest.StringPtr("done " + name),
		Tools: []string{},
	}
}

// echoExtractor turns the fetched HTML into the about text.
func echoExtractor() *mock.ProjectExtractor {
	return &mock.ProjectExtractor{
		ExtractFn: func(html, _ string) (*devharvest.ProjectDetails, error) {
			return &devharvest.ProjectDetails{About: devharvest.StringPtr(html), Tools: []string{"go"}}, nil
		},
	}
}

func newHarvester(fetch func(ctx context.Context, url string) (string, error), store devharvest.ProgressStore) *harvest.Harvester {
	return &harvest.Harvester{
		Fetcher:   &mock.Fetcher{FetchFn: fetch},
		Extractor: echoExtractor(),
		Store:     store,
		Policy:    fastPolicy(3),
		ItemDelay: -1,
	}
}

func links(results []*devharvest.Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Link
	}
	return out
}

func TestPending(t *testing.T) {
	t.Parallel()

	t.Run("filters items already stored by link", func(t *testing.T) {
		t.Parallel()

		items := []devharvest.WorkItem{item("a"), item("b"), item("c")}
		prior := []*devharvest.Result{done("b")}

		pending := harvest.Pending(items, prior)

		assert.Equal(t, []devharvest.WorkItem{item("a"), item("c")}, pending)
	})

	t.Run("keeps repeated links once", func(t *testing.T) {
		t.Parallel()

		items := []devharvest.WorkItem{item("a"), item("b"), item("a")}

		pending := harvest.Pending(items, nil)

		assert.Equal(t, []devharvest.WorkItem{item("a"), item("b")}, pending)
	})
}

func TestHarvester_Run(t *testing.T) {
	t.Parallel()

	t.Run("does not refetch items already in the store", func(t *testing.T) {
		t.Parallel()

		// Given: a store that already holds A and B
		store := &mock.MemoryStore{Results: []*devharvest.Result{done("a"), done("b")}}
		var fetched []string
		h := newHarvester(func(_ context.Context, url string) (string, error) {
			fetched = append(fetched, url)
			return "page", nil
		}, store)

		// When: running over A, B, C
		report, err := h.Run(context.Background(), []devharvest.WorkItem{item("a"), item("b"), item("c")}, nil)

		// Then: only C is fetched and appended after the prior entries
		require.NoError(t, err)
		assert.Equal(t, []string{"https://devpost.com/software/c"}, fetched)
		assert.Equal(t, []string{
			"https://devpost.com/software/a",
			"https://devpost.com/software/b",
			"https://devpost.com/software/c",
		}, links(store.Results))
		assert.Equal(t, "done a", *store.Results[0].About)
		assert.Equal(t, 2, report.Skipped)
		assert.Equal(t, 1, report.Processed)
		assert.Equal(t, 3, report.Total)
	})

	t.Run("rerun is idempotent", func(t *testing.T) {
		t.Parallel()

		store := &mock.MemoryStore{}
		fetches := 0
		h := newHarvester(func(context.Context, string) (string, error) {
			fetches++
			return "page", nil
		}, store)
		items := []devharvest.WorkItem{item("a"), item("b")}

		_, err := h.Run(context.Background(), items, nil)
		require.NoError(t, err)
		_, err = h.Run(context.Background(), items, nil)
		require.NoError(t, err)

		assert.Equal(t, 2, fetches)
		assert.Len(t, store.Results, 2)
	})

	t.Run("records sentinel after exhausting attempts and continues", func(t *testing.T) {
		t.Parallel()

		// Given: B always fails while A and C succeed
		store := &mock.MemoryStore{}
		attempts := map[string]int{}
		h := newHarvester(func(_ context.Context, url string) (string, error) {
			attempts[url]++
			if url == "https://devpost.com/software/b" {
				return "", errors.New("navigation failed")
			}
			return "page " + url, nil
		}, store)

		// When: running over A, B, C with an empty store
		report, err := h.Run(context.Background(), []devharvest.WorkItem{item("a"), item("b"), item("c")}, nil)

		// Then: output is [A, B(sentinel), C] with count 3
		require.NoError(t, err)
		require.Len(t, store.Results, 3)
		assert.Equal(t, []string{
			"https://devpost.com/software/a",
			"https://devpost.com/software/b",
			"https://devpost.com/software/c",
		}, links(store.Results))
		assert.False(t, store.Results[0].IsSentinel())
		assert.True(t, store.Results[1].IsSentinel())
		assert.Nil(t, store.Results[1].About)
		assert.Nil(t, store.Results[1].GitHub)
		assert.Nil(t, store.Results[1].Tools)
		assert.Equal(t, "b", store.Results[1].Name)
		assert.False(t, store.Results[2].IsSentinel())

		// And: B was attempted exactly three times
		assert.Equal(t, 3, attempts["https://devpost.com/software/b"])
		assert.Equal(t, 1, attempts["https://devpost.com/software/a"])

		assert.Equal(t, 3, report.Total)
		assert.Equal(t, 2, report.Succeeded)
		assert.Equal(t, 1, report.Failed)
	})

	t.Run("writes the full store after every item", func(t *testing.T) {
		t.Parallel()

		store := &mock.MemoryStore{}
		h := newHarvester(func(_ context.Context, url string) (string, error) {
			if url == "https://devpost.com/software/b" {
				return "", errors.New("navigation failed")
			}
			return "page", nil
		}, store)

		_, err := h.Run(context.Background(), []devharvest.WorkItem{item("a"), item("b"), item("c")}, nil)

		require.NoError(t, err)
		require.Len(t, store.Snapshots, 3)
		assert.Equal(t, []string{"https://devpost.com/software/a"}, links(store.Snapshots[0]))
		assert.Len(t, store.Snapshots[1], 2)
		assert.Len(t, store.Snapshots[2], 3)
	})

	t.Run("interruption leaves only completed items", func(t *testing.T) {
		t.Parallel()

		// Given: the run is canceled while B is being fetched
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		store := &mock.MemoryStore{}
		h := newHarvester(func(ctx context.Context, url string) (string, error) {
			if url == "https://devpost.com/software/b" {
				cancel()
				return "", ctx.Err()
			}
			return "page", nil
		}, store)

		// When: running over A, B, C
		report, err := h.Run(ctx, []devharvest.WorkItem{item("a"), item("b"), item("c")}, nil)

		// Then: the run stops and the store holds A only, with no B entry
		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, []string{"https://devpost.com/software/a"}, links(store.Results))
		assert.Equal(t, 1, report.Total)
	})

	t.Run("completes immediately and rewrites unchanged store when nothing is pending", func(t *testing.T) {
		t.Parallel()

		store := &mock.MemoryStore{Results: []*devharvest.Result{done("a"), done("b")}}
		h := newHarvester(func(context.Context, string) (string, error) {
			t.Fatal("fetch must not be called")
			return "", nil
		}, store)

		report, err := h.Run(context.Background(), []devharvest.WorkItem{item("a"), item("b")}, nil)

		require.NoError(t, err)
		require.Len(t, store.Snapshots, 1)
		assert.Equal(t, []*devharvest.Result{done("a"), done("b")}, store.Snapshots[0])
		assert.Equal(t, 0, report.Processed)
		assert.Equal(t, 2, report.Skipped)
		assert.Equal(t, 2, report.Total)
	})

	t.Run("continues when the store cannot be written", func(t *testing.T) {
		t.Parallel()

		var logs bytes.Buffer
		saves := 0
		store := &mock.MemoryStore{
			SaveErr: func([]*devharvest.Result) error {
				saves++
				if saves == 1 {
					return devharvest.Errorf(devharvest.EPERSIST, "disk full")
				}
				return nil
			},
		}
		h := newHarvester(func(context.Context, string) (string, error) {
			return "page", nil
		}, store)
		h.Logger = slog.New(slog.NewTextHandler(&logs, nil))

		report, err := h.Run(context.Background(), []devharvest.WorkItem{item("a"), item("b")}, nil)

		require.NoError(t, err)
		assert.Equal(t, 1, report.PersistErrors)
		assert.Len(t, store.Results, 2, "the next save rewrites everything")
		assert.Contains(t, logs.String(), "saving progress")
	})

	t.Run("retries empty extraction", func(t *testing.T) {
		t.Parallel()

		store := &mock.MemoryStore{}
		fetches := 0
		h := newHarvester(func(context.Context, string) (string, error) {
			fetches++
			return "page", nil
		}, store)
		extracts := 0
		h.Extractor = &mock.ProjectExtractor{
			ExtractFn: func(string, string) (*devharvest.ProjectDetails, error) {
				extracts++
				if extracts < 3 {
					return nil, devharvest.Errorf(devharvest.EEMPTY, "placeholder page")
				}
				return &devharvest.ProjectDetails{About: devharvest.StringPtr("ready")}, nil
			},
		}

		_, err := h.Run(context.Background(), []devharvest.WorkItem{item("a")}, nil)

		require.NoError(t, err)
		assert.Equal(t, 3, fetches)
		require.Len(t, store.Results, 1)
		assert.Equal(t, "ready", *store.Results[0].About)
		assert.Equal(t, []string{}, store.Results[0].Tools)
	})

	t.Run("returns setup error when the store cannot be loaded", func(t *testing.T) {
		t.Parallel()

		store := &mock.ProgressStore{
			LoadFn: func(context.Context) ([]*devharvest.Result, error) {
				return nil, errors.New("corrupt json")
			},
		}
		h := newHarvester(func(context.Context, string) (string, error) {
			t.Fatal("fetch must not be called")
			return "", nil
		}, store)

		_, err := h.Run(context.Background(), []devharvest.WorkItem{item("a")}, nil)

		require.Error(t, err)
		assert.Equal(t, devharvest.ESETUP, devharvest.ErrorCode(err))
	})

	t.Run("rejects work items without link", func(t *testing.T) {
		t.Parallel()

		h := newHarvester(nil, &mock.MemoryStore{})

		_, err := h.Run(context.Background(), []devharvest.WorkItem{{Name: "nolink"}}, nil)

		require.Error(t, err)
		assert.Equal(t, devharvest.EINVALID, devharvest.ErrorCode(err))
	})

	t.Run("reports progress in order", func(t *testing.T) {
		t.Parallel()

		store := &mock.MemoryStore{Results: []*devharvest.Result{done("a")}}
		h := newHarvester(func(_ context.Context, url string) (string, error) {
			if url == "https://devpost.com/software/c" {
				return "", errors.New("timeout")
			}
			return "page", nil
		}, store)
		h.Policy = fastPolicy(2)

		var events []harvest.ProgressEvent
		_, err := h.Run(context.Background(), []devharvest.WorkItem{item("a"), item("b"), item("c")}, func(e harvest.ProgressEvent) {
			events = append(events, e)
		})

		require.NoError(t, err)
		var types []harvest.ProgressType
		for _, e := range events {
			types = append(types, e.Type)
		}
		assert.Equal(t, []harvest.ProgressType{
			harvest.ProgressStarted,
			harvest.ProgressItem,
			harvest.ProgressCompleted,
			harvest.ProgressItem,
			harvest.ProgressRetry,
			harvest.ProgressFailed,
			harvest.ProgressFinished,
		}, types)

		// Running count includes prior entries
		assert.Equal(t, 1, events[0].Completed)
		assert.Equal(t, 3, events[0].Total)
		assert.Equal(t, 2, events[2].Completed)
		assert.Equal(t, 1, events[4].Attempt)
		assert.Equal(t, 3, events[5].Completed)
		require.Error(t, events[5].Error)
		assert.Equal(t, devharvest.EFETCH, devharvest.ErrorCode(events[5].Error))
	})

	t.Run("failed event carries the last attempt's cause", func(t *testing.T) {
		t.Parallel()

		// Given: an item whose page never loads
		cause := errors.New("net::ERR_CONNECTION_RESET")
		h := newHarvester(func(context.Context, string) (string, error) {
			return "", cause
		}, &mock.MemoryStore{})

		var failed *harvest.ProgressEvent
		_, err := h.Run(context.Background(), []devharvest.WorkItem{item("a")}, func(e harvest.ProgressEvent) {
			if e.Type == harvest.ProgressFailed {
				failed = &e
			}
		})

		// Then: the failure explains why the item was given up on
		require.NoError(t, err)
		require.NotNil(t, failed)
		assert.ErrorIs(t, failed.Error, cause)
		assert.Contains(t, devharvest.ErrorMessage(failed.Error), "giving up on a")
		assert.Contains(t, devharvest.ErrorMessage(failed.Error), "net::ERR_CONNECTION_RESET")
	})

	t.Run("waits between items", func(t *testing.T) {
		t.Parallel()

		store := &mock.MemoryStore{}
		h := newHarvester(func(context.Context, string) (string, error) {
			return "page", nil
		}, store)
		h.ItemDelay = 20 * time.Millisecond

		start := time.Now()
		_, err := h.Run(context.Background(), []devharvest.WorkItem{item("a"), item("b"), item("c")}, nil)

		require.NoError(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
	})

	t.Run("logs failed attempts", func(t *testing.T) {
		t.Parallel()

		var logs bytes.Buffer
		h := newHarvester(func(context.Context, string) (string, error) {
			return "", errors.New("navigation failed")
		}, &mock.MemoryStore{})
		h.Logger = slog.New(slog.NewTextHandler(&logs, nil))

		_, err := h.Run(context.Background(), []devharvest.WorkItem{item("a")}, nil)

		require.NoError(t, err)
		output := logs.String()
		assert.Contains(t, output, "attempt failed")
		assert.Contains(t, output, "attempt=2")
		assert.Contains(t, output, "giving up")
	})
}
