package harvest_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fwojciec/devharvest"
	"github.com/fwojciec/devharvest/harvest"
	"github.com/fwojciec/devharvest/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rawFiles serves fixed bodies by URL and fails everything else.
func rawFiles(files map[string]string, requested *[]string) *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(_ context.Context, url string) (string, error) {
			if requested != nil {
				*requested = append(*requested, url)
			}
			if body, ok := files[url]; ok {
				return body, nil
			}
			return "", devharvest.Errorf(devharvest.ENOTFOUND, "not found: %s", url)
		},
	}
}

func TestReadmeLoader_Load(t *testing.T) {
	t.Parallel()

	t.Run("prefers main branch", func(t *testing.T) {
		t.Parallel()

		var requested []string
		l := &harvest.ReadmeLoader{
			Raw: rawFiles(map[string]string{
				"https://raw.githubusercontent.com/acme/tool/main/README.md":   "# Tool",
				"https://raw.githubusercontent.com/acme/tool/master/README.md": "# Old",
			}, &requested),
		}

		text, err := l.Load(context.Background(), "https://github.com/acme/tool")

		require.NoError(t, err)
		assert.Equal(t, "# Tool", text)
		assert.Len(t, requested, 1)
	})

	t.Run("falls back to master", func(t *testing.T) {
		t.Parallel()

		l := &harvest.ReadmeLoader{
			Raw: rawFiles(map[string]string{
				"https://raw.githubusercontent.com/acme/tool/main/README.md":   "404: Not Found",
				"https://raw.githubusercontent.com/acme/tool/master/README.md": "# Old",
			}, nil),
		}

		text, err := l.Load(context.Background(), "https://github.com/acme/tool")

		require.NoError(t, err)
		assert.Equal(t, "# Old", text)
	})

	t.Run("uses branch from tree URL first", func(t *testing.T) {
		t.Parallel()

		var requested []string
		l := &harvest.ReadmeLoader{
			Raw: rawFiles(map[string]string{
				"https://raw.githubusercontent.com/acme/tool/dev/README.md": "# Dev",
			}, &requested),
		}

		text, err := l.Load(context.Background(), "https://github.com/acme/tool/tree/dev")

		require.NoError(t, err)
		assert.Equal(t, "# Dev", text)
		assert.Equal(t, []string{"https://raw.githubusercontent.com/acme/tool/dev/README.md"}, requested)
	})

	t.Run("truncates long readme", func(t *testing.T) {
		t.Parallel()

		l := &harvest.ReadmeLoader{
			Raw: rawFiles(map[string]string{
				"https://raw.githubusercontent.com/acme/tool/main/README.md": strings.Repeat("é", devharvest.MaxReadmeRunes+50),
			}, nil),
		}

		text, err := l.Load(context.Background(), "https://github.com/acme/tool")

		require.NoError(t, err)
		assert.Equal(t, devharvest.MaxReadmeRunes, len([]rune(text)))
	})

	t.Run("renders repository page when raw files are missing", func(t *testing.T) {
		t.Parallel()

		l := &harvest.ReadmeLoader{
			Raw: rawFiles(nil, nil),
			Pages: &mock.Fetcher{
				FetchFn: func(_ context.Context, url string) (string, error) {
					assert.Equal(t, "https://github.com/acme/tool", url)
					return "<html><article>readme</article></html>", nil
				},
			},
			Extractor: &mock.ContentExtractor{
				ExtractFn: func(string) (*devharvest.ExtractResult, error) {
					return &devharvest.ExtractResult{ContentHTML: "<p>Readme body</p>"}, nil
				},
			},
			Converter: &mock.Converter{
				ConvertFn: func(string) (string, error) {
					return "Readme body", nil
				},
			},
		}

		text, err := l.Load(context.Background(), "https://github.com/acme/tool")

		require.NoError(t, err)
		assert.Equal(t, "Readme body", text)
	})

	t.Run("returns not found when nothing works", func(t *testing.T) {
		t.Parallel()

		l := &harvest.ReadmeLoader{
			Raw: rawFiles(nil, nil),
			Pages: &mock.Fetcher{
				FetchFn: func(context.Context, string) (string, error) {
					return "", errors.New("browser crashed")
				},
			},
			Extractor: &mock.ContentExtractor{},
			Converter: &mock.Converter{},
		}

		_, err := l.Load(context.Background(), "https://github.com/acme/tool")

		require.Error(t, err)
		assert.Equal(t, devharvest.ENOTFOUND, devharvest.ErrorCode(err))
	})

	t.Run("rejects non GitHub URL", func(t *testing.T) {
		t.Parallel()

		l := &harvest.ReadmeLoader{Raw: rawFiles(nil, nil)}

		_, err := l.Load(context.Background(), "https://gitlab.com/acme/tool")

		require.Error(t, err)
		assert.Equal(t, devharvest.EINVALID, devharvest.ErrorCode(err))
	})
}
