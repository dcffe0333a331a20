package gemini_test

import (
	"context"
	"testing"

	"github.com/fwojciec/devharvest"
	"github.com/fwojciec/devharvest/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizer_Summarize_ReturnsErrorWhenReadmeEmpty(t *testing.T) {
	t.Parallel()

	summarizer := gemini.NewSummarizer(nil, "") // nil client ok for this test

	_, err := summarizer.Summarize(context.Background(), "  \n")

	require.Error(t, err)
	assert.Equal(t, devharvest.EINVALID, devharvest.ErrorCode(err))
	assert.Contains(t, devharvest.ErrorMessage(err), "readme required")
}

func TestNewSummarizer_DefaultsModel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, gemini.DefaultModel, gemini.NewSummarizer(nil, "").Model())
	assert.Equal(t, "gemini-2.5-pro", gemini.NewSummarizer(nil, "gemini-2.5-pro").Model())
}

func TestBuildConfig_SetsSystemInstruction(t *testing.T) {
	t.Parallel()

	config := gemini.BuildConfig()

	require.NotNil(t, config.SystemInstruction)
	require.Len(t, config.SystemInstruction.Parts, 1)
	assert.Contains(t, config.SystemInstruction.Parts[0].Text, "summarize software project READMEs")
}

func TestBuildConfig_SetsTemperature(t *testing.T) {
	t.Parallel()

	config := gemini.BuildConfig()

	require.NotNil(t, config.Temperature)
	assert.InDelta(t, 0.4, *config.Temperature, 0.001)
}
