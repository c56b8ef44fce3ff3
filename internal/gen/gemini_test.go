package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/punchamoorthee/deckops/internal/models"
)

func TestParseSlidesPlainArray(t *testing.T) {
	slides, err := parseSlides(`[{"title":"Intro","content":"Hello"},{"title":"End","content":"Bye"}]`)
	require.NoError(t, err)
	assert.Equal(t, []models.Slide{
		{Title: "Intro", Content: "Hello"},
		{Title: "End", Content: "Bye"},
	}, slides)
}

func TestParseSlidesFencedBlock(t *testing.T) {
	text := "```json\n[{\"title\":\"Intro\",\"content\":\"Hello\"}]\n```"
	slides, err := parseSlides(text)
	require.NoError(t, err)
	require.Len(t, slides, 1)
	assert.Equal(t, "Intro", slides[0].Title)
}

func TestParseSlidesBareFence(t *testing.T) {
	text := "```\n[{\"title\":\"Intro\",\"content\":\"Hello\"}]\n```"
	slides, err := parseSlides(text)
	require.NoError(t, err)
	require.Len(t, slides, 1)
}

func TestParseSlidesWrapperObject(t *testing.T) {
	slides, err := parseSlides(`{"slides":[{"title":"Intro","content":"Hello"}]}`)
	require.NoError(t, err)
	require.Len(t, slides, 1)
	assert.Equal(t, "Intro", slides[0].Title)
}

func TestParseSlidesSkipsUntitled(t *testing.T) {
	slides, err := parseSlides(`[{"title":"","content":"orphan"},{"title":"Kept","content":"x"},{"title":"  ","content":"y"}]`)
	require.NoError(t, err)
	require.Len(t, slides, 1)
	assert.Equal(t, "Kept", slides[0].Title)
}

func TestParseSlidesGarbage(t *testing.T) {
	for _, text := range []string{"", "not json at all", "{\"answer\": 42}", "[]"} {
		_, err := parseSlides(text)
		assert.ErrorIs(t, err, ErrGeneration, "input %q", text)
	}
}
