package deck

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/punchamoorthee/deckops/internal/models"
)

func testSlides(n int) []models.Slide {
	slides := make([]models.Slide, n)
	for i := range slides {
		slides[i] = models.Slide{
			Title:   fmt.Sprintf("Slide %d", i+1),
			Content: "First point\nSecond point",
		}
	}
	return slides
}

func readArchiveNames(t *testing.T, path string) map[string]bool {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	names := make(map[string]bool, len(zr.File))
	for _, f := range zr.File {
		names[f.Name] = true
	}
	return names
}

func TestPPTXRenderProducesValidPackage(t *testing.T) {
	catalog := tempCatalog(t, true)
	r := NewPPTX(t.TempDir(), catalog)

	path, err := r.Render(context.Background(), "History of Rome", "Alice", testSlides(6), 3)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".pptx"))

	names := readArchiveNames(t, path)
	assert.True(t, names["[Content_Types].xml"])
	assert.True(t, names["_rels/.rels"])
	assert.True(t, names["docProps/core.xml"])
	assert.True(t, names["ppt/presentation.xml"])
	assert.True(t, names["ppt/media/image1.png"], "selected template becomes the background image")
	for i := 1; i <= 6; i++ {
		assert.True(t, names[fmt.Sprintf("ppt/slides/slide%d.xml", i)], "slide %d part", i)
	}
	assert.False(t, names["ppt/slides/slide7.xml"], "no extra slide parts")
}

func TestPPTXRenderWithoutPreviewDegrades(t *testing.T) {
	catalog := tempCatalog(t, false)
	r := NewPPTX(t.TempDir(), catalog)

	path, err := r.Render(context.Background(), "Topic", "Author", testSlides(6), 1)
	require.NoError(t, err)

	names := readArchiveNames(t, path)
	assert.False(t, names["ppt/media/image1.png"], "no background when the preview is absent")
	assert.True(t, names["ppt/slides/slide1.xml"])
}

func TestPPTXRenderEmptySlides(t *testing.T) {
	r := NewPPTX(t.TempDir(), tempCatalog(t, false))

	_, err := r.Render(context.Background(), "Topic", "Author", nil, 1)
	assert.ErrorIs(t, err, ErrRender)
}

func TestPPTXRenderEscapesMarkup(t *testing.T) {
	r := NewPPTX(t.TempDir(), tempCatalog(t, false))

	slides := []models.Slide{{Title: `Ampersand & <tag> "quoted"`, Content: "a < b && b > c"}}
	slides = append(slides, testSlides(5)...)

	path, err := r.Render(context.Background(), `Q&A <session>`, "O'Brien", slides, 1)
	require.NoError(t, err)

	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != "ppt/slides/slide1.xml" {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		xml := string(data)
		assert.Contains(t, xml, "Ampersand &amp; &lt;tag&gt;")
		assert.NotContains(t, xml, "<tag>")
		return
	}
	t.Fatal("slide1.xml not found in package")
}

func TestPPTXFilenameFromTopic(t *testing.T) {
	r := NewPPTX(t.TempDir(), tempCatalog(t, false))

	path, err := r.Render(context.Background(), `My: "Big" <Plan>?`, "Author", testSlides(6), 1)
	require.NoError(t, err)

	base := filepath.Base(path)
	assert.True(t, strings.HasPrefix(base, "My_Big_Plan-"), "got %q", base)
	for _, bad := range `<>:"/\|?*` {
		assert.NotContains(t, base, string(bad))
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"with spaces here", "with_spaces_here"},
		{`a<b>c:d"e/f\g|h?i*j`, "abcdefghij"},
		{"", "presentation"},
		{`///`, "presentation"},
		{strings.Repeat("x", 80), strings.Repeat("x", 50)},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, sanitizeFilename(tc.in), "input %q", tc.in)
	}
}

func TestBodyFontSizeShrinksWithLength(t *testing.T) {
	assert.Equal(t, 1800, bodyFontSize(strings.Repeat("a", 100)))
	assert.Equal(t, 1600, bodyFontSize(strings.Repeat("a", 301)))
	assert.Equal(t, 1400, bodyFontSize(strings.Repeat("a", 501)))
}

func TestPPTXCreatesOutputDir(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "output")
	r := NewPPTX(out, tempCatalog(t, false))

	path, err := r.Render(context.Background(), "Topic", "Author", testSlides(6), 1)
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}
