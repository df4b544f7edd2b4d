package ingestion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseFile_UnsupportedType(t *testing.T) {
	_, err := ParseFile("report.xlsx")
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
}

func TestParseText(t *testing.T) {
	t.Run("single chunk", func(t *testing.T) {
		path := writeFile(t, "notes.txt", "  Some plain text.\n")
		chunks, err := ParseFile(path)
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, "Some plain text.", chunks[0].Content)
		assert.Equal(t, "notes.txt", chunks[0].Source)
		assert.False(t, chunks[0].HasPage())
	})

	t.Run("blank file yields nothing", func(t *testing.T) {
		path := writeFile(t, "empty.txt", "   \n\n")
		chunks, err := ParseFile(path)
		require.NoError(t, err)
		assert.Empty(t, chunks)
	})
}

func TestParseMarkdown(t *testing.T) {
	t.Run("splits on level one and two headings", func(t *testing.T) {
		path := writeFile(t, "guide.md", `# Terms

General conditions apply.

## Termination

Thirty days written notice.

## Fees

Listed in appendix A.

# Contact

support@example.com
`)
		chunks, err := ParseFile(path)
		require.NoError(t, err)
		require.Len(t, chunks, 4)

		assert.Equal(t, "General conditions apply.", chunks[0].Content)
		assert.Equal(t, map[string]string{"Header 1": "Terms"}, chunks[0].Section)

		assert.Equal(t, "Thirty days written notice.", chunks[1].Content)
		assert.Equal(t, map[string]string{"Header 1": "Terms", "Header 2": "Termination"}, chunks[1].Section)

		assert.Equal(t, "Listed in appendix A.", chunks[2].Content)
		assert.Equal(t, map[string]string{"Header 1": "Terms", "Header 2": "Fees"}, chunks[2].Section)

		assert.Equal(t, "support@example.com", chunks[3].Content)
		assert.Equal(t, map[string]string{"Header 1": "Contact"}, chunks[3].Section)
	})

	t.Run("preamble before first heading", func(t *testing.T) {
		path := writeFile(t, "readme.md", "Intro line.\n\n# Title\n\nBody.\n")
		chunks, err := ParseFile(path)
		require.NoError(t, err)
		require.Len(t, chunks, 2)
		assert.Equal(t, "Intro line.", chunks[0].Content)
		assert.Nil(t, chunks[0].Section)
	})

	t.Run("level three headings stay in the body", func(t *testing.T) {
		path := writeFile(t, "deep.md", "## Section\n\n### Detail\n\nText under detail.\n")
		chunks, err := ParseFile(path)
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Contains(t, chunks[0].Content, "Text under detail.")
		assert.Equal(t, "Section", chunks[0].Section["Header 2"])
	})

	t.Run("source is the base name", func(t *testing.T) {
		path := writeFile(t, "guide.md", "# A\n\nB.\n")
		chunks, err := ParseFile(path)
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, "guide.md", chunks[0].Source)
	})
}

func TestExtractRuns(t *testing.T) {
	xml := `<w:r><w:t>Hello </w:t></w:r><w:r><w:t xml:space="preserve">world</w:t></w:r>`
	assert.Equal(t, "Hello world", extractRuns(xml))
	assert.Equal(t, "", extractRuns("<w:p></w:p>"))
}
