package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePlan = `# Modul Ajar Matematika

Modul ini membahas pecahan.

## Informasi Umum

- **Fase:** B
- *Kelas:* 4
  - Sub poin

## Kegiatan

1. Pendahuluan
2. Inti

| Aspek | Skor |
|:------|-----:|
| Pemahaman | 4 |

---

Penutup.
`

func TestEmptyInputReturnsSentinels(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\n\t", "```markdown\n```"} {
		html := ToHTML(in)
		assert.True(t, strings.HasPrefix(html, NoContentHTMLPrefix), "input %q", in)
		assert.Equal(t, NoContentHTML, html)

		txt := ToPlainText(in)
		assert.Contains(t, txt, NoContentMarker, "input %q", in)
	}
}

func TestRawHTMLOnlyIsNoContent(t *testing.T) {
	assert.Equal(t, NoContentHTML, ToHTML("<div>hi</div>"))
}

func TestHeadingAndList(t *testing.T) {
	in := "# Title\n- a\n- b"

	html := ToHTML(in)
	assert.Contains(t, html, "<h1>Title</h1>")
	assert.Contains(t, html, "<ul>")
	assert.Contains(t, html, "<li>a</li>")
	assert.Contains(t, html, "<li>b</li>")

	txt := ToPlainText(in)
	assert.Contains(t, txt, "Title")
	assert.Contains(t, txt, "a")
	assert.Contains(t, txt, "b")
	assert.NotContains(t, txt, "#")
	assert.NotContains(t, txt, "-")
	assert.Equal(t, "Title\n\n• a\n• b\n", txt)
}

func TestPlainTextStructure(t *testing.T) {
	txt := ToPlainText(samplePlan)

	assert.NotContains(t, txt, "**")
	assert.NotContains(t, txt, "*Kelas")
	assert.Contains(t, txt, "Modul Ajar Matematika\n\nModul ini membahas pecahan.")
	assert.Contains(t, txt, "• Fase: B\n• Kelas: 4\n  • Sub poin")
	assert.Contains(t, txt, "1. Pendahuluan\n2. Inti")
	assert.Contains(t, txt, "Aspek | Skor\nPemahaman | 4")
	assert.Contains(t, txt, ruleLine)
	assert.True(t, strings.HasSuffix(txt, "Penutup.\n"))
}

func TestOrderedListKeepsStart(t *testing.T) {
	txt := ToPlainText("3. tiga\n4. empat")
	assert.Equal(t, "3. tiga\n4. empat\n", txt)
}

func TestHTMLTablesGetPrintStyles(t *testing.T) {
	html := ToHTML(samplePlan)
	assert.Contains(t, html, `<table style="border-collapse:collapse;`)
	assert.Contains(t, html, `<th style="text-align:left;border:1px solid`)
	assert.Contains(t, html, `<td style="text-align:right;border:1px solid`)
	assert.Contains(t, html, "<hr>")
	assert.Contains(t, html, "<strong>Fase:</strong>")
}

func TestConvertersAreDeterministic(t *testing.T) {
	for _, in := range []string{samplePlan, "# Title\n- a\n- b", "plain"} {
		assert.Equal(t, ToHTML(in), ToHTML(in))
		assert.Equal(t, ToPlainText(in), ToPlainText(in))
	}
}

func TestCleanStripsWrappingFence(t *testing.T) {
	in := "```markdown\r\n# Judul\r\n\r\nIsi\r\n```"
	assert.Equal(t, "# Judul\n\nIsi", Clean(in))
	assert.Contains(t, ToHTML(in), "<h1>Judul</h1>")

	// an inner code block is left alone
	assert.Equal(t, "Teks\n```\nkode\n```", Clean("Teks\n```\nkode\n```"))
}

func TestBuildOutline(t *testing.T) {
	sections := BuildOutline("Pengantar\n\n# A\nisi a\n## A1\n- x\n- y\n## A2\n# B\nisi b")
	require.Len(t, sections, 3)

	assert.Equal(t, "", sections[0].Title)
	assert.Equal(t, []string{"Pengantar"}, sections[0].ContentLines)

	a := sections[1]
	assert.Equal(t, "A", a.Title)
	assert.Equal(t, 1, a.Level)
	assert.Equal(t, []string{"isi a"}, a.ContentLines)
	require.Len(t, a.SubSections, 2)
	assert.Equal(t, "A1", a.SubSections[0].Title)
	assert.Equal(t, []string{"• x", "• y"}, a.SubSections[0].ContentLines)
	assert.Equal(t, "A2", a.SubSections[1].Title)
	assert.Empty(t, a.SubSections[1].ContentLines)

	assert.Equal(t, "B", sections[2].Title)
	assert.Nil(t, sections[2].SubSections)
}

func TestBuildOutlineSkippedLevels(t *testing.T) {
	sections := BuildOutline("### deep\n# top\n### child")
	require.Len(t, sections, 2)
	assert.Equal(t, "deep", sections[0].Title)
	require.Len(t, sections[1].SubSections, 1)
	assert.Equal(t, "child", sections[1].SubSections[0].Title)
}

func TestBuildOutlineEmpty(t *testing.T) {
	assert.Nil(t, BuildOutline("  "))
}

func TestPlainTextCodeBlocks(t *testing.T) {
	in := "Contoh:\n\n```go\nfmt.Println(\"*a*\")\nx := 2\n```\n\n    indented\n    code\n\nPakai `\\*raw\\*` saja."
	txt := ToPlainText(in)
	assert.Equal(t, "Contoh:\n\nfmt.Println(\"*a*\")\nx := 2\n\nindented\ncode\n\nPakai \\*raw\\* saja.\n", txt)
}

func TestPlainTextResolvesEscapesAndEntities(t *testing.T) {
	cases := map[string]string{
		`\*bukan tebal\*`:   "*bukan tebal*\n",
		"Tanya &amp; Jawab": "Tanya & Jawab\n",
		"Suhu 30&#176;C":    "Suhu 30°C\n",
		`1\. bukan daftar`:  "1. bukan daftar\n",
	}
	for in, want := range cases {
		assert.Equal(t, want, ToPlainText(in), "input %q", in)
	}
}
