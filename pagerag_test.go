package pagerag

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/pagerag/cache"
	"github.com/tsawler/pagerag/internal/pdftest"
	"github.com/tsawler/pagerag/internal/scope"
	"github.com/tsawler/pagerag/model"
	"github.com/tsawler/pagerag/reader"
	"github.com/tsawler/pagerag/tables"
)

// top converts a word's top edge on a US Letter page into the baseline
// pdftest expects for a 12pt font
func top(y float64) float64 {
	return 792 - 9.6 - y
}

// gridPage draws a 3x3 unruled table with its first row at top 100 and a
// sentence well below it
func gridPage() pdftest.Page {
	var b strings.Builder
	for i, row := range [][]string{{"A1", "B1", "C1"}, {"A2", "B2", "C2"}, {"A3", "B3", "C3"}} {
		for j, cell := range row {
			b.WriteString(pdftest.Text(100+100*float64(j), top(100+20*float64(i)), 12, cell))
		}
	}
	b.WriteString(pdftest.Text(100, top(300), 12, "Quarterly results follow."))
	return pdftest.Page{Content: b.String()}
}

func textPage(s string) pdftest.Page {
	return pdftest.Page{Content: pdftest.Text(72, 720, 12, s)}
}

func noMalformed(t *testing.T, warnings []Warning) {
	t.Helper()
	for _, w := range warnings {
		assert.NotEqual(t, WarnMalformedPage, w.Kind, "unexpected warning: %s", w)
	}
}

func TestConvert_TextPage(t *testing.T) {
	data := pdftest.Build(textPage("Hello world"))

	docs, warnings, err := Convert(context.Background(), data, "hello.pdf")
	require.NoError(t, err)
	noMalformed(t, warnings)

	require.Len(t, docs, 1)
	assert.Equal(t, "[Text]\nHello world", docs[0].PageContent)
	assert.Equal(t, "hello.pdf", docs[0].Metadata.Source)
	assert.Equal(t, 1, docs[0].PageNumber())
	assert.Equal(t, 0, docs[0].Metadata.ChunkIndex)
	assert.False(t, docs[0].Metadata.IsPageSplit)
}

func TestConvert_TablePage(t *testing.T) {
	data := pdftest.Build(gridPage())

	records, warnings, err := FromBytes(data, "grid.pdf").Records(context.Background())
	require.NoError(t, err)
	noMalformed(t, warnings)
	require.Len(t, records, 1)

	rec := records[0]
	require.Len(t, rec.Tables, 1)
	assert.Equal(t, model.SourcePrimary, rec.Tables[0].Source)
	assert.Equal(t, [][]string{{"A1", "B1", "C1"}, {"A2", "B2", "C2"}, {"A3", "B3", "C3"}}, rec.Tables[0].RawData)
	assert.Equal(t, "Quarterly results follow.", rec.Text)

	docs, _, err := FromBytes(data, "grid.pdf").Documents(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Contains(t, docs[0].PageContent, "--- Table 1 (primary) ---")
	assert.Contains(t, docs[0].PageContent, "| A1 | B1 | C1 |")
	assert.NotContains(t, strings.Split(docs[0].PageContent, "[Tables: 1]")[0], "A2")
}

func TestConverter_PageOrder(t *testing.T) {
	var pages []pdftest.Page
	for i := 1; i <= 8; i++ {
		pages = append(pages, textPage(fmt.Sprintf("Body of page %d", i)))
	}
	data := pdftest.Build(pages...)

	records, _, err := FromBytes(data, "many.pdf").Workers(4).Records(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 8)
	for i, r := range records {
		assert.Equal(t, i+1, r.Number)
		assert.Equal(t, fmt.Sprintf("Body of page %d", i+1), r.Text)
	}

	text, _, err := FromBytes(data, "many.pdf").Workers(3).Text(context.Background())
	require.NoError(t, err)
	last := -1
	for i := 1; i <= 8; i++ {
		at := strings.Index(text, fmt.Sprintf("=== Page %d ===", i))
		require.Greater(t, at, last, "page %d out of order", i)
		last = at
	}
}

func TestConverter_Pages(t *testing.T) {
	data := pdftest.Build(textPage("one"), textPage("two"), textPage("three"))
	base := FromBytes(data, "three.pdf")

	records, _, err := base.Pages(3, 1, 3).Records(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 1, records[0].Number)
	assert.Equal(t, 3, records[1].Number)

	records, _, err = base.PageRange(2, 3).Records(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "two", records[0].Text)

	_, _, err = base.Pages(4).Records(context.Background())
	assert.ErrorContains(t, err, "out of range")

	// base is unchanged by the derived converters
	records, _, err = base.Records(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestConverter_PageCount(t *testing.T) {
	data := pdftest.Build(textPage("one"), textPage("two"))
	assert.Equal(t, 2, Must(FromBytes(data, "x.pdf").PageCount()))
}

func TestConverter_ChunkSize(t *testing.T) {
	words := strings.Repeat("lorem ipsum ", 8)
	var b strings.Builder
	for i := 0; i < 20; i++ {
		b.WriteString(pdftest.Text(72, 740-float64(i)*16, 10, words))
	}
	data := pdftest.Build(pdftest.Page{Content: b.String()})

	docs, _, err := FromBytes(data, "long.pdf").ChunkSize(300).ChunkOverlap(40).Documents(context.Background())
	require.NoError(t, err)
	require.Greater(t, len(docs), 1)
	for i, d := range docs {
		assert.Equal(t, i, d.Metadata.ChunkIndex)
		assert.True(t, d.Metadata.IsPageSplit)
		assert.LessOrEqual(t, len([]rune(d.PageContent)), 300)
	}

	_, _, err = FromBytes(data, "long.pdf").ChunkSize(100).ChunkOverlap(100).Documents(context.Background())
	assert.Error(t, err)
}

func TestConvert_EmptyCorpus(t *testing.T) {
	data := pdftest.Build(pdftest.Page{Content: pdftest.Line(72, 700, 300, 700)})

	docs, warnings, err := Convert(context.Background(), data, "blank.pdf")
	assert.ErrorIs(t, err, ErrEmptyCorpus)
	assert.Nil(t, docs)
	assert.NotEmpty(t, warnings)
}

func TestConvert_InvalidPDF(t *testing.T) {
	_, _, err := Convert(context.Background(), []byte("not a pdf"), "junk.pdf")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrEmptyCorpus))
}

func TestConvert_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Convert(ctx, pdftest.Build(textPage("Hello")), "hello.pdf")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpen(t *testing.T) {
	_, _, err := Open("nonexistent.pdf").Documents(context.Background())
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, os.WriteFile(path, pdftest.Build(textPage("Hello world")), 0o644))

	docs, _, err := Open(path).Documents(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "report.pdf", docs[0].Metadata.Source)

	docs, _, err = Open(path).Source("reports/2024/report.pdf").Documents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "reports/2024/report.pdf", docs[0].Metadata.Source)
}

func TestConverter_Cache(t *testing.T) {
	store, err := cache.OpenMemory()
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	data := pdftest.Build(textPage("Hello world"))

	first, _, err := FromBytes(data, "a.pdf").Cache(store).Documents(ctx)
	require.NoError(t, err)

	key := cache.Key(reader.NewBuffer(data).Digest(), DefaultOptions().fingerprint()...)
	entry, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, first[0].PageContent, entry.Documents[0].PageContent)

	second, _, err := FromBytes(data, "b.pdf").Cache(store).Documents(ctx)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "b.pdf", second[0].Metadata.Source)
	assert.Equal(t, first[0].PageContent, second[0].PageContent)

	// different options miss the cache
	opts := DefaultOptions()
	opts.Splitter.ChunkSize = 400
	key = cache.Key(reader.NewBuffer(data).Digest(), opts.fingerprint()...)
	_, ok, err = store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOptions_FingerprintIgnoresPageOrderAndRepeats(t *testing.T) {
	a, b := DefaultOptions(), DefaultOptions()
	a.Pages = []int{3, 1, 1}
	b.Pages = []int{1, 3}
	assert.Equal(t, a.fingerprint(), b.fingerprint())

	b.Pages = []int{1}
	assert.NotEqual(t, a.fingerprint(), b.fingerprint())
}

func TestConverter_CacheRepeatedPages(t *testing.T) {
	store, err := cache.OpenMemory()
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	data := pdftest.Build(textPage("one"), textPage("two"))
	base := FromBytes(data, "two.pdf").Cache(store)

	_, _, err = base.Pages(1).Documents(ctx)
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.Pages = []int{1, 1}
	_, ok, err := store.Get(ctx, cache.Key(reader.NewBuffer(data).Digest(), opts.fingerprint()...))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestConverter_MalformedPage(t *testing.T) {
	data := pdftest.Build(
		textPage("Good"),
		pdftest.Page{Content: pdftest.Text(72, 700, 12, "ok") + "Q Q\n"},
	)

	records, warnings, err := FromBytes(data, "broken.pdf").Records(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, 1, records[0].Number)
	assert.Equal(t, "Good", records[0].Text)

	assert.Equal(t, 2, records[1].Number)
	assert.Equal(t, "ok", records[1].Text)
	assert.Empty(t, records[1].Tables)

	var kinds []string
	for _, w := range warnings {
		if w.Page == 2 {
			kinds = append(kinds, w.Kind)
		}
		if w.Page == 1 {
			assert.NotEqual(t, WarnMalformedPage, w.Kind, "unexpected warning: %s", w)
		}
	}
	assert.Contains(t, kinds, WarnMalformedPage)
}

func TestConverter_Logger(t *testing.T) {
	var out bytes.Buffer
	log := zerolog.New(&out)

	_, _, err := FromBytes(pdftest.Build(textPage("Hello")), "log.pdf").Logger(log).Documents(context.Background())
	require.NoError(t, err)
	assert.Contains(t, out.String(), `"source":"log.pdf"`)
	assert.Contains(t, out.String(), "conversion finished")
}

func TestFormatWarnings(t *testing.T) {
	warnings := []Warning{
		{Page: 0, Kind: WarnOCR, Message: "OCR support not enabled"},
		{Page: 2, Kind: WarnMalformedPage, Message: "bad stream"},
	}
	assert.Equal(t, "ocr: OCR support not enabled\npage 2: malformed_page: bad stream", FormatWarnings(warnings))
	assert.Empty(t, FormatWarnings(nil))
}

// ============================================================================
// Pipeline
// ============================================================================

type fakeWords struct {
	words []model.Word
	err   error
}

func (f fakeWords) Words(*model.Page) ([]model.Word, error) {
	return f.words, f.err
}

func TestPipeline_Record(t *testing.T) {
	sc := scope.Nop("mem")
	p := &pipeline{sc: sc, chain: tables.DefaultChain(tables.DefaultConfig(), nil), options: DefaultOptions()}

	page := model.NewPage(4, [4]float64{0, 0, 612, 792})
	for i, row := range [][]string{{"A1", "B1", "C1"}, {"A2", "B2", "C2"}, {"A3", "B3", "C3"}} {
		for j, cell := range row {
			x, y := 100+100*float64(j), 100+20*float64(i)
			page.Words = append(page.Words, model.Word{Text: cell, BBox: model.Rect{X0: x, Y0: y, X1: x + 12, Y1: y + 12}, FontSize: 12})
		}
	}
	page.Words = append(page.Words, model.Word{Text: "Totals", BBox: model.Rect{X0: 100, Y0: 300, X1: 136, Y1: 312}, FontSize: 12})

	rec := p.record(page)
	assert.Equal(t, 4, rec.Number)
	require.Len(t, rec.Tables, 1)
	assert.Equal(t, "Totals", rec.Text)
	assert.Empty(t, sc.Warnings())
}

func TestPipeline_RecordStreamTableWithoutBBox(t *testing.T) {
	config := tables.DefaultConfig()
	config.InferStreamBBox = false

	sc := scope.Nop("mem")
	p := &pipeline{sc: sc, chain: tables.NewChain(tables.NewStreamDetector(config)), options: DefaultOptions()}

	page := model.NewPage(1, [4]float64{0, 0, 612, 792})
	cell := func(s string, x, y float64) model.Word {
		return model.Word{Text: s, BBox: model.Rect{X0: x, Y0: y, X1: x + 6*float64(len(s)), Y1: y + 12}, FontSize: 12}
	}
	for i, row := range [][]string{{"Quarter", "Sales"}, {"Q1", "-"}, {"Q2", "1,200"}, {"Q3", "-"}} {
		y := 100 + 20*float64(i)
		page.Words = append(page.Words, cell(row[0], 100, y), cell(row[1], 200, y))
	}
	page.Words = append(page.Words, cell("Unaudited", 100, 300))

	rec := p.record(page)
	require.Len(t, rec.Tables, 1)
	assert.Nil(t, rec.Tables[0].BBox)
	assert.Equal(t, "Unaudited", rec.Text)
}

func TestPipeline_OCRWords(t *testing.T) {
	buf := reader.NewBuffer(pdftest.Build(pdftest.Page{Content: pdftest.Line(72, 700, 300, 700)}))
	sc := scope.Nop("scan.pdf")

	p := newPipeline(sc, buf, DefaultOptions())
	p.words = fakeWords{words: []model.Word{
		{Text: "Scanned", BBox: model.Rect{X0: 72, Y0: 72, X1: 114, Y1: 84}, FontSize: 12},
		{Text: "invoice", BBox: model.Rect{X0: 120, Y0: 72, X1: 162, Y1: 84}, FontSize: 12},
	}}

	rec, err := p.page(1)
	require.NoError(t, err)
	assert.Equal(t, "Scanned invoice", rec.Text)

	p.words = fakeWords{err: errors.New("no page image")}
	rec, err = p.page(1)
	require.NoError(t, err)
	assert.True(t, rec.IsEmpty())

	kinds := map[string]bool{}
	for _, w := range sc.Warnings() {
		kinds[w.Kind] = true
	}
	assert.True(t, kinds[WarnOCR])
	assert.True(t, kinds[WarnEmptyPage])
}
