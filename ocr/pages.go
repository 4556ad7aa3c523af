package ocr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"strings"

	// decoders for embedded page images
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/tsawler/pagerag/internal/pdfctx"
	"github.com/tsawler/pagerag/model"
)

// ErrNoImage is returned when a page has no decodable image to recognize
var ErrNoImage = errors.New("no page image")

// Box is a recognized word in image pixel coordinates
type Box struct {
	Text       string
	Rect       image.Rectangle
	Confidence float64 // 0-100
}

// Recognizer finds words in an encoded image
type Recognizer interface {
	RecognizeWords(imageData []byte) ([]Box, error)
}

// ImageSource lists the images placed on a page
type ImageSource interface {
	PageImages(pageNr int) ([]pdfctx.Image, error)
}

// Source produces page words by recognizing a page's scanned image
type Source struct {
	images     ImageSource
	recognizer Recognizer

	// MinConfidence drops words Tesseract is less sure of (0-100)
	MinConfidence float64
}

// NewSource creates a word source
func NewSource(images ImageSource, recognizer Recognizer) *Source {
	return &Source{images: images, recognizer: recognizer, MinConfidence: 30}
}

// Words recognizes the largest image on the page and returns its words in
// page-local coordinates
func (s *Source) Words(page *model.Page) ([]model.Word, error) {
	images, err := s.images.PageImages(page.Number)
	if err != nil {
		return nil, err
	}

	img, size, ok := largest(images)
	if !ok {
		return nil, ErrNoImage
	}

	boxes, err := s.recognizer.RecognizeWords(img.Data)
	if err != nil {
		return nil, fmt.Errorf("image %s: %w", img.Name, err)
	}
	return ScaleBoxes(page, size, boxes, s.MinConfidence), nil
}

// largest returns the decodable image with the most pixels
func largest(images []pdfctx.Image) (pdfctx.Image, image.Point, bool) {
	var best pdfctx.Image
	var bestSize image.Point
	found := false

	for _, img := range images {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(img.Data))
		if err != nil || cfg.Width == 0 || cfg.Height == 0 {
			continue
		}
		if !found || cfg.Width*cfg.Height > bestSize.X*bestSize.Y {
			best, bestSize, found = img, image.Point{X: cfg.Width, Y: cfg.Height}, true
		}
	}
	return best, bestSize, found
}

// ScaleBoxes maps word boxes from an image of the given pixel size onto
// the full page. Blank words and words below minConfidence are dropped.
func ScaleBoxes(page *model.Page, size image.Point, boxes []Box, minConfidence float64) []model.Word {
	if size.X == 0 || size.Y == 0 {
		return nil
	}
	sx := page.Width / float64(size.X)
	sy := page.Height / float64(size.Y)

	words := make([]model.Word, 0, len(boxes))
	for _, b := range boxes {
		text := strings.TrimSpace(b.Text)
		if text == "" || b.Confidence < minConfidence {
			continue
		}
		r := model.NewRect(
			float64(b.Rect.Min.X)*sx, float64(b.Rect.Min.Y)*sy,
			float64(b.Rect.Max.X)*sx, float64(b.Rect.Max.Y)*sy,
		)
		words = append(words, model.Word{Text: text, BBox: r, FontSize: r.Height()})
	}
	return words
}
