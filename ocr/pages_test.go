package ocr

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/tsawler/pagerag/internal/pdfctx"
	"github.com/tsawler/pagerag/model"
)

func testImage(width, height int) image.Image {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.White)
		}
	}
	return img
}

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage(width, height)); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func encodeBMP(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, testImage(width, height)); err != nil {
		t.Fatalf("bmp.Encode: %v", err)
	}
	return buf.Bytes()
}

func encodeTIFF(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := tiff.Encode(&buf, testImage(width, height), nil); err != nil {
		t.Fatalf("tiff.Encode: %v", err)
	}
	return buf.Bytes()
}

type staticImages struct {
	images []pdfctx.Image
	err    error
}

func (s staticImages) PageImages(int) ([]pdfctx.Image, error) {
	return s.images, s.err
}

type fakeRecognizer struct {
	boxes []Box
	err   error
	seen  []byte
}

func (f *fakeRecognizer) RecognizeWords(data []byte) ([]Box, error) {
	f.seen = data
	return f.boxes, f.err
}

func letterPage() *model.Page {
	return model.NewPage(1, [4]float64{0, 0, 612, 792})
}

func TestScaleBoxes(t *testing.T) {
	boxes := []Box{
		{Text: "Invoice", Rect: image.Rect(100, 100, 300, 150), Confidence: 91},
		{Text: "  ", Rect: image.Rect(0, 0, 10, 10), Confidence: 99},
		{Text: "smudge", Rect: image.Rect(0, 0, 10, 10), Confidence: 12},
	}

	words := ScaleBoxes(letterPage(), image.Point{X: 1224, Y: 1584}, boxes, 30)
	if len(words) != 1 {
		t.Fatalf("ScaleBoxes() = %d words, want 1", len(words))
	}

	want := model.Rect{X0: 50, Y0: 50, X1: 150, Y1: 75}
	if words[0].Text != "Invoice" || words[0].BBox != want {
		t.Errorf("word = %+v, want Invoice at %+v", words[0], want)
	}
	if words[0].FontSize != 25 {
		t.Errorf("FontSize = %v, want 25", words[0].FontSize)
	}
}

func TestScaleBoxes_EmptyImage(t *testing.T) {
	if words := ScaleBoxes(letterPage(), image.Point{}, []Box{{Text: "x"}}, 0); words != nil {
		t.Errorf("ScaleBoxes() with zero size = %v, want nil", words)
	}
}

func TestSource_Words_PicksLargestImage(t *testing.T) {
	scan := encodeTIFF(t, 1224, 1584)
	images := staticImages{images: []pdfctx.Image{
		{Name: "logo", FileType: "png", Data: encodePNG(t, 40, 20)},
		{Name: "broken", FileType: "jpg", Data: []byte("not an image")},
		{Name: "scan", FileType: "tif", Data: scan},
		{Name: "stamp", FileType: "bmp", Data: encodeBMP(t, 200, 200)},
	}}
	rec := &fakeRecognizer{boxes: []Box{{Text: "Total", Rect: image.Rect(200, 400, 400, 440), Confidence: 88}}}

	words, err := NewSource(images, rec).Words(letterPage())
	if err != nil {
		t.Fatalf("Words() failed: %v", err)
	}
	if !bytes.Equal(rec.seen, scan) {
		t.Error("recognizer did not receive the largest image")
	}
	if len(words) != 1 || words[0].BBox != (model.Rect{X0: 100, Y0: 200, X1: 200, Y1: 220}) {
		t.Errorf("Words() = %+v", words)
	}
}

func TestSource_Words_Errors(t *testing.T) {
	errImages := errors.New("pdfcpu unavailable")
	errOCR := errors.New("tesseract failed")

	tests := []struct {
		name   string
		images staticImages
		rec    *fakeRecognizer
		want   error
	}{
		{"image source error", staticImages{err: errImages}, &fakeRecognizer{}, errImages},
		{"no images", staticImages{}, &fakeRecognizer{}, ErrNoImage},
		{
			"recognizer error",
			staticImages{images: []pdfctx.Image{{Name: "scan", Data: encodePNG(t, 10, 10)}}},
			&fakeRecognizer{err: errOCR},
			errOCR,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSource(tt.images, tt.rec).Words(letterPage())
			if !errors.Is(err, tt.want) {
				t.Errorf("Words() error = %v, want %v", err, tt.want)
			}
		})
	}
}
