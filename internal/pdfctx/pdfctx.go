// Package pdfctx lazily loads a pdfcpu context over a document buffer and
// serializes access to it. Ruling extraction and OCR image extraction share
// one context per conversion.
package pdfctx

import (
	"fmt"
	"io"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/tsawler/pagerag/reader"
)

func init() {
	// no pdfcpu config directory on disk
	pdfmodel.ConfigPath = "disable"
}

// Image is an image XObject placed on a page
type Image struct {
	Data     []byte
	FileType string
	Name     string
}

// Context wraps a pdfcpu model.Context. The context is read on first use
// from its own cursor over the buffer.
type Context struct {
	buf *reader.Buffer

	once sync.Once
	err  error

	// pdfcpu decodes streams in place, so calls are serialized
	mu  sync.Mutex
	ctx *pdfmodel.Context
}

// New creates a lazily loaded context over buf
func New(buf *reader.Buffer) *Context {
	return &Context{buf: buf}
}

func (c *Context) load() error {
	c.once.Do(func() {
		defer func() {
			if r := recover(); r != nil {
				c.ctx, c.err = nil, fmt.Errorf("pdfcpu read: %v", r)
			}
		}()

		conf := pdfmodel.NewDefaultConfiguration()
		conf.ValidationMode = pdfmodel.ValidationRelaxed

		ctx, err := api.ReadValidateAndOptimize(c.buf.NewReader(), conf)
		if err != nil {
			c.err = fmt.Errorf("pdfcpu read: %w", err)
			return
		}
		c.ctx = ctx
	})
	return c.err
}

// PageCount returns the number of pages pdfcpu sees in the document
func (c *Context) PageCount() (int, error) {
	if err := c.load(); err != nil {
		return 0, err
	}
	return c.ctx.PageCount, nil
}

// PageContent returns the decoded content stream of a 1-indexed page
func (c *Context) PageContent(pageNr int) (data []byte, err error) {
	if err := c.load(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdfcpu page %d content: %v", pageNr, r)
		}
	}()

	r, err := pdfcpu.ExtractPageContent(c.ctx, pageNr)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu page %d content: %w", pageNr, err)
	}
	if r == nil {
		return nil, nil
	}
	return io.ReadAll(r)
}

// PageImages returns the images placed on a 1-indexed page
func (c *Context) PageImages(pageNr int) (images []Image, err error) {
	if err := c.load(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdfcpu page %d images: %v", pageNr, r)
		}
	}()

	found, err := pdfcpu.ExtractPageImages(c.ctx, pageNr, false)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu page %d images: %w", pageNr, err)
	}

	for _, img := range found {
		if img.Reader == nil {
			continue
		}
		data, err := io.ReadAll(img)
		if err != nil {
			return nil, fmt.Errorf("pdfcpu page %d image %s: %w", pageNr, img.Name, err)
		}
		images = append(images, Image{Data: data, FileType: img.FileType, Name: img.Name})
	}
	return images, nil
}
