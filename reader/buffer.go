package reader

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
)

// Buffer holds the raw bytes of a document. It is never written after
// creation, so any number of readers may share it; each one gets its own
// cursor from NewReader.
type Buffer struct {
	data []byte
}

// NewBuffer copies data into a new Buffer
func NewBuffer(data []byte) *Buffer {
	return &Buffer{data: bytes.Clone(data)}
}

// ReadFile loads a document from disk
func ReadFile(path string) (*Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return &Buffer{data: data}, nil
}

// Len returns the document size in bytes
func (b *Buffer) Len() int {
	return len(b.data)
}

// NewReader returns an independent cursor over the buffer
func (b *Buffer) NewReader() *bytes.Reader {
	return bytes.NewReader(b.data)
}

// Digest returns the hex SHA-256 of the document bytes
func (b *Buffer) Digest() string {
	sum := sha256.Sum256(b.data)
	return hex.EncodeToString(sum[:])
}
