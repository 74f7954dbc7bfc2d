// Package textsource turns uploaded document bytes into plain text.
package textsource

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// ErrUnreadable marks input that is not a document this package can read.
var ErrUnreadable = errors.New("document unreadable")

var pdfMagic = []byte("%PDF-")

type Source interface {
	Text(ctx context.Context, data []byte, contentType string) (string, error)
}

// PDF reads the text layer of a PDF. A PDF without one yields "".
type PDF struct{}

func (PDF) Text(ctx context.Context, data []byte, contentType string) (text string, err error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty payload", ErrUnreadable)
	}
	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: %v", ErrUnreadable, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return buf.String(), nil
}

// Plain passes UTF-8 text through unchanged.
type Plain struct{}

func (Plain) Text(ctx context.Context, data []byte, contentType string) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: text is not valid UTF-8", ErrUnreadable)
	}
	return string(data), nil
}

// Auto picks PDF or Plain from the content type. When the type is missing
// or generic it sniffs the PDF magic, then valid UTF-8.
type Auto struct {
	PDF   Source
	Plain Source
}

func NewAuto() *Auto {
	return &Auto{PDF: PDF{}, Plain: Plain{}}
}

func (a *Auto) Text(ctx context.Context, data []byte, contentType string) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch {
	case mediaType == "application/pdf", bytes.HasPrefix(data, pdfMagic):
		return a.PDF.Text(ctx, data, contentType)
	case strings.HasPrefix(mediaType, "text/"):
		return a.Plain.Text(ctx, data, contentType)
	case (mediaType == "" || mediaType == "application/octet-stream") && utf8.Valid(data):
		return a.Plain.Text(ctx, data, contentType)
	default:
		return "", fmt.Errorf("%w: unsupported content type %q", ErrUnreadable, contentType)
	}
}
