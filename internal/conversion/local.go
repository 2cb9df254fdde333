package conversion

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"ocwsync/internal/services"
)

// LocalConverter extracts plain text from PDFs without a network service.
// Layout and math are lost, so it is a fallback only.
type LocalConverter struct{}

// NewLocalConverter returns a LocalConverter.
func NewLocalConverter() *LocalConverter {
	return &LocalConverter{}
}

// Name implements Converter.
func (*LocalConverter) Name() string { return "local" }

// Convert implements Converter. Pages are joined by blank lines.
func (*LocalConverter) Convert(ctx context.Context, path string) (text string, err error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, stageName, "read pdf", path, err)
	}
	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = services.Wrap(services.ErrValidation, stageName, "parse pdf", path, fmt.Errorf("%v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", services.Wrap(services.ErrValidation, stageName, "parse pdf", path, err)
	}
	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if content = strings.TrimSpace(content); content != "" {
			pages = append(pages, content)
		}
	}
	return strings.Join(pages, "\n\n"), nil
}
