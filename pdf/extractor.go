package pdf

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/declarant/declarant/helper"
)

// ExtractText extracts the plain text of every page of a PDF given as
// raw bytes. A page that fails to render is logged and skipped so one
// broken page does not lose the rest of the document.
func ExtractText(data []byte) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", helper.NewError("open pdf", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return "", helper.NewError("open pdf", fmt.Errorf("document has no pages"))
	}

	var pages []string
	for n := 0; n < doc.NumPage(); n++ {
		text, err := doc.Text(n)
		if err != nil {
			slog.Warn("skipping unreadable pdf page", slog.Int("page", n), slog.Any("error", err))
			continue
		}
		pages = append(pages, text)
	}

	return strings.Join(pages, "\n"), nil
}

// ExtractTextFromFile extracts the plain text of a PDF on disk.
func ExtractTextFromFile(path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", helper.NewError("open pdf", err)
	}
	defer doc.Close()

	var pages []string
	for n := 0; n < doc.NumPage(); n++ {
		text, err := doc.Text(n)
		if err != nil {
			slog.Warn("skipping unreadable pdf page",
				slog.String("file", path), slog.Int("page", n), slog.Any("error", err))
			continue
		}
		pages = append(pages, text)
	}

	return strings.Join(pages, "\n"), nil
}
