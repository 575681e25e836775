package model

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Declaration is the registry row for an uploaded supplier declaration
type Declaration struct {
	ID           int64     `json:"id"`
	RID          uuid.UUID `json:"rid"`
	Filename     string    `json:"filename"`
	MaterialID   string    `json:"material_id"`
	SKU          string    `json:"sku,omitempty"`
	SupplierName string    `json:"supplier_name,omitempty"`
	Metadata     Metadata  `json:"metadata,omitempty"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// SourceDocument is an in-memory supplier declaration waiting to be
// indexed or assessed. Either Text or Data must be set; Data is treated
// as PDF bytes when Text is empty.
type SourceDocument struct {
	Filename   string `json:"filename"`
	MaterialID string `json:"material_id,omitempty"`
	Text       string `json:"text,omitempty"`
	Data       []byte `json:"-"`
}

// MaterialKey returns the material id the document is indexed under,
// falling back to the filename stem when the caller set none.
func (d *SourceDocument) MaterialKey() string {
	if strings.TrimSpace(d.MaterialID) != "" {
		return strings.TrimSpace(d.MaterialID)
	}
	filename := filepath.Base(d.Filename)
	stem := filename[:len(filename)-len(filepath.Ext(filename))]
	if stem == "" {
		return filename
	}
	return stem
}

// NewSourceDocumentFromFile reads a file into a SourceDocument.
// PDF files keep their raw bytes for extraction; everything else is
// treated as plain text.
func NewSourceDocumentFromFile(filePath string, materialID string) (*SourceDocument, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	doc := &SourceDocument{
		Filename:   filepath.Base(filePath),
		MaterialID: materialID,
	}
	if strings.EqualFold(filepath.Ext(filePath), ".pdf") {
		doc.Data = content
	} else {
		doc.Text = string(content)
	}

	return doc, nil
}
