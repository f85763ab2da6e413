package parser

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"
)

func buildDOCX(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>1. Confidentiality.</w:t></w:r><w:r><w:t xml:space="preserve"> The Receiving Party</w:t></w:r></w:p>
    <w:p><w:r><w:t>Fee:</w:t><w:tab/><w:t>$500</w:t></w:r></w:p>
    <w:p/>
    <w:p><w:r><w:t>Line one</w:t><w:br/><w:t>Line two</w:t></w:r></w:p>
    <w:sectPr><w:pgSz w:w="12240"/></w:sectPr>
  </w:body>
</w:document>`

func TestRegistryExtract(t *testing.T) {
	docx := buildDOCX(t, map[string]string{
		"[Content_Types].xml": "<Types/>",
		"word/document.xml":   documentXML,
	})

	tests := []struct {
		name       string
		doc        RawDocument
		wantText   string
		wantFormat Format
	}{
		{
			name:       "plain text",
			doc:        RawDocument{Filename: "nda.txt", Data: []byte("hello\nworld")},
			wantText:   "hello\nworld",
			wantFormat: FormatText,
		},
		{
			name:       "invalid utf-8 dropped",
			doc:        RawDocument{Filename: "bad.TXT", Data: []byte("ok\xff\xfe text")},
			wantText:   "ok text",
			wantFormat: FormatText,
		},
		{
			name:       "unknown extension falls back to text",
			doc:        RawDocument{Filename: "contract.rtf", Data: []byte("raw body")},
			wantText:   "raw body",
			wantFormat: FormatText,
		},
		{
			name:       "no extension",
			doc:        RawDocument{Filename: "", Data: []byte("pasted")},
			wantText:   "pasted",
			wantFormat: FormatText,
		},
		{
			name:       "docx paragraphs",
			doc:        RawDocument{Filename: "lease.docx", Data: docx},
			wantText:   "1. Confidentiality. The Receiving Party\nFee:\t$500\n\nLine one\nLine two",
			wantFormat: FormatDOCX,
		},
	}

	r := NewRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, format, err := r.Extract(tt.doc)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if text != tt.wantText {
				t.Errorf("text = %q, want %q", text, tt.wantText)
			}
			if format != tt.wantFormat {
				t.Errorf("format = %q, want %q", format, tt.wantFormat)
			}
		})
	}
}

func TestRegistryExtractErrors(t *testing.T) {
	tests := []struct {
		name       string
		doc        RawDocument
		wantFormat Format
	}{
		{"corrupt docx", RawDocument{Filename: "a.docx", Data: []byte("not a zip")}, FormatDOCX},
		{"docx without body", RawDocument{Filename: "a.docx", Data: buildDOCX(t, map[string]string{"other.xml": "<x/>"})}, FormatDOCX},
		{"docx with broken xml", RawDocument{Filename: "a.docx", Data: buildDOCX(t, map[string]string{"word/document.xml": "<w:p><w:t>open"})}, FormatDOCX},
		{"corrupt pdf", RawDocument{Filename: "a.pdf", Data: []byte("%PDF-1.4 garbage")}, FormatPDF},
		{"empty pdf", RawDocument{Filename: "a.pdf", Data: nil}, FormatPDF},
	}

	r := NewRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, format, err := r.Extract(tt.doc)
			if err == nil {
				t.Fatal("expected error")
			}
			var perr *Error
			if !errors.As(err, &perr) {
				t.Fatalf("expected *parser.Error, got %T", err)
			}
			if perr.Format != tt.wantFormat || format != tt.wantFormat {
				t.Errorf("format = %q/%q, want %q", perr.Format, format, tt.wantFormat)
			}
		})
	}
}

type upperParser struct{}

func (upperParser) Parse(data []byte) (string, error) { return string(bytes.ToUpper(data)), nil }
func (upperParser) Format() Format                     { return "md" }
func (upperParser) Extensions() []string               { return []string{".md"} }

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()
	r.Register(upperParser{})

	text, format, err := r.Extract(RawDocument{Filename: "README.MD", Data: []byte("shout")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "SHOUT" || format != "md" {
		t.Errorf("got %q (%s)", text, format)
	}
	if _, ok := r.ForFile("x.pdf").(*PDFParser); !ok {
		t.Error("pdf parser should still be registered")
	}
}
