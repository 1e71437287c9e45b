// Package extract pulls plain text out of uploaded lecture material.
package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	pdf "github.com/ledongthuc/pdf"
	"golang.org/x/sync/errgroup"
)

var (
	ErrFileRead    = errors.New("could not read file")
	ErrUnsupported = errors.New("unsupported file type")
	ErrEmptyText   = errors.New("no text found in file")
)

// FileReadError reports which upload could not be turned into text.
type FileReadError struct {
	Name string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Name, e.Err)
}

func (e *FileReadError) Unwrap() []error {
	return []error{ErrFileRead, e.Err}
}

// Document is one uploaded file.
type Document struct {
	Name string
	Data []byte
}

// Text extracts the text of one file. The format is sniffed from the bytes
// first and the extension second. Supported: PDF, DOCX, PPTX, TXT and MD.
func Text(name string, data []byte) (string, error) {
	text, err := extract(name, data)
	if err != nil {
		return "", &FileReadError{Name: name, Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return "", &FileReadError{Name: name, Err: ErrEmptyText}
	}
	return text, nil
}

// Documents extracts every document concurrently and joins the texts in the
// order the documents were given. The first failure cancels the rest.
func Documents(ctx context.Context, docs []Document) (string, error) {
	texts := make([]string, len(docs))
	g, ctx := errgroup.WithContext(ctx)
	for i, doc := range docs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			text, err := Text(doc.Name, doc.Data)
			if err != nil {
				return err
			}
			texts[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}
	return strings.Join(texts, "\n\n"), nil
}

func extract(name string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if len(data) == 0 {
		return "", ErrEmptyText
	}

	switch {
	case isPDF(data):
		return extractPDF(data)
	case isZip(data):
		kind, err := openXMLKind(data)
		if err != nil {
			return "", err
		}
		if kind == "docx" {
			return extractDOCX(data)
		}
		return extractPPTX(data)
	}

	switch ext {
	case ".txt", ".md", ".markdown":
		return normalizeText(string(data)), nil
	case ".pdf":
		return "", fmt.Errorf("missing %%PDF header")
	case ".docx", ".pptx":
		return "", fmt.Errorf("%s is not a zip container", ext)
	}
	if isProbablyText(data) {
		return normalizeText(string(data)), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupported, ext)
}

func isPDF(b []byte) bool {
	return len(b) >= 5 && string(b[:5]) == "%PDF-"
}

func isZip(b []byte) bool {
	return len(b) >= 4 && b[0] == 'P' && b[1] == 'K' && b[2] == 3 && b[3] == 4
}

func isProbablyText(b []byte) bool {
	sample := b[:min(len(b), 4096)]
	good := 0
	for _, c := range sample {
		if c == 0 {
			return false
		}
		if c == '\n' || c == '\r' || c == '\t' || c >= 0x20 {
			good++
		}
	}
	return float64(good)/float64(len(sample)) > 0.9
}

func extractPDF(data []byte) (text string, err error) {
	// the pdf package panics on some malformed files
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("pdf parse: %v", r)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdf reader: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdf plaintext: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("pdf read: %w", err)
	}
	return normalizeText(string(b)), nil
}

func openXMLKind(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open zip: %w", err)
	}
	hasWord, hasPpt := false, false
	for _, f := range zr.File {
		hasWord = hasWord || strings.HasPrefix(f.Name, "word/")
		hasPpt = hasPpt || strings.HasPrefix(f.Name, "ppt/")
	}
	switch {
	case hasWord && !hasPpt:
		return "docx", nil
	case hasPpt && !hasWord:
		return "pptx", nil
	default:
		return "", fmt.Errorf("%w: zip is neither docx nor pptx", ErrUnsupported)
	}
}

func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open zip: %w", err)
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		b, err := readZipFile(f)
		if err != nil {
			return "", err
		}
		return normalizeText(xmlText(b, "t", "p")), nil
	}
	return "", errors.New("docx has no word/document.xml")
}

func extractPPTX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open zip: %w", err)
	}

	type slide struct {
		n int
		f *zip.File
	}
	var slides []slide
	for _, f := range zr.File {
		if n, ok := slideNumber(f.Name); ok {
			slides = append(slides, slide{n: n, f: f})
		}
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].n < slides[j].n })

	var out strings.Builder
	for _, s := range slides {
		b, err := readZipFile(s.f)
		if err != nil {
			return "", err
		}
		out.WriteString(xmlText(b, "t", "p"))
		out.WriteString("\n")
	}
	return normalizeText(out.String()), nil
}

// slideNumber parses "ppt/slides/slide12.xml" into 12.
func slideNumber(name string) (int, bool) {
	rest, ok := strings.CutPrefix(name, "ppt/slides/slide")
	if !ok {
		return 0, false
	}
	rest, ok = strings.CutSuffix(rest, ".xml")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	return n, err == nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	return b, nil
}

// xmlText collects the character data of every textTag element and ends a
// line at the close of every breakTag element. Tags match on local name.
func xmlText(doc []byte, textTag, breakTag string) string {
	dec := xml.NewDecoder(bytes.NewReader(doc))
	var out strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Local != textTag {
				continue
			}
			var v string
			if err := dec.DecodeElement(&v, &el); err == nil {
				out.WriteString(v)
			}
		case xml.EndElement:
			if el.Name.Local == breakTag {
				out.WriteString("\n")
			}
		}
	}
	return out.String()
}

// normalizeText collapses runs of blanks inside each line and drops empty
// lines, keeping the line structure the model sees.
func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\u00a0", " ")
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, l := range lines {
		l = strings.Join(strings.Fields(l), " ")
		if l != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}
