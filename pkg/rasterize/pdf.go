package rasterize

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/paperlift/paperlift/pkg/document"
)

// pdfSource renders one PDF page per Next call via pdftoppm, so only a
// single page image is ever held in memory. The page count is read up
// front with the pdf library; a file it cannot parse is treated as
// corrupt.
type pdfSource struct {
	desc    document.InputDescriptor
	cfg     Config
	pages   int
	next    int // next 1-based page to render
	tempDir string
}

func newPDFSource(cfg Config, desc document.InputDescriptor) (PageSource, error) {
	f, err := os.Open(desc.Path)
	if err != nil {
		return nil, &DecodeError{Path: desc.Path, Reason: "opening file", Err: err}
	}
	defer f.Close()

	header := make([]byte, 4)
	if _, err := io.ReadFull(f, header); err != nil || string(header) != "%PDF" {
		return nil, &DecodeError{Path: desc.Path, Reason: fmt.Sprintf("not a valid PDF file - starts with %q", header)}
	}
	stat, err := f.Stat()
	if err != nil {
		return nil, &DecodeError{Path: desc.Path, Reason: "reading file size", Err: err}
	}
	doc, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, &DecodeError{Path: desc.Path, Reason: "failed to parse PDF", Err: err}
	}
	pages := doc.NumPage()
	if pages < 1 {
		return nil, &DecodeError{Path: desc.Path, Reason: "PDF has no pages"}
	}

	tempDir, err := os.MkdirTemp("", "paperlift-pdf-")
	if err != nil {
		return nil, &DecodeError{Path: desc.Path, Reason: "creating scratch dir", Err: err}
	}
	return &pdfSource{
		desc:    desc,
		cfg:     cfg,
		pages:   pages,
		next:    1,
		tempDir: tempDir,
	}, nil
}

func (s *pdfSource) Next(ctx context.Context) (*document.PageUnit, error) {
	if s.next > s.pages {
		return nil, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	page := s.next
	s.next++

	img, err := s.renderPage(ctx, page)
	if err != nil {
		return nil, err
	}
	return &document.PageUnit{
		Descriptor: s.desc,
		PageNumber: page,
		Image:      img,
	}, nil
}

// renderPage shells out to pdftoppm for exactly one page and decodes the
// PNG it writes. The scratch file is removed before returning.
func (s *pdfSource) renderPage(ctx context.Context, page int) (image.Image, error) {
	prefix := filepath.Join(s.tempDir, fmt.Sprintf("page-%d", page))
	cmd := exec.CommandContext(ctx, s.cfg.PdftoppmPath,
		"-png",
		"-r", strconv.Itoa(s.cfg.DPI),
		"-f", strconv.Itoa(page),
		"-l", strconv.Itoa(page),
		"-singlefile",
		s.desc.Path, prefix,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		// A canceled context kills the renderer; report the
		// cancellation itself, not a decode failure.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		reason := fmt.Sprintf("rendering page %d", page)
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			reason = fmt.Sprintf("%s: %s", reason, msg)
		}
		return nil, &DecodeError{Path: s.desc.Path, Reason: reason, Err: err}
	}

	out := prefix + ".png"
	defer os.Remove(out)
	f, err := os.Open(out)
	if err != nil {
		return nil, &DecodeError{Path: s.desc.Path, Reason: fmt.Sprintf("page %d produced no output", page), Err: err}
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, &DecodeError{Path: s.desc.Path, Reason: fmt.Sprintf("decoding rendered page %d", page), Err: err}
	}
	return img, nil
}

func (s *pdfSource) Pages() int { return s.pages }

func (s *pdfSource) Close() error {
	return os.RemoveAll(s.tempDir)
}
