package rasterize

import (
	"context"
	"image"
	"io"
	"os"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/paperlift/paperlift/pkg/document"
)

// imageSource yields exactly one page: the decoded raster image itself.
// The header is validated when the source is opened; pixel data is not
// decoded until Next is called.
type imageSource struct {
	desc document.InputDescriptor
	done bool
}

func newImageSource(desc document.InputDescriptor) (PageSource, error) {
	f, err := os.Open(desc.Path)
	if err != nil {
		return nil, &DecodeError{Path: desc.Path, Reason: "opening file", Err: err}
	}
	defer f.Close()
	if _, _, err := image.DecodeConfig(f); err != nil {
		return nil, &DecodeError{Path: desc.Path, Reason: "unrecognized image format", Err: err}
	}
	return &imageSource{desc: desc}, nil
}

func (s *imageSource) Next(ctx context.Context) (*document.PageUnit, error) {
	if s.done {
		return nil, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.done = true

	f, err := os.Open(s.desc.Path)
	if err != nil {
		return nil, &DecodeError{Path: s.desc.Path, Reason: "opening file", Err: err}
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, &DecodeError{Path: s.desc.Path, Reason: "decoding image", Err: err}
	}
	return &document.PageUnit{
		Descriptor: s.desc,
		PageNumber: 1,
		Image:      img,
	}, nil
}

func (s *imageSource) Pages() int { return 1 }

func (s *imageSource) Close() error { return nil }
