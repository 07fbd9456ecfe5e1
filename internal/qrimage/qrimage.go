// Package qrimage renders QR code images from the generator parameters.
// Encoding itself is done by go-qrcode, the package only maps parameters and writes PNG or SVG.
package qrimage

import (
	"bytes"
	"fmt"
	"image/color"
	"io"

	svg "github.com/ajstarks/svgo"
	colorful "github.com/lucasb-eyer/go-colorful"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/nkiryanov/qrgen/internal/models"
)

type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// Error correction level H, the one the preview always used
const recoveryLevel = qrcode.Highest

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatPNG, FormatSVG:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown image format '%s'", s)
	}
}

func (f Format) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// Filename of the downloaded image
func (f Format) Filename() string {
	return "qr-code." + string(f)
}

// Render writes the image in requested format
func Render(w io.Writer, p models.Params, f Format) error {
	switch f {
	case FormatPNG:
		return PNG(w, p)
	case FormatSVG:
		return SVG(w, p)
	default:
		return fmt.Errorf("unknown image format '%s'", f)
	}
}

// PNG writes square png image p.Size pixels wide (the encoder may enlarge it if the symbol does not fit)
func PNG(w io.Writer, p models.Params) error {
	q, err := encode(p)
	if err != nil {
		return err
	}

	fg, bg := colors(p)
	q.ForegroundColor = fg
	q.BackgroundColor = bg

	b, err := q.PNG(p.Size)
	if err != nil {
		return fmt.Errorf("error while rendering png. Err: %w", err)
	}

	_, err = io.Copy(w, bytes.NewReader(b))
	return err
}

// SVG writes the symbol as svg: one unit per module, scaled to p.Size by view box
func SVG(w io.Writer, p models.Params) error {
	q, err := encode(p)
	if err != nil {
		return err
	}

	fg, bg := colors(p)
	bitmap := q.Bitmap()
	n := len(bitmap)

	canvas := svg.New(w)
	canvas.Startview(p.Size, p.Size, 0, 0, n, n)
	canvas.Rect(0, 0, n, n, "fill:"+bg.Hex())
	for y, row := range bitmap {
		for x, dark := range row {
			if dark {
				canvas.Rect(x, y, 1, 1, "fill:"+fg.Hex())
			}
		}
	}
	canvas.End()

	return nil
}

func encode(p models.Params) (*qrcode.QRCode, error) {
	content := p.URL
	if content == "" {
		content = models.DefaultURL
	}

	q, err := qrcode.New(content, recoveryLevel)
	if err != nil {
		return nil, fmt.Errorf("error while encoding qr code. Err: %w", err)
	}

	return q, nil
}

// Colors are never validated on input, unparsable ones fall back to black on white
func colors(p models.Params) (fg colorful.Color, bg colorful.Color) {
	return parseColor(p.FgColor, color.Black), parseColor(p.BgColor, color.White)
}

func parseColor(s string, fallback color.Color) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		c, _ = colorful.MakeColor(fallback)
	}
	return c
}
