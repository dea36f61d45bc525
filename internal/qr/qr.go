// Package qr renders secrets as QR codes made of Unicode half blocks.
//
// Each text line carries two module rows. Colours are inverted relative to
// the usual dark-on-light print: dark modules are left blank and light
// modules (quiet zone included) are drawn as blocks, which is what scans on
// a terminal with a dark background.
package qr

import (
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	qrcode "github.com/skip2/go-qrcode"
)

// Half-block glyphs indexed by which halves of the cell are drawn.
const (
	glyphNone  = ' '
	glyphUpper = '▀'
	glyphLower = '▄'
	glyphFull  = '█'
)

// Modules encodes payload at error correction level M. The returned grid
// includes the four-module quiet zone; true marks a dark module.
func Modules(payload []byte) ([][]bool, error) {
	code, err := qrcode.New(string(payload), qrcode.Medium)
	if err != nil {
		return nil, errors.Wrap(err, "encode qr code")
	}
	return code.Bitmap(), nil
}

// Render encodes payload and draws it. Lines are separated by "\n" with no
// trailing newline.
func Render(payload []byte) (string, error) {
	modules, err := Modules(payload)
	if err != nil {
		return "", err
	}
	return Draw(modules), nil
}

// Draw renders a module grid. An odd last row is paired with a light row,
// matching the quiet zone around it.
func Draw(modules [][]bool) string {
	var b strings.Builder
	for y := 0; y < len(modules); y += 2 {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := range modules[y] {
			upper := !modules[y][x]
			lower := true
			if y+1 < len(modules) {
				lower = !modules[y+1][x]
			}
			b.WriteRune(glyph(upper, lower))
		}
	}
	return b.String()
}

func glyph(upper, lower bool) rune {
	switch {
	case upper && lower:
		return glyphFull
	case upper:
		return glyphUpper
	case lower:
		return glyphLower
	default:
		return glyphNone
	}
}

// Width is the number of terminal columns the rendered code needs.
func Width(rendered string) int {
	line, _, _ := strings.Cut(rendered, "\n")
	return utf8.RuneCountInString(line)
}
