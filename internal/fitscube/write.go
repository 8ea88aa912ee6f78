package fitscube

import (
	"fmt"
	"io"
	"os"

	"github.com/astrogo/fitsio"

	"github.com/roman-kulish/casakit/internal/cube"
	"github.com/roman-kulish/casakit/internal/flux"
)

// Encode writes c as the 32-bit float primary image of a new FITS stream,
// carrying cards in its header. Structural cards are left to the encoder.
func Encode(w io.Writer, c *cube.Cube, cards []fitsio.Card) error {
	return encode(w, c, cards, nil)
}

// EncodeImage writes im and, when it has per-plane beams, a BEAMS table
func EncodeImage(w io.Writer, im *Image) error {
	return encode(w, im.Cube, im.Cards, im.Beams)
}

func encode(w io.Writer, c *cube.Cube, cards []fitsio.Card, beams []flux.Beam) (err error) {
	f, err := fitsio.Create(w)
	if err != nil {
		return fmt.Errorf("creating FITS stream: %w", err)
	}
	defer closeWithError(f, &err)

	img := fitsio.NewImage(-32, []int{c.Nx, c.Ny, c.Nz})
	defer closeWithError(img, &err)

	seen := make(map[string]struct{}, len(cards))
	header := make([]fitsio.Card, 0, len(cards))
	for _, card := range cards {
		if isStructural(card.Name) {
			continue
		}
		if _, dup := seen[card.Name]; dup {
			continue
		}
		seen[card.Name] = struct{}{}
		header = append(header, card)
	}
	if err = img.Header().Append(header...); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	data := make([]float32, len(c.Data))
	for i, v := range c.Data {
		data[i] = float32(v)
	}
	if err = img.Write(data); err != nil {
		return fmt.Errorf("writing image: %w", err)
	}

	if err = f.Write(img); err != nil {
		return fmt.Errorf("writing HDU: %w", err)
	}

	if len(beams) == 0 {
		return nil
	}
	if err = writeBeams(f, beams); err != nil {
		return fmt.Errorf("writing per-plane beams: %w", err)
	}
	return nil
}

func writeBeams(f *fitsio.File, beams []flux.Beam) (err error) {
	table, err := fitsio.NewTable(beamsExtension, []fitsio.Column{
		{Name: "BMAJ", Format: "E", Unit: "arcsec"},
		{Name: "BMIN", Format: "E", Unit: "arcsec"},
		{Name: "BPA", Format: "E", Unit: "deg"},
		{Name: "CHAN", Format: "J"},
		{Name: "POL", Format: "J"},
	}, fitsio.BINARY_TBL)
	if err != nil {
		return err
	}
	defer closeWithError(table, &err)

	if err = table.Header().Append(
		fitsio.Card{Name: "NCHAN", Value: len(beams)},
		fitsio.Card{Name: "NPOL", Value: 1},
	); err != nil {
		return err
	}

	for z, b := range beams {
		row := beamRow{
			Major: float32(b.Major.Sec()),
			Minor: float32(b.Minor.Sec()),
			PA:    float32(b.PositionAngle.Deg()),
			Chan:  int32(z),
		}
		if err = table.Write(&row); err != nil {
			return err
		}
	}

	return f.Write(table)
}

// Write saves the image cube, and its per-plane beams, to path
func (im *Image) Write(path string) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating FITS file: %w", err)
	}
	defer closeWithError(out, &err)

	return EncodeImage(out, im)
}
