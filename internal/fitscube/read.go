package fitscube

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/astrogo/fitsio"

	"github.com/roman-kulish/casakit/internal/cube"
	"github.com/roman-kulish/casakit/internal/flux"
)

const beamsExtension = "BEAMS"

var structuralKeys = map[string]struct{}{
	"SIMPLE":   {},
	"XTENSION": {},
	"BITPIX":   {},
	"NAXIS":    {},
	"EXTEND":   {},
	"PCOUNT":   {},
	"GCOUNT":   {},
	"BSCALE":   {},
	"BZERO":    {},
	"BLANK":    {},
	"END":      {},
	"COMMENT":  {},
	"HISTORY":  {},
	"":         {},
}

func isStructural(name string) bool {
	if _, ok := structuralKeys[name]; ok {
		return true
	}
	return strings.HasPrefix(name, "NAXIS")
}

// beamRow is a row of the BEAMS table CASA writes for per-plane beams
type beamRow struct {
	Major float32 `fits:"BMAJ"` // arcsec
	Minor float32 `fits:"BMIN"` // arcsec
	PA    float32 `fits:"BPA"`  // deg
	Chan  int32   `fits:"CHAN"`
	Pol   int32   `fits:"POL"`
}

// Open reads the FITS file at path
func Open(path string) (im *Image, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening FITS file: %w", err)
	}
	defer closeWithError(f, &err)

	return Decode(f)
}

// Decode reads the primary image, and per-plane beams if present, of a FITS
// stream. Only the first Stokes plane is kept, whether Stokes is the third
// or the fourth axis.
func Decode(r io.Reader) (im *Image, err error) {
	f, err := fitsio.Open(r)
	if err != nil {
		return nil, fmt.Errorf("decoding FITS: %w", err)
	}
	defer closeWithError(f, &err)

	img, ok := f.HDU(0).(fitsio.Image)
	if !ok {
		return nil, fmt.Errorf("primary HDU is not an image")
	}

	hdr := img.Header()
	axes := hdr.Axes()
	if len(axes) < 2 {
		return nil, fmt.Errorf("image has %d axes, need at least 2", len(axes))
	}

	// CASA exports RA, DEC, STOKES, FREQ cubes with stokeslast=False
	stokesThird := len(axes) > 2 && axisType(hdr, 3) == stokesType

	nx, ny, nz, ns := axes[0], axes[1], 1, 1
	switch {
	case stokesThird:
		ns = axes[2]
		if len(axes) > 3 {
			nz = axes[3]
		}
	case len(axes) > 2:
		nz = axes[2]
	}
	total := 1
	for _, n := range axes {
		total *= n
	}

	im = &Image{}
	for _, key := range hdr.Keys() {
		if isStructural(key) {
			continue
		}
		if card := hdr.Get(key); card != nil {
			im.Cards = append(im.Cards, *card)
		}
	}

	data, err := readData(img, hdr, total)
	if err != nil {
		return nil, err
	}

	plane := nx * ny
	if stokesThird {
		// keep the first Stokes plane of every channel and describe the
		// spectral axis as the third one
		planes := make([]float64, 0, plane*nz)
		for z := range nz {
			off := z * ns * plane
			planes = append(planes, data[off:off+plane]...)
		}
		data = planes
		swapAxisCards(im.Cards, "3", "4")
	}

	if im.Cube, err = cube.FromData(nx, ny, nz, data[:plane*nz]); err != nil {
		return nil, err
	}

	for _, hdu := range f.HDUs() {
		if !strings.EqualFold(hdu.Name(), beamsExtension) {
			continue
		}
		table, ok := hdu.(*fitsio.Table)
		if !ok {
			break
		}
		if im.Beams, err = readBeams(table, nz); err != nil {
			return nil, fmt.Errorf("reading per-plane beams: %w", err)
		}
		break
	}

	return im, nil
}

const stokesType = "STOKES"

// wcsKeys are the per-axis world coordinate keywords, without the axis number
var wcsKeys = []string{"CTYPE", "CRVAL", "CDELT", "CRPIX", "CUNIT", "CROTA"}

func axisType(hdr *fitsio.Header, n int) string {
	c := hdr.Get(fmt.Sprintf("CTYPE%d", n))
	if c == nil {
		return ""
	}
	s, _ := c.Value.(string)
	return strings.ToUpper(strings.TrimSpace(s))
}

// swapAxisCards exchanges the world coordinates of axes a and b
func swapAxisCards(cards []fitsio.Card, a, b string) {
	for i, c := range cards {
		for _, key := range wcsKeys {
			switch c.Name {
			case key + a:
				cards[i].Name = key + b
			case key + b:
				cards[i].Name = key + a
			}
		}
	}
}

func readData(img fitsio.Image, hdr *fitsio.Header, n int) ([]float64, error) {
	data := make([]float64, n)

	scale, zero := 1.0, 0.0
	if c := hdr.Get("BSCALE"); c != nil {
		if v, ok := toFloat(c.Value); ok {
			scale = v
		}
	}
	if c := hdr.Get("BZERO"); c != nil {
		zero, _ = toFloat(c.Value)
	}

	var blank int64
	var hasBlank bool
	if c := hdr.Get("BLANK"); c != nil {
		var v float64
		v, hasBlank = toFloat(c.Value)
		blank = int64(v)
	}

	fromInt := func(i int, raw int64) {
		if hasBlank && raw == blank {
			data[i] = math.NaN()
			return
		}
		data[i] = zero + scale*float64(raw)
	}

	switch hdr.Bitpix() {
	case -32:
		raw := make([]float32, n)
		if err := img.Read(&raw); err != nil {
			return nil, fmt.Errorf("reading image: %w", err)
		}
		for i, v := range raw {
			data[i] = zero + scale*float64(v)
		}

	case -64:
		if err := img.Read(&data); err != nil {
			return nil, fmt.Errorf("reading image: %w", err)
		}
		if scale != 1 || zero != 0 {
			for i, v := range data {
				data[i] = zero + scale*v
			}
		}

	case 16:
		raw := make([]int16, n)
		if err := img.Read(&raw); err != nil {
			return nil, fmt.Errorf("reading image: %w", err)
		}
		for i, v := range raw {
			fromInt(i, int64(v))
		}

	case 32:
		raw := make([]int32, n)
		if err := img.Read(&raw); err != nil {
			return nil, fmt.Errorf("reading image: %w", err)
		}
		for i, v := range raw {
			fromInt(i, int64(v))
		}

	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitpix, hdr.Bitpix())
	}

	return data, nil
}

func readBeams(table *fitsio.Table, nz int) (beams []flux.Beam, err error) {
	rows, err := table.Read(0, table.NumRows())
	if err != nil {
		return nil, err
	}
	defer closeWithError(rows, &err)

	beams = make([]flux.Beam, nz)
	for rows.Next() {
		var row beamRow
		if err = rows.Scan(&row); err != nil {
			return nil, err
		}
		if row.Pol != 0 || row.Chan < 0 || int(row.Chan) >= nz {
			continue
		}
		beams[row.Chan] = flux.NewBeamArcsec(float64(row.Major), float64(row.Minor), float64(row.PA))
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return beams, nil
}

func toFloat(v any) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	}
	return 0, false
}

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}
