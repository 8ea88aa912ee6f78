package fitscube

import (
	"bytes"
	"math"
	"testing"

	"github.com/astrogo/fitsio"
	"github.com/soniakeys/unit"
	"github.com/stretchr/testify/require"

	"github.com/roman-kulish/casakit/internal/cube"
	"github.com/roman-kulish/casakit/internal/flux"
)

func testImage() *Image {
	return &Image{
		Cube: cube.New(10, 10, 3),
		Cards: []fitsio.Card{
			{Name: "BUNIT", Value: "Jy/beam"},
			{Name: "BMAJ", Value: 1.6666666666666666e-4}, // 0.6"
			{Name: "BMIN", Value: 1.1111111111111112e-4}, // 0.4"
			{Name: "BPA", Value: 45},
			{Name: "CTYPE1", Value: "RA---SIN"},
			{Name: "CRVAL1", Value: 198.776},
			{Name: "CDELT1", Value: -2.7777777777777777e-5}, // 0.1"
			{Name: "CRPIX1", Value: 5},
			{Name: "CTYPE2", Value: "DEC--SIN"},
			{Name: "CRVAL2", Value: -55.156},
			{Name: "CDELT2", Value: 2.7777777777777777e-5},
			{Name: "CRPIX2", Value: 5},
			{Name: "CTYPE3", Value: "FREQ    "},
			{Name: "CRVAL3", Value: 230.5e9},
			{Name: "CDELT3", Value: -1e6},
			{Name: "CRPIX3", Value: 2},
			{Name: "RESTFRQ", Value: 230.538e9},
		},
	}
}

func TestImage_Beam(t *testing.T) {
	im := testImage()

	beam, err := im.Beam()
	require.NoError(t, err)
	require.InDelta(t, 0.6, beam.Major.Sec(), 1e-9)
	require.InDelta(t, 0.4, beam.Minor.Sec(), 1e-9)
	require.InDelta(t, 45, beam.PositionAngle.Deg(), 1e-9)

	im.Beams = []flux.Beam{flux.NewBeamArcsec(1, 1, 0), {}, flux.NewBeamArcsec(3, 3, 0)}
	beam, err = im.Beam()
	require.NoError(t, err)
	require.InDelta(t, 2, beam.Major.Sec(), 1e-9)

	beam, err = im.ChannelBeam(2)
	require.NoError(t, err)
	require.InDelta(t, 3, beam.Major.Sec(), 1e-9)

	// channels without their own beam get the mean one
	beam, err = im.ChannelBeam(1)
	require.NoError(t, err)
	require.InDelta(t, 2, beam.Major.Sec(), 1e-9)

	_, err = (&Image{Cube: cube.New(1, 1, 1)}).Beam()
	require.ErrorIs(t, err, ErrNoBeam)
}

func TestImage_SpectralAxis(t *testing.T) {
	im := testImage()

	freqs, err := im.Frequencies()
	require.NoError(t, err)
	require.Equal(t, []float64{230.501e9, 230.5e9, 230.499e9}, freqs)

	vel, err := im.Velocities()
	require.NoError(t, err)
	require.InDelta(t, SpeedOfLight*(1-230.5e9/230.538e9), vel[1], 1e-9)
	require.Greater(t, vel[2], vel[0])

	axis, name, err := im.SpectralAxis()
	require.NoError(t, err)
	require.Equal(t, "km/s", name)
	require.Len(t, axis, 3)

	im.SetCard(fitsio.Card{Name: "RESTFRQ", Value: 0})
	axis, name, err = im.SpectralAxis()
	require.NoError(t, err)
	require.Equal(t, "GHz", name)
	require.InDelta(t, 230.501, axis[0], 1e-9)

	im.SetCard(fitsio.Card{Name: "CTYPE3", Value: "STOKES"})
	_, err = im.Frequencies()
	require.ErrorIs(t, err, ErrNoSpectralAxis)
}

func TestImage_PixelGeometry(t *testing.T) {
	im := testImage()

	pix, err := im.PixelSize()
	require.NoError(t, err)
	require.InDelta(t, 0.1, pix.Sec(), 1e-9)

	x, y, err := im.SkyToPixel(unit.RA(unit.AngleFromDeg(198.776)), unit.AngleFromDeg(-55.156))
	require.NoError(t, err)
	require.InDelta(t, 4, x, 1e-6)
	require.InDelta(t, 4, y, 1e-6)

	// one arcsec north is ten pixels up
	x, y, err = im.SkyToPixel(unit.RA(unit.AngleFromDeg(198.776)), unit.AngleFromDeg(-55.156)+unit.AngleFromSec(1))
	require.NoError(t, err)
	require.InDelta(t, 4, x, 1e-6)
	require.InDelta(t, 14, y, 1e-3)

	_, _, err = (&Image{}).SkyToPixel(0, 0)
	require.ErrorIs(t, err, ErrMissingKeyword)
}

func TestParseSky(t *testing.T) {
	ra, dec, err := ParseSky("13:15:06.315,-55.09.22.764")
	require.NoError(t, err)
	require.InDelta(t, (13+15/60.+6.315/3600)*15, unit.Angle(ra).Deg(), 1e-9)
	require.InDelta(t, -(55 + 9/60. + 22.764/3600), dec.Deg(), 1e-9)

	ra, dec, err = ParseSky("19h10m13.148s, 09d06m12.970s")
	require.NoError(t, err)
	require.InDelta(t, (19+10/60.+13.148/3600)*15, unit.Angle(ra).Deg(), 1e-9)
	require.InDelta(t, 9+6/60.+12.970/3600, dec.Deg(), 1e-9)

	ra, dec, err = ParseSky("198.776 -55.156")
	require.NoError(t, err)
	require.InDelta(t, 198.776, unit.Angle(ra).Deg(), 1e-9)
	require.InDelta(t, -55.156, dec.Deg(), 1e-9)

	ra, dec, err = ParseSky("191013.148, +090612.97")
	require.NoError(t, err)
	require.InDelta(t, (19+10/60.+13.148/3600)*15, unit.Angle(ra).Deg(), 1e-9)
	require.InDelta(t, 9+6/60.+12.97/3600, dec.Deg(), 1e-9)

	_, dec, err = ParseSky("131506.315 -550922.764")
	require.NoError(t, err)
	require.InDelta(t, -(55 + 9/60. + 22.764/3600), dec.Deg(), 1e-9)

	_, _, err = ParseSky("13:15:06.315")
	require.Error(t, err)
	_, _, err = ParseSky("13:15,-55:09:22")
	require.Error(t, err)

	_, _, err = ParseSky("191013.148 90612.97")
	require.ErrorIs(t, err, ErrOutOfRange)
	_, _, err = ParseSky("400 10")
	require.ErrorIs(t, err, ErrOutOfRange)
	_, _, err = ParseSky("25:00:00, 10:00:00")
	require.ErrorIs(t, err, ErrOutOfRange)
	_, _, err = ParseSky("13:61:00, 10:00:00")
	require.ErrorIs(t, err, ErrOutOfRange)
	_, _, err = ParseSky("198.776, -91")
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestEncodeDecode(t *testing.T) {
	im := testImage()
	for i := range im.Cube.Data {
		im.Cube.Data[i] = float64(i) / 4
	}
	im.Cube.Data[7] = math.NaN()

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, im.Cube, im.Cards))

	got, err := Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.True(t, got.Cube.SameShape(im.Cube))
	require.Equal(t, 2.5, got.Cube.Data[10])
	require.True(t, math.IsNaN(got.Cube.Data[7]))

	bunit, ok := got.Text("BUNIT")
	require.True(t, ok)
	require.Equal(t, "Jy/beam", bunit)

	crval3, ok := got.Float("CRVAL3")
	require.True(t, ok)
	require.InDelta(t, 230.5e9, crval3, 1)
}

func encodeRaw(t *testing.T, bitpix int, axes []int, cards []fitsio.Card, data any) []byte {
	t.Helper()

	var buf bytes.Buffer
	f, err := fitsio.Create(&buf)
	require.NoError(t, err)

	img := fitsio.NewImage(bitpix, axes)
	require.NoError(t, img.Header().Append(cards...))
	require.NoError(t, img.Write(data))
	require.NoError(t, f.Write(img))
	require.NoError(t, img.Close())
	require.NoError(t, f.Close())

	return buf.Bytes()
}

func TestDecode_ScaledIntegers(t *testing.T) {
	scaling := []fitsio.Card{
		{Name: "BSCALE", Value: 2.0},
		{Name: "BZERO", Value: 10.0},
		{Name: "BLANK", Value: -32768},
	}

	got, err := Decode(bytes.NewReader(encodeRaw(t, 16, []int{2, 1}, scaling, []int16{3, -32768})))
	require.NoError(t, err)
	require.Equal(t, 1, got.Cube.Nz)
	require.Equal(t, 16.0, got.Cube.Data[0])
	require.True(t, math.IsNaN(got.Cube.Data[1]))

	scaling[2].Value = -1
	got, err = Decode(bytes.NewReader(encodeRaw(t, 32, []int{3, 1}, scaling, []int32{-5, 100000, -1})))
	require.NoError(t, err)
	require.Equal(t, 0.0, got.Cube.Data[0])
	require.Equal(t, 200010.0, got.Cube.Data[1])
	require.True(t, math.IsNaN(got.Cube.Data[2]))

	// scaling cards describe the stored data and are not carried over
	_, ok := got.Card("BSCALE")
	require.False(t, ok)

	_, err = Decode(bytes.NewReader(encodeRaw(t, 8, []int{2, 1}, nil, []uint8{1, 2})))
	require.ErrorIs(t, err, ErrUnsupportedBitpix)
}

func TestEncodeImage_Beams(t *testing.T) {
	im := testImage()
	im.Beams = []flux.Beam{
		flux.NewBeamArcsec(1, 0.5, 10),
		flux.NewBeamArcsec(2, 1, 20),
		flux.NewBeamArcsec(3, 1.5, -30),
	}

	var buf bytes.Buffer
	require.NoError(t, EncodeImage(&buf, im))

	got, err := Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, got.Beams, 3)
	for z, want := range im.Beams {
		require.InDelta(t, want.Major.Sec(), got.Beams[z].Major.Sec(), 1e-5)
		require.InDelta(t, want.Minor.Sec(), got.Beams[z].Minor.Sec(), 1e-5)
		require.InDelta(t, want.PositionAngle.Deg(), got.Beams[z].PositionAngle.Deg(), 1e-4)
	}

	beam, err := got.ChannelBeam(1)
	require.NoError(t, err)
	require.InDelta(t, 2, beam.Major.Sec(), 1e-5)

	// without beams only the primary image is written
	buf.Reset()
	im.Beams = nil
	require.NoError(t, EncodeImage(&buf, im))
	got, err = Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Empty(t, got.Beams)
}

func TestDecode_StokesThirdAxis(t *testing.T) {
	// two Stokes planes per channel, three channels
	axes := []int{2, 2, 2, 3}
	data := make([]float32, 2*2*2*3)
	for i := range data {
		data[i] = float32(i)
	}
	cards := []fitsio.Card{
		{Name: "CTYPE3", Value: "STOKES"},
		{Name: "CRVAL3", Value: 1.0},
		{Name: "CDELT3", Value: 1.0},
		{Name: "CRPIX3", Value: 1.0},
		{Name: "CTYPE4", Value: "FREQ"},
		{Name: "CRVAL4", Value: 100e9},
		{Name: "CDELT4", Value: 1e6},
		{Name: "CRPIX4", Value: 1.0},
		{Name: "CUNIT4", Value: "Hz"},
	}

	got, err := Decode(bytes.NewReader(encodeRaw(t, -32, axes, cards, data)))
	require.NoError(t, err)
	require.Equal(t, 3, got.Cube.Nz)
	require.Equal(t, []float64{0, 1, 2, 3, 8, 9, 10, 11, 16, 17, 18, 19}, got.Cube.Data)

	freqs, err := got.Frequencies()
	require.NoError(t, err)
	require.Equal(t, []float64{100e9, 100.001e9, 100.002e9}, freqs)

	ctype4, _ := got.Text("CTYPE4")
	require.Equal(t, "STOKES", ctype4)
	cunit3, _ := got.Text("CUNIT3")
	require.Equal(t, "Hz", cunit3)

	// a degenerate three axis image is a single channel
	got, err = Decode(bytes.NewReader(encodeRaw(t, -32, []int{2, 2, 2}, cards[:4], data[:8])))
	require.NoError(t, err)
	require.Equal(t, 1, got.Cube.Nz)
	require.Equal(t, []float64{0, 1, 2, 3}, got.Cube.Data)
}
