package catalog

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corbettht/ZZCeti-pipeline/fluxcal"
)

const threeColumn = `# wavelength  mag  width
3900.0  11.20  40.0
3940.0  11.25  40.0

3980.0  11.30  40.0
4020.0  11.32  40.0
`

func TestParseThreeColumns(t *testing.T) {
	e, err := Parse(strings.NewReader(threeColumn), "mgd50.dat")
	require.NoError(t, err)

	assert.Equal(t, "mgd50.dat", e.Name)
	assert.Equal(t, []float64{3900, 3940, 3980, 4020}, e.Wavelength)
	assert.Equal(t, []float64{11.20, 11.25, 11.30, 11.32}, e.Magnitude)
	assert.Equal(t, []float64{40, 40, 40, 40}, e.BinWidth)
	assert.Nil(t, e.Flux)
}

func TestParseTwoColumnsDerivesWidths(t *testing.T) {
	e, err := Parse(strings.NewReader("4000 12\n4010 12\n4030 12\n"), "mx.dat")
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 15, 20}, e.BinWidth)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: "# nothing\n"},
		{name: "one column", input: "4000\n"},
		{name: "not a number", input: "4000 abc 10\n"},
		{name: "descending", input: "4000 12 10\n3990 12 10\n"},
		{name: "mixed columns", input: "4000 12 10\n4010 12\n"},
		{name: "zero width", input: "4000 12 0\n"},
		{name: "single point without width", input: "4000 12\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input), "bad.dat")
			require.Error(t, err)
			assert.ErrorIs(t, err, fluxcal.ErrInputFormat)
		})
	}
}

func TestRestrict(t *testing.T) {
	e, err := Parse(strings.NewReader(threeColumn), "mgd50.dat")
	require.NoError(t, err)
	e.ToFlux(ABZeroPoint)

	r, err := e.Restrict(3940, 3990)
	require.NoError(t, err)
	assert.Equal(t, []float64{3940, 3980}, r.Wavelength)
	assert.Equal(t, []float64{11.25, 11.30}, r.Magnitude)
	assert.Equal(t, e.Flux[1:3], r.Flux)
	assert.Len(t, e.Wavelength, 4, "source must not be modified")

	_, err = e.Restrict(5000, 6000)
	assert.ErrorIs(t, err, fluxcal.ErrCoverage)
}

func TestMagnitudeRoundTrip(t *testing.T) {
	for _, mag := range []float64{-1.5, 0, 8.25, 11.3, 15, 22.75} {
		fnu := MagToFlux(mag, ABZeroPoint)
		assert.InDelta(t, mag, FluxToMag(fnu, ABZeroPoint), 1e-12, "mag %v", mag)
	}
	assert.InDelta(t, ABZeroPoint, MagToFlux(0, ABZeroPoint), 1e-35)
	assert.True(t, math.IsNaN(FluxToMag(0, ABZeroPoint)))
}

func TestFnuFlambdaRoundTrip(t *testing.T) {
	lambda := 5500.0
	fnu := MagToFlux(12, ABZeroPoint)
	flambda := FnuToFlambda(lambda, fnu)
	assert.InDelta(t, fnu, FlambdaToFnu(lambda, flambda), fnu*1e-14)
	assert.InDelta(t, fnu*speedOfLight/(lambda*lambda), flambda, flambda*1e-14)
}

func TestStarID(t *testing.T) {
	assert.Equal(t, "gd50", StarID("mgd50.dat"))
	assert.Equal(t, "ltt3218", StarID("/standards/mltt3218.dat"))
	assert.Equal(t, "master", StarID("mmaster.dat"))
}

func TestLoadWithResolver(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mgd50.dat"), []byte(threeColumn), 0o644))

	e, err := Load(DirResolver{Dir: dir}, "mgd50.dat")
	require.NoError(t, err)
	assert.Equal(t, 4, e.Len())

	_, err = Load(DirResolver{Dir: dir}, "missing.dat")
	assert.ErrorIs(t, err, fluxcal.ErrInputFormat)

	_, err = Load(DirResolver{Dir: dir}, "")
	assert.ErrorIs(t, err, fluxcal.ErrInputFormat)
}
