package selector

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corbettht/ZZCeti-pipeline/fluxcal"
	"github.com/corbettht/ZZCeti-pipeline/fluxcal/sensfunc"
	"github.com/corbettht/ZZCeti-pipeline/fluxcal/spectrum"
	"github.com/corbettht/ZZCeti-pipeline/internal/testutil"
)

func curve(name string, arm fluxcal.Arm, airmass float64) *sensfunc.Curve {
	return &sensfunc.Curve{Standard: name, Arm: arm, Airmass: airmass}
}

func pair(cat string, blue, red float64) Pair {
	return Pair{
		Catalog: cat,
		Blue:    curve(cat+"_blue", fluxcal.ArmBlue, blue),
		Red:     curve(cat+"_red", fluxcal.ArmRed, red),
	}
}

func program(arm fluxcal.Arm, airmass float64) *spectrum.Spectrum {
	return &spectrum.Spectrum{Name: "wd_" + arm.String(), Arm: arm, Airmass: airmass}
}

func TestSelectPairMeans(t *testing.T) {
	sel, err := New([]Pair{
		pair("mgd50.dat", 1.6, 1.6),
		pair("mltt3218.dat", 1.2, 1.2),
		pair("mfeige110.dat", 1.05, 1.1),
	})
	require.NoError(t, err)

	got, err := sel.Select(program(fluxcal.ArmBlue, 1.25), program(fluxcal.ArmRed, 1.3))
	require.NoError(t, err)
	assert.Equal(t, 1, got.Index)
	assert.Equal(t, "mltt3218.dat", got.Pair.Catalog)
	assert.InDelta(t, 0.075, got.Distance, 1e-12)

	blue, err := got.CurveFor(fluxcal.ArmBlue)
	require.NoError(t, err)
	assert.Equal(t, "mltt3218.dat_blue", blue.Standard)
}

func TestSelectMinimumDistanceProperty(t *testing.T) {
	pairs := []Pair{
		pair("a", 1.9, 2.0),
		pair("b", 1.01, 1.03),
		pair("c", 1.4, 1.5),
		pair("d", 1.22, 1.18),
	}
	sel, err := New(pairs)
	require.NoError(t, err)

	for _, target := range []float64{1.0, 1.1, 1.2, 1.33, 1.45, 1.7, 2.5} {
		got, err := sel.Select(program(fluxcal.ArmBlue, target), program(fluxcal.ArmRed, target))
		require.NoError(t, err)
		for i, p := range pairs {
			mean, _ := p.MeanAirmass(fluxcal.ArmBlue, fluxcal.ArmRed)
			d := mean - target
			if d < 0 {
				d = -d
			}
			assert.LessOrEqual(t, got.Distance, d, "target %v candidate %d", target, i)
		}
	}
}

func TestSelectTieFirstWins(t *testing.T) {
	sel, err := New([]Pair{pair("first", 1.0, 1.0), pair("second", 1.5, 1.5)})
	require.NoError(t, err)

	got, err := sel.Select(program(fluxcal.ArmBlue, 1.25), program(fluxcal.ArmRed, 1.25))
	require.NoError(t, err)
	assert.Equal(t, 0, got.Index)
}

func TestSelectSingleArm(t *testing.T) {
	sel, err := New([]Pair{
		pair("a", 1.0, 1.5),
		pair("b", 1.5, 1.0),
		{Catalog: "bluonly", Blue: curve("bo", fluxcal.ArmBlue, 1.45)},
	})
	require.NoError(t, err)

	got, err := sel.Select(program(fluxcal.ArmRed, 1.1))
	require.NoError(t, err)
	assert.Equal(t, "b", got.Pair.Catalog)

	got, err = sel.Select(program(fluxcal.ArmBlue, 1.46))
	require.NoError(t, err)
	assert.Equal(t, "bluonly", got.Pair.Catalog)

	_, err = got.CurveFor(fluxcal.ArmRed)
	assert.ErrorIs(t, err, ErrNoCandidate)
}

func TestSelectErrors(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNoStandards)

	sel, err := New([]Pair{{Catalog: "x", Blue: curve("x", fluxcal.ArmBlue, 1)}})
	require.NoError(t, err)
	_, err = sel.Select(program(fluxcal.ArmRed, 1))
	assert.ErrorIs(t, err, ErrNoCandidate)
	assert.ErrorIs(t, err, fluxcal.ErrCoverage)
	_, err = sel.Select()
	assert.ErrorIs(t, err, ErrNoCandidate)
}

func TestBandMean(t *testing.T) {
	wave := []float64{4529, 4530, 4531, 4590, 4591}
	vals := []float64{100, 100, 1, 3, 100}

	got, err := BandMean(wave, vals, Band{Lo: 4530, Hi: 4590})
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)

	_, err = BandMean(wave, vals, Band{Lo: 7000, Hi: 7100})
	assert.ErrorIs(t, err, fluxcal.ErrCoverage)
}

func writeMaster(t *testing.T, dir string) {
	t.Helper()
	files := map[string]string{
		"master_resp_blue_in.txt":  "0.001\n25\n",
		"master_resp_blue_out.txt": "0.001\n24\n",
		"master_resp_red_in.txt":   "-0.0005\n34\n",
		"master_resp_red_out.txt":  "0\n-0.0005\n33\n",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
}

func masterProgram(arm fluxcal.Arm, dev fluxcal.DeviceState, lo float64) *spectrum.Spectrum {
	return &spectrum.Spectrum{
		Name:       "wd_" + arm.String() + ".ms.fits",
		Arm:        arm,
		Device:     dev,
		Wavelength: testutil.Ramp(lo, 1, 1001),
	}
}

func TestMasterResolveByDevice(t *testing.T) {
	dir := t.TempDir()
	writeMaster(t, dir)
	m, err := LoadMaster(dir, nil)
	require.NoError(t, err)

	c, err := m.Resolve(masterProgram(fluxcal.ArmBlue, fluxcal.DeviceIn, 4000))
	require.NoError(t, err)
	assert.Equal(t, "master_resp_blue_in.txt", c.Standard)
	assert.Equal(t, MasterCatalog, c.Catalog)
	assert.InDelta(t, 29.5, c.At(4500), 1e-12)

	c, err = m.Resolve(masterProgram(fluxcal.ArmBlue, fluxcal.DeviceOut, 4000))
	require.NoError(t, err)
	assert.InDelta(t, 28.5, c.At(4500), 1e-12)

	c, err = m.Resolve(masterProgram(fluxcal.ArmRed, fluxcal.DeviceOut, 6000))
	require.NoError(t, err)
	assert.Equal(t, 2, c.Order())
	assert.InDelta(t, 30, c.At(6000), 1e-12)

	_, err = m.Resolve(masterProgram(fluxcal.ArmRed, fluxcal.DeviceUnknown, 6000))
	assert.ErrorIs(t, err, fluxcal.ErrMetadataMissing)
}

func TestMasterNightlyOffset(t *testing.T) {
	dir := t.TempDir()
	writeMaster(t, dir)
	m, err := LoadMaster(dir, nil)
	require.NoError(t, err)

	// Missing list: no shift.
	require.NoError(t, m.LoadNightly(filepath.Join(dir, "response_curves.txt")))
	c, err := m.Resolve(masterProgram(fluxcal.ArmBlue, fluxcal.DeviceIn, 4000))
	require.NoError(t, err)
	assert.Zero(t, c.Offset)

	curveName := "senscurve_gd50_1.200_IN_blue.txt"
	var body strings.Builder
	for lambda := 4500; lambda <= 4620; lambda += 5 {
		fmt.Fprintf(&body, "%d 30\n", lambda)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, curveName), []byte(body.String()), 0o644))
	list := filepath.Join(dir, "response_curves.txt")
	require.NoError(t, os.WriteFile(list, []byte(curveName+"\n"), 0o644))
	require.NoError(t, m.LoadNightly(list))

	c, err = m.Resolve(masterProgram(fluxcal.ArmBlue, fluxcal.DeviceIn, 4000))
	require.NoError(t, err)
	// Master band mean over 4531..4590 is 25 + 0.001·4560.5.
	assert.InDelta(t, 30-29.5605, c.Offset, 1e-9)
	assert.InDelta(t, 30, c.At(4560.5), 1e-9)

	base, ok := m.Curve(fluxcal.ArmBlue, fluxcal.DeviceIn)
	require.True(t, ok)
	assert.Zero(t, base.Offset, "master curve must stay unshifted")

	// Red has no nightly reference.
	c, err = m.Resolve(masterProgram(fluxcal.ArmRed, fluxcal.DeviceIn, 6000))
	require.NoError(t, err)
	assert.Zero(t, c.Offset)
}

func TestMasterBandOutsideProgram(t *testing.T) {
	dir := t.TempDir()
	writeMaster(t, dir)
	m, err := LoadMaster(dir, nil)
	require.NoError(t, err)
	m.SetNightlyMean(fluxcal.ArmBlue, 30)

	_, err = m.Resolve(masterProgram(fluxcal.ArmBlue, fluxcal.DeviceIn, 3000))
	assert.ErrorIs(t, err, fluxcal.ErrCoverage)
}

func TestLoadMasterMissingFile(t *testing.T) {
	_, err := LoadMaster(t.TempDir(), nil)
	assert.ErrorIs(t, err, fluxcal.ErrInputFormat)
}
