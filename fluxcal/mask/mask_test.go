package mask

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corbettht/ZZCeti-pipeline/fluxcal"
	"github.com/corbettht/ZZCeti-pipeline/internal/testutil"
)

func TestFromEndpointsEitherOrder(t *testing.T) {
	s, err := FromEndpoints([]float64{4380, 4320, 6540, 6590})
	require.NoError(t, err)
	assert.Equal(t, []Interval{{4320, 4380}, {6540, 6590}}, s.Intervals)
}

func TestFromEndpointsOdd(t *testing.T) {
	_, err := FromEndpoints([]float64{1, 2, 3})
	assert.ErrorIs(t, err, fluxcal.ErrInputFormat)
}

func TestFromClicksSnapsToSamples(t *testing.T) {
	samples := []float64{4000, 4050, 4100, 4150, 4200}

	s, dropped := FromClicks([]float64{4160, 4041, 4190}, samples)
	assert.True(t, dropped)
	assert.Equal(t, []Interval{{4050, 4150}}, s.Intervals)

	// Equidistant click resolves to the lower sample.
	s, dropped = FromClicks([]float64{4025, 4100}, samples)
	assert.False(t, dropped)
	assert.Equal(t, []Interval{{4000, 4100}}, s.Intervals)

	s, dropped = FromClicks(nil, samples)
	assert.False(t, dropped)
	assert.Zero(t, s.Len())
}

func TestKeepExcludesClosedIntervals(t *testing.T) {
	wave := testutil.Ramp(4000, 10, 50)
	s := Spec{Intervals: []Interval{{4100, 4150}, {4400, 4400}}}

	kept := s.Keep(wave)
	require.Len(t, kept, 50-6-1)

	keptSet := make(map[int]bool, len(kept))
	for _, i := range kept {
		keptSet[i] = true
	}
	for i, lambda := range wave {
		inside := (lambda >= 4100 && lambda <= 4150) || lambda == 4400
		assert.Equal(t, !inside, keptSet[i], "lambda=%v", lambda)
	}
}

func TestZeroSpecKeepsEverything(t *testing.T) {
	var s Spec
	assert.Equal(t, []int{0, 1, 2}, s.Keep([]float64{1, 2, 3}))
	assert.Equal(t, "[]", s.String())
}

func TestStringAndSorted(t *testing.T) {
	s := Spec{Intervals: []Interval{{6540, 6590}, {4320.5, 4380}}}
	assert.Equal(t, "[6540,6590] [4320.5,4380]", s.String())
	assert.Equal(t, "[4320.5,4380] [6540,6590]", s.Sorted().String())
}

func TestReadWrite(t *testing.T) {
	in := Spec{Intervals: []Interval{{3850.25, 3905}, {4810, 4900.125}}}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, in))
	assert.Equal(t, "3850.25\n3905\n4810\n4900.125\n", buf.String())

	out, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestReadRejectsMalformed(t *testing.T) {
	_, err := Read(strings.NewReader("4000\nabc\n"))
	assert.ErrorIs(t, err, fluxcal.ErrInputFormat)

	_, err = Read(strings.NewReader("4000\n4100\n4200\n"))
	assert.ErrorIs(t, err, fluxcal.ErrInputFormat)
}

func TestStore(t *testing.T) {
	st := Store{Dir: filepath.Join(t.TempDir(), "masks")}
	assert.Equal(t, filepath.Join(st.Dir, "mgd50_blue_mask.dat"), st.Path("cat/mgd50.dat", fluxcal.ArmBlue))

	_, found, err := st.Load("mgd50.dat", fluxcal.ArmBlue)
	require.NoError(t, err)
	assert.False(t, found)

	want := Spec{Intervals: []Interval{{4320, 4380}}}
	path, err := st.Save("mgd50.dat", fluxcal.ArmBlue, want)
	require.NoError(t, err)
	assert.FileExists(t, path)

	got, found, err := st.Load("mgd50.dat", fluxcal.ArmBlue)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)

	_, found, err = st.Load("mgd50.dat", fluxcal.ArmRed)
	require.NoError(t, err)
	assert.False(t, found)
}
