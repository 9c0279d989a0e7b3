package terrain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rampField(t *testing.T, mode Mode) *HeightField {
	t.Helper()
	const n = 5
	samples := make([]float64, n*n)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			samples[j*n+i] = float64(i) + 10*float64(j)
		}
	}
	hf, err := New(8, n, samples, mode)
	require.NoError(t, err)
	return hf
}

func TestNewRejectsBadInput(t *testing.T) {
	_, err := New(10, 3, make([]float64, 8), Block)
	assert.ErrorIs(t, err, ErrInvalidSamples)

	_, err = New(0, 3, make([]float64, 9), Block)
	assert.ErrorIs(t, err, ErrInvalidSize)

	_, err = New(10, 1, make([]float64, 1), Bilinear)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestBilinearExactAtVertices(t *testing.T) {
	hf := rampField(t, Bilinear)
	for j := 0; j < hf.N(); j++ {
		for i := 0; i < hf.N(); i++ {
			x, z := hf.Vertex(i, j)
			assert.Equal(t, hf.Sample(i, j), hf.HeightAt(x, z), "vertex %d,%d", i, j)
		}
	}
}

func TestBilinearInterpolatesBetweenVertices(t *testing.T) {
	hf := rampField(t, Bilinear)
	// Step is 2; midway between vertex (0,0)=0 and (1,0)=1.
	x0, z0 := hf.Vertex(0, 0)
	assert.InDelta(t, 0.5, hf.HeightAt(x0+1, z0), 1e-9)
	// Centre of the first quad averages 0, 1, 10, 11.
	assert.InDelta(t, 5.5, hf.HeightAt(x0+1, z0+1), 1e-9)
}

func TestBlockReturnsCellConstant(t *testing.T) {
	hf := rampField(t, Block)
	// Cells are 1.6 wide; any point in cell (2,3) yields its stored value.
	x, z := hf.Vertex(2, 3)
	assert.Equal(t, 32.0, hf.HeightAt(x, z))
	assert.Equal(t, 32.0, hf.HeightAt(x+0.7, z-0.7))
}

func TestHeightAtClampsOutOfRange(t *testing.T) {
	for _, mode := range []Mode{Bilinear, Block} {
		hf := rampField(t, mode)
		assert.Equal(t, hf.Sample(0, 0), hf.HeightAt(-1000, -1000), mode.String())
		nx, nz := hf.Dims()
		assert.Equal(t, hf.Sample(nx-1, nz-1), hf.HeightAt(1000, 1000), mode.String())
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Amplitude = 3
	cfg.Terrace = 0

	a, err := Generate(cfg, 100, 20, 42)
	require.NoError(t, err)
	b, err := Generate(cfg, 100, 20, 42)
	require.NoError(t, err)
	c, err := Generate(cfg, 100, 20, 43)
	require.NoError(t, err)

	assert.Equal(t, a.samples, b.samples)
	assert.NotEqual(t, a.samples, c.samples)

	lo, hi := a.Range()
	assert.GreaterOrEqual(t, lo, -3.0)
	assert.LessOrEqual(t, hi, 3.0)
}

func TestGenerateTerracesAndFlat(t *testing.T) {
	cfg := DefaultConfig()
	flat, err := Generate(cfg, 40, 10, 1)
	require.NoError(t, err)
	lo, hi := flat.Range()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 0.0, hi)

	cfg.Amplitude = 4
	cfg.Terrace = 0.5
	terraced, err := Generate(cfg, 40, 10, 1)
	require.NoError(t, err)
	for _, s := range terraced.samples {
		assert.InDelta(t, 0, s*2-float64(int64(s*2)), 1e-9)
	}

	cfg.ModeName = "bilinear"
	require.NoError(t, cfg.ResolveMode())
	smooth, err := Generate(cfg, 40, 10, 1)
	require.NoError(t, err)
	assert.Equal(t, 11, smooth.N())
}

func TestRectBlockCellsMatchGridCentres(t *testing.T) {
	const cs = 16.0
	for _, dims := range [][2]int{{15, 8}, {20, 13}, {7, 7}} {
		w, h := dims[0], dims[1]
		samples := make([]float64, w*h)
		for j := 0; j < h; j++ {
			for i := 0; i < w; i++ {
				samples[j*w+i] = float64(i) + 100*float64(j)
			}
		}
		hf, err := NewRect(float64(w)*cs, float64(h)*cs, w, h, samples, Block)
		require.NoError(t, err)

		for j := 0; j < h; j++ {
			for i := 0; i < w; i++ {
				cx := -float64(w)*cs/2 + (float64(i)+0.5)*cs
				cz := -float64(h)*cs/2 + (float64(j)+0.5)*cs
				x, z := hf.Vertex(i, j)
				assert.InDelta(t, cx, x, 1e-9)
				assert.InDelta(t, cz, z, 1e-9)
				want := samples[j*w+i]
				assert.Equal(t, want, hf.HeightAt(cx-cs/2+0.1, cz-cs/2+0.1), "%dx%d cell %d,%d", w, h, i, j)
				assert.Equal(t, want, hf.HeightAt(cx+cs/2-0.1, cz+cs/2-0.1), "%dx%d cell %d,%d", w, h, i, j)
			}
		}
	}
}

func TestGenerateRectBilinearVertexCounts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = Bilinear
	cfg.Amplitude = 2

	hf, err := GenerateRect(cfg, 150, 80, 15, 8, 3)
	require.NoError(t, err)
	nx, nz := hf.Dims()
	assert.Equal(t, 16, nx)
	assert.Equal(t, 9, nz)

	x, z := hf.Vertex(nx-1, nz-1)
	assert.InDelta(t, 75, x, 1e-9)
	assert.InDelta(t, 40, z, 1e-9)
	assert.Equal(t, hf.Sample(nx-1, nz-1), hf.HeightAt(x, z))

	_, err = GenerateRect(cfg, 150, 80, 15, 0, 3)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestNoiseRange(t *testing.T) {
	ng := NewNoiseGenerator(7)
	for i := 0; i < 200; i++ {
		v := ng.Noise2D(float64(i)*0.37, float64(i)*0.11)
		assert.GreaterOrEqual(t, v, -1.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}
