package terrain

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidSamples = errors.New("terrain: sample count does not match grid size")
	ErrInvalidSize    = errors.New("terrain: world size and grid size must be positive")
)

// Mode selects how a HeightField resolves a coordinate.
type Mode uint8

const (
	// Bilinear treats samples as grid vertices and interpolates between them.
	Bilinear Mode = iota
	// Block treats samples as per-cell constants (flat maze floors).
	Block
)

func (m Mode) String() string {
	if m == Block {
		return "block"
	}
	return "bilinear"
}

// HeightField is an immutable nx×nz elevation grid centred on the origin and
// covering [-sizeX/2, sizeX/2] on x and [-sizeZ/2, sizeZ/2] on z.
type HeightField struct {
	sizeX, sizeZ float64
	halfX, halfZ float64
	nx, nz       int
	stepX, stepZ float64
	mode         Mode
	samples      []float64
}

// New copies samples into a square HeightField. samples is row-major by z
// then x: samples[j*n+i] is column i (x), row j (z).
func New(size float64, n int, samples []float64, mode Mode) (*HeightField, error) {
	return NewRect(size, size, n, n, samples, mode)
}

// NewRect is New for a field whose axes differ in extent or sample count.
// samples[j*nx+i] is column i (x), row j (z).
func NewRect(sizeX, sizeZ float64, nx, nz int, samples []float64, mode Mode) (*HeightField, error) {
	if sizeX <= 0 || sizeZ <= 0 || nx <= 0 || nz <= 0 {
		return nil, ErrInvalidSize
	}
	if mode == Bilinear && (nx < 2 || nz < 2) {
		return nil, ErrInvalidSize
	}
	if len(samples) != nx*nz {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidSamples, len(samples), nx*nz)
	}

	cellsX, cellsZ := float64(nx), float64(nz)
	if mode == Bilinear {
		cellsX, cellsZ = float64(nx-1), float64(nz-1)
	}

	return &HeightField{
		sizeX:   sizeX,
		sizeZ:   sizeZ,
		halfX:   sizeX / 2,
		halfZ:   sizeZ / 2,
		nx:      nx,
		nz:      nz,
		stepX:   sizeX / cellsX,
		stepZ:   sizeZ / cellsZ,
		mode:    mode,
		samples: append([]float64(nil), samples...),
	}, nil
}

// Flat returns a block field of n×n cells all at the given height.
func Flat(size float64, n int, height float64) (*HeightField, error) {
	samples := make([]float64, n*n)
	for i := range samples {
		samples[i] = height
	}
	return New(size, n, samples, Block)
}

// Size returns the x extent. Extent reports both axes.
func (h *HeightField) Size() float64 { return h.sizeX }

// N returns the sample count along x. Dims reports both axes.
func (h *HeightField) N() int { return h.nx }

// Step returns the sample spacing along x.
func (h *HeightField) Step() float64 { return h.stepX }

func (h *HeightField) Extent() (x, z float64) { return h.sizeX, h.sizeZ }
func (h *HeightField) Dims() (nx, nz int)     { return h.nx, h.nz }
func (h *HeightField) Mode() Mode             { return h.mode }

// Sample returns the stored value at grid index (i, j), clamped to the grid.
func (h *HeightField) Sample(i, j int) float64 {
	i = clampInt(i, 0, h.nx-1)
	j = clampInt(j, 0, h.nz-1)
	return h.samples[j*h.nx+i]
}

// HeightAt returns the elevation at world (x, z). Out-of-range coordinates are
// clamped to the field bounds.
func (h *HeightField) HeightAt(x, z float64) float64 {
	x = clamp(x, -h.halfX, h.halfX)
	z = clamp(z, -h.halfZ, h.halfZ)

	fx := (x + h.halfX) / h.stepX
	fz := (z + h.halfZ) / h.stepZ

	if h.mode == Block {
		return h.Sample(int(math.Floor(fx)), int(math.Floor(fz)))
	}

	i := clampInt(int(math.Floor(fx)), 0, h.nx-2)
	j := clampInt(int(math.Floor(fz)), 0, h.nz-2)
	tx := fx - float64(i)
	tz := fz - float64(j)

	h00 := h.samples[j*h.nx+i]
	h10 := h.samples[j*h.nx+i+1]
	h01 := h.samples[(j+1)*h.nx+i]
	h11 := h.samples[(j+1)*h.nx+i+1]

	top := h00 + (h10-h00)*tx
	bottom := h01 + (h11-h01)*tx
	return top + (bottom-top)*tz
}

// Vertex returns the world (x, z) of grid vertex (i, j) in Bilinear mode, or of
// the centre of cell (i, j) in Block mode.
func (h *HeightField) Vertex(i, j int) (x, z float64) {
	if h.mode == Block {
		return -h.halfX + (float64(i)+0.5)*h.stepX, -h.halfZ + (float64(j)+0.5)*h.stepZ
	}
	return -h.halfX + float64(i)*h.stepX, -h.halfZ + float64(j)*h.stepZ
}

// Range returns the lowest and highest stored samples.
func (h *HeightField) Range() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, s := range h.samples {
		lo = math.Min(lo, s)
		hi = math.Max(hi, s)
	}
	return lo, hi
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
