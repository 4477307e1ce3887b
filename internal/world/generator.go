package world

import (
	"math"
)

// Demo materials. Any non-zero id is solid; the fragment shader picks a
// colour from the id.
const (
	Stone Voxel = 1
	Dirt  Voxel = 2
	Grass Voxel = 3
	Sand  Voxel = 4
)

// SphereChunk returns a chunk holding a solid sphere of radius 16 centred in the chunk.
func SphereChunk(v Voxel) *Chunk {
	c := NewChunk()
	const center = 15.5
	for i := range ChunkVolume {
		idx := ChunkIndex(i)
		dx := float64(idx.X()) - center
		dy := float64(idx.Y()) - center
		dz := float64(idx.Z()) - center
		if dx*dx+dy*dy+dz*dz < 256 {
			c.Set(idx, v)
		}
	}
	return c
}

// NewSpheres builds the demo object: a row of sphere chunks along X with one
// stacked above and one in front of the origin chunk.
func NewSpheres() *Object {
	o := NewObject()
	for _, coord := range []ChunkCoord{
		{X: -1}, {X: 0}, {X: 1}, {X: 2},
		{Y: 1},
		{Z: 1},
	} {
		o.Insert(coord, SphereChunk(Stone))
	}
	return o
}

// Generator produces height-field terrain from value noise. Z is up.
type Generator struct {
	seed        int64
	scale       float64
	baseHeight  int
	amp         float64
	octaves     int
	persistence float64
	lacunarity  float64
}

// NewGenerator creates a terrain generator with default shaping parameters.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		seed:        seed,
		scale:       1.0 / 64.0,
		baseHeight:  24,
		amp:         32,
		octaves:     4,
		persistence: 0.5,
		lacunarity:  2.0,
	}
}

// HeightAt returns the surface height (top solid voxel Z) at world x, y.
func (g *Generator) HeightAt(x, y int) int {
	n := octaveNoise2D(float64(x)*g.scale, float64(y)*g.scale, g.seed, g.octaves, g.persistence, g.lacunarity)
	h := float64(g.baseHeight) + n*g.amp
	if h < 0 {
		h = 0
	}
	return int(math.Floor(h))
}

// Generate fills a square of (2*radius+1)^2 chunk columns around the origin.
func (g *Generator) Generate(radius int) *Object {
	o := NewObject()
	size := (2*radius + 1) * ChunkLength
	lo := -radius * ChunkLength
	fillColumns(o, lo, lo, size, size, func(x, y int) int {
		return g.HeightAt(x, y)
	})
	return o
}

// fillColumns writes a column of material for every (x, y) in the rectangle,
// from z=0 up to height(x, y) inclusive. Columns with negative height stay empty.
func fillColumns(o *Object, x0, y0, w, h int, height func(x, y int) int) {
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			top := height(x, y)
			for z := 0; z <= top; z++ {
				o.Set(VoxelCoord{X: int32(x), Y: int32(y), Z: int32(z)}, columnMaterial(z, top))
			}
		}
	}
}

func columnMaterial(z, top int) Voxel {
	switch {
	case z == top && top <= 2:
		return Sand
	case z == top:
		return Grass
	case z >= top-3:
		return Dirt
	default:
		return Stone
	}
}
