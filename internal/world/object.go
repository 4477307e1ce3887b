package world

import (
	"sort"
)

// Object is a sparse voxel volume: a map of chunk coordinates to the chunks
// it exclusively owns. Missing chunks read as void.
type Object struct {
	chunks map[ChunkCoord]*Chunk
}

// NewObject creates an empty object.
func NewObject() *Object {
	return &Object{
		chunks: make(map[ChunkCoord]*Chunk),
	}
}

// Chunk returns the chunk at coord, if present. It never allocates.
func (o *Object) Chunk(coord ChunkCoord) (*Chunk, bool) {
	c, ok := o.chunks[coord]
	return c, ok
}

// ChunkOrInsert returns the chunk at coord, inserting a void chunk first if absent.
func (o *Object) ChunkOrInsert(coord ChunkCoord) *Chunk {
	if c, ok := o.chunks[coord]; ok {
		return c
	}
	c := NewChunk()
	o.chunks[coord] = c
	return c
}

// Insert stores chunk at coord, replacing any existing chunk.
func (o *Object) Insert(coord ChunkCoord, chunk *Chunk) {
	o.chunks[coord] = chunk
}

// Remove drops the chunk at coord. Returns false if nothing was stored there.
func (o *Object) Remove(coord ChunkCoord) bool {
	if _, ok := o.chunks[coord]; !ok {
		return false
	}
	delete(o.chunks, coord)
	return true
}

// Get returns the voxel at pos, or Void when its chunk is absent.
func (o *Object) Get(pos VoxelCoord) Voxel {
	c, ok := o.chunks[pos.Chunk()]
	if !ok {
		return Void
	}
	return c.Get(pos.Index())
}

// Set writes v at pos, materializing the containing chunk if needed.
func (o *Object) Set(pos VoxelCoord, v Voxel) {
	o.ChunkOrInsert(pos.Chunk()).Set(pos.Index(), v)
}

// Neighbors returns the six adjacent chunks in Directions order; absent ones are nil.
func (o *Object) Neighbors(coord ChunkCoord) [DirectionCount]*Chunk {
	var out [DirectionCount]*Chunk
	for _, d := range Directions {
		out[d] = o.chunks[coord.Advance(d)]
	}
	return out
}

// Len returns the number of stored chunks.
func (o *Object) Len() int {
	return len(o.chunks)
}

// Coords returns every stored chunk coordinate in a stable order.
func (o *Object) Coords() []ChunkCoord {
	coords := make([]ChunkCoord, 0, len(o.chunks))
	for c := range o.chunks {
		coords = append(coords, c)
	}
	sort.Slice(coords, func(i, j int) bool { return coords[i].Less(coords[j]) })
	return coords
}

// AffectedChunks returns the chunks whose mesh depends on the voxel at pos:
// its own chunk plus any neighbour sharing a face with it. Only stored
// chunks are returned.
func (o *Object) AffectedChunks(pos VoxelCoord) []ChunkCoord {
	own := pos.Chunk()
	out := make([]ChunkCoord, 0, 4)
	if _, ok := o.chunks[own]; ok {
		out = append(out, own)
	}
	for _, d := range Directions {
		n := pos.Advance(d).Chunk()
		if n == own {
			continue
		}
		if _, ok := o.chunks[n]; ok {
			out = append(out, n)
		}
	}
	return out
}
