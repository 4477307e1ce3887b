package config

import (
	"fmt"
	"strings"
	"sync"
)

// WorldKind selects which scene the client loads at startup
type WorldKind string

const (
	WorldSpheres   WorldKind = "spheres"
	WorldTerrain   WorldKind = "terrain"
	WorldHeightmap WorldKind = "heightmap"
)

// ParseWorldKind accepts a case-insensitive world name
func ParseWorldKind(s string) (WorldKind, error) {
	switch k := WorldKind(strings.ToLower(strings.TrimSpace(s))); k {
	case WorldSpheres, WorldTerrain, WorldHeightmap:
		return k, nil
	}
	return "", fmt.Errorf("unknown world %q (want spheres, terrain or heightmap)", s)
}

// WorldGenSettings holds world generation configuration
type WorldGenSettings struct {
	mu              sync.RWMutex
	kind            WorldKind
	seed            int64
	radius          int // in chunks, terrain only
	heightmapPath   string
	heightmapSize   int
	heightmapHeight int
}

var globalWorldGenSettings = &WorldGenSettings{
	kind:            WorldSpheres, // Matches the original demo scene
	seed:            1337,
	radius:          2,
	heightmapSize:   0,  // Keep source resolution
	heightmapHeight: 64, // Two chunks tall
}

// GetWorldKind returns the startup scene
func GetWorldKind() WorldKind {
	globalWorldGenSettings.mu.RLock()
	defer globalWorldGenSettings.mu.RUnlock()
	return globalWorldGenSettings.kind
}

// SetWorldKind sets the startup scene
func SetWorldKind(kind WorldKind) {
	globalWorldGenSettings.mu.Lock()
	defer globalWorldGenSettings.mu.Unlock()
	globalWorldGenSettings.kind = kind
}

// GetSeed returns the terrain seed
func GetSeed() int64 {
	globalWorldGenSettings.mu.RLock()
	defer globalWorldGenSettings.mu.RUnlock()
	return globalWorldGenSettings.seed
}

// SetSeed sets the terrain seed
func SetSeed(seed int64) {
	globalWorldGenSettings.mu.Lock()
	defer globalWorldGenSettings.mu.Unlock()
	globalWorldGenSettings.seed = seed
}

// GetTerrainRadius returns the terrain radius in chunks
func GetTerrainRadius() int {
	globalWorldGenSettings.mu.RLock()
	defer globalWorldGenSettings.mu.RUnlock()
	return globalWorldGenSettings.radius
}

// SetTerrainRadius sets the terrain radius in chunks
func SetTerrainRadius(radius int) {
	globalWorldGenSettings.mu.Lock()
	defer globalWorldGenSettings.mu.Unlock()
	globalWorldGenSettings.radius = clampInt(radius, 0, 16)
}

// GetHeightmap returns the heightmap path, resample size and peak height
func GetHeightmap() (path string, size, maxHeight int) {
	globalWorldGenSettings.mu.RLock()
	defer globalWorldGenSettings.mu.RUnlock()
	s := globalWorldGenSettings
	return s.heightmapPath, s.heightmapSize, s.heightmapHeight
}

// SetHeightmap sets the heightmap source. Size 0 keeps the image resolution.
func SetHeightmap(path string, size, maxHeight int) {
	globalWorldGenSettings.mu.Lock()
	defer globalWorldGenSettings.mu.Unlock()
	globalWorldGenSettings.heightmapPath = path
	globalWorldGenSettings.heightmapSize = clampInt(size, 0, 1024)
	globalWorldGenSettings.heightmapHeight = clampInt(maxHeight, 1, 256)
}
