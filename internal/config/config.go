package config

import "sync"

// RenderSettings holds render configuration
type RenderSettings struct {
	mu             sync.RWMutex
	windowWidth    int
	windowHeight   int
	fov            float32 // vertical, in degrees
	framesInFlight int
	validation     bool
	wireframe      bool
	vsync          bool
	fpsLimit       int // 0 means unlimited
	shaderDir      string
	moveSpeed      float32
}

var globalRenderSettings = &RenderSettings{
	windowWidth:    1280,
	windowHeight:   720,
	fov:            45,
	framesInFlight: 2,
	validation:     false,
	wireframe:      false,
	vsync:          false,
	fpsLimit:       0,
	shaderDir:      "",
	moveSpeed:      30,
}

// GetWindowSize returns the initial window size in screen coordinates
func GetWindowSize() (int, int) {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.windowWidth, globalRenderSettings.windowHeight
}

// SetWindowSize sets the initial window size
func SetWindowSize(width, height int) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()

	globalRenderSettings.windowWidth = clampInt(width, 64, 7680)
	globalRenderSettings.windowHeight = clampInt(height, 64, 4320)
}

// GetFOV returns the vertical field of view in degrees
func GetFOV() float32 {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.fov
}

// SetFOV sets the vertical field of view in degrees
func SetFOV(fov float32) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()

	// Clamp to reasonable values
	if fov < 30 {
		fov = 30
	}
	if fov > 120 {
		fov = 120
	}

	globalRenderSettings.fov = fov
}

// GetFramesInFlight returns how many frames the CPU may record ahead of the GPU
func GetFramesInFlight() int {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.framesInFlight
}

// SetFramesInFlight sets the frames in flight, between 1 and 3
func SetFramesInFlight(n int) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.framesInFlight = clampInt(n, 1, 3)
}

// GetValidation returns whether the Vulkan validation layer is requested
func GetValidation() bool {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.validation
}

// SetValidation enables or disables the validation layer
func SetValidation(enabled bool) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.validation = enabled
}

// GetWireframe returns whether faces are drawn as outlines
func GetWireframe() bool {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.wireframe
}

// SetWireframe sets line rasterization
func SetWireframe(enabled bool) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.wireframe = enabled
}

// GetVSync returns whether presentation waits for vertical blank
func GetVSync() bool {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.vsync
}

// SetVSync sets vertical sync
func SetVSync(enabled bool) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.vsync = enabled
}

// GetFPSLimit returns the frame cap, 0 for unlimited
func GetFPSLimit() int {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.fpsLimit
}

// SetFPSLimit sets the frame cap. Negative values disable it.
func SetFPSLimit(fps int) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	if fps < 0 {
		fps = 0
	}
	if fps > 1000 {
		fps = 1000
	}
	globalRenderSettings.fpsLimit = fps
}

// GetShaderDir returns the directory holding compiled SPIR-V; empty means
// the shaders built into the binary
func GetShaderDir() string {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.shaderDir
}

// SetShaderDir sets the SPIR-V directory; empty selects the built-in shaders
func SetShaderDir(dir string) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.shaderDir = dir
}

// GetMoveSpeed returns the camera speed in voxels per second
func GetMoveSpeed() float32 {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.moveSpeed
}

// SetMoveSpeed sets the camera speed
func SetMoveSpeed(speed float32) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	if speed < 1 {
		speed = 1
	}
	if speed > 500 {
		speed = 500
	}
	globalRenderSettings.moveSpeed = speed
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
