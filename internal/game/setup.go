package game

import (
	"voxel-render/internal/config"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// SetupWindow creates a resizable window without a client API; Vulkan
// attaches its own surface to it.
func SetupWindow() (*glfw.Window, error) {
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	width, height := config.GetWindowSize()
	window, err := glfw.CreateWindow(width, height, "voxel-render", nil, nil)
	if err != nil {
		return nil, err
	}

	// Start in camera mode
	window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	if glfw.RawMouseMotionSupported() {
		window.SetInputMode(glfw.RawMouseMotion, glfw.True)
	}

	return window, nil
}
