package main

import (
	"flag"
	"log"
	"runtime"
	"sync"

	"voxel-render/internal/config"
	"voxel-render/internal/game"
	"voxel-render/internal/graphics/vulkan"
	"voxel-render/internal/input"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/xlab/closer"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	var (
		width      = flag.Int("width", 1280, "Window width")
		height     = flag.Int("height", 720, "Window height")
		fov        = flag.Float64("fov", 45, "Vertical field of view in degrees")
		frames     = flag.Int("frames", 2, "Frames in flight (1-3)")
		validation = flag.Bool("validation", false, "Enable the Vulkan validation layer")
		wireframe  = flag.Bool("wireframe", false, "Draw face outlines instead of filled faces")
		vsync      = flag.Bool("vsync", false, "Present with FIFO instead of mailbox")
		fps        = flag.Int("fps", 0, "FPS limit, 0 for unlimited")
		speed      = flag.Float64("speed", 30, "Camera speed in voxels per second")
		shaders    = flag.String("shaders", "", "Directory with compiled SPIR-V shaders (default: built in)")
		worldName  = flag.String("world", "spheres", "Startup world: spheres, terrain or heightmap")
		seed       = flag.Int64("seed", 1337, "Terrain seed")
		radius     = flag.Int("radius", 2, "Terrain radius in chunks")
		heightmap  = flag.String("heightmap", "", "Heightmap image for -world heightmap")
		hmSize     = flag.Int("heightmap-size", 0, "Resample the heightmap to N x N, 0 keeps its size")
		hmHeight   = flag.Int("heightmap-height", 64, "Column height of a white heightmap pixel")
	)
	flag.Parse()

	kind, err := config.ParseWorldKind(*worldName)
	if err != nil {
		log.Fatalln(err)
	}
	config.SetWindowSize(*width, *height)
	config.SetFOV(float32(*fov))
	config.SetFramesInFlight(*frames)
	config.SetValidation(*validation)
	config.SetWireframe(*wireframe)
	config.SetVSync(*vsync)
	config.SetFPSLimit(*fps)
	config.SetMoveSpeed(float32(*speed))
	config.SetShaderDir(*shaders)
	config.SetWorldKind(kind)
	config.SetSeed(*seed)
	config.SetTerrainRadius(*radius)
	config.SetHeightmap(*heightmap, *hmSize, *hmHeight)

	if err := glfw.Init(); err != nil {
		log.Fatalln(err)
	}
	if err := vulkan.Init(); err != nil {
		glfw.Terminate()
		log.Fatalln(err)
	}

	window, err := game.SetupWindow()
	if err != nil {
		glfw.Terminate()
		log.Fatalln(err)
	}

	// GLFW teardown must run on this thread, so an interrupt only asks the
	// loop to stop and waits for main to finish cleaning up.
	var (
		mu       sync.Mutex
		tornDown bool
		done     = make(chan struct{})
	)
	closer.Bind(func() {
		mu.Lock()
		if !tornDown {
			window.SetShouldClose(true)
			glfw.PostEmptyEvent()
		}
		mu.Unlock()
		<-done
	})
	defer closer.Close()

	im := input.NewInputManager()
	im.Install(window)

	app, err := game.NewApp(window, im)
	if err == nil {
		err = app.Run()
	}

	mu.Lock()
	tornDown = true
	mu.Unlock()
	if app != nil {
		app.Destroy()
	}
	window.Destroy()
	glfw.Terminate()
	close(done)

	if err != nil {
		closer.Fatalln(err)
	}
}
