package game

import (
	"fmt"
	"log"
	"time"

	"voxel-render/internal/config"
	"voxel-render/internal/graphics"
	"voxel-render/internal/graphics/renderables/voxels"
	"voxel-render/internal/graphics/surface"
	"voxel-render/internal/graphics/vulkan"
	"voxel-render/internal/input"
	"voxel-render/internal/profiling"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
)

// slowFrame is two refresh intervals at 60 Hz; FIFO presentation alone
// can hold a frame for one.
const slowFrame = 33 * time.Millisecond

// App owns the window, the Vulkan objects and the loaded session, and runs
// the frame loop.
type App struct {
	window       *glfw.Window
	inputManager *input.InputManager

	instance  *vulkan.Instance
	swapchain *surface.Swapchain
	renderer  *voxels.Renderer
	store     *voxels.MeshStore

	session *Session

	fpsLimiter       *FPSLimiter
	lastTime         time.Time
	frames           int
	lastFPSCheckTime time.Time
}

// NewApp brings up the device, surface, pipeline and scene for window.
// On error everything created so far is released.
func NewApp(window *glfw.Window, im *input.InputManager) (*App, error) {
	var rel vulkan.Releaser
	ok := false
	defer func() {
		if !ok {
			rel.Release()
		}
	}()

	inst, err := vulkan.NewInstance(window, vulkan.Options{
		AppName:    "voxel-render",
		Validation: config.GetValidation(),
		Wireframe:  config.GetWireframe(),
	})
	if err != nil {
		return nil, fmt.Errorf("create vulkan instance: %w", err)
	}
	rel.Defer(inst.Destroy)

	w, h := window.GetFramebufferSize()
	sc, err := surface.New(inst, uint32(w), uint32(h), surface.Options{
		FramesInFlight: config.GetFramesInFlight(),
		VSync:          config.GetVSync(),
		ClearColor:     [4]float32{0.53, 0.81, 0.92, 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create swapchain: %w", err)
	}
	rel.Defer(sc.Destroy)

	r, err := voxels.NewRenderer(inst, sc.Target(), voxels.ShadersIn(config.GetShaderDir()), voxels.Options{
		FOV:       config.GetFOV(),
		Wireframe: inst.SupportsWireframe(),
	})
	if err != nil {
		return nil, fmt.Errorf("create voxel renderer: %w", err)
	}
	rel.Defer(r.Destroy)

	obj, err := LoadWorld()
	if err != nil {
		return nil, err
	}
	store := voxels.NewMeshStore(inst.Allocator())
	store.SetFramesInFlight(sc.FramesInFlight())
	rel.Defer(func() {
		if err := store.Destroy(); err != nil {
			log.Printf("Free meshes: %v", err)
		}
	})

	cam := graphics.DefaultCamera()
	cam.Speed = config.GetMoveSpeed()
	session, err := NewSession(obj, store, cam)
	if err != nil {
		return nil, err
	}

	im.OnModeChange(func(m input.Mode) {
		if m == input.ModeMouse {
			window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
			ww, wh := window.GetSize()
			window.SetCursorPos(float64(ww)/2, float64(wh)/2)
		} else {
			window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
		}
	})

	ok = true
	now := time.Now()
	return &App{
		window:           window,
		inputManager:     im,
		instance:         inst,
		swapchain:        sc,
		renderer:         r,
		store:            store,
		session:          session,
		fpsLimiter:       NewFPSLimiter(),
		lastTime:         now,
		lastFPSCheckTime: now,
	}, nil
}

// Run drives frames until the window closes or a frame fails.
func (a *App) Run() error {
	for !a.window.ShouldClose() {
		if err := a.tick(); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) tick() error {
	profiling.ResetFrame()
	startTick := time.Now() // Measure pure processing time
	dt := startTick.Sub(a.lastTime)
	a.lastTime = startTick

	glfw.PollEvents()
	st := a.inputManager.Frame(dt)
	if st.Quit {
		a.window.SetShouldClose(true)
		return nil
	}

	if err := a.session.Update(st, a.inputManager); err != nil {
		return err
	}
	rendered, err := a.swapchain.Render(func(cmd vk.CommandBuffer) {
		a.renderer.Render(voxels.Record(cmd), a.store, a.session.Camera)
	})
	if err != nil {
		return fmt.Errorf("render frame: %w", err)
	}
	if err := a.store.EndFrame(); err != nil {
		return err
	}
	if !rendered || st.Resized {
		if err := a.rebuild(); err != nil {
			return err
		}
	}

	if a.inputManager.JustPressed(input.ActionToggleProfiling) {
		log.Printf("Frame tasks: %s", profiling.TopN(8))
	}

	// Check if frame took too long
	processingDuration := time.Since(startTick)
	if processingDuration > slowFrame {
		log.Printf("Slow frame: %v (surface %v). Top tasks: %s",
			processingDuration, profiling.SumWithPrefix("surface."), profiling.TopN(5))
	}

	a.inputManager.PostUpdate() // Clear "JustPressed" flags

	a.frames++
	if time.Since(a.lastFPSCheckTime) >= time.Second {
		log.Printf("FPS: %d", a.frames)
		a.frames = 0
		a.lastFPSCheckTime = time.Now()
	}

	a.fpsLimiter.Wait(a.inputManager.Mode() == input.ModeMouse)
	return nil
}

// rebuild recreates the swapchain and the pipeline for the current
// framebuffer size. A minimized window blocks here until it has area again.
func (a *App) rebuild() error {
	w, h := a.window.GetFramebufferSize()
	for w == 0 || h == 0 {
		if a.window.ShouldClose() {
			return nil
		}
		glfw.WaitEvents()
		w, h = a.window.GetFramebufferSize()
	}

	if err := a.instance.WaitIdle(); err != nil {
		return fmt.Errorf("wait idle before rebuild: %w", err)
	}
	if err := a.store.ReleaseRetired(); err != nil {
		return err
	}
	if err := a.swapchain.Rebuild(uint32(w), uint32(h)); err != nil {
		return fmt.Errorf("rebuild swapchain: %w", err)
	}
	if err := a.renderer.Rebuild(a.swapchain.Target()); err != nil {
		return fmt.Errorf("rebuild voxel pipeline: %w", err)
	}
	return nil
}

// Destroy waits for the GPU and releases everything in reverse creation order.
func (a *App) Destroy() {
	if err := a.instance.WaitIdle(); err != nil {
		log.Printf("Wait idle on shutdown: %v", err)
	}
	if err := a.session.Cleanup(); err != nil {
		log.Printf("Free meshes: %v", err)
	}
	a.renderer.Destroy()
	a.swapchain.Destroy()
	a.instance.Destroy()
}
