package surface

import (
	"fmt"
	"log"

	vk "github.com/vulkan-go/vulkan"

	"voxel-render/internal/graphics/vulkan"
	"voxel-render/internal/profiling"
)

// State is the presentation surface lifecycle.
type State int

const (
	Building State = iota
	Ready
	Rendering
	Invalidated
	Destroyed
)

func (s State) String() string {
	switch s {
	case Building:
		return "building"
	case Ready:
		return "ready"
	case Rendering:
		return "rendering"
	case Invalidated:
		return "invalidated"
	case Destroyed:
		return "destroyed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Options configures the swapchain.
type Options struct {
	// FramesInFlight is the number of frame slots, clamped to 1..3.
	FramesInFlight int
	// VSync forces FIFO presentation instead of mailbox.
	VSync      bool
	ClearColor [4]float32
}

// DefaultFramesInFlight is the usual double-buffered submission depth.
const DefaultFramesInFlight = 2

// Target is what a pipeline needs from the surface: the render pass it
// draws in and the viewport extent.
type Target struct {
	RenderPass vk.RenderPass
	Extent     vk.Extent2D
}

// Aspect returns width / height.
func (t Target) Aspect() float32 {
	if t.Extent.Height == 0 {
		return 1
	}
	return float32(t.Extent.Width) / float32(t.Extent.Height)
}

// Swapchain owns the presentable images, depth buffer, framebuffers and
// frame-in-flight ring for one window surface.
type Swapchain struct {
	dev   vulkan.PresentDevice
	opts  Options
	res   *resources
	ring  *frameRing
	state State
}

// New builds a swapchain for the device's surface at the given size.
func New(dev vulkan.PresentDevice, width, height uint32, opts Options) (*Swapchain, error) {
	opts.FramesInFlight = clampFrames(opts.FramesInFlight)
	s := &Swapchain{dev: dev, opts: opts, state: Building}
	var none vk.Swapchain
	res, err := buildResources(dev, width, height, none, opts)
	if err != nil {
		return nil, err
	}
	s.install(res)
	return s, nil
}

func clampFrames(n int) int {
	if n <= 0 {
		return DefaultFramesInFlight
	}
	if n > 3 {
		return 3
	}
	return n
}

func (s *Swapchain) install(res *resources) {
	s.res = res
	s.ring = newFrameRing(res, len(res.frames), len(res.images))
	s.state = Ready
	log.Printf("surface: %dx%d, %d images, format %d, present mode %d, %d frames in flight",
		res.extent.Width, res.extent.Height, len(res.images), res.format.Format, res.presentMode, len(res.frames))
}

// Render runs one frame, calling record between render pass begin and end.
// It returns false when the surface is out of date; the caller must wait
// for the device to go idle and call Rebuild. Any error is fatal.
func (s *Swapchain) Render(record func(vk.CommandBuffer)) (bool, error) {
	defer profiling.Track("surface.Render")()
	switch s.state {
	case Invalidated:
		return false, nil
	case Ready:
	default:
		return false, fmt.Errorf("surface: render in state %s", s.state)
	}
	s.state = Rendering
	ok, err := s.ring.render(record)
	if err != nil {
		s.state = Invalidated
		return false, err
	}
	if !ok {
		s.state = Invalidated
		return false, nil
	}
	s.state = Ready
	return true, nil
}

// Rebuild replaces every size-dependent resource. The replacement is built
// first, against the old swapchain, and only then is the old state
// destroyed. The device must be idle.
func (s *Swapchain) Rebuild(width, height uint32) error {
	defer profiling.Track("surface.Rebuild")()
	if s.state == Destroyed {
		return fmt.Errorf("surface: rebuild after destroy")
	}
	prev := s.state
	s.state = Building
	res, err := buildResources(s.dev, width, height, s.res.swapchain, s.opts)
	if err != nil {
		s.state = prev
		return err
	}
	old := s.res
	s.install(res)
	old.destroy()
	return nil
}

// Target returns the current render pass and extent.
func (s *Swapchain) Target() Target {
	return Target{RenderPass: s.res.renderPass, Extent: s.res.extent}
}

// FramesInFlight returns the number of frame slots.
func (s *Swapchain) FramesInFlight() int {
	return s.opts.FramesInFlight
}

// State returns the lifecycle state.
func (s *Swapchain) State() State {
	return s.state
}

// Destroy releases all surface resources. The device must be idle.
func (s *Swapchain) Destroy() {
	if s.state == Destroyed {
		return
	}
	s.res.destroy()
	s.res = nil
	s.ring = nil
	s.state = Destroyed
}
