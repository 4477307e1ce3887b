package surface

import (
	"errors"
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// ErrSurfaceInvalid is returned by acquire when the surface is out of date
// and by present when it is out of date or suboptimal. Render turns it into
// a false return.
var ErrSurfaceInvalid = errors.New("surface: out of date")

// frameBackend is the device side of the frame protocol, addressed by slot
// index. The Vulkan implementation lives in sync.go; tests use a fake.
type frameBackend interface {
	// waitSlot blocks until the slot's in-flight fence is signaled.
	waitSlot(slot int) error
	// resetSlot unsignals the slot's fence ahead of submission.
	resetSlot(slot int) error
	// acquire returns the next presentable image, signaling the slot's
	// image-available semaphore.
	acquire(slot int) (uint32, error)
	// record fills the slot's command buffer with one render pass over image.
	record(slot int, image uint32, fn func(vk.CommandBuffer)) error
	// submit queues the slot's command buffer, fenced by its in-flight fence.
	submit(slot int) error
	// present queues image for display after the slot's render finishes.
	present(slot int, image uint32) error
}

// frameRing drives acquire, record, submit and present over N frame slots.
// imageOwner tracks which slot last rendered each swapchain image (-1: none).
type frameRing struct {
	backend    frameBackend
	slots      int
	current    int
	imageOwner []int
}

func newFrameRing(backend frameBackend, slots, images int) *frameRing {
	owners := make([]int, images)
	for i := range owners {
		owners[i] = -1
	}
	return &frameRing{
		backend:    backend,
		slots:      slots,
		current:    slots - 1,
		imageOwner: owners,
	}
}

// render runs one frame. It returns false when the surface must be rebuilt.
func (r *frameRing) render(fn func(vk.CommandBuffer)) (bool, error) {
	r.current = (r.current + 1) % r.slots
	slot := r.current

	// At most N frames ahead of the GPU.
	if err := r.backend.waitSlot(slot); err != nil {
		return false, fmt.Errorf("wait frame %d: %w", slot, err)
	}

	image, err := r.backend.acquire(slot)
	if errors.Is(err, ErrSurfaceInvalid) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("acquire image: %w", err)
	}
	if int(image) >= len(r.imageOwner) {
		return false, fmt.Errorf("acquire image: index %d out of range (%d images)", image, len(r.imageOwner))
	}

	// Another slot may still be drawing into this image.
	if owner := r.imageOwner[image]; owner >= 0 && owner != slot {
		if err := r.backend.waitSlot(owner); err != nil {
			return false, fmt.Errorf("wait image %d owner %d: %w", image, owner, err)
		}
	}
	r.imageOwner[image] = slot

	if err := r.backend.record(slot, image, fn); err != nil {
		return false, fmt.Errorf("record frame: %w", err)
	}
	if err := r.backend.resetSlot(slot); err != nil {
		return false, fmt.Errorf("reset fence: %w", err)
	}
	if err := r.backend.submit(slot); err != nil {
		return false, fmt.Errorf("submit frame: %w", err)
	}

	err = r.backend.present(slot, image)
	if errors.Is(err, ErrSurfaceInvalid) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("present: %w", err)
	}
	return true, nil
}
