package surface

import (
	vk "github.com/vulkan-go/vulkan"

	"voxel-render/internal/graphics/vulkan"
)

// DepthFormat is the depth attachment format.
const DepthFormat = vk.FormatD32Sfloat

type support struct {
	caps    vk.SurfaceCapabilities
	formats []vk.SurfaceFormat
	modes   []vk.PresentMode
}

func querySupport(physical vk.PhysicalDevice, surface vk.Surface) (support, error) {
	var s support
	if err := vulkan.Check("vkGetPhysicalDeviceSurfaceCapabilitiesKHR",
		vk.GetPhysicalDeviceSurfaceCapabilities(physical, surface, &s.caps)); err != nil {
		return s, err
	}
	s.caps.Deref()
	s.caps.CurrentExtent.Deref()
	s.caps.MinImageExtent.Deref()
	s.caps.MaxImageExtent.Deref()

	var n uint32
	if err := vulkan.Check("vkGetPhysicalDeviceSurfaceFormatsKHR",
		vk.GetPhysicalDeviceSurfaceFormats(physical, surface, &n, nil)); err != nil {
		return s, err
	}
	s.formats = make([]vk.SurfaceFormat, n)
	vk.GetPhysicalDeviceSurfaceFormats(physical, surface, &n, s.formats)
	for i := range s.formats {
		s.formats[i].Deref()
	}

	n = 0
	if err := vulkan.Check("vkGetPhysicalDeviceSurfacePresentModesKHR",
		vk.GetPhysicalDeviceSurfacePresentModes(physical, surface, &n, nil)); err != nil {
		return s, err
	}
	s.modes = make([]vk.PresentMode, n)
	vk.GetPhysicalDeviceSurfacePresentModes(physical, surface, &n, s.modes)
	return s, nil
}

// chooseFormat prefers 8-bit BGRA sRGB, else the first reported format.
func chooseFormat(formats []vk.SurfaceFormat) vk.SurfaceFormat {
	for _, f := range formats {
		if f.Format == vk.FormatB8g8r8a8Srgb && f.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return f
		}
	}
	if len(formats) == 0 {
		return vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear}
	}
	return formats[0]
}

// choosePresentMode prefers mailbox (triple buffering); FIFO is always available.
func choosePresentMode(modes []vk.PresentMode, vsync bool) vk.PresentMode {
	if vsync {
		return vk.PresentModeFifo
	}
	for _, m := range modes {
		if m == vk.PresentModeMailbox {
			return m
		}
	}
	return vk.PresentModeFifo
}

// chooseExtent clamps the requested size to the surface limits.
func chooseExtent(min, max vk.Extent2D, width, height uint32) vk.Extent2D {
	return vk.Extent2D{
		Width:  clampU32(width, min.Width, max.Width),
		Height: clampU32(height, min.Height, max.Height),
	}
}

// chooseImageCount asks for one image more than the minimum. A max of 0
// means no limit.
func chooseImageCount(min, max uint32) uint32 {
	n := min + 1
	if max != 0 && n > max {
		n = max
	}
	return n
}

func chooseCompositeAlpha(supported vk.CompositeAlphaFlags) vk.CompositeAlphaFlagBits {
	for _, a := range []vk.CompositeAlphaFlagBits{
		vk.CompositeAlphaOpaqueBit,
		vk.CompositeAlphaPreMultipliedBit,
		vk.CompositeAlphaPostMultipliedBit,
		vk.CompositeAlphaInheritBit,
	} {
		if supported&vk.CompositeAlphaFlags(a) != 0 {
			return a
		}
	}
	return vk.CompositeAlphaOpaqueBit
}

func clampU32(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
