package vulkan

import (
	"errors"
	"fmt"
	"testing"

	vk "github.com/vulkan-go/vulkan"
)

func TestCheck(t *testing.T) {
	if err := Check("vkCreateFence", vk.Success); err != nil {
		t.Fatalf("Check(Success): got %v, want nil", err)
	}
	err := Check("vkAllocateMemory", vk.ErrorOutOfDeviceMemory)
	if err == nil {
		t.Fatal("Check(ErrorOutOfDeviceMemory): got nil")
	}
	want := "vkAllocateMemory failed: vulkan error: out of device memory (-2)"
	if err.Error() != want {
		t.Fatalf("message: got %q, want %q", err.Error(), want)
	}
}

func TestCheckNamesEveryResult(t *testing.T) {
	for _, res := range []vk.Result{vk.ErrorTooManyObjects, vk.ErrorFormatNotSupported, vk.ErrorNativeWindowInUse} {
		err := Check("vkCreateSwapchainKHR", res)
		if !errors.Is(err, vk.Error(res)) {
			t.Errorf("Check(%d): %v does not unwrap to %v", res, err, vk.Error(res))
		}
	}
	err := fmt.Errorf("build swapchain: %w", Check("vkQueueSubmit", vk.ErrorDeviceLost))
	if !errors.Is(err, vk.Error(vk.ErrorDeviceLost)) {
		t.Fatal("wrapped device lost does not unwrap")
	}
}

func TestIsResultThroughWrap(t *testing.T) {
	err := fmt.Errorf("upload chunk: %w", Check("vkQueuePresentKHR", vk.ErrorOutOfDate))
	if !IsResult(err, vk.ErrorOutOfDate) {
		t.Fatal("IsResult did not see the wrapped result")
	}
	if IsResult(err, vk.ErrorDeviceLost) {
		t.Fatal("IsResult matched the wrong result")
	}
	if IsResult(fmt.Errorf("plain"), vk.ErrorOutOfDate) {
		t.Fatal("IsResult matched a non-Vulkan error")
	}
}
