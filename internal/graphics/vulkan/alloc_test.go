package vulkan

import "testing"

func TestFreeUnknownBufferIsRejected(t *testing.T) {
	a := newDeviceAllocator(nil, nil)
	if err := a.Free(Buffer{ID: 99}); err == nil {
		t.Fatal("Free of a never-allocated buffer succeeded")
	}
	if a.Live() != 0 {
		t.Fatalf("live: got %d, want 0", a.Live())
	}
}

func TestCreateBufferRejectsEmpty(t *testing.T) {
	a := newDeviceAllocator(nil, nil)
	if _, err := a.CreateBuffer(0, 0, nil); err == nil {
		t.Fatal("zero-size buffer accepted")
	}
}
