package vulkan

import "testing"

func TestReleaserOrderAndIdempotence(t *testing.T) {
	var rel Releaser
	var order []int
	for i := range 3 {
		rel.Defer(func() { order = append(order, i) })
	}
	if rel.Len() != 3 {
		t.Fatalf("pending: got %d, want 3", rel.Len())
	}
	rel.Release()
	rel.Release()
	if len(order) != 3 || order[0] != 2 || order[1] != 1 || order[2] != 0 {
		t.Fatalf("release order: got %v, want [2 1 0]", order)
	}
	if rel.Len() != 0 {
		t.Fatalf("pending after release: got %d", rel.Len())
	}
}
