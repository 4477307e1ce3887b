package voxels

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/vulkan-go/vulkan"

	"voxel-render/internal/graphics/surface"
	"voxel-render/internal/meshing"
	"voxel-render/internal/world"
)

type draw struct {
	matrix    mgl32.Mat4
	buffer    vk.Buffer
	vertices  uint32
	instances uint32
}

type fakeCommands struct {
	binds   int
	pending mgl32.Mat4
	draws   []draw
}

func (c *fakeCommands) BindPipeline(vk.Pipeline) { c.binds++ }
func (c *fakeCommands) PushMatrix(_ vk.PipelineLayout, m mgl32.Mat4) { c.pending = m }
func (c *fakeCommands) BindFaces(vk.Buffer) {}
func (c *fakeCommands) Draw(vertices, instances uint32) {
	c.draws = append(c.draws, draw{matrix: c.pending, vertices: vertices, instances: instances})
}

type fixedCamera mgl32.Mat4

func (c fixedCamera) LookMatrix() mgl32.Mat4 { return mgl32.Mat4(c) }

func testRenderer() *Renderer {
	return &Renderer{
		opts:   Options{FOV: 45},
		target: surface.Target{Extent: vk.Extent2D{Width: 1600, Height: 900}},
	}
}

func TestRenderDrawsEveryMesh(t *testing.T) {
	s := NewMeshStore(newFakeAllocator())
	o := world.NewSpheres()
	total := 0
	for _, m := range meshing.BuildAll(o) {
		total += len(m.Faces)
		if err := s.Upload(m); err != nil {
			t.Fatalf("upload: %v", err)
		}
	}
	// An empty chunk has an entry but no draw.
	if err := s.Upload(&meshing.Mesh{Coord: world.ChunkCoord{Z: -5}}); err != nil {
		t.Fatalf("upload empty: %v", err)
	}

	cmds := &fakeCommands{}
	testRenderer().Render(cmds, s, fixedCamera(mgl32.Ident4()))

	if cmds.binds != 1 {
		t.Fatalf("pipeline binds: got %d, want 1", cmds.binds)
	}
	if len(cmds.draws) != o.Len() {
		t.Fatalf("draws: got %d, want %d", len(cmds.draws), o.Len())
	}
	sum := 0
	for _, d := range cmds.draws {
		if d.vertices != 6 {
			t.Fatalf("vertices per instance: got %d, want 6", d.vertices)
		}
		sum += int(d.instances)
	}
	if sum != total {
		t.Fatalf("instances: got %d, want %d", sum, total)
	}
}

func TestRenderPushesProjectionViewModel(t *testing.T) {
	s := NewMeshStore(newFakeAllocator())
	coord := world.ChunkCoord{X: 1, Y: -1, Z: 2}
	m := &meshing.Mesh{Coord: coord, Faces: []meshing.MeshFace{{Voxel: 1}}}
	if err := s.Upload(m); err != nil {
		t.Fatalf("upload: %v", err)
	}
	view := mgl32.Translate3D(3, 4, -50)
	r := testRenderer()
	cmds := &fakeCommands{}
	r.Render(cmds, s, fixedCamera(view))

	if len(cmds.draws) != 1 {
		t.Fatalf("draws: got %d, want 1", len(cmds.draws))
	}
	want := r.Projection().Mul4(view).Mul4(coord.Transform())
	if !cmds.draws[0].matrix.ApproxEqual(want) {
		t.Fatalf("push constant:\ngot  %v\nwant %v", cmds.draws[0].matrix, want)
	}
}

func TestPerspectiveInfinite(t *testing.T) {
	p := PerspectiveInfinite(mgl32.DegToRad(90), 2, 0.1)

	depth := func(z float32) float32 {
		c := p.Mul4x1(mgl32.Vec4{0, 0, z, 1})
		return c.Z() / c.W()
	}
	if d := depth(-0.1); math.Abs(float64(d)) > 1e-6 {
		t.Errorf("depth at near plane: got %f, want 0", d)
	}
	if d := depth(-1e6); d <= 0.99 || d > 1 {
		t.Errorf("depth far away: got %f, want just under 1", d)
	}
	if depth(-10) >= depth(-20) {
		t.Error("depth not increasing with distance")
	}

	// Up in view space is -Y in Vulkan clip space.
	up := p.Mul4x1(mgl32.Vec4{0, 1, -1, 1})
	if up.Y()/up.W() >= 0 {
		t.Errorf("view +Y maps to clip y=%f, want negative", up.Y()/up.W())
	}
	// 90° vertical FOV: a point at 45° maps to the edge.
	edge := p.Mul4x1(mgl32.Vec4{0, 1, -1, 1})
	if !mgl32.FloatEqualThreshold(edge.Y()/edge.W(), -1, 1e-5) {
		t.Errorf("edge: got %f, want -1", edge.Y()/edge.W())
	}
	side := p.Mul4x1(mgl32.Vec4{2, 0, -1, 1})
	if !mgl32.FloatEqualThreshold(side.X()/side.W(), 1, 1e-5) {
		t.Errorf("aspect: got x=%f, want 1", side.X()/side.W())
	}
}

func TestShadersIn(t *testing.T) {
	s := ShadersIn("custom/shaders")
	if s.Vertex != "custom/shaders/voxel.vert.spv" || s.Fragment != "custom/shaders/voxel.frag.spv" {
		t.Fatalf("paths: got %+v", s)
	}
	if s := ShadersIn(""); s != (Shaders{}) {
		t.Fatalf("empty dir: got %+v, want built-in", s)
	}
}

func TestBuiltinShadersAreSPIRV(t *testing.T) {
	for name, code := range map[string][]byte{"vertex": builtinVertex, "fragment": builtinFragment} {
		if len(code) < 20 || len(code)%4 != 0 {
			t.Fatalf("%s: %d bytes is not a SPIR-V binary", name, len(code))
		}
		if magic := binary.LittleEndian.Uint32(code); magic != 0x07230203 {
			t.Fatalf("%s: magic got %#x, want 0x07230203", name, magic)
		}
	}
}
