package input

import (
	"testing"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

func TestMoveVector(t *testing.T) {
	im := NewInputManager()
	im.HandleKeyEvent(glfw.KeyW, glfw.Press)
	im.HandleKeyEvent(glfw.KeyD, glfw.Press)
	im.HandleKeyEvent(glfw.KeySpace, glfw.Press)

	s := im.Frame(time.Millisecond)
	if want := (mgl32.Vec3{1, -1, 1}); s.Move != want {
		t.Fatalf("move: got %v, want %v", s.Move, want)
	}

	im.HandleKeyEvent(glfw.KeyS, glfw.Press)
	im.HandleKeyEvent(glfw.KeySpace, glfw.Release)
	im.HandleKeyEvent(glfw.KeyLeftShift, glfw.Press)
	s = im.Frame(time.Millisecond)
	if want := (mgl32.Vec3{0, -1, -1}); s.Move != want {
		t.Fatalf("move: got %v, want %v", s.Move, want)
	}
}

func TestEscapeReleasesCursor(t *testing.T) {
	im := NewInputManager()
	var modes []Mode
	im.OnModeChange(func(m Mode) { modes = append(modes, m) })

	im.HandleKeyEvent(glfw.KeyW, glfw.Press)
	im.HandleKeyEvent(glfw.KeyEscape, glfw.Press)
	if im.Mode() != ModeMouse {
		t.Fatalf("mode after escape: got %v, want %v", im.Mode(), ModeMouse)
	}
	im.HandleCursorPos(0, 0)
	im.HandleCursorPos(100, 100)
	s := im.Frame(time.Millisecond)
	if s.Move != (mgl32.Vec3{}) || s.MouseRel != (mgl32.Vec2{}) {
		t.Fatalf("mouse mode leaked input: move %v, mouse %v", s.Move, s.MouseRel)
	}

	im.HandleMouseButtonEvent(glfw.MouseButtonLeft, glfw.Press)
	if im.Mode() != ModeCamera {
		t.Fatalf("mode after click: got %v, want %v", im.Mode(), ModeCamera)
	}
	if len(modes) != 2 || modes[0] != ModeMouse || modes[1] != ModeCamera {
		t.Fatalf("mode changes: got %v", modes)
	}
}

func TestClickInCameraModeKeepsMode(t *testing.T) {
	im := NewInputManager()
	calls := 0
	im.OnModeChange(func(Mode) { calls++ })
	im.HandleMouseButtonEvent(glfw.MouseButtonLeft, glfw.Press)
	if calls != 0 {
		t.Fatalf("mode change hook ran %d times", calls)
	}
}

func TestMouseDelta(t *testing.T) {
	im := NewInputManager()
	im.HandleCursorPos(10, 10)
	im.HandleCursorPos(70, 40)
	im.HandleCursorPos(130, 40)

	s := im.Frame(time.Millisecond)
	want := mgl32.Vec2{-2, -0.5}
	if !s.MouseRel.ApproxEqual(want) {
		t.Fatalf("mouse: got %v, want %v", s.MouseRel, want)
	}
	if s = im.Frame(time.Millisecond); s.MouseRel != (mgl32.Vec2{}) {
		t.Fatalf("mouse not reset: %v", s.MouseRel)
	}
}

func TestModeSwitchDropsStaleCursor(t *testing.T) {
	im := NewInputManager()
	im.HandleCursorPos(0, 0)
	im.HandleKeyEvent(glfw.KeyEscape, glfw.Press)
	im.HandleMouseButtonEvent(glfw.MouseButtonLeft, glfw.Press)
	im.HandleCursorPos(500, 500)
	if s := im.Frame(time.Millisecond); s.MouseRel != (mgl32.Vec2{}) {
		t.Fatalf("first position after capture produced motion: %v", s.MouseRel)
	}
}

func TestResizeAndQuit(t *testing.T) {
	im := NewInputManager()
	im.HandleResize()
	s := im.Frame(time.Millisecond)
	if !s.Resized {
		t.Fatal("resize not reported")
	}
	if im.Frame(time.Millisecond).Resized {
		t.Fatal("resize reported twice")
	}
	im.HandleClose()
	if !im.Frame(0).Quit || !im.Frame(0).Quit {
		t.Fatal("quit must stick")
	}
}

func TestJustPressed(t *testing.T) {
	im := NewInputManager()
	im.HandleKeyEvent(glfw.KeyB, glfw.Press)
	if !im.JustPressed(ActionPlaceVoxel) || !im.currentState[ActionPlaceVoxel] {
		t.Fatal("place not pressed")
	}
	im.PostUpdate()
	if im.JustPressed(ActionPlaceVoxel) {
		t.Fatal("edge survived PostUpdate")
	}
	im.HandleKeyEvent(glfw.KeyB, glfw.Repeat)
	if im.JustPressed(ActionPlaceVoxel) {
		t.Fatal("repeat counted as a new press")
	}
	im.HandleKeyEvent(glfw.KeyB, glfw.Release)
	if im.currentState[ActionPlaceVoxel] {
		t.Fatal("place still held after release")
	}
}

func TestUnbindKey(t *testing.T) {
	im := NewInputManager()
	im.BindKey(glfw.KeyUp, ActionMoveForward)
	im.HandleKeyEvent(glfw.KeyUp, glfw.Press)
	if im.Frame(0).Move[0] != 1 {
		t.Fatal("extra binding ignored")
	}
	im.UnbindKey(glfw.KeyW)
	im.HandleKeyEvent(glfw.KeyW, glfw.Release)
	if im.Frame(0).Move[0] != 1 {
		t.Fatal("unbound key still drives action")
	}
}
