package input

import (
	"sync"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

// Action represents a logical client action, not a physical key
type Action int

// Action constants using iota
const (
	ActionMoveForward Action = iota
	ActionMoveBackward
	ActionMoveLeft
	ActionMoveRight
	ActionMoveUp
	ActionMoveDown
	ActionReleaseCursor
	ActionPlaceVoxel
	ActionRemoveVoxel
	ActionToggleProfiling
	ActionMouseLeft
	ActionMouseRight
	ActionCount // Sentinel value for array sizing
)

// Mode decides where mouse input goes.
type Mode int

const (
	// ModeCamera hides and captures the cursor; motion turns the camera.
	ModeCamera Mode = iota
	// ModeMouse frees the cursor; the camera ignores input.
	ModeMouse
)

func (m Mode) String() string {
	if m == ModeMouse {
		return "mouse"
	}
	return "camera"
}

// MouseDivisor scales raw cursor motion into camera rotation (radians per pixel = 1/60).
// The sign makes rightward and downward motion turn right and look down.
const MouseDivisor = -60

// State is one frame's worth of input.
type State struct {
	// Elapsed is the time since the previous frame.
	Elapsed time.Duration
	// MouseRel is cursor motion since the previous frame, already divided by MouseDivisor.
	MouseRel mgl32.Vec2
	// Move is (forward-backward, left-right, up-down) in the camera's move basis.
	Move mgl32.Vec3
	// Resized reports a framebuffer size change since the previous frame.
	Resized bool
	// Quit reports that the window was asked to close.
	Quit bool
}

// InputManager manages keyboard and mouse input state and maps physical keys/buttons to logical actions
type InputManager struct {
	mu sync.RWMutex

	// Key to action mapping (one key can map to multiple actions)
	keyToActions map[glfw.Key][]Action

	// Mouse button to action mapping
	mouseButtonToActions map[glfw.MouseButton][]Action

	// Current frame state (indexed by Action)
	currentState [ActionCount]bool

	// Just pressed flags (reset each frame)
	justPressed [ActionCount]bool

	mode         Mode
	onModeChange func(Mode)

	cursorX, cursorY float64
	hasCursor        bool
	mouseDX, mouseDY float64

	resized bool
	quit    bool
}

// NewInputManager creates a new InputManager with default key bindings
func NewInputManager() *InputManager {
	im := &InputManager{
		keyToActions:         make(map[glfw.Key][]Action),
		mouseButtonToActions: make(map[glfw.MouseButton][]Action),
	}

	// Set default key bindings
	im.BindKey(glfw.KeyW, ActionMoveForward)
	im.BindKey(glfw.KeyS, ActionMoveBackward)
	im.BindKey(glfw.KeyA, ActionMoveLeft)
	im.BindKey(glfw.KeyD, ActionMoveRight)
	im.BindKey(glfw.KeySpace, ActionMoveUp)
	im.BindKey(glfw.KeyLeftShift, ActionMoveDown)
	im.BindKey(glfw.KeyEscape, ActionReleaseCursor)
	im.BindKey(glfw.KeyB, ActionPlaceVoxel)
	im.BindKey(glfw.KeyX, ActionRemoveVoxel)
	im.BindKey(glfw.KeyV, ActionToggleProfiling)

	// Set default mouse button bindings
	im.BindMouseButton(glfw.MouseButtonLeft, ActionMouseLeft)
	im.BindMouseButton(glfw.MouseButtonRight, ActionMouseRight)

	return im
}

// BindKey binds a physical key to a logical action
// Multiple keys can be bound to the same action (e.g., WASD and arrow keys)
func (im *InputManager) BindKey(key glfw.Key, action Action) {
	im.mu.Lock()
	defer im.mu.Unlock()

	if action < 0 || action >= ActionCount {
		return
	}

	im.keyToActions[key] = append(im.keyToActions[key], action)
}

// UnbindKey removes all action bindings for a key
func (im *InputManager) UnbindKey(key glfw.Key) {
	im.mu.Lock()
	defer im.mu.Unlock()

	delete(im.keyToActions, key)
}

// BindMouseButton binds a mouse button to a logical action
func (im *InputManager) BindMouseButton(button glfw.MouseButton, action Action) {
	im.mu.Lock()
	defer im.mu.Unlock()

	if action < 0 || action >= ActionCount {
		return
	}

	im.mouseButtonToActions[button] = append(im.mouseButtonToActions[button], action)
}

// OnModeChange registers fn to run whenever the input mode switches,
// typically to grab or release the cursor.
func (im *InputManager) OnModeChange(fn func(Mode)) {
	im.mu.Lock()
	im.onModeChange = fn
	im.mu.Unlock()
}

// Mode returns the current input mode.
func (im *InputManager) Mode() Mode {
	im.mu.RLock()
	defer im.mu.RUnlock()
	return im.mode
}

// SetMode switches input mode and notifies the mode change hook.
func (im *InputManager) SetMode(m Mode) {
	im.mu.Lock()
	changed := im.mode != m
	im.mode = m
	// Forget the cursor so the switch does not register as motion.
	im.hasCursor = false
	im.mouseDX, im.mouseDY = 0, 0
	fn := im.onModeChange
	im.mu.Unlock()

	if changed && fn != nil {
		fn(m)
	}
}

// HandleKeyEvent processes a key event and updates internal state
// This can be called from a custom key callback
func (im *InputManager) HandleKeyEvent(key glfw.Key, action glfw.Action) {
	im.mu.RLock()
	actions, exists := im.keyToActions[key]
	im.mu.RUnlock()

	if !exists {
		return
	}

	im.apply(actions, action == glfw.Press || action == glfw.Repeat)

	if action == glfw.Press && im.JustPressed(ActionReleaseCursor) {
		im.SetMode(ModeMouse)
	}
}

// HandleMouseButtonEvent processes a mouse button event and updates internal state
// This can be called from a custom mouse button callback
func (im *InputManager) HandleMouseButtonEvent(button glfw.MouseButton, action glfw.Action) {
	im.mu.RLock()
	actions, exists := im.mouseButtonToActions[button]
	im.mu.RUnlock()

	if !exists {
		return
	}

	im.apply(actions, action == glfw.Press)

	if action == glfw.Press && button == glfw.MouseButtonLeft && im.Mode() == ModeMouse {
		im.SetMode(ModeCamera)
	}
}

func (im *InputManager) apply(actions []Action, isPressed bool) {
	im.mu.Lock()
	defer im.mu.Unlock()
	for _, act := range actions {
		if act >= 0 && act < ActionCount {
			// Detect edges immediately when event arrives
			if isPressed && !im.currentState[act] {
				im.justPressed[act] = true
			}
			im.currentState[act] = isPressed
		}
	}
}

// HandleCursorPos accumulates cursor motion. Motion only counts in camera mode.
func (im *InputManager) HandleCursorPos(x, y float64) {
	im.mu.Lock()
	defer im.mu.Unlock()
	if im.hasCursor && im.mode == ModeCamera {
		im.mouseDX += x - im.cursorX
		im.mouseDY += y - im.cursorY
	}
	im.cursorX, im.cursorY = x, y
	im.hasCursor = true
}

// HandleResize records a framebuffer size change.
func (im *InputManager) HandleResize() {
	im.mu.Lock()
	im.resized = true
	im.mu.Unlock()
}

// HandleClose records a close request.
func (im *InputManager) HandleClose() {
	im.mu.Lock()
	im.quit = true
	im.mu.Unlock()
}

// Install registers GLFW callbacks for this input manager on window.
// This should be called once during initialization
func (im *InputManager) Install(window *glfw.Window) {
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		im.HandleKeyEvent(key, action)
	})
	window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		im.HandleMouseButtonEvent(button, action)
	})
	window.SetCursorPosCallback(func(w *glfw.Window, x, y float64) {
		im.HandleCursorPos(x, y)
	})
	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		im.HandleResize()
	})
	window.SetCloseCallback(func(w *glfw.Window) {
		im.HandleClose()
	})
}

// Frame returns the input gathered since the previous call and resets the
// per-frame accumulators and edge flags.
func (im *InputManager) Frame(elapsed time.Duration) State {
	im.mu.Lock()
	defer im.mu.Unlock()

	s := State{
		Elapsed: elapsed,
		Resized: im.resized,
		Quit:    im.quit,
	}
	if im.mode == ModeCamera {
		s.MouseRel = mgl32.Vec2{float32(im.mouseDX / MouseDivisor), float32(im.mouseDY / MouseDivisor)}
		s.Move = mgl32.Vec3{
			axis(im.currentState[ActionMoveForward], im.currentState[ActionMoveBackward]),
			axis(im.currentState[ActionMoveLeft], im.currentState[ActionMoveRight]),
			axis(im.currentState[ActionMoveUp], im.currentState[ActionMoveDown]),
		}
	}

	im.mouseDX, im.mouseDY = 0, 0
	im.resized = false
	return s
}

func axis(pos, neg bool) float32 {
	var v float32
	if pos {
		v++
	}
	if neg {
		v--
	}
	return v
}

// PostUpdate must be called at the end of each frame to update edge detection states
// This should be called after all input checks are done
func (im *InputManager) PostUpdate() {
	im.mu.Lock()
	defer im.mu.Unlock()

	// Reset edge flags
	for i := range ActionCount {
		im.justPressed[i] = false
	}
}

// JustPressed returns true only if the action was pressed in the current frame
func (im *InputManager) JustPressed(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}

	im.mu.RLock()
	defer im.mu.RUnlock()

	return im.justPressed[action]
}
