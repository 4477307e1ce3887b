package game

import (
	"time"

	"voxel-render/internal/config"
)

// FPSLimiter provides high-precision frame rate limiting
type FPSLimiter struct {
	next time.Time
}

// NewFPSLimiter creates a new FPS limiter
func NewFPSLimiter() *FPSLimiter {
	return &FPSLimiter{}
}

// idleFPS caps the loop while the cursor is released and nothing moves.
const idleFPS = 120

// frameLimit is the cap applied to one frame; 0 means unlimited.
func frameLimit(configured int, idle bool) int {
	if idle && (configured <= 0 || configured > idleFPS) {
		return idleFPS
	}
	return configured
}

// Wait blocks until the next frame should be rendered based on the FPS limit.
// Uses a hybrid sleep/spin approach for better precision on high FPS caps.
// An idle client is held to idleFPS unless a lower limit is configured.
func (f *FPSLimiter) Wait(idle bool) {
	effectiveLimit := frameLimit(config.GetFPSLimit(), idle)
	if effectiveLimit <= 0 {
		f.next = time.Time{}
		return
	}

	target := time.Second / time.Duration(effectiveLimit)

	if f.next.IsZero() {
		f.next = time.Now().Add(target)
	} else {
		f.next = f.next.Add(target)
	}

	for {
		remaining := time.Until(f.next)
		if remaining <= 0 {
			break
		}
		if remaining > 200*time.Microsecond {
			time.Sleep(remaining - 200*time.Microsecond)
		}
		// busy-wait for the final few microseconds
		// yields substantially better precision on high FPS caps
		if time.Until(f.next) <= 0 {
			break
		}
	}

	// If we're significantly late (e.g., hitch), resync to avoid drift
	if late := -time.Until(f.next); late > target {
		f.next = time.Now().Add(target)
	}
}
