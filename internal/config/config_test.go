package config

import "testing"

func TestSetFOVClamps(t *testing.T) {
	defer SetFOV(GetFOV())

	SetFOV(10)
	if got := GetFOV(); got != 30 {
		t.Fatalf("low FOV: got %v, want 30", got)
	}
	SetFOV(179)
	if got := GetFOV(); got != 120 {
		t.Fatalf("high FOV: got %v, want 120", got)
	}
	SetFOV(70)
	if got := GetFOV(); got != 70 {
		t.Fatalf("FOV: got %v, want 70", got)
	}
}

func TestSetFramesInFlightClamps(t *testing.T) {
	defer SetFramesInFlight(GetFramesInFlight())

	for _, tc := range []struct{ in, want int }{{0, 1}, {1, 1}, {2, 2}, {3, 3}, {8, 3}} {
		SetFramesInFlight(tc.in)
		if got := GetFramesInFlight(); got != tc.want {
			t.Errorf("SetFramesInFlight(%d): got %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestWindowSizeClamps(t *testing.T) {
	w, h := GetWindowSize()
	defer SetWindowSize(w, h)

	SetWindowSize(0, 100000)
	if gw, gh := GetWindowSize(); gw != 64 || gh != 4320 {
		t.Fatalf("window: got %dx%d, want 64x4320", gw, gh)
	}
}

func TestShaderDirDefaultsToBuiltin(t *testing.T) {
	if dir := GetShaderDir(); dir != "" {
		t.Fatalf("default shader dir: got %q, want built-in", dir)
	}
	defer SetShaderDir("")
	SetShaderDir("custom")
	if GetShaderDir() != "custom" {
		t.Fatal("shader dir not applied")
	}
}

func TestFPSLimit(t *testing.T) {
	defer SetFPSLimit(GetFPSLimit())

	SetFPSLimit(-5)
	if got := GetFPSLimit(); got != 0 {
		t.Fatalf("negative limit: got %d, want 0", got)
	}
}

func TestParseWorldKind(t *testing.T) {
	for in, want := range map[string]WorldKind{
		"spheres":   WorldSpheres,
		" Terrain ": WorldTerrain,
		"HEIGHTMAP": WorldHeightmap,
	} {
		got, err := ParseWorldKind(in)
		if err != nil || got != want {
			t.Errorf("ParseWorldKind(%q): got %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseWorldKind("flat"); err == nil {
		t.Fatal("unknown world accepted")
	}
}

func TestHeightmapClamps(t *testing.T) {
	p, s, m := GetHeightmap()
	defer SetHeightmap(p, s, m)

	SetHeightmap("a.png", -1, 0)
	if gp, gs, gm := GetHeightmap(); gp != "a.png" || gs != 0 || gm != 1 {
		t.Fatalf("heightmap: got %q %d %d", gp, gs, gm)
	}
}

func TestVSyncIsOptIn(t *testing.T) {
	if GetVSync() {
		t.Fatal("vsync enabled by default")
	}
	defer SetVSync(false)
	SetVSync(true)
	if !GetVSync() {
		t.Fatal("SetVSync(true) not applied")
	}
}
