package compute

import "testing"

func TestNormalizeBackend(t *testing.T) {
	cases := map[string]Backend{
		"":       BackendCPU,
		"cpu":    BackendCPU,
		"CPU":    BackendCPU,
		" cpu ":  BackendCPU,
		"gpu":    BackendGPU,
		"metal":  BackendGPU,
		"opencl": BackendGPU,
		"bogus":  Backend("bogus"),
	}

	for input, want := range cases {
		if got := NormalizeBackend(input); got != want {
			t.Errorf("NormalizeBackend(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNewUnknownBackend(t *testing.T) {
	_, cleanup, err := New("not-a-backend")
	defer cleanup()
	if err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestNewCPU(t *testing.T) {
	d, cleanup, err := New("cpu")
	defer cleanup()
	if err != nil {
		t.Fatalf("New(cpu) failed: %v", err)
	}
	if d == nil {
		t.Fatal("expected non-nil dispatcher")
	}
}

func TestNewGPUUnavailableWithoutBuildTag(t *testing.T) {
	_, cleanup, err := New("gpu")
	defer cleanup()
	if err == nil {
		t.Fatal("expected error constructing gpu backend without -tags gpu")
	}
}
