package gogogate

import "testing"

func TestFahrenheitFromRaw(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"-1000000", 0},  // no-sensor sentinel
		{"0", 32},        // 0C
		{"100000", 212},  // 100C
		{"21500", 70.7},  // 21.5C
		{"-40000", -40},  // the crossover point
	}

	for _, tt := range tests {
		got, err := fahrenheitFromRaw(tt.raw)
		if err != nil {
			t.Fatalf("fahrenheitFromRaw(%q): %v", tt.raw, err)
		}
		if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("fahrenheitFromRaw(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestFahrenheitFromRawRejectsGarbage(t *testing.T) {
	if _, err := fahrenheitFromRaw("warm"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestDoorStateString(t *testing.T) {
	tests := []struct {
		state DoorState
		want  string
	}{
		{DoorClosed, "closed"},
		{DoorPulse, "pulse"},
		{DoorOpen, "open"},
		{DoorStarting, "starting"},
		{DoorState(7), "unknown(7)"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("DoorState(%d).String() = %q, want %q", int(tt.state), got, tt.want)
		}
	}
}
