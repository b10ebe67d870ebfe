package export

import "testing"

func TestNormalizeFormat(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"75cl", "75"},
		{"Bouteille 75 cl", "75"},
		{"Magnum", "150"},
		{"magnum 1.5L", "150"},
		{"150cl", "150"},
		{"1.5", "150"},
		{"Jeroboam", "300"},
		{"JEROBOAM 3L", "300"},
		{"300cl", "300"},
		{"demi-bouteille", ""},
		{"37.5cl", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeFormat(tt.raw); got != tt.want {
			t.Errorf("NormalizeFormat(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

// Priority order: jeroboam/300 beats magnum/150 beats 75, so ambiguous
// strings resolve to the highest capacity.
func TestNormalizeFormat_PriorityOrder(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"magnum 300cl", "300"},
		{"jeroboam (4x75cl)", "300"},
		{"magnum 75cl?", "150"},
		{"1.5L (2x75)", "150"},
	}
	for _, tt := range tests {
		if got := NormalizeFormat(tt.raw); got != tt.want {
			t.Errorf("NormalizeFormat(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
