package printers

import "testing"

func TestSegments(t *testing.T) {
	tests := map[int]string{
		0:   "□□□□",
		24:  "□□□□",
		25:  "■□□□",
		60:  "■■□□",
		100: "■■■■",
	}
	for in, want := range tests {
		if got := Segments(in); got != want {
			t.Fatalf("Segments(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestHeatClamps(t *testing.T) {
	if Heat(-1).Hex() != Heat(0).Hex() {
		t.Fatalf("negative ratio should clamp to cool")
	}
	if Heat(2).Hex() != Heat(1).Hex() {
		t.Fatalf("ratio above one should clamp to hot")
	}
	if Heat(0).Hex() == Heat(1).Hex() {
		t.Fatalf("cool and hot should differ")
	}
}
