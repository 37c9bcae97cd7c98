package board

import (
	"testing"
)

func TestParsePosition(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Position
		wantErr bool
	}{
		{"base vertex", "0,0,0", BasePosition(0), false},
		{"chain stop", "3,2,8", Position{Base: 3, Stop: 2, Peer: 8}, false},
		{"spaces tolerated", " 1, 4, 6 ", Position{Base: 1, Stop: 4, Peer: 6}, false},
		{"off-board sentinel", "-1,0,0", OffBoard, false},
		{"too few parts", "1,2", Position{}, true},
		{"too many parts", "1,2,3,4", Position{}, true},
		{"not a number", "a,0,0", Position{}, true},
		{"empty", "", Position{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePosition(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePosition(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParsePosition(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestPositionRoundTrip(t *testing.T) {
	positions := []Position{
		BasePosition(0),
		BasePosition(9),
		{Base: 2, Stop: 5, Peer: 7},
		OffBoard,
	}

	for _, pos := range positions {
		got, err := ParsePosition(pos.String())
		if err != nil {
			t.Fatalf("ParsePosition(%q) failed: %v", pos.String(), err)
		}
		if got != pos {
			t.Errorf("round trip of %v produced %v", pos, got)
		}
	}
}

func TestFigureClasses(t *testing.T) {
	tests := []struct {
		figure Figure
		player bool
		gray   bool
		black  bool
		owner  int
	}{
		{0, true, false, false, 0},
		{4, true, false, false, 0},
		{5, true, false, false, 1},
		{24, true, false, false, 4},
		{25, false, true, false, -1},
		{29, false, true, false, -1},
		{30, false, false, true, -1},
		{34, false, false, true, -1},
	}

	for _, tt := range tests {
		if got := tt.figure.IsPlayerFigure(); got != tt.player {
			t.Errorf("figure %d IsPlayerFigure() = %v, want %v", tt.figure, got, tt.player)
		}
		if got := tt.figure.IsGrayStopper(); got != tt.gray {
			t.Errorf("figure %d IsGrayStopper() = %v, want %v", tt.figure, got, tt.gray)
		}
		if got := tt.figure.IsBlackStopper(); got != tt.black {
			t.Errorf("figure %d IsBlackStopper() = %v, want %v", tt.figure, got, tt.black)
		}
		if got := tt.figure.Player(); got != tt.owner {
			t.Errorf("figure %d Player() = %d, want %d", tt.figure, got, tt.owner)
		}
	}

	if Figure(35).Valid() {
		t.Error("figure 35 must be outside the id space")
	}

	// The three classes must be exhaustive over the id space.
	for f := Figure(0); f < FigureCount; f++ {
		classes := 0
		if f.IsPlayerFigure() {
			classes++
		}
		if f.IsGrayStopper() {
			classes++
		}
		if f.IsBlackStopper() {
			classes++
		}
		if classes != 1 {
			t.Errorf("figure %d belongs to %d classes, want exactly 1", f, classes)
		}
	}
}
