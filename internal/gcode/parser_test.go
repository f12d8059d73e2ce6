package gcode

import (
	"math"
	"testing"
)

func TestParse_Empty(t *testing.T) {
	if moves := Parse(""); len(moves) != 0 {
		t.Errorf("expected 0 moves for empty input, got %d", len(moves))
	}
}

func TestParse_CommentsOnly(t *testing.T) {
	code := `; This is a comment
; Another comment
(parenthetical comment)
(nested [brackets] are fine)
`
	if moves := Parse(code); len(moves) != 0 {
		t.Errorf("expected 0 moves for comments-only input, got %d", len(moves))
	}
}

func TestParse_RapidAndFeed(t *testing.T) {
	moves := Parse("G0 X10.000 Y20.000\nG1 X100.000 Y20.000 F1500.0\n")
	if len(moves) != 2 {
		t.Fatalf("expected 2 moves, got %d", len(moves))
	}
	if moves[0].Type != MoveRapid {
		t.Errorf("expected MoveRapid, got %d", moves[0].Type)
	}
	if moves[0].To != [3]float64{10, 20, 0} {
		t.Errorf("expected to (10,20,0), got %v", moves[0].To)
	}
	m := moves[1]
	if m.Type != MoveFeed {
		t.Errorf("expected MoveFeed, got %d", m.Type)
	}
	if m.From != [3]float64{10, 20, 0} {
		t.Errorf("expected from (10,20,0), got %v", m.From)
	}
	if m.FeedRate != 1500 {
		t.Errorf("expected feed rate 1500, got %.1f", m.FeedRate)
	}
	if m.XYLength() != 90 {
		t.Errorf("expected length 90, got %v", m.XYLength())
	}
}

func TestParse_PlungeAndRetract(t *testing.T) {
	moves := Parse("G0 Z5\nG1 Z-6 F300 ; plunge\nG0 Z5\nG1 Z10\n")
	want := []MoveType{MoveRetract, MovePlunge, MoveRetract, MoveRetract}
	if len(moves) != len(want) {
		t.Fatalf("expected %d moves, got %d", len(want), len(moves))
	}
	for i, w := range want {
		if moves[i].Type != w {
			t.Errorf("move %d: expected type %d, got %d", i, w, moves[i].Type)
		}
	}
}

func TestParse_NonMovementLinesAndStickyFeed(t *testing.T) {
	code := "G21\nG90\nM3 S18000\nG01 X10 F800\nG1 X20 (inline)\nG10 L2 P1 X0\nM5\n"
	moves := Parse(code)
	if len(moves) != 2 {
		t.Fatalf("expected 2 moves, got %d", len(moves))
	}
	if moves[1].FeedRate != 800 {
		t.Errorf("expected sticky feed 800, got %v", moves[1].FeedRate)
	}
	if moves[1].From[0] != 10 || moves[1].To[0] != 20 {
		t.Errorf("expected X 10 -> 20, got %v -> %v", moves[1].From[0], moves[1].To[0])
	}
}

func TestParse_NegativeCoordinates(t *testing.T) {
	moves := Parse("G0 X-3.5 Y-2.25\n")
	if len(moves) != 1 || moves[0].To[0] != -3.5 || moves[0].To[1] != -2.25 {
		t.Errorf("unexpected moves %+v", moves)
	}
}

func TestClassifyMove(t *testing.T) {
	tests := []struct {
		name     string
		rapid    bool
		from, to [3]float64
		want     MoveType
	}{
		{"rapid xy", true, [3]float64{0, 0, 5}, [3]float64{10, 10, 5}, MoveRapid},
		{"rapid up", true, [3]float64{0, 0, -6}, [3]float64{0, 0, 5}, MoveRetract},
		{"feed xy", false, [3]float64{0, 0, -6}, [3]float64{10, 0, -6}, MoveFeed},
		{"plunge", false, [3]float64{0, 0, 5}, [3]float64{0, 0, -6}, MovePlunge},
		{"feed up", false, [3]float64{0, 0, -6}, [3]float64{0, 0, 5}, MoveRetract},
		{"ramp", false, [3]float64{0, 0, 0}, [3]float64{10, 0, -2}, MoveFeed},
	}
	for _, tt := range tests {
		if got := classifyMove(tt.rapid, tt.from, tt.to); got != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.name, tt.want, got)
		}
	}
}

func TestSummarize(t *testing.T) {
	code := "G0 X0 Y0 Z5\nG0 X10 Y0\nG1 Z-6 F600\nG1 X40 Y0 F1200\nG1 X40 Y40\nG0 Z5\n"
	st := Summarize(Parse(code))

	if st.Moves != 6 {
		t.Errorf("expected 6 moves, got %d", st.Moves)
	}
	if st.Plunges != 1 {
		t.Errorf("expected 1 plunge, got %d", st.Plunges)
	}
	if st.CutLength != 70 {
		t.Errorf("expected cut length 70, got %v", st.CutLength)
	}
	if st.RapidLength != 10 {
		t.Errorf("expected rapid length 10, got %v", st.RapidLength)
	}
	want := 11.0/600 + 70.0/1200
	if math.Abs(st.CutMinutes-want) > 1e-12 {
		t.Errorf("expected %v minutes, got %v", want, st.CutMinutes)
	}
}
