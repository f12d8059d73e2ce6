package gcode

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// MoveType represents the type of CNC toolpath movement.
type MoveType int

const (
	MoveRapid   MoveType = iota // G0: rapid positioning (no cutting)
	MoveFeed                    // G1: linear feed (cutting move in XY plane)
	MovePlunge                  // G1 with Z decreasing: plunging into material
	MoveRetract                 // G0/G1 with Z increasing: retracting from material
)

// Move is a single parsed G0/G1 movement in absolute coordinates.
type Move struct {
	Type     MoveType
	From     [3]float64
	To       [3]float64
	FeedRate float64
}

// XYLength is the horizontal distance travelled by the move.
func (m Move) XYLength() float64 {
	return math.Hypot(m.To[0]-m.From[0], m.To[1]-m.From[1])
}

var wordRe = regexp.MustCompile(`([XYZF])(-?\d+\.?\d*)`)

// Parse reads G0/G1 moves from a program, tracking the absolute position.
// Comments in parentheses or after a semicolon are ignored, as are all
// other commands.
func Parse(code string) []Move {
	var moves []Move
	var pos [3]float64
	feed := 0.0

	for _, line := range strings.Split(code, "\n") {
		line = stripComments(line)
		if line == "" {
			continue
		}

		upper := strings.ToUpper(line)
		cmd := strings.Fields(upper)[0]
		var rapid bool
		switch cmd {
		case "G0", "G00":
			rapid = true
		case "G1", "G01":
		default:
			continue
		}

		next := pos
		for _, m := range wordRe.FindAllStringSubmatch(upper, -1) {
			val, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				continue
			}
			switch m[1] {
			case "X":
				next[0] = val
			case "Y":
				next[1] = val
			case "Z":
				next[2] = val
			case "F":
				feed = val
			}
		}

		moves = append(moves, Move{
			Type:     classifyMove(rapid, pos, next),
			From:     pos,
			To:       next,
			FeedRate: feed,
		})
		pos = next
	}

	return moves
}

func stripComments(line string) string {
	if idx := strings.Index(line, ";"); idx >= 0 {
		line = line[:idx]
	}
	for {
		open := strings.Index(line, "(")
		if open < 0 {
			break
		}
		end := strings.Index(line[open:], ")")
		if end < 0 {
			line = line[:open]
			break
		}
		line = line[:open] + line[open+end+1:]
	}
	return strings.TrimSpace(line)
}

// classifyMove determines the MoveType based on movement characteristics.
func classifyMove(rapid bool, from, to [3]float64) MoveType {
	zDelta := to[2] - from[2]
	hasXY := from[0] != to[0] || from[1] != to[1]

	switch {
	case rapid:
		if zDelta > 0 {
			return MoveRetract
		}
		return MoveRapid
	case zDelta < -0.001 && !hasXY:
		return MovePlunge
	case zDelta > 0.001 && !hasXY:
		return MoveRetract
	default:
		return MoveFeed
	}
}

// Stats summarizes a parsed program.
type Stats struct {
	Moves       int     `json:"moves"`
	Plunges     int     `json:"plunges"`
	CutLength   float64 `json:"cut_length_mm"`
	RapidLength float64 `json:"rapid_length_mm"`
	CutMinutes  float64 `json:"cut_minutes"` // at the programmed feed rates
}

// Summarize totals the cutting and rapid travel of a program.
func Summarize(moves []Move) Stats {
	st := Stats{Moves: len(moves)}
	for _, m := range moves {
		switch m.Type {
		case MoveFeed:
			l := m.XYLength()
			st.CutLength += l
			if m.FeedRate > 0 {
				st.CutMinutes += l / m.FeedRate
			}
		case MovePlunge:
			st.Plunges++
			if m.FeedRate > 0 {
				st.CutMinutes += math.Abs(m.To[2]-m.From[2]) / m.FeedRate
			}
		case MoveRapid, MoveRetract:
			st.RapidLength += m.XYLength()
		}
	}
	return st
}
