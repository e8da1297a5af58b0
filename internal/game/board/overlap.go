package board

import (
	"image"
	"math"
	"sort"
)

// Placed is a piece with its resolved pixel position for one snapshot.
type Placed struct {
	Key PieceKey
	At  Point
}

// Stack says where a piece sits among the pieces sharing its cell.
type Stack struct {
	Index, Count int
}

func roundKey(p Point) image.Point {
	return image.Point{X: int(math.Round(p.X)), Y: int(math.Round(p.Y))}
}

// ResolveStacks groups pieces by rounded pixel and numbers each group densely.
// Numbering follows owner then slot order, whatever order pieces came in.
func ResolveStacks(pieces []Placed) map[PieceKey]Stack {
	ordered := make([]Placed, len(pieces))
	copy(ordered, pieces)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i].Key, ordered[j].Key
		if a.Owner != b.Owner {
			return a.Owner < b.Owner
		}
		return a.Slot < b.Slot
	})

	groups := make(map[image.Point][]PieceKey)
	for _, p := range ordered {
		k := roundKey(p.At)
		groups[k] = append(groups[k], p.Key)
	}

	out := make(map[PieceKey]Stack, len(ordered))
	for _, keys := range groups {
		for i, key := range keys {
			out[key] = Stack{Index: i, Count: len(keys)}
		}
	}
	return out
}

// StackOffset spreads stacked pieces around their cell centre. radius is the
// distance from the centre for pairs and grids.
func StackOffset(s Stack, radius float64) Point {
	if s.Count <= 1 || s.Index < 0 || s.Index >= s.Count {
		return Point{}
	}
	switch s.Count {
	case 2:
		return Point{X: radius * float64(2*s.Index-1)}
	case 3:
		// triangle, apex up
		a := -math.Pi/2 + float64(s.Index)*2*math.Pi/3
		return Point{X: radius * math.Cos(a), Y: radius * math.Sin(a)}
	case 4:
		col := float64(s.Index%2)*2 - 1
		row := float64(s.Index/2)*2 - 1
		return Point{X: radius * col, Y: radius * row}
	}
	a := -math.Pi/2 + float64(s.Index)*2*math.Pi/float64(s.Count)
	return Point{X: radius * math.Cos(a), Y: radius * math.Sin(a)}
}
