package world

import "testing"

func TestNeighborOrder(t *testing.T) {
	c := HexCoord{Q: 3, R: 4}
	expected := []HexCoord{{4, 4}, {4, 3}, {3, 3}, {2, 4}, {2, 5}, {3, 5}}
	for dir, want := range expected {
		if got := c.Neighbor(dir); got != want {
			t.Errorf("direction %d: expected %v, got %v", dir, want, got)
		}
	}
}

func TestNeighborsDistinct(t *testing.T) {
	for _, c := range []HexCoord{{0, 0}, {5, -3}, {-7, 2}} {
		seen := make(map[HexCoord]bool)
		for dir := 0; dir < 6; dir++ {
			n := c.Neighbor(dir)
			if seen[n] {
				t.Fatalf("%v: duplicate neighbor %v", c, n)
			}
			if n == c {
				t.Fatalf("%v: neighbor equals self", c)
			}
			if Distance(c, n) != 1 {
				t.Fatalf("%v: expected neighbor %v at distance 1, got %d", c, n, Distance(c, n))
			}
			seen[n] = true
		}
		if len(seen) != 6 {
			t.Fatalf("expected 6 distinct neighbors, got %d", len(seen))
		}
	}
}

func TestNeighborWrapsModuloSix(t *testing.T) {
	c := HexCoord{Q: 1, R: 2}
	for d := -13; d <= 13; d++ {
		if c.Neighbor(d) != c.Neighbor(d+6) {
			t.Errorf("direction %d and %d disagree: %v vs %v", d, d+6, c.Neighbor(d), c.Neighbor(d+6))
		}
	}
	if c.Neighbor(-1) != c.Neighbor(5) {
		t.Errorf("expected -1 to wrap to 5")
	}
}

func TestNeighborsMatchesNeighbor(t *testing.T) {
	c := HexCoord{Q: -2, R: 9}
	ns := c.Neighbors()
	for i, n := range ns {
		if n != c.Neighbor(i) {
			t.Errorf("index %d: %v != %v", i, n, c.Neighbor(i))
		}
	}
}

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b HexCoord
		want int
	}{
		{HexCoord{0, 0}, HexCoord{0, 0}, 0},
		{HexCoord{0, 0}, HexCoord{3, 0}, 3},
		{HexCoord{0, 0}, HexCoord{2, -1}, 2},
		{HexCoord{1, 1}, HexCoord{-1, 3}, 2},
	}
	for _, tt := range tests {
		if got := Distance(tt.a, tt.b); got != tt.want {
			t.Errorf("Distance(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestKeyAndString(t *testing.T) {
	c := HexCoord{Q: 4, R: -1}
	if c.Key() != "4,-1" {
		t.Errorf("expected key 4,-1, got %s", c.Key())
	}
	if c.String() != "(4, -1)" {
		t.Errorf("expected (4, -1), got %s", c.String())
	}
}
