package algorithms_test

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitat-nav/algorithms"
	"habitat-nav/models"
)

var habitat5 = models.Boundary{Shape: models.ShapeCylinder, Radius: 5, Height: 3}

func TestBuildGrid_Dimensions(t *testing.T) {
	g, err := algorithms.BuildGrid(habitat5, nil, models.GridResolution)
	require.NoError(t, err)

	// ceil(5 * 2.2 / 0.5) = 22
	assert.Equal(t, 22, g.Size)
	assert.Len(t, g.Cells, 22*22)

	centre := g.CellAt(11, 11)
	assert.Equal(t, 0.0, centre.X)
	assert.Equal(t, 0.0, centre.Z)
	assert.True(t, centre.Walkable)
	assert.Equal(t, -1, centre.Parent)

	corner := g.CellAt(0, 0)
	assert.Equal(t, -5.5, corner.X)
	assert.False(t, corner.Walkable, "corner lies outside the enclosure")
}

func TestBuildGrid_BoundaryMargin(t *testing.T) {
	g, err := algorithms.BuildGrid(habitat5, nil, 0.5)
	require.NoError(t, err)

	for _, c := range g.Cells {
		inside := math.Hypot(c.X, c.Z) <= habitat5.Radius-models.BoundaryMargin
		assert.Equal(t, inside, c.Walkable, "cell (%d,%d) at (%.2f,%.2f)", c.I, c.J, c.X, c.Z)
	}
}

func TestBuildGrid_ObstacleKeepOut(t *testing.T) {
	obstacles := []models.Obstacle{{Position: models.Position{X: 0, Z: 0}, Radius: 1}}
	g, err := algorithms.BuildGrid(habitat5, obstacles, 0.5)
	require.NoError(t, err)

	// keep-out = 1.0 + 0.3
	assert.False(t, g.CellAt(11, 11).Walkable, "centre (0,0)")
	assert.False(t, g.CellAt(13, 11).Walkable, "(1.0,0) inside keep-out")
	assert.True(t, g.CellAt(14, 11).Walkable, "(1.5,0) outside keep-out")
	assert.False(t, g.CellAt(12, 12).Walkable, "(0.5,0.5) inside keep-out")
}

func TestBuildGrid_SizeFallback(t *testing.T) {
	// Size 4 -> footprint 2 -> keep-out 2.3
	bySize := []models.Obstacle{{Position: models.Position{X: 0, Z: 0}, Size: 4}}
	byRadius := []models.Obstacle{{Position: models.Position{X: 0, Z: 0}, Radius: 2}}

	a, err := algorithms.BuildGrid(habitat5, bySize, 0.5)
	require.NoError(t, err)
	b, err := algorithms.BuildGrid(habitat5, byRadius, 0.5)
	require.NoError(t, err)

	if diff := cmp.Diff(a.WalkableMask(), b.WalkableMask()); diff != "" {
		t.Errorf("size and radius footprints differ (-size +radius):\n%s", diff)
	}
}

func TestBuildGrid_Deterministic(t *testing.T) {
	obstacles := []models.Obstacle{
		{Position: models.Position{X: 1.2, Z: -0.7}, Radius: 0.9},
		{Position: models.Position{X: -2.1, Z: 1.9}, Size: 1.5},
		{Position: models.Position{X: 0.4, Z: 3.1}},
	}
	first, err := algorithms.BuildGrid(habitat5, obstacles, 0.25)
	require.NoError(t, err)

	for run := 0; run < 3; run++ {
		again, err := algorithms.BuildGrid(habitat5, obstacles, 0.25)
		require.NoError(t, err)
		if diff := cmp.Diff(first, again, cmp.AllowUnexported(algorithms.Grid{})); diff != "" {
			t.Fatalf("run %d produced a different grid (-first +again):\n%s", run, diff)
		}
	}
	assert.Greater(t, first.WalkableCount(), 0)
}

func TestBuildGrid_GeometryErrors(t *testing.T) {
	cases := []struct {
		name       string
		boundary   models.Boundary
		resolution float64
	}{
		{"ZeroRadius", models.Boundary{Radius: 0}, 0.5},
		{"NegativeRadius", models.Boundary{Radius: -3}, 0.5},
		{"NaNRadius", models.Boundary{Radius: math.NaN()}, 0.5},
		{"InfRadius", models.Boundary{Radius: math.Inf(1)}, 0.5},
		{"ZeroResolution", habitat5, 0},
		{"NegativeResolution", habitat5, -0.5},
		{"UnknownShape", models.Boundary{Shape: "torus", Radius: 5}, 0.5},
		{"TooManyCells", models.Boundary{Radius: 1000}, 0.01},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g, err := algorithms.BuildGrid(tc.boundary, nil, tc.resolution)
			assert.Nil(t, g)
			if !errors.Is(err, algorithms.ErrGeometry) {
				t.Errorf("BuildGrid error = %v; want %v", err, algorithms.ErrGeometry)
			}
		})
	}
}

func TestBuildGrid_RejectsBadObstacles(t *testing.T) {
	cases := []struct {
		name     string
		obstacle models.Obstacle
	}{
		{"NaNX", models.Obstacle{Position: models.Position{X: math.NaN(), Z: 0}, Radius: 0.5}},
		{"InfZ", models.Obstacle{Position: models.Position{X: 0, Z: math.Inf(-1)}, Radius: 0.5}},
		{"NaNRadius", models.Obstacle{Position: models.Position{X: 1, Z: 1}, Radius: math.NaN()}},
		{"InfRadius", models.Obstacle{Position: models.Position{X: 1, Z: 1}, Radius: math.Inf(1)}},
		{"NegativeRadius", models.Obstacle{Position: models.Position{X: 1, Z: 1}, Radius: -1}},
		{"NaNSize", models.Obstacle{Position: models.Position{X: 1, Z: 1}, Size: math.NaN()}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			obstacles := []models.Obstacle{{Position: models.Position{X: -2, Z: 0}, Radius: 0.5}, tc.obstacle}
			g, err := algorithms.BuildGrid(habitat5, obstacles, models.GridResolution)
			assert.Nil(t, g)
			assert.True(t, errors.Is(err, algorithms.ErrGeometry), "err = %v", err)
			assert.ErrorIs(t, algorithms.ValidateObstacles(obstacles), algorithms.ErrGeometry)
		})
	}

	assert.NoError(t, algorithms.ValidateObstacles([]models.Obstacle{{Position: models.Position{X: 1, Z: 1}}}))
}

func TestBuildGrid_Shapes(t *testing.T) {
	for _, shape := range []string{"", models.ShapeCylinder, models.ShapeDome} {
		_, err := algorithms.BuildGrid(models.Boundary{Shape: shape, Radius: 4}, nil, 0.5)
		assert.NoError(t, err, "shape %q", shape)
	}
}

func TestWorldToGrid(t *testing.T) {
	g, err := algorithms.BuildGrid(habitat5, nil, 0.5)
	require.NoError(t, err)

	cases := []struct {
		p      models.Position
		i, j   int
		inGrid bool
	}{
		{models.Position{X: -4, Z: 0}, 3, 11, true},
		{models.Position{X: 4, Z: 0}, 19, 11, true},
		{models.Position{X: 0.2, Z: -0.2}, 11, 11, true},
		{models.Position{X: -5.75, Z: 0}, 0, 11, true},
		{models.Position{X: -6, Z: 0}, 0, 0, false},
		{models.Position{X: 0, Z: 100}, 0, 0, false},
		{models.Position{X: math.NaN(), Z: 0}, 0, 0, false},
	}
	for _, tc := range cases {
		i, j, ok := g.WorldToGrid(tc.p)
		assert.Equal(t, tc.inGrid, ok, "WorldToGrid(%v)", tc.p)
		if tc.inGrid {
			assert.Equal(t, [2]int{tc.i, tc.j}, [2]int{i, j}, "WorldToGrid(%v)", tc.p)
		}
	}
}
