package services_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"habitat-nav/algorithms"
	"habitat-nav/models"
	"habitat-nav/services"
)

type recordingObserver struct {
	mu    sync.Mutex
	kinds []string
}

func (r *recordingObserver) ObserveQuery(_ services.Query, res *services.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds = append(r.kinds, res.Kind)
}

func (r *recordingObserver) Kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.kinds...)
}

var habitat = models.Boundary{Shape: models.ShapeCylinder, Radius: 5, Height: 3}

func testConfig() services.Config {
	return services.Config{
		GridResolution:   models.GridResolution,
		MaxIterations:    algorithms.MaxIterations,
		BatchConcurrency: 3,
	}
}

func openFloorQuery() services.Query {
	return services.Query{
		Start:    models.Position{X: -4, Z: 0},
		End:      models.Position{X: 4, Z: 0},
		Boundary: habitat,
	}
}

func TestNavigator_Found(t *testing.T) {
	obs := &recordingObserver{}
	nav := services.NewNavigator(testConfig(), obs, zap.NewNop())

	res, err := nav.Evaluate(openFloorQuery())
	require.NoError(t, err)

	assert.True(t, res.Found())
	assert.NotEmpty(t, res.QueryID)
	assert.Equal(t, models.GridResolution, res.GridResolution)
	require.NotNil(t, res.Report)
	assert.InDelta(t, 8.0, res.Report.TotalDistance, 1e-9)
	assert.True(t, res.Report.Passes)
	assert.Len(t, res.Path, 17)
	assert.Equal(t, []string{models.ResultFound}, obs.Kinds())
}

func TestNavigator_KeepsCallerQueryID(t *testing.T) {
	nav := services.NewNavigator(testConfig(), nil, nil)
	q := openFloorQuery()
	q.ID = "fixed-id"

	res, err := nav.Evaluate(q)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", res.QueryID)
}

func TestNavigator_NotFoundIsNotAnError(t *testing.T) {
	obs := &recordingObserver{}
	nav := services.NewNavigator(testConfig(), obs, zap.NewNop())

	q := services.Query{
		Start:     models.Position{X: 0, Z: 0},
		End:       models.Position{X: 4, Z: 0},
		Boundary:  habitat,
		Obstacles: []models.Obstacle{{Position: models.Position{X: 0, Z: 0}, Radius: 2}},
	}
	res, err := nav.Evaluate(q)
	require.NoError(t, err)

	assert.Equal(t, models.ResultNotFound, res.Kind)
	assert.False(t, res.Found())
	assert.Nil(t, res.Report)
	assert.Empty(t, res.Path)
	assert.True(t, res.Stats.ForcedStart)
	assert.Equal(t, []string{models.ResultNotFound}, obs.Kinds())
}

func TestNavigator_Errors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(q *services.Query)
		kind   string
		err    error
	}{
		{"OutOfBounds", func(q *services.Query) { q.End = models.Position{X: 40, Z: 0} }, models.ResultOutOfBounds, algorithms.ErrOutOfBounds},
		{"ZeroRadius", func(q *services.Query) { q.Boundary.Radius = 0 }, models.ResultGeometryError, algorithms.ErrGeometry},
		{"NegativeResolution", func(q *services.Query) { q.Resolution = -1 }, models.ResultGeometryError, algorithms.ErrGeometry},
		{"NaNObstacle", func(q *services.Query) {
			q.Obstacles = []models.Obstacle{{Position: models.Position{X: math.NaN(), Z: 1}, Radius: 0.5}}
		}, models.ResultGeometryError, algorithms.ErrGeometry},
		{"InfiniteObstacleRadius", func(q *services.Query) {
			q.Obstacles = []models.Obstacle{{Position: models.Position{X: 0, Z: 2}, Radius: math.Inf(1)}}
		}, models.ResultGeometryError, algorithms.ErrGeometry},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			obs := &recordingObserver{}
			nav := services.NewNavigator(testConfig(), obs, zap.NewNop())
			q := openFloorQuery()
			tc.mutate(&q)

			res, err := nav.Evaluate(q)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.err), "err = %v", err)
			require.NotNil(t, res)
			assert.Equal(t, tc.kind, res.Kind)
			assert.NotEmpty(t, res.Error)
			assert.Equal(t, []string{tc.kind}, obs.Kinds())
		})
	}
}

func TestNavigator_Simplify(t *testing.T) {
	nav := services.NewNavigator(testConfig(), nil, zap.NewNop())
	q := openFloorQuery()
	q.Simplify = 0.1

	res, err := nav.Evaluate(q)
	require.NoError(t, err)
	require.Len(t, res.Path, 2)
	assert.Equal(t, 1, res.Report.TotalSegments)
	assert.InDelta(t, 8.0, res.Report.TotalDistance, 1e-9)
}

// nearestApproach returns the closest any segment of path comes to p.
func nearestApproach(path models.Path, p models.Position) float64 {
	best := math.Inf(1)
	for i := 0; i+1 < len(path); i++ {
		a, b := path[i].Floor(), path[i+1].Floor()
		dx, dz := b.X-a.X, b.Z-a.Z
		t := 0.0
		if lenSq := dx*dx + dz*dz; lenSq > 0 {
			t = math.Max(0, math.Min(1, ((p.X-a.X)*dx+(p.Z-a.Z)*dz)/lenSq))
		}
		best = math.Min(best, p.DistanceTo(models.Position{X: a.X + t*dx, Z: a.Z + t*dz}))
	}
	return best
}

func TestNavigator_SimplifyAroundObstacle(t *testing.T) {
	nav := services.NewNavigator(testConfig(), nil, zap.NewNop())
	module := models.Obstacle{Name: "node", Position: models.Position{X: 0, Z: 0}, Radius: 0.4}
	keepOut := module.FootprintRadius() + models.KeepOutBuffer

	raw := openFloorQuery()
	raw.Obstacles = []models.Obstacle{module}
	rawRes, err := nav.Evaluate(raw)
	require.NoError(t, err)
	require.True(t, rawRes.Found())

	for _, tolerance := range []float64{0.1, algorithms.MaxSimplifyTolerance, 1.0, 5.0} {
		q := raw
		q.Simplify = tolerance
		res, err := nav.Evaluate(q)
		require.NoError(t, err)
		require.True(t, res.Found())

		assert.GreaterOrEqual(t, len(res.Path), 3, "tolerance %v: route collapsed onto the module", tolerance)
		assert.Less(t, len(res.Path), len(rawRes.Path), "tolerance %v", tolerance)
		assert.Equal(t, rawRes.Path[0], res.Path[0])
		assert.Equal(t, rawRes.Path[len(rawRes.Path)-1], res.Path[len(res.Path)-1])

		floor := math.Min(nearestApproach(rawRes.Path, module.Position), keepOut)
		assert.GreaterOrEqual(t, nearestApproach(res.Path, module.Position), floor-1e-9,
			"tolerance %v: simplified route enters the keep-out zone", tolerance)
		assert.Equal(t, rawRes.Report.Passes, res.Report.Passes, "tolerance %v", tolerance)
		assert.GreaterOrEqual(t, res.Report.TotalDistance, 8.0)
	}
}

func TestNavigator_CustomResolution(t *testing.T) {
	nav := services.NewNavigator(testConfig(), nil, zap.NewNop())
	q := openFloorQuery()
	q.Resolution = 0.25

	res, err := nav.Evaluate(q)
	require.NoError(t, err)
	assert.Equal(t, 0.25, res.GridResolution)
	assert.Len(t, res.Path, 33)
}

func TestNavigator_EvaluateBatch(t *testing.T) {
	obs := &recordingObserver{}
	nav := services.NewNavigator(testConfig(), obs, zap.NewNop())

	outOfBounds := openFloorQuery()
	outOfBounds.Start = models.Position{X: 99, Z: 99}
	enclosed := services.Query{
		Start:     models.Position{X: 0, Z: 0},
		End:       models.Position{X: 4, Z: 0},
		Boundary:  habitat,
		Obstacles: []models.Obstacle{{Position: models.Position{X: 0, Z: 0}, Radius: 2}},
	}
	queries := []services.Query{openFloorQuery(), outOfBounds, enclosed, openFloorQuery()}

	items, err := nav.EvaluateBatch(context.Background(), queries)
	require.NoError(t, err)
	require.Len(t, items, len(queries))

	assert.Equal(t, models.ResultFound, items[0].Result.Kind)
	assert.Empty(t, items[0].Error)
	assert.Equal(t, models.ResultOutOfBounds, items[1].Result.Kind)
	assert.NotEmpty(t, items[1].Error)
	assert.Equal(t, models.ResultNotFound, items[2].Result.Kind)
	assert.Empty(t, items[2].Error)
	assert.Equal(t, models.ResultFound, items[3].Result.Kind)
	assert.NotEqual(t, items[0].Result.QueryID, items[3].Result.QueryID)
	assert.Len(t, obs.Kinds(), len(queries))
}

func TestNavigator_EvaluateBatchCancelled(t *testing.T) {
	nav := services.NewNavigator(testConfig(), nil, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items, err := nav.EvaluateBatch(ctx, []services.Query{openFloorQuery(), openFloorQuery()})
	assert.Nil(t, items)
	assert.True(t, errors.Is(err, context.Canceled), "err = %v", err)
}
