package gjk

import (
	"math"
	"testing"

	"github.com/akmonengine/feather4d/actor"
	"github.com/akmonengine/feather4d/ga"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

// Test helper functions

func createCube(position mgl64.Vec4, orientation ga.Rotor) (*actor.Collider, actor.Transform) {
	return actor.NewMeshCollider(actor.Cube()), actor.NewTransform(position, orientation)
}

// =============================================================================
// CastRay Tests
// =============================================================================

func TestCastRay(t *testing.T) {
	tests := []struct {
		name        string
		origin      mgl64.Vec4
		direction   mgl64.Vec4
		position    mgl64.Vec4
		orientation ga.Rotor
		wantHit     bool
		wantT       float64
	}{
		{
			name:      "towards near face",
			origin:    mgl64.Vec4{0, 0, -10, 0},
			direction: mgl64.Vec4{0, 0, 1, 0},
			wantHit:   true,
			wantT:     9.5,
		},
		{
			name:      "aimed away",
			origin:    mgl64.Vec4{0, 0, -10, 0},
			direction: mgl64.Vec4{0, 0, -1, 0},
			wantHit:   false,
		},
		{
			name:      "parallel to the hull",
			origin:    mgl64.Vec4{0, 0, -10, 0},
			direction: mgl64.Vec4{0, 1, 0, 0},
			wantHit:   false,
		},
		{
			name:      "passes beside the hull",
			origin:    mgl64.Vec4{0, 0.9, -10, 0},
			direction: mgl64.Vec4{0, 0, 1, 0},
			wantHit:   false,
		},
		{
			name:      "off-center hit",
			origin:    mgl64.Vec4{0.3, -0.2, -10, 0.1},
			direction: mgl64.Vec4{0, 0, 1, 0},
			wantHit:   true,
			wantT:     9.5,
		},
		{
			name:      "direction length scales t",
			origin:    mgl64.Vec4{0, 0, -10, 0},
			direction: mgl64.Vec4{0, 0, 2, 0},
			wantHit:   true,
			wantT:     4.75,
		},
		{
			name:      "origin inside",
			origin:    mgl64.Vec4{0.1, 0.1, 0.1, 0.1},
			direction: mgl64.Vec4{0, 0, 1, 0},
			wantHit:   true,
			wantT:     0,
		},
		{
			name:      "translated hull",
			origin:    mgl64.Vec4{5, 1, -10, 0},
			direction: mgl64.Vec4{0, 0, 1, 0},
			position:  mgl64.Vec4{5, 1, 0, 0},
			wantHit:   true,
			wantT:     9.5,
		},
		{
			name:      "oblique ray",
			origin:    mgl64.Vec4{0, 0, -10, 0},
			direction: mgl64.Vec4{0, 0.6, 0.8, 0},
			position:  mgl64.Vec4{0, 6, -2, 0},
			wantHit:   true,
			wantT:     9.375,
		},
		{
			name:        "hull turned 45 degrees in the zw plane",
			origin:      mgl64.Vec4{0, 0, -10, 0},
			direction:   mgl64.Vec4{0, 0, 1, 0},
			orientation: ga.FromBivector(ga.Bivector{0, 0, 0, 0, 0, math.Pi / 8}),
			wantHit:     true,
			wantT:       10 - math.Sqrt(0.5),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orientation := tt.orientation
			if orientation == (ga.Rotor{}) {
				orientation = ga.RotorIdent()
			}
			collider, transform := createCube(tt.position, orientation)

			got, hit := CastRay(tt.origin, tt.direction, collider, transform)

			assert.Equal(t, tt.wantHit, hit)
			if tt.wantHit {
				assert.InDelta(t, tt.wantT, got, 1e-6)
			}
		})
	}
}

func TestCastRay_PoolReuse(t *testing.T) {
	collider, transform := createCube(mgl64.Vec4{}, ga.RotorIdent())

	// A miss leaves a used simplex in the pool; the next cast must not inherit it
	_, hit := CastRay(mgl64.Vec4{0, 0, -10, 0}, mgl64.Vec4{0, 0, -1, 0}, collider, transform)
	assert.False(t, hit)

	got, hit := CastRay(mgl64.Vec4{0, 0, -10, 0}, mgl64.Vec4{0, 0, 1, 0}, collider, transform)
	assert.True(t, hit)
	assert.InDelta(t, 9.5, got, 1e-6)
}

// =============================================================================
// Simplex Tests
// =============================================================================

func TestExpand(t *testing.T) {
	var s Simplex

	expand(&s, mgl64.Vec4{1, 0, 0, 0})
	assert.Equal(t, 1, s.Count)

	expand(&s, mgl64.Vec4{1, 0, 0, 0})
	assert.Equal(t, 1, s.Count, "a repeated point adds nothing")

	expand(&s, mgl64.Vec4{0, 1, 0, 0})
	expand(&s, mgl64.Vec4{-1, 2, 0, 0})
	assert.Equal(t, 2, s.Count, "a collinear point adds nothing")

	expand(&s, mgl64.Vec4{0, 0, 1, 0})
	expand(&s, mgl64.Vec4{0, 0, 0, 1})
	expand(&s, mgl64.Vec4{-1, -1, -1, -1})
	assert.Equal(t, 5, s.Count)

	expand(&s, mgl64.Vec4{3, 3, 3, 3})
	assert.Equal(t, 5, s.Count, "a 5-cell is full")
}

func TestReduce_Line(t *testing.T) {
	t.Run("origin beyond newest point", func(t *testing.T) {
		s := Simplex{Points: [5]mgl64.Vec4{{3, 1, 0, 0}, {2, 1, 0, 0}}, Count: 2}

		direction, contained := reduce(&s)
		assert.False(t, contained)
		assert.Equal(t, 1, s.Count)
		assert.Equal(t, mgl64.Vec4{-2, -1, 0, 0}, direction)
	})

	t.Run("origin beside the segment", func(t *testing.T) {
		s := Simplex{Points: [5]mgl64.Vec4{{-1, 1, 0, 0}, {1, 1, 0, 0}}, Count: 2}

		direction, contained := reduce(&s)
		assert.False(t, contained)
		assert.Equal(t, 2, s.Count)
		assert.True(t, direction.ApproxEqualThreshold(mgl64.Vec4{0, -1, 0, 0}, 1e-12), "got %v", direction)
	})

	t.Run("origin on the segment", func(t *testing.T) {
		s := Simplex{Points: [5]mgl64.Vec4{{-1, 0, 0, 0}, {1, 0, 0, 0}}, Count: 2}

		_, contained := reduce(&s)
		assert.True(t, contained)
	})
}

func TestReduce_FiveCellContainsOrigin(t *testing.T) {
	s := Simplex{Points: [5]mgl64.Vec4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
		{-1, -1, -1, -1},
	}, Count: 5}

	_, contained := reduce(&s)
	assert.True(t, contained)
}
