package constraint

import (
	"slices"
	"testing"

	"github.com/akmonengine/feather4d/actor"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const (
	epsilon = 1e-9
	dt      = 1.0 / 120.0
)

var errUnknownBody = errors.New("unknown body")

// testStore is a minimal BodyStore over a map
type testStore map[actor.BodyID]*actor.RigidBody

func (s testStore) Pair(a, b actor.BodyID) (*actor.RigidBody, *actor.RigidBody, error) {
	if a == b {
		return nil, nil, errors.New("same body")
	}
	bodyA, okA := s[a]
	bodyB, okB := s[b]
	if !okA || !okB {
		return nil, nil, errUnknownBody
	}
	return bodyA, bodyB, nil
}

func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.LevelEnablerFunc(zapcore.DebugLevel.Enabled))
	return zap.New(core), logs
}

func assertVec(t *testing.T, expected, actual mgl64.Vec4, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, expected.ApproxEqualThreshold(actual, epsilon), "expected %v, got %v %v", expected, actual, msgAndArgs)
}

// =============================================================================
// PairKey Tests
// =============================================================================

func TestMakePairKey(t *testing.T) {
	assert.Equal(t, PairKey{A: 1, B: 4}, MakePairKey(1, 4))
	assert.Equal(t, PairKey{A: 1, B: 4}, MakePairKey(4, 1))
	assert.Equal(t, MakePairKey(7, 2), MakePairKey(2, 7))
}

func TestPairKey_Has(t *testing.T) {
	key := MakePairKey(3, 5)

	assert.True(t, key.Has(3))
	assert.True(t, key.Has(5))
	assert.False(t, key.Has(4))
}

func TestPairKey_Compare(t *testing.T) {
	keys := []PairKey{{2, 3}, {1, 5}, {1, 2}, {2, 2}}
	slices.SortFunc(keys, PairKey.Compare)

	assert.Equal(t, []PairKey{{1, 2}, {1, 5}, {2, 2}, {2, 3}}, keys)
}

// =============================================================================
// Constraints Tests
// =============================================================================

func TestConstraints_Joints(t *testing.T) {
	c := NewConstraints(nil)

	c.AddJoint(NewJoint(3, 1, mgl64.Vec4{}, mgl64.Vec4{}))
	c.AddJoint(NewJoint(1, 2, mgl64.Vec4{}, mgl64.Vec4{}))

	joint, ok := c.Joint(1, 3)
	require.True(t, ok, "lookup is independent of the pair order")
	assert.Equal(t, actor.BodyID(3), joint.BodyA, "the joint keeps its own orientation")

	joints := c.Joints()
	require.Len(t, joints, 2)
	assert.Equal(t, actor.BodyID(2), joints[0].BodyB)
	assert.Equal(t, actor.BodyID(3), joints[1].BodyA)

	assert.True(t, c.RemoveJoint(3, 1))
	assert.False(t, c.RemoveJoint(3, 1))
	_, ok = c.Joint(1, 3)
	assert.False(t, ok)
}

func TestConstraints_AddJointReplaces(t *testing.T) {
	c := NewConstraints(nil)

	c.AddJoint(NewJoint(1, 2, mgl64.Vec4{1, 0, 0, 0}, mgl64.Vec4{}))
	c.AddJoint(NewJoint(2, 1, mgl64.Vec4{0, 1, 0, 0}, mgl64.Vec4{}))

	assert.Len(t, c.Joints(), 1)
	joint, _ := c.Joint(1, 2)
	assert.Equal(t, mgl64.Vec4{0, 1, 0, 0}, joint.LocalA)
}

func TestConstraints_Arbiters(t *testing.T) {
	store := restingStore()
	c := NewConstraints(nil)

	c.AddArbiter(NewArbiter(1, 2, restingPoint(0, 0), store[1], store[2]))

	arbiter, ok := c.Arbiter(2, 1)
	require.True(t, ok)
	assert.Len(t, arbiter.Contacts, 1)
	assert.Len(t, c.Arbiters(), 1)

	assert.True(t, c.RemoveArbiter(1, 2))
	assert.False(t, c.RemoveArbiter(1, 2))
	assert.Empty(t, c.Arbiters())
}

func TestConstraints_RemoveBody(t *testing.T) {
	store := restingStore()
	store[3] = actor.NewRigidBody(mgl64.Vec4{3, 0, 0, 0}, actor.BodyTypeDynamic, 1)
	c := NewConstraints(nil)

	c.AddJoint(NewJoint(2, 3, mgl64.Vec4{}, mgl64.Vec4{}))
	c.AddJoint(NewJoint(1, 3, mgl64.Vec4{}, mgl64.Vec4{}))
	c.AddArbiter(NewArbiter(1, 2, restingPoint(0, 0), store[1], store[2]))

	removed := c.RemoveBody(2)

	assert.Equal(t, []PairKey{{1, 2}}, removed)
	_, ok := c.Joint(2, 3)
	assert.False(t, ok)
	_, ok = c.Joint(1, 3)
	assert.True(t, ok)
	assert.Empty(t, c.Arbiters())
}

func TestConstraints_SolveJoint(t *testing.T) {
	store := testStore{
		1: actor.NewRigidBody(mgl64.Vec4{0, 0, 0, 0}, actor.BodyTypeDynamic, 1),
		2: actor.NewRigidBody(mgl64.Vec4{2, 0, 0, 0}, actor.BodyTypeDynamic, 1),
	}
	store[1].Velocity = mgl64.Vec4{0, 1, 0, 0}

	c := NewConstraints(nil)
	c.AddJoint(NewJoint(1, 2, mgl64.Vec4{1, 0, 0, 0}, mgl64.Vec4{-1, 0, 0, 0}))

	c.Prepare(dt, store)
	for range 4 {
		c.Apply(store)
	}

	relative := store[1].VelocityAt(mgl64.Vec4{1, 0, 0, 0}).Sub(store[2].VelocityAt(mgl64.Vec4{-1, 0, 0, 0}))
	assertVec(t, mgl64.Vec4{}, relative)
}

func TestConstraints_MissingBodyIsSkipped(t *testing.T) {
	logger, logs := newObservedLogger()
	store := testStore{
		1: actor.NewRigidBody(mgl64.Vec4{}, actor.BodyTypeDynamic, 1),
	}
	store[1].Velocity = mgl64.Vec4{0, 1, 0, 0}

	c := NewConstraints(logger)
	c.AddJoint(NewJoint(1, 2, mgl64.Vec4{}, mgl64.Vec4{}))

	c.Prepare(dt, store)
	c.Apply(store)

	assert.Equal(t, mgl64.Vec4{0, 1, 0, 0}, store[1].Velocity)
	entries := logs.FilterMessage("constraint bodies unavailable").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

func TestConstraints_SingularIsSkipped(t *testing.T) {
	logger, logs := newObservedLogger()
	store := testStore{
		1: actor.NewStaticBody(mgl64.Vec4{}),
		2: actor.NewStaticBody(mgl64.Vec4{1, 0, 0, 0}),
	}

	c := NewConstraints(logger)
	c.AddJoint(NewJoint(1, 2, mgl64.Vec4{}, mgl64.Vec4{}))

	c.Prepare(dt, store)
	c.Apply(store)

	assert.Empty(t, c.prepared)
	assert.Equal(t, 1, logs.FilterMessage("constraint skipped").Len())
}

func TestConstraints_DeterministicOrder(t *testing.T) {
	run := func() mgl64.Vec4 {
		store := testStore{
			1: actor.NewRigidBody(mgl64.Vec4{0, 0, 0, 0}, actor.BodyTypeDynamic, 1),
			2: actor.NewRigidBody(mgl64.Vec4{2, 0, 0, 0}, actor.BodyTypeDynamic, 1),
			3: actor.NewRigidBody(mgl64.Vec4{2, 2, 0, 0}, actor.BodyTypeDynamic, 1),
			4: actor.NewRigidBody(mgl64.Vec4{0, 2, 0, 0}, actor.BodyTypeDynamic, 1),
		}
		store[1].Velocity = mgl64.Vec4{0.3, 1, 0, -0.2}

		c := NewConstraints(nil)
		c.AddJoint(NewJoint(3, 4, mgl64.Vec4{-1, 0, 0, 0}, mgl64.Vec4{1, 0, 0, 0}))
		c.AddJoint(NewJoint(1, 2, mgl64.Vec4{1, 0, 0, 0}, mgl64.Vec4{-1, 0, 0, 0}))
		c.AddJoint(NewJoint(2, 3, mgl64.Vec4{0, 1, 0, 0}, mgl64.Vec4{0, -1, 0, 0}))
		c.AddJoint(NewJoint(1, 4, mgl64.Vec4{0, 1, 0, 0}, mgl64.Vec4{0, -1, 0, 0}))

		c.Prepare(dt, store)
		c.Apply(store)
		return store[3].Velocity
	}

	first := run()
	for range 10 {
		assert.Equal(t, first, run())
	}
}
