package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/akmonengine/feather4d"
	"github.com/akmonengine/feather4d/actor"
	"github.com/akmonengine/feather4d/config"
	"github.com/akmonengine/feather4d/ga"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// SceneDebugger prints the state of the scene bodies after each step
type SceneDebugger struct {
	world *feather4d.World
	names map[actor.BodyID]string
}

func (d *SceneDebugger) Track(id actor.BodyID, name string) {
	d.names[id] = name
}

func (d *SceneDebugger) DebugBodies(step int) {
	fmt.Printf("--- STEP %d ---\n", step)
	for id, body := range d.world.Bodies() {
		name, ok := d.names[id]
		if !ok {
			continue
		}
		fmt.Printf("  %-8s position=%v velocity=%v (|ω|=%.3f)\n", name, body.Position, body.Velocity, body.AngularVelocity.Len())
	}
}

func (d *SceneDebugger) DebugEvent(event feather4d.Event) {
	switch e := event.(type) {
	case feather4d.CollisionEnterEvent:
		fmt.Printf("  enter %s/%s\n", d.names[e.BodyA], d.names[e.BodyB])
	case feather4d.CollisionExitEvent:
		fmt.Printf("  exit  %s/%s\n", d.names[e.BodyA], d.names[e.BodyB])
	}
}

// SetupScene creates a floor, a tilted cube falling on it and a pendulum hanging from a static anchor
func SetupScene(cfg config.Config, logger *zap.Logger) (*feather4d.World, *SceneDebugger, error) {
	world := feather4d.NewWorld(cfg.World, logger)
	debugger := &SceneDebugger{world: world, names: make(map[actor.BodyID]string)}
	world.Events.Subscribe(feather4d.COLLISION_ENTER, debugger.DebugEvent)
	world.Events.Subscribe(feather4d.COLLISION_EXIT, debugger.DebugEvent)

	floorMesh := actor.Cube().Scaled(mgl64.Vec4{20, 1, 20, 20})
	floor := world.AddBody(actor.NewStaticBody(mgl64.Vec4{0, -0.5, 0, 0}), actor.NewMeshCollider(floorMesh))
	debugger.Track(floor, "floor")

	cubeBody := cfg.Body.NewRigidBody(mgl64.Vec4{0, 3, 0, 0})
	// Tilted in the xy and zw planes
	cubeBody.Orientation = ga.FromBivector(ga.Bivector{0, 0, 0, math.Pi / 10, 0, math.Pi / 12})
	cube := world.AddBody(cubeBody, actor.NewMeshCollider(actor.Cube()))
	debugger.Track(cube, "cube")

	anchor := world.AddBody(actor.NewStaticBody(mgl64.Vec4{4, 6, 0, 0}), nil)
	bob := world.AddBody(cfg.Body.NewRigidBody(mgl64.Vec4{6, 6, 0, 0}), actor.NewMeshCollider(actor.Cube().Scaled(mgl64.Vec4{0.5, 0.5, 0.5, 0.5})))
	debugger.Track(bob, "pendulum")
	if _, err := world.AddJoint(anchor, bob, mgl64.Vec4{}, mgl64.Vec4{-2, 0, 0, 0}); err != nil {
		return nil, nil, err
	}

	return world, debugger, nil
}

func run(path string, steps int, every int) error {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Read(path); err != nil {
			return err
		}
	}

	logger, err := cfg.Log.Logger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	world, debugger, err := SetupScene(cfg, logger)
	if err != nil {
		return err
	}

	for step := 1; step <= steps; step++ {
		world.Update()
		if step%every == 0 {
			debugger.DebugBodies(step)
		}
	}

	return nil
}

func main() {
	path := flag.String("config", "", "INI file overriding the default settings")
	steps := flag.Int("steps", 600, "number of steps to simulate")
	every := flag.Int("every", 60, "print the bodies every n steps")
	flag.Parse()

	if err := run(*path, *steps, max(*every, 1)); err != nil {
		fmt.Fprintf(os.Stderr, "simpleScene: %v\n", err)
		os.Exit(1)
	}
}
