// Package config reads simulation settings from an INI file.
//
// Every key is optional: a file only overrides the defaults it names.
package config

import (
	"math"

	"github.com/akmonengine/feather4d/actor"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/gcfg.v1"
)

// ExampleFile lists every key with its default value.
const ExampleFile = `[World]
# Seconds per step
Timestep = 0.008333333333333333
# Solver passes per step
Iterations = 4
GravityX = 0
GravityY = -10
GravityZ = 0
GravityW = 0

[Body]
# Defaults for dynamic bodies; damping multiplies the velocities once per step
Mass = 1
LinearDamping = 1
AngularDamping = 1
GravityScale = 1

[Log]
# debug, info, warn or error
Level = info
Development = false
`

type World struct {
	Timestep   float64
	Iterations int

	GravityX float64
	GravityY float64
	GravityZ float64
	GravityW float64
}

func (w World) Gravity() mgl64.Vec4 {
	return mgl64.Vec4{w.GravityX, w.GravityY, w.GravityZ, w.GravityW}
}

type Body struct {
	Mass           float64
	LinearDamping  float64
	AngularDamping float64
	GravityScale   float64
}

// NewRigidBody creates a dynamic body with these defaults
func (b Body) NewRigidBody(position mgl64.Vec4) *actor.RigidBody {
	rb := actor.NewRigidBody(position, actor.BodyTypeDynamic, b.Mass)
	rb.Material = b.Material()
	return rb
}

func (b Body) Material() actor.Material {
	return actor.Material{
		LinearDamping:  b.LinearDamping,
		AngularDamping: b.AngularDamping,
		GravityScale:   b.GravityScale,
	}
}

type Log struct {
	Level       string
	Development bool
}

// Logger builds a zap logger from the production or development presets
func (l Log) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return nil, errors.Wrap(err, "log level")
	}

	cfg := zap.NewProductionConfig()
	if l.Development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	return cfg.Build()
}

type Config struct {
	World World
	Body  Body
	Log   Log
}

func Default() Config {
	return Config{
		World: World{
			Timestep:   1.0 / 120.0,
			Iterations: 4,
			GravityY:   -10,
		},
		Body: Body{
			Mass:           1,
			LinearDamping:  1,
			AngularDamping: 1,
			GravityScale:   1,
		},
		Log: Log{
			Level: "info",
		},
	}
}

// Read loads the file at path over the defaults, then validates the result.
// Unknown keys are ignored.
func Read(path string) (Config, error) {
	cfg := Default()
	if err := gcfg.FatalOnly(gcfg.ReadFileInto(&cfg, path)); err != nil {
		return Config{}, errors.Wrapf(err, "reading %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

// Parse is Read for in-memory content
func Parse(text string) (Config, error) {
	cfg := Default()
	if err := gcfg.FatalOnly(gcfg.ReadStringInto(&cfg, text)); err != nil {
		return Config{}, errors.Wrap(err, "parsing config")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

// Validate reports every invalid field, not just the first one
func (c Config) Validate() error {
	var err error

	if !(c.World.Timestep > 0) || math.IsInf(c.World.Timestep, 0) {
		err = multierr.Append(err, errors.Errorf("World.Timestep must be positive, got %g", c.World.Timestep))
	}
	if c.World.Iterations < 1 {
		err = multierr.Append(err, errors.Errorf("World.Iterations must be at least 1, got %d", c.World.Iterations))
	}

	// +Inf is a valid mass: the body is static
	if !(c.Body.Mass > 0) {
		err = multierr.Append(err, errors.Errorf("Body.Mass must be positive, got %g", c.Body.Mass))
	}
	err = multierr.Append(err, checkFactor("Body.LinearDamping", c.Body.LinearDamping))
	err = multierr.Append(err, checkFactor("Body.AngularDamping", c.Body.AngularDamping))
	if math.IsNaN(c.Body.GravityScale) || math.IsInf(c.Body.GravityScale, 0) {
		err = multierr.Append(err, errors.Errorf("Body.GravityScale must be finite, got %g", c.Body.GravityScale))
	}

	if _, levelErr := zapcore.ParseLevel(c.Log.Level); levelErr != nil {
		err = multierr.Append(err, errors.Wrap(levelErr, "Log.Level"))
	}

	return err
}

func checkFactor(name string, value float64) error {
	if !(value >= 0 && value <= 1) {
		return errors.Errorf("%s must be in [0, 1], got %g", name, value)
	}
	return nil
}
