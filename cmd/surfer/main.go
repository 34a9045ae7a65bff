// Command surfer runs sticky bodies over a collision scene and logs what they do.
package main

import (
	"fmt"
	"os"

	"github.com/akmonengine/sticky"
	"github.com/akmonengine/sticky/actor"
	"github.com/akmonengine/sticky/collider"
	"github.com/akmonengine/sticky/internal/config"
	"github.com/akmonengine/sticky/internal/logger"
	"github.com/akmonengine/sticky/surface"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

func main() {
	config.ParseFlags()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "surfer: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.LogFile)
	defer func() { _ = log.Sync() }()

	scene, err := SetupScene(cfg, log)
	if err != nil {
		log.Fatal("building scene", zap.Error(err))
	}

	world, bodies := SetupWorld(cfg, scene, log)
	Run(cfg, world, bodies, log)
}

// LoadMeshes returns the glTF meshes, or the procedural shape when no file is set
func LoadMeshes(scene config.SceneConfig) ([]*collider.Mesh, error) {
	var meshes []*collider.Mesh

	if scene.GLTF != "" {
		loaded, err := collider.LoadGLTF(scene.GLTF)
		if err != nil {
			return nil, err
		}
		meshes = loaded
	} else {
		switch scene.Shape {
		case config.ShapeSphere:
			meshes = append(meshes, collider.NewSphereMesh(scene.Size, 16, 32))
		case config.ShapeBox:
			meshes = append(meshes, collider.NewBoxMesh(mgl64.Vec3{scene.Size, scene.Size, scene.Size}))
		case config.ShapePlane:
			meshes = append(meshes, collider.NewPlaneMesh(scene.Size, scene.Size, 8))
		default:
			return nil, fmt.Errorf("unknown shape %q", scene.Shape)
		}
	}

	if scene.Flat {
		for i, mesh := range meshes {
			meshes[i] = mesh.Flatten()
		}
	}

	return meshes, nil
}

// SetupScene builds the collision world the bodies surf on
func SetupScene(cfg *config.Config, log *zap.Logger) (*collider.World, error) {
	meshes, err := LoadMeshes(cfg.Scene)
	if err != nil {
		return nil, err
	}
	if len(meshes) == 0 {
		return nil, fmt.Errorf("scene has no meshes")
	}

	scene := collider.NewWorld(cfg.Simulation.CellSize, cfg.Simulation.NumCells, log.Named("collider"))
	for i, mesh := range meshes {
		c, err := collider.NewMeshCollider(surface.OwnerID(i+1), mesh, actor.NewTransform())
		if err != nil {
			return nil, fmt.Errorf("mesh %d: %w", i, err)
		}
		scene.Add(c)
	}

	bounds := scene.Bounds()
	log.Info("scene ready",
		zap.Int("meshes", len(meshes)),
		zap.Int("triangles", scene.TriangleCount()),
		zap.Float64s("min", bounds.Min[:]),
		zap.Float64s("max", bounds.Max[:]),
	)

	return scene, nil
}

// SetupWorld spawns the bodies in a row above the scene
func SetupWorld(cfg *config.Config, scene *collider.World, log *zap.Logger) (*sticky.World, []*actor.RigidBody) {
	world := sticky.NewWorld(scene, log.Named("sticky"))
	gravity := cfg.Gravity
	world.Gravity = &gravity
	world.Workers = cfg.Simulation.Workers

	bounds := scene.Bounds()
	center := bounds.Min.Add(bounds.Max).Mul(0.5)
	span := bounds.Max.X() - bounds.Min.X()

	bodies := make([]*actor.RigidBody, 0, cfg.Simulation.Bodies)
	for i := 0; i < cfg.Simulation.Bodies; i++ {
		// middle half of the scene, off the mesh vertices
		x := center.X() - span/4 + span/2*(float64(i)+0.5)/float64(cfg.Simulation.Bodies)
		position := mgl64.Vec3{x, bounds.Max.Y() + cfg.Simulation.SpawnHeight, center.Z() + 0.01*float64(i+1)}

		rb := actor.NewRigidBody(actor.Transform{Position: position}, actor.BodyTypeDynamic, 1)
		world.NewBody(&rb.Transform, rb, cfg.Surface)
		bodies = append(bodies, rb)
	}

	speed := cfg.Simulation.Speed
	world.Events.Subscribe(sticky.ON_ATTACH, func(event sticky.Event) {
		e := event.(sticky.AttachEvent)
		if e.Body.Velocity().Len() == 0 {
			e.Body.SetVelocity(e.Body.Pose().Forward().Mul(speed))
		}
		log.Info("attached", zap.Int("triangle", e.Triangle.Index), zap.Float64s("position", e.Position[:]))
	})
	world.Events.Subscribe(sticky.ON_DETACH, func(event sticky.Event) {
		e := event.(sticky.DetachEvent)
		log.Info("detached", zap.Stringer("reason", e.Reason), zap.Float64s("position", e.Position[:]))
	})
	world.Events.Subscribe(sticky.ON_CROSS, func(event sticky.Event) {
		e := event.(sticky.CrossEvent)
		log.Debug("crossed", zap.Stringer("mode", e.Mode), zap.Int("from", e.From.Index), zap.Int("to", e.To.Index))
	})

	return world, bodies
}

// Run steps the world and reports every body periodically
func Run(cfg *config.Config, world *sticky.World, bodies []*actor.RigidBody, log *zap.Logger) {
	dt := cfg.Simulation.Dt

	for step := 0; step < cfg.Simulation.Steps; step++ {
		world.Step(dt)

		if cfg.Simulation.LogEvery <= 0 || (step+1)%cfg.Simulation.LogEvery != 0 {
			continue
		}
		for i, b := range world.Bodies {
			position := bodies[i].Transform.Position
			up := b.Pose().Up()
			log.Info("body",
				zap.Int("step", step+1),
				zap.Int("body", i),
				zap.Bool("attached", b.IsAttached()),
				zap.Float64s("position", position[:]),
				zap.Float64s("up", up[:]),
				zap.Float64("speed", b.Velocity().Len()),
			)
		}
	}

	attached := 0
	for _, b := range world.Bodies {
		if b.IsAttached() {
			attached++
		}
	}
	log.Info("done", zap.Int("steps", cfg.Simulation.Steps), zap.Int("attached", attached), zap.Int("bodies", len(world.Bodies)))
}
