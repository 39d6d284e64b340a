// Package dynamo provides the core rigid-body primitives shared by every
// stage of the physics pipeline.
//
// The package defines the entity-side data the simulation reads and writes:
//
//   - [Transform]: position, unit orientation and scale
//   - [RigidBody]: inverse mass, velocities, accumulated forces and inertia
//   - [Entity]: a transform plus an optional body and collision volume
//   - [Constraint]: a correction applied repeatedly by the solver
//   - [CollisionListener]: gameplay hooks fired on contact begin/end
//
// # Example
//
//	ball := dynamo.NewEntity("ball")
//	ball.SetVolume(shape.NewSphere(0.5))
//	ball.Transform().SetPosition(mgl64.Vec3{0, 4, 0})
//	body := ball.AttachBody(1.0)
//	body.AddForce(mgl64.Vec3{10, 0, 0})
//
// # Thread Safety
//
// Entities are NOT thread-safe. The simulator is the single writer during a
// frame; readers observe state only between frames.
package dynamo
