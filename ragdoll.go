package chaosnet

import (
	"math/rand"

	"github.com/jakecoffman/cp"
)

// Константы тряпичной куклы. Жёсткость сочленений в диапазоне 0.5-0.8
// даёт "расхлябанное" поведение вместо жёсткой фигуры.
const (
	ragdollSpringK    = 600.0
	ragdollDamping    = 6.0
	ragdollRestLength = 4.0
)

type ragdollPart struct {
	label  string
	shape  ShapeKind
	radius float64
	width  float64
	height float64
	offset cp.Vector
}

type ragdollJoint struct {
	a, b      int
	anchorA   cp.Vector
	anchorB   cp.Vector
	stiffness float64
}

func ragdollParts() []ragdollPart {
	return []ragdollPart{
		{label: "head", shape: ShapeCircle, radius: 10, offset: cp.Vector{X: 0, Y: -45}},
		{label: "torso", shape: ShapeBox, width: 20, height: 40, offset: cp.Vector{X: 0, Y: -10}},
		{label: "arm-left", shape: ShapeBox, width: 8, height: 30, offset: cp.Vector{X: -18, Y: -12}},
		{label: "arm-right", shape: ShapeBox, width: 8, height: 30, offset: cp.Vector{X: 18, Y: -12}},
		{label: "leg-left", shape: ShapeBox, width: 10, height: 35, offset: cp.Vector{X: -7, Y: 22}},
		{label: "leg-right", shape: ShapeBox, width: 10, height: 35, offset: cp.Vector{X: 7, Y: 22}},
	}
}

func ragdollJoints() []ragdollJoint {
	return []ragdollJoint{
		{a: 0, b: 1, anchorA: cp.Vector{X: 0, Y: 10}, anchorB: cp.Vector{X: 0, Y: -20}, stiffness: 0.8},
		{a: 1, b: 2, anchorA: cp.Vector{X: -10, Y: -16}, anchorB: cp.Vector{X: 0, Y: -12}, stiffness: 0.6},
		{a: 1, b: 3, anchorA: cp.Vector{X: 10, Y: -16}, anchorB: cp.Vector{X: 0, Y: -12}, stiffness: 0.6},
		{a: 1, b: 4, anchorA: cp.Vector{X: -6, Y: 20}, anchorB: cp.Vector{X: 0, Y: -15}, stiffness: 0.7},
		{a: 1, b: 5, anchorA: cp.Vector{X: 6, Y: 20}, anchorB: cp.Vector{X: 0, Y: -15}, stiffness: 0.7},
	}
}

// buildRagdoll создаёт шесть частей и упругие сочленения одним целым;
// общая стартовая скорость не даёт частям разлететься при появлении
func buildRagdoll(world *World, r *rand.Rand, position cp.Vector) []*Body {
	velocity := cp.Vector{
		X: (r.Float64()*2 - 1) * 40,
		Y: 60 + r.Float64()*60,
	}
	defs := ragdollParts()
	bodies := make([]*Body, len(defs))
	for i, part := range defs {
		bodies[i] = world.CreateBody(BodyDef{
			Type:        "ragdoll",
			Label:       part.label,
			Shape:       part.shape,
			Radius:      part.radius,
			Width:       part.width,
			Height:      part.height,
			Position:    position.Add(part.offset),
			Velocity:    velocity,
			Friction:    0.4,
			Restitution: 0.2,
			Density:     0.9,
		})
	}
	for _, j := range ragdollJoints() {
		spring := cp.NewDampedSpring(
			bodies[j.a].body, bodies[j.b].body,
			j.anchorA, j.anchorB,
			ragdollRestLength,
			j.stiffness*ragdollSpringK,
			ragdollDamping,
		)
		world.Connect(bodies[j.a], bodies[j.b], spring)
	}
	return bodies
}
