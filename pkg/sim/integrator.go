package sim

import "github.com/kineograph/kineograph/pkg/geom"

// integrate advances one semi-implicit Euler step: velocity is updated from
// the force first, and the updated velocity moves the position. Damping
// removes a fixed fraction of the updated velocity so the system settles
// instead of oscillating. Results are written into newVel and newPos so the
// snapshot stays untouched until the caller commits.
func integrate(positions, velocities, forces []geom.Vector2D, masses []float64, dt, damping float64, newPos, newVel []geom.Vector2D) {
	retain := 1 - damping
	for i := range positions {
		newVel[i] = velocities[i].Add(forces[i].Scale(dt / masses[i])).Scale(retain)
		newPos[i] = positions[i].Add(newVel[i].Scale(dt))
	}
}
