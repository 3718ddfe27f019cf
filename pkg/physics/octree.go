// pkg/physics/octree.go
package physics

// Octree for spatial partitioning of hit-test candidates
type Octree struct {
	Boundary Box
	Capacity int
	Points   []Vector3D
	Objects  []interface{}
	Divided  bool
	Children [8]*Octree
}

// Box represents an axis-aligned volume
type Box struct {
	Center Vector3D
	Width  float64
	Height float64
	Depth  float64
}

// NewBox builds the axis-aligned box spanning two corner points
func NewBox(min, max Vector3D) Box {
	return Box{
		Center: min.Add(max).Scale(0.5),
		Width:  max.X - min.X,
		Height: max.Y - min.Y,
		Depth:  max.Z - min.Z,
	}
}

// Contains reports whether the point lies inside the box
func (b Box) Contains(point Vector3D) bool {
	return point.X >= b.Center.X-b.Width/2 &&
		point.X < b.Center.X+b.Width/2 &&
		point.Y >= b.Center.Y-b.Height/2 &&
		point.Y < b.Center.Y+b.Height/2 &&
		point.Z >= b.Center.Z-b.Depth/2 &&
		point.Z < b.Center.Z+b.Depth/2
}

// Intersects reports whether two boxes overlap
func (b Box) Intersects(other Box) bool {
	return !(other.Center.X-other.Width/2 > b.Center.X+b.Width/2 ||
		other.Center.X+other.Width/2 < b.Center.X-b.Width/2 ||
		other.Center.Y-other.Height/2 > b.Center.Y+b.Height/2 ||
		other.Center.Y+other.Height/2 < b.Center.Y-b.Height/2 ||
		other.Center.Z-other.Depth/2 > b.Center.Z+b.Depth/2 ||
		other.Center.Z+other.Depth/2 < b.Center.Z-b.Depth/2)
}

// NewOctree creates a new octree with the given boundary and per-node capacity
func NewOctree(boundary Box, capacity int) *Octree {
	return &Octree{
		Boundary: boundary,
		Capacity: capacity,
		Points:   make([]Vector3D, 0, capacity),
		Objects:  make([]interface{}, 0, capacity),
	}
}

// Insert adds an object at the given point. Returns false if the point lies
// outside the tree's boundary.
func (ot *Octree) Insert(point Vector3D, object interface{}) bool {
	if !ot.Boundary.Contains(point) {
		return false
	}

	if len(ot.Points) < ot.Capacity && !ot.Divided {
		ot.Points = append(ot.Points, point)
		ot.Objects = append(ot.Objects, object)
		return true
	}

	if !ot.Divided {
		ot.subdivide()
	}

	for _, child := range ot.Children {
		if child.Insert(point, object) {
			return true
		}
	}
	return false
}

// subdivide splits the node into eight octants
func (ot *Octree) subdivide() {
	c := ot.Boundary.Center
	w := ot.Boundary.Width / 2
	h := ot.Boundary.Height / 2
	d := ot.Boundary.Depth / 2

	i := 0
	for _, dx := range []float64{-w / 2, w / 2} {
		for _, dy := range []float64{-h / 2, h / 2} {
			for _, dz := range []float64{-d / 2, d / 2} {
				ot.Children[i] = NewOctree(Box{
					Center: Vector3D{X: c.X + dx, Y: c.Y + dy, Z: c.Z + dz},
					Width:  w,
					Height: h,
					Depth:  d,
				}, ot.Capacity)
				i++
			}
		}
	}
	ot.Divided = true
}

// Query returns all objects whose insertion points lie inside the given
// volume
func (ot *Octree) Query(area Box) []interface{} {
	found := make([]interface{}, 0)

	if !ot.Boundary.Intersects(area) {
		return found
	}

	for i, point := range ot.Points {
		if area.Contains(point) {
			found = append(found, ot.Objects[i])
		}
	}

	if !ot.Divided {
		return found
	}

	for _, child := range ot.Children {
		found = append(found, child.Query(area)...)
	}
	return found
}

// GetObjects returns objects inside the axis-aligned bounds, matching the
// query surface the projectile pipeline expects
func (ot *Octree) GetObjects(xMin, xMax, yMin, yMax, zMin, zMax float64) []interface{} {
	return ot.Query(NewBox(
		Vector3D{X: xMin, Y: yMin, Z: zMin},
		Vector3D{X: xMax, Y: yMax, Z: zMax},
	))
}

// Clear empties the tree for repopulation on the next frame, keeping the
// boundary
func (ot *Octree) Clear() {
	ot.Points = ot.Points[:0]
	ot.Objects = ot.Objects[:0]
	ot.Divided = false
	ot.Children = [8]*Octree{}
}
