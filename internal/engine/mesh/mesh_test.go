package mesh

import (
	"errors"
	gomath "math"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/ssao/pkg/formats"
	"github.com/Faultbox/ssao/pkg/math"
)

func approx(a, b float32) bool {
	return gomath.Abs(float64(a-b)) < 1e-5
}

func approxVec(a, b math.Vec3) bool {
	return approx(a.X, b.X) && approx(a.Y, b.Y) && approx(a.Z, b.Z)
}

func TestQuad(t *testing.T) {
	q := Quad()

	if len(q.Positions) != 4 {
		t.Errorf("expected 4 positions, got %d", len(q.Positions))
	}
	if q.TriangleCount() != 2 {
		t.Errorf("expected 2 triangles, got %d", q.TriangleCount())
	}
	if err := q.Validate(); err != nil {
		t.Fatalf("quad should validate: %v", err)
	}

	want := math.Vec3{Z: 1}
	for i, n := range q.Normals {
		if !approxVec(n, want) {
			t.Errorf("normal %d = %v, want %v", i, n, want)
		}
	}

	b := q.Bounds()
	if !approxVec(b.Size(), math.Vec3{X: 1, Y: 1}) {
		t.Errorf("quad size = %v, want unit square", b.Size())
	}
}

func TestBoxNormalsPointOutward(t *testing.T) {
	lo := math.Vec3{X: -1, Y: -2, Z: -3}
	hi := math.Vec3{X: 1, Y: 2, Z: 3}
	box := Box(lo, hi)

	if err := box.Validate(); err != nil {
		t.Fatalf("box should validate: %v", err)
	}
	if box.TriangleCount() != 12 {
		t.Errorf("expected 12 triangles, got %d", box.TriangleCount())
	}

	center := box.Bounds().Center()
	for i, p := range box.Positions {
		n := box.Normals[i]
		if n.Length() < 0.99 {
			t.Fatalf("normal %d not unit: %v", i, n)
		}
		if p.Sub(center).Dot(n) <= 0 {
			t.Errorf("normal %d = %v points inward at %v", i, n, p)
		}
	}
}

func TestComputeNormals(t *testing.T) {
	q := Quad()
	q.Normals = nil
	ComputeNormals(q)

	if len(q.Normals) != len(q.Positions) {
		t.Fatalf("expected %d normals, got %d", len(q.Positions), len(q.Normals))
	}
	for i, n := range q.Normals {
		if !approxVec(n, math.Vec3{Z: 1}) {
			t.Errorf("normal %d = %v, want +Z", i, n)
		}
	}
}

func TestComputeNormalsWeightsByArea(t *testing.T) {
	// Shared vertex 0 between a large +Z triangle and a small +X triangle
	m := &Mesh{
		Positions: []math.Vec3{
			{},
			{X: 2}, {Y: 2},
			{Y: 0.1}, {Z: -0.1},
		},
		Indices: []uint32{0, 1, 2, 0, 3, 4},
	}
	ComputeNormals(m)

	n := m.Normals[0]
	if n.Z <= n.X {
		t.Errorf("larger face should dominate: got %v", n)
	}
	if !approx(n.Length(), 1) {
		t.Errorf("accumulated normal not renormalized: %v", n)
	}
}

func TestComputeNormalsUnusedVertexStaysZero(t *testing.T) {
	m := &Mesh{
		Positions: []math.Vec3{{}, {X: 1}, {Y: 1}, {Z: 5}},
		Indices:   []uint32{0, 1, 2},
	}
	ComputeNormals(m)

	if m.Normals[3] != (math.Vec3{}) {
		t.Errorf("unreferenced vertex normal = %v, want zero", m.Normals[3])
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		mesh Mesh
	}{
		{
			name: "partial triangle",
			mesh: Mesh{
				Positions: make([]math.Vec3, 3),
				Normals:   make([]math.Vec3, 3),
				Indices:   []uint32{0, 1},
			},
		},
		{
			name: "index out of range",
			mesh: Mesh{
				Positions: make([]math.Vec3, 3),
				Normals:   make([]math.Vec3, 3),
				Indices:   []uint32{0, 1, 3},
			},
		},
		{
			name: "missing normals",
			mesh: Mesh{
				Positions: make([]math.Vec3, 3),
				Normals:   make([]math.Vec3, 2),
				Indices:   []uint32{0, 1, 2},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.mesh.Validate(); !errors.Is(err, ErrInvalidMesh) {
				t.Errorf("expected ErrInvalidMesh, got %v", err)
			}
		})
	}
}

func TestEmpty(t *testing.T) {
	if !(&Mesh{}).Empty() {
		t.Error("zero mesh should be empty")
	}
	noFaces := &Mesh{Positions: make([]math.Vec3, 3), Normals: make([]math.Vec3, 3)}
	if !noFaces.Empty() {
		t.Error("mesh without indices should be empty")
	}
	if err := noFaces.Validate(); err != nil {
		t.Errorf("mesh without indices is still valid: %v", err)
	}
	if Quad().Empty() {
		t.Error("quad should not be empty")
	}
}

func TestMerge(t *testing.T) {
	a := Quad()
	b := Box(math.Vec3{}, math.Vec3{X: 1, Y: 1, Z: 1})
	m := Merge(a, b)

	if len(m.Positions) != len(a.Positions)+len(b.Positions) {
		t.Errorf("merged %d positions, want %d", len(m.Positions), len(a.Positions)+len(b.Positions))
	}
	if m.TriangleCount() != a.TriangleCount()+b.TriangleCount() {
		t.Errorf("merged %d triangles", m.TriangleCount())
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("merged mesh should validate: %v", err)
	}
	if m.Indices[len(a.Indices)] != uint32(len(a.Positions)) {
		t.Errorf("second mesh indices not rebased: %d", m.Indices[len(a.Indices)])
	}
}

func TestDemo(t *testing.T) {
	d := Demo()
	if d.Empty() {
		t.Fatal("demo scene should not be empty")
	}
	if err := d.Validate(); err != nil {
		t.Fatalf("demo scene should validate: %v", err)
	}
	if d.Bounds().Max.Z > 2 {
		t.Errorf("demo scene extends too far: %v", d.Bounds())
	}
}

func TestCenterXZ(t *testing.T) {
	m := Box(math.Vec3{X: 2, Y: 1, Z: 4}, math.Vec3{X: 4, Y: 3, Z: 6})
	m.CenterXZ(0)

	b := m.Bounds()
	if !approxVec(b.Min, math.Vec3{X: -1, Y: 0, Z: -1}) {
		t.Errorf("min = %v after centering", b.Min)
	}
	if !approxVec(b.Max, math.Vec3{X: 1, Y: 2, Z: 1}) {
		t.Errorf("max = %v after centering", b.Max)
	}
}

func TestFromPLY(t *testing.T) {
	ply := &formats.PLY{
		Vertices: [][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
		Indices:  []uint32{0, 1, 2, 0, 2, 3},
	}
	m := FromPLY(ply)

	if err := m.Validate(); err != nil {
		t.Fatalf("converted mesh should validate: %v", err)
	}
	if !approxVec(m.Normals[2], math.Vec3{Z: 1}) {
		t.Errorf("normal = %v, want +Z", m.Normals[2])
	}

	// Indices are copied, not aliased
	m.Indices[0] = 3
	if ply.Indices[0] != 0 {
		t.Error("FromPLY aliased the source indices")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.ply")
	data := "ply\nformat ascii 1.0\nelement vertex 3\nproperty float x\nproperty float y\nproperty float z\n" +
		"element face 1\nproperty list uchar int vertex_indices\nend_header\n0 0 0\n1 0 0\n0 1 0\n3 0 1 2\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("failed to write mesh: %v", err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.TriangleCount() != 1 {
		t.Errorf("expected 1 triangle, got %d", m.TriangleCount())
	}
}

func TestLoadRejectsBadIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.ply")
	data := "ply\nformat ascii 1.0\nelement vertex 3\nproperty float x\nproperty float y\nproperty float z\n" +
		"element face 1\nproperty list uchar int vertex_indices\nend_header\n0 0 0\n1 0 0\n0 1 0\n3 0 1 7\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("failed to write mesh: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for out-of-range index")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/mesh.ply"); err == nil {
		t.Error("expected error for missing file")
	}
}
