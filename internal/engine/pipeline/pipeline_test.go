package pipeline

import (
	"math/rand/v2"
	"testing"

	"github.com/Faultbox/ssao/internal/engine/kernel"
	"github.com/Faultbox/ssao/internal/engine/mesh"
)

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	if p.Radius != 0.5 || p.Bias != 0.025 || !p.BlurEnabled {
		t.Errorf("DefaultParams = %+v", p)
	}
	if p.Clamp() != p {
		t.Error("defaults should already be in range")
	}
}

func TestParamsClamp(t *testing.T) {
	tests := []struct {
		in     Params
		radius float32
		bias   float32
	}{
		{Params{Radius: 0.5, Bias: 0.025}, 0.5, 0.025},
		{Params{Radius: 10, Bias: 2}, MaxRadius, MaxBias},
		{Params{Radius: 0, Bias: -0.5}, 1e-3, 0},
		{Params{Radius: -3, Bias: 0.5}, 1e-3, 0.5},
	}

	for _, tt := range tests {
		got := tt.in.Clamp()
		if got.Radius != tt.radius || got.Bias != tt.bias {
			t.Errorf("%+v.Clamp() = %+v, want radius %f bias %f", tt.in, got, tt.radius, tt.bias)
		}
	}
}

func TestBindingFor(t *testing.T) {
	geo, err := BindingFor(PassGeometry)
	if err != nil {
		t.Fatal(err)
	}
	if len(geo.Writes) != 4 || len(geo.Reads) != 0 {
		t.Errorf("geometry binding = %+v", geo)
	}

	occ, _ := BindingFor(PassOcclusion)
	if len(occ.Writes) != 1 || occ.Writes[0] != RoleOcclusionRaw {
		t.Errorf("occlusion writes %v", occ.Writes)
	}

	// Every pass after geometry reads only targets an earlier pass wrote
	written := map[Role]bool{}
	for _, p := range Passes {
		b, err := BindingFor(p)
		if err != nil {
			t.Fatalf("BindingFor(%s): %v", p, err)
		}
		for _, r := range b.Reads {
			if !written[r] {
				t.Errorf("%s reads %s before it is written", p, r)
			}
		}
		for _, r := range b.Writes {
			written[r] = true
		}
	}

	if _, err := BindingFor(Pass(99)); err == nil {
		t.Error("expected error for unknown pass")
	}
}

func TestStrings(t *testing.T) {
	if PassBlur.String() != "blur" {
		t.Errorf("PassBlur = %q", PassBlur.String())
	}
	if RoleOcclusionBlurred.String() != "occlusion-blurred" {
		t.Errorf("RoleOcclusionBlurred = %q", RoleOcclusionBlurred.String())
	}
	if StatePresented.String() != "presented" {
		t.Errorf("StatePresented = %q", StatePresented.String())
	}
	for _, p := range Passes {
		if stateFor(p).String() != p.String() {
			t.Errorf("state for %s is %s", p, stateFor(p))
		}
	}
}

func TestSceneValidate(t *testing.T) {
	k, noise := kernel.Generate(8, 4, rand.New(rand.NewPCG(1, 1)))
	good := Scene{Mesh: mesh.Quad(), Kernel: k, Noise: noise}
	if err := good.Validate(); err != nil {
		t.Fatalf("valid scene rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Scene)
	}{
		{"no mesh", func(s *Scene) { s.Mesh = nil }},
		{"bad mesh", func(s *Scene) { s.Mesh = &mesh.Mesh{Indices: []uint32{0}} }},
		{"empty kernel", func(s *Scene) { s.Kernel = nil }},
		{"oversized kernel", func(s *Scene) { s.Kernel = make(kernel.Kernel, kernel.MaxSize+1) }},
		{"short noise", func(s *Scene) { s.Noise.Vectors = s.Noise.Vectors[:3] }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := good
			tt.mutate(&s)
			if err := s.Validate(); err == nil {
				t.Error("expected error")
			}
		})
	}

	empty := good
	empty.Mesh = &mesh.Mesh{}
	if err := empty.Validate(); err != nil {
		t.Errorf("empty mesh is a valid scene: %v", err)
	}
}
