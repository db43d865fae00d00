// Package renderer provides the OpenGL pipeline backend.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/ssao/internal/engine/framebuffer"
	"github.com/Faultbox/ssao/internal/engine/mesh"
	"github.com/Faultbox/ssao/internal/engine/pipeline"
	"github.com/Faultbox/ssao/internal/engine/renderer/shaders"
	"github.com/Faultbox/ssao/internal/engine/shader"
	"github.com/Faultbox/ssao/internal/logger"
	"github.com/Faultbox/ssao/pkg/math"
)

// Texture units used by the screen-space passes.
const (
	unitPosition  = 0
	unitNormal    = 1
	unitNoise     = 2
	unitAlbedo    = 3
	unitOcclusion = 4
)

// Renderer runs the four passes with GLSL programs.
// IMPORTANT: Must be created and used on the thread owning the GL context.
type Renderer struct {
	scene   pipeline.Scene
	targets *Targets
	log     *zap.Logger

	geometryProg  *shader.Program
	occlusionProg *shader.Program
	blurProg      *shader.Program
	composeProg   *shader.Program

	meshVAO    uint32
	meshVBOs   [2]uint32 // Positions, normals
	meshEBO    uint32
	indexCount int32

	screenVAO uint32 // Attribute-less fullscreen triangle
	noiseTex  uint32
}

var _ pipeline.Backend = (*Renderer)(nil)

// New initializes OpenGL and creates the render targets, programs and buffers.
func New(width, height int, scene pipeline.Scene) (*Renderer, error) {
	if err := scene.Validate(); err != nil {
		return nil, fmt.Errorf("gl renderer: %w", err)
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	log := logger.Named("renderer")
	log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	r := &Renderer{scene: scene, log: log}

	targets, err := NewTargets(width, height)
	if err != nil {
		return nil, err
	}
	r.targets = targets

	if err := r.buildPrograms(); err != nil {
		r.Close()
		return nil, err
	}
	r.uploadMesh(scene.Mesh)
	r.uploadNoise()
	gl.GenVertexArrays(1, &r.screenVAO)

	// Kernel is fixed for the renderer lifetime
	r.occlusionProg.Use()
	r.occlusionProg.SetVec3Array("uSamples", scene.Kernel.Flat())
	r.occlusionProg.SetInt("uKernelSize", int32(len(scene.Kernel)))
	r.occlusionProg.SetInt("gPosition", unitPosition)
	r.occlusionProg.SetInt("gNormal", unitNormal)
	r.occlusionProg.SetInt("uNoise", unitNoise)

	r.blurProg.Use()
	r.blurProg.SetInt("uOcclusion", unitOcclusion)
	r.blurProg.SetInt("uSize", int32(scene.Noise.Size))

	r.composeProg.Use()
	r.composeProg.SetInt("gPosition", unitPosition)
	r.composeProg.SetInt("gAlbedo", unitAlbedo)
	r.composeProg.SetInt("uOcclusion", unitOcclusion)
	r.composeProg.SetVec3("uBackground", scene.Background)
	gl.UseProgram(0)

	log.Debug("gl renderer created",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("triangles", scene.Mesh.TriangleCount()),
		zap.Int("kernel", len(scene.Kernel)))
	return r, nil
}

func (r *Renderer) buildPrograms() error {
	programs := []struct {
		dst      **shader.Program
		name     string
		vertex   string
		fragment string
	}{
		{&r.geometryProg, "geometry", shaders.GeometryVertexShader, shaders.GeometryFragmentShader},
		{&r.occlusionProg, "occlusion", shaders.FullscreenVertexShader, shaders.OcclusionFragmentShader},
		{&r.blurProg, "blur", shaders.FullscreenVertexShader, shaders.BlurFragmentShader},
		{&r.composeProg, "composition", shaders.FullscreenVertexShader, shaders.CompositeFragmentShader},
	}
	for _, p := range programs {
		prog, err := shader.Build(p.name, p.vertex, p.fragment)
		if err != nil {
			return fmt.Errorf("%w: %w", pipeline.ErrShaderProgram, err)
		}
		*p.dst = prog
		r.log.Debug("shader program created", zap.String("name", p.name), zap.Uint32("program", prog.ID()))
	}
	return nil
}

func (r *Renderer) uploadMesh(m *mesh.Mesh) {
	gl.GenVertexArrays(1, &r.meshVAO)
	gl.BindVertexArray(r.meshVAO)

	gl.GenBuffers(2, &r.meshVBOs[0])
	for i, attr := range [][]float32{flatten(m.Positions), flatten(m.Normals)} {
		gl.BindBuffer(gl.ARRAY_BUFFER, r.meshVBOs[i])
		if len(attr) > 0 {
			gl.BufferData(gl.ARRAY_BUFFER, len(attr)*4, gl.Ptr(attr), gl.STATIC_DRAW)
		}
		gl.VertexAttribPointerWithOffset(uint32(i), 3, gl.FLOAT, false, 3*4, 0)
		gl.EnableVertexAttribArray(uint32(i))
	}

	gl.GenBuffers(1, &r.meshEBO)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.meshEBO)
	if len(m.Indices) > 0 {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, gl.Ptr(m.Indices), gl.STATIC_DRAW)
	}
	r.indexCount = int32(len(m.Indices))

	gl.BindVertexArray(0)
}

func (r *Renderer) uploadNoise() {
	n := r.scene.Noise
	data := n.Flat()

	gl.GenTextures(1, &r.noiseTex)
	gl.BindTexture(gl.TEXTURE_2D, r.noiseTex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGB16F, int32(n.Size), int32(n.Size), 0, gl.RGB, gl.FLOAT, gl.Ptr(data))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// Resize reallocates every render target or none of them.
func (r *Renderer) Resize(width, height int) error {
	return r.targets.Resize(width, height)
}

// Size returns the render target size.
func (r *Renderer) Size() (width, height int) {
	return r.targets.Size()
}

// Geometry rasterizes the mesh into the G-buffer.
func (r *Renderer) Geometry(in pipeline.FrameInputs) error {
	if err := r.targets.Bind(pipeline.PassGeometry); err != nil {
		return err
	}
	if r.indexCount == 0 {
		return nil
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)

	r.geometryProg.Use()
	r.geometryProg.SetMat4("uModel", in.Model)
	r.geometryProg.SetMat4("uView", in.View)
	r.geometryProg.SetMat4("uProjection", in.Projection)
	r.geometryProg.SetMat3("uNormalMatrix", in.NormalMatrix())
	r.geometryProg.SetVec3("uAlbedo", r.scene.Albedo)

	gl.BindVertexArray(r.meshVAO)
	gl.DrawElementsWithOffset(gl.TRIANGLES, r.indexCount, gl.UNSIGNED_INT, 0)
	gl.BindVertexArray(0)

	gl.Disable(gl.CULL_FACE)
	gl.Disable(gl.DEPTH_TEST)
	return nil
}

// Occlusion writes raw occlusion from the position and normal targets.
func (r *Renderer) Occlusion(in pipeline.FrameInputs) error {
	if err := r.targets.Bind(pipeline.PassOcclusion); err != nil {
		return err
	}
	w, h := r.targets.Size()
	noise := float32(r.scene.Noise.Size)

	r.occlusionProg.Use()
	r.occlusionProg.SetMat4("uProjection", in.Projection)
	r.occlusionProg.SetFloat("uRadius", in.Params.Radius)
	r.occlusionProg.SetFloat("uBias", in.Params.Bias)
	r.occlusionProg.SetVec2("uNoiseScale", float32(w)/noise, float32(h)/noise)

	bindTexture(unitPosition, r.targets.Texture(pipeline.RolePosition))
	bindTexture(unitNormal, r.targets.Texture(pipeline.RoleNormal))
	bindTexture(unitNoise, r.noiseTex)
	r.drawScreen()
	return nil
}

// Blur filters raw occlusion, or copies it when disabled.
func (r *Renderer) Blur(enabled bool) error {
	if err := r.targets.Bind(pipeline.PassBlur); err != nil {
		return err
	}
	r.blurProg.Use()
	if enabled {
		r.blurProg.SetInt("uEnabled", 1)
	} else {
		r.blurProg.SetInt("uEnabled", 0)
	}
	bindTexture(unitOcclusion, r.targets.Texture(pipeline.RoleOcclusionRaw))
	r.drawScreen()
	return nil
}

// Compose writes albedo × occlusion to the default framebuffer.
func (r *Renderer) Compose() error {
	if err := r.targets.Bind(pipeline.PassComposition); err != nil {
		return err
	}
	r.composeProg.Use()
	bindTexture(unitPosition, r.targets.Texture(pipeline.RolePosition))
	bindTexture(unitAlbedo, r.targets.Texture(pipeline.RoleAlbedo))
	bindTexture(unitOcclusion, r.targets.Texture(pipeline.RoleOcclusionBlurred))
	r.drawScreen()
	return nil
}

// ReadPixels returns the presented frame as RGBA bytes, bottom row first.
func (r *Renderer) ReadPixels() (pixels []byte, width, height int) {
	w, h := r.targets.Size()
	return framebuffer.ReadDefault(int32(w), int32(h)), w, h
}

func (r *Renderer) drawScreen() {
	gl.BindVertexArray(r.screenVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
	gl.BindVertexArray(0)
}

func bindTexture(unit uint32, tex uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, tex)
}

// Close releases every GL resource.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	if r.targets != nil {
		r.targets.Destroy()
	}
	for _, p := range []*shader.Program{r.geometryProg, r.occlusionProg, r.blurProg, r.composeProg} {
		if p != nil {
			p.Delete()
		}
	}
	if r.meshVAO != 0 {
		gl.DeleteVertexArrays(1, &r.meshVAO)
		gl.DeleteBuffers(2, &r.meshVBOs[0])
		gl.DeleteBuffers(1, &r.meshEBO)
	}
	if r.screenVAO != 0 {
		gl.DeleteVertexArrays(1, &r.screenVAO)
	}
	if r.noiseTex != 0 {
		gl.DeleteTextures(1, &r.noiseTex)
	}
}

func flatten(vs []math.Vec3) []float32 {
	out := make([]float32, 0, len(vs)*3)
	for _, v := range vs {
		out = append(out, v.X, v.Y, v.Z)
	}
	return out
}
