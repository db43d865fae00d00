// Package framebuffer provides OpenGL framebuffer utilities for offscreen rendering.
package framebuffer

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// ErrIncomplete is returned when attachments cannot form a complete framebuffer.
var ErrIncomplete = errors.New("framebuffer incomplete")

// Attachment describes one color texture.
type Attachment struct {
	InternalFormat int32  // e.g. gl.RGBA16F
	Format         uint32 // e.g. gl.RGBA
	Type           uint32 // e.g. gl.FLOAT
}

// Common attachment formats.
var (
	RGBA16F = Attachment{InternalFormat: gl.RGBA16F, Format: gl.RGBA, Type: gl.FLOAT}
	RGBA8   = Attachment{InternalFormat: gl.RGBA8, Format: gl.RGBA, Type: gl.UNSIGNED_BYTE}
	R16F    = Attachment{InternalFormat: gl.R16F, Format: gl.RED, Type: gl.FLOAT}
)

// Spec lists the attachments of a framebuffer.
type Spec struct {
	Name  string
	Color []Attachment
	Depth bool // 24-bit depth renderbuffer
}

// storage is one allocation of every attachment at one size.
type storage struct {
	colors []uint32
	depth  uint32
	width  int32
	height int32
}

func (s *storage) delete() {
	if len(s.colors) > 0 {
		gl.DeleteTextures(int32(len(s.colors)), &s.colors[0])
		s.colors = nil
	}
	if s.depth != 0 {
		gl.DeleteRenderbuffers(1, &s.depth)
		s.depth = 0
	}
}

// Framebuffer manages an offscreen render target with color and depth attachments.
// Resizing is two-phase: Stage allocates replacement storage, Commit swaps it in.
type Framebuffer struct {
	spec    Spec
	fbo     uint32
	current storage
	staged  *storage
}

// New creates a new framebuffer with the specified dimensions.
func New(spec Spec, width, height int32) (*Framebuffer, error) {
	fb := &Framebuffer{spec: spec}

	st, err := fb.allocate(width, height)
	if err != nil {
		return nil, fmt.Errorf("creating %s framebuffer: %w", spec.Name, err)
	}

	gl.GenFramebuffers(1, &fb.fbo)
	fb.attach(fb.fbo, st)
	if err := checkComplete(); err != nil {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		st.delete()
		gl.DeleteFramebuffers(1, &fb.fbo)
		return nil, fmt.Errorf("creating %s framebuffer: %w", spec.Name, err)
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	fb.current = *st
	return fb, nil
}

// allocate creates textures and the depth renderbuffer at the given size.
func (fb *Framebuffer) allocate(width, height int32) (*storage, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("invalid size %dx%d", width, height)
	}
	drainErrors()

	st := &storage{width: width, height: height, colors: make([]uint32, len(fb.spec.Color))}
	if len(st.colors) > 0 {
		gl.GenTextures(int32(len(st.colors)), &st.colors[0])
	}
	for i, a := range fb.spec.Color {
		gl.BindTexture(gl.TEXTURE_2D, st.colors[i])
		gl.TexImage2D(gl.TEXTURE_2D, 0, a.InternalFormat, width, height, 0, a.Format, a.Type, nil)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if fb.spec.Depth {
		gl.GenRenderbuffers(1, &st.depth)
		gl.BindRenderbuffer(gl.RENDERBUFFER, st.depth)
		gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, width, height)
		gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
	}

	if code := gl.GetError(); code != gl.NO_ERROR {
		st.delete()
		if code == gl.OUT_OF_MEMORY {
			return nil, fmt.Errorf("out of memory at %dx%d", width, height)
		}
		return nil, fmt.Errorf("allocating %dx%d: GL error 0x%x", width, height, code)
	}
	return st, nil
}

// attach binds fbo and attaches st to it, leaving fbo bound.
func (fb *Framebuffer) attach(fbo uint32, st *storage) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)

	drawBuffers := make([]uint32, len(st.colors))
	for i, tex := range st.colors {
		attachment := uint32(gl.COLOR_ATTACHMENT0 + i)
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, attachment, gl.TEXTURE_2D, tex, 0)
		drawBuffers[i] = attachment
	}
	if len(drawBuffers) > 0 {
		gl.DrawBuffers(int32(len(drawBuffers)), &drawBuffers[0])
	}
	if st.depth != 0 {
		gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, st.depth)
	}
}

func checkComplete() error {
	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		return fmt.Errorf("%w: 0x%x", ErrIncomplete, status)
	}
	return nil
}

func drainErrors() {
	for gl.GetError() != gl.NO_ERROR {
	}
}

// Stage allocates storage for a new size and verifies it on a scratch
// framebuffer. The framebuffer keeps rendering at its current size until Commit.
func (fb *Framebuffer) Stage(width, height int32) error {
	fb.Discard()

	st, err := fb.allocate(width, height)
	if err != nil {
		return fmt.Errorf("staging %s framebuffer: %w", fb.spec.Name, err)
	}

	var scratch uint32
	gl.GenFramebuffers(1, &scratch)
	fb.attach(scratch, st)
	err = checkComplete()
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.DeleteFramebuffers(1, &scratch)
	if err != nil {
		st.delete()
		return fmt.Errorf("staging %s framebuffer: %w", fb.spec.Name, err)
	}

	fb.staged = st
	return nil
}

// Commit attaches the staged storage and frees the old storage.
// It does nothing if nothing is staged.
func (fb *Framebuffer) Commit() {
	if fb.staged == nil {
		return
	}
	fb.attach(fb.fbo, fb.staged)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	fb.current.delete()
	fb.current = *fb.staged
	fb.staged = nil
}

// Discard frees any staged storage.
func (fb *Framebuffer) Discard() {
	if fb.staged != nil {
		fb.staged.delete()
		fb.staged = nil
	}
}

// Bind makes this framebuffer the current render target.
func (fb *Framebuffer) Bind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.fbo)
	gl.Viewport(0, 0, fb.current.width, fb.current.height)
}

// Unbind restores the default framebuffer.
func (fb *Framebuffer) Unbind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

// Clear clears color and depth buffers with the specified color.
func (fb *Framebuffer) Clear(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
	mask := uint32(gl.COLOR_BUFFER_BIT)
	if fb.spec.Depth {
		mask |= gl.DEPTH_BUFFER_BIT
	}
	gl.Clear(mask)
}

// ColorTexture returns the texture of color attachment i.
func (fb *Framebuffer) ColorTexture(i int) uint32 {
	return fb.current.colors[i]
}

// FBO returns the underlying framebuffer object ID.
func (fb *Framebuffer) FBO() uint32 {
	return fb.fbo
}

// Size returns the framebuffer dimensions.
func (fb *Framebuffer) Size() (width, height int32) {
	return fb.current.width, fb.current.height
}

// ReadDefault reads the default framebuffer as RGBA bytes, bottom row first.
func ReadDefault(width, height int32) []byte {
	pixels := make([]byte, int(width)*int(height)*4)

	var prevFBO int32
	gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &prevFBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, width, height, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))

	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(prevFBO))
	return pixels
}

// Destroy releases all OpenGL resources.
func (fb *Framebuffer) Destroy() {
	fb.Discard()
	fb.current.delete()
	if fb.fbo != 0 {
		gl.DeleteFramebuffers(1, &fb.fbo)
		fb.fbo = 0
	}
}
