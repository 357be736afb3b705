package render

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/sculpto/sculpto"
)

type PassState int

const (
	PassIdle PassState = iota
	PassOpen
)

func (s PassState) String() string {
	if s == PassOpen {
		return "open"
	}
	return "idle"
}

// DrawCall is everything a device needs to issue one draw. Mesh and material are already bound.
type DrawCall struct {
	Index               int
	Mesh                Mesh
	Material            Material
	Transform           mgl32.Mat4
	Normal              mgl32.Mat3
	WorldViewProjection mgl32.Mat4
	Camera              CameraSnapshot
	Target              Framebuffer
}

type FlushStats struct {
	Draws       int
	Skipped     int
	PointLights int
	SpotLights  int
	Directional bool
}

type Option func(*RenderContext)

func WithLogger(l sculpto.Logger) Option {
	return func(c *RenderContext) { c.logger = sculpto.LoggerOrNop(l) }
}

// WithName labels the context in log lines, e.g. "shadow" or "main".
func WithName(name string) Option {
	return func(c *RenderContext) { c.name = name }
}

// WithClock replaces the time source written into the pass data block.
func WithClock(clock func() float32) Option {
	return func(c *RenderContext) { c.clock = clock }
}

func WithViewport(width, height int) Option {
	return func(c *RenderContext) { c.SetViewport(width, height) }
}

func WithAmbient(ambient mgl32.Vec3) Option {
	return func(c *RenderContext) { c.ambient = ambient }
}

// RenderContext owns the submission queue, the lights storage and the pass state of one
// rendering thread. Independent contexts (shadow, main, editor viewport) never share state.
// A RenderContext is not safe for concurrent use.
type RenderContext struct {
	name    string
	device  Device
	logger  sculpto.Logger
	clock   func() float32
	width   uint32
	height  uint32
	ambient mgl32.Vec3

	state     PassState
	pass      uint64
	cameras   []CameraSnapshot
	active    CameraHandle
	queue     *SubmissionQueue
	lights    LightsStorage
	lightsBuf []byte
}

func NewContext(device Device, opts ...Option) *RenderContext {
	start := time.Now()
	c := &RenderContext{
		name:      "main",
		device:    device,
		logger:    sculpto.NewNopLogger(),
		clock:     func() float32 { return float32(time.Since(start).Seconds()) },
		active:    NoCamera,
		queue:     NewSubmissionQueue(256),
		cameras:   make([]CameraSnapshot, 0, 1),
		lightsBuf: make([]byte, 0, LightsStorageSize),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RenderContext) Name() string     { return c.name }
func (c *RenderContext) State() PassState { return c.state }

// Pending returns the number of queued submissions of the open pass.
func (c *RenderContext) Pending() int { return c.queue.Len() }

// Lights returns a copy of the lights storage of the open pass.
func (c *RenderContext) Lights() LightsStorage { return c.lights }

func (c *RenderContext) SetViewport(width, height int) {
	c.width = uint32(max(width, 0))
	c.height = uint32(max(height, 0))
}

func (c *RenderContext) SetAmbient(ambient mgl32.Vec3) { c.ambient = ambient }

// SubmitCamera opens a pass rendered from cam. The camera parameters are copied into the
// pass camera table, so cam may change after this call without affecting the pass.
func (c *RenderContext) SubmitCamera(cam CameraParams) (CameraHandle, error) {
	if cam == nil {
		return NoCamera, fmt.Errorf("submit camera: %w", ErrInvalidHandle)
	}
	if c.state == PassOpen {
		c.logger.Warnf("%s: camera submitted while pass %d is open with %d pending submissions; call Discard to restart",
			c.name, c.pass, c.queue.Len())
		return c.active, ErrImplicitPassRestart
	}

	c.queue.Clear()
	c.lights.Reset()
	c.cameras = append(c.cameras[:0], snapshotCamera(cam))
	c.pass++
	c.active = CameraHandle{Pass: c.pass, Index: 0}
	c.state = PassOpen
	return c.active, nil
}

// Camera resolves a handle against the camera table of the open pass.
func (c *RenderContext) Camera(h CameraHandle) (CameraSnapshot, bool) {
	if c.state != PassOpen || h.Pass != c.pass || h.Index < 0 || int(h.Index) >= len(c.cameras) {
		return CameraSnapshot{}, false
	}
	return c.cameras[h.Index], true
}

func (c *RenderContext) SubmitPointLight(position, color mgl32.Vec3, constant, linear, quadratic float32) error {
	if c.state != PassOpen {
		return ErrNoActivePass
	}
	if err := c.lights.SubmitPointLight(position, color, constant, linear, quadratic); err != nil {
		c.logger.Warnf("%s: point light at %v dropped: %v", c.name, position, err)
		return err
	}
	return nil
}

func (c *RenderContext) SubmitDirectionalLight(direction, color mgl32.Vec3) error {
	if c.state != PassOpen {
		return ErrNoActivePass
	}
	if _, ok := c.lights.DirectionalLight(); ok {
		c.logger.Debugf("%s: directional light replaced", c.name)
	}
	c.lights.SubmitDirectionalLight(direction, color)
	return nil
}

func (c *RenderContext) SubmitSpotLight(position, direction, color mgl32.Vec3, innerCutoffCos, outerCutoffCos, epsilon float32) error {
	if c.state != PassOpen {
		return ErrNoActivePass
	}
	if err := c.lights.SubmitSpotLight(position, direction, color, innerCutoffCos, outerCutoffCos, epsilon); err != nil {
		c.logger.Warnf("%s: spot light at %v dropped: %v", c.name, position, err)
		return err
	}
	return nil
}

// Submit queues mesh for drawing with material and transform, using the camera of the open pass.
func (c *RenderContext) Submit(mesh Mesh, material Material, transform mgl32.Mat4) error {
	if c.state != PassOpen {
		return ErrNoActivePass
	}
	if mesh == nil || !mesh.Valid() {
		c.logger.Warnf("%s: submission %d skipped: invalid mesh", c.name, c.queue.Len())
		return fmt.Errorf("submit mesh: %w", ErrInvalidHandle)
	}
	if material == nil || !material.Valid() {
		c.logger.Warnf("%s: submission %d skipped: invalid material", c.name, c.queue.Len())
		return fmt.Errorf("submit material: %w", ErrInvalidHandle)
	}
	c.queue.Push(Submission{
		Mesh:      mesh,
		Material:  material,
		Transform: transform,
		Camera:    c.active,
	})
	return nil
}

// SubmitTRS composes Translate(position) * Rotate(anglesDeg) * Scale(scale) and submits it.
func (c *RenderContext) SubmitTRS(mesh Mesh, material Material, scale, anglesDeg, position mgl32.Vec3) error {
	return c.Submit(mesh, material, ComposeTransform(scale, anglesDeg, position))
}

// Discard abandons the open pass without drawing anything.
func (c *RenderContext) Discard() {
	if c.state != PassOpen {
		return
	}
	c.logger.Debugf("%s: pass %d discarded with %d pending submissions", c.name, c.pass, c.queue.Len())
	c.endPass()
}

func (c *RenderContext) FlushToDefaultFrameBuffer() (FlushStats, error) {
	return c.Flush(nil)
}

// Flush binds target, uploads the pass data and lights blocks, then draws every queued
// submission into target in submission order. A nil target draws into the default framebuffer.
// An invalid target fails the flush before anything reaches the device.
// The pass is closed and all per-pass state reset whether or not the flush succeeds.
func (c *RenderContext) Flush(target Framebuffer) (FlushStats, error) {
	if c.state != PassOpen {
		c.logger.Warnf("%s: flush without an active pass", c.name)
		return FlushStats{}, ErrNoActivePass
	}
	defer c.endPass()

	stats := FlushStats{
		PointLights: c.lights.PointLightsCount(),
		SpotLights:  c.lights.SpotLightsCount(),
	}
	_, stats.Directional = c.lights.DirectionalLight()

	cam := c.cameras[c.active.Index]
	pass := PassData{
		ViewProjection:  cam.ViewProjection,
		CameraPosition:  cam.Position,
		Time:            c.clock(),
		CameraDirection: cam.Direction,
		ViewportWidth:   c.width,
		Ambient:         c.ambient,
		ViewportHeight:  c.height,
		Effects:         cam.Effects,
	}
	if target != nil {
		if !target.Valid() {
			return stats, fmt.Errorf("flush target: %w", ErrInvalidHandle)
		}
		if err := target.Bind(); err != nil {
			return stats, fmt.Errorf("bind target: %w", err)
		}
		defer target.Unbind()
	}

	if err := c.device.WriteUniform(UniformPassData, pass.Encode()); err != nil {
		return stats, fmt.Errorf("upload pass data: %w", err)
	}
	c.lightsBuf = c.lights.AppendEncode(c.lightsBuf[:0])
	if err := c.device.WriteUniform(UniformLights, c.lightsBuf); err != nil {
		return stats, fmt.Errorf("upload lights: %w", err)
	}

	for i, sub := range c.queue.Items() {
		if err := c.draw(i, sub, target); err != nil {
			stats.Skipped++
			c.logger.Warnf("%s: draw %d skipped: %v", c.name, i, err)
			continue
		}
		stats.Draws++
	}

	c.logger.Debugf("%s: pass %d flushed: %d draws, %d skipped, %d point, %d spot, directional=%t",
		c.name, c.pass, stats.Draws, stats.Skipped, stats.PointLights, stats.SpotLights, stats.Directional)
	return stats, nil
}

func (c *RenderContext) draw(index int, sub Submission, target Framebuffer) error {
	if !validHandle(sub.Mesh) {
		return fmt.Errorf("mesh: %w", ErrInvalidHandle)
	}
	if !validHandle(sub.Material) {
		return fmt.Errorf("material: %w", ErrInvalidHandle)
	}
	cam, ok := c.Camera(sub.Camera)
	if !ok {
		return fmt.Errorf("camera: %w", ErrInvalidHandle)
	}

	if err := sub.Material.Bind(); err != nil {
		return fmt.Errorf("bind material: %w", err)
	}
	if err := sub.Mesh.Bind(); err != nil {
		return fmt.Errorf("bind mesh: %w", err)
	}
	defer sub.Mesh.Unbind()

	return c.device.Draw(DrawCall{
		Index:               index,
		Mesh:                sub.Mesh,
		Material:            sub.Material,
		Transform:           sub.Transform,
		Normal:              NormalMatrix(sub.Transform),
		WorldViewProjection: cam.ViewProjection.Mul4(sub.Transform),
		Camera:              cam,
		Target:              target,
	})
}

func (c *RenderContext) endPass() {
	c.queue.Clear()
	c.lights.Reset()
	c.cameras = c.cameras[:0]
	c.active = NoCamera
	c.state = PassIdle
}
