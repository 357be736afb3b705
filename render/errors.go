package render

import "errors"

var (
	// ErrNoActivePass is returned when lights, drawables or a flush arrive before SubmitCamera.
	ErrNoActivePass = errors.New("render: no active pass")
	// ErrCapacityExceeded is returned when a point or spot light does not fit into the lights storage.
	ErrCapacityExceeded = errors.New("render: lights capacity exceeded")
	// ErrInvalidHandle is returned for nil or released meshes, materials and cameras.
	ErrInvalidHandle = errors.New("render: invalid handle")
	// ErrImplicitPassRestart is returned when SubmitCamera is called while a pass is still open.
	ErrImplicitPassRestart = errors.New("render: pass already open")
	// ErrBufferSize is returned when decoding a uniform block from a buffer of the wrong length.
	ErrBufferSize = errors.New("render: unexpected uniform buffer size")
)
