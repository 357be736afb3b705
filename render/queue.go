package render

import "github.com/go-gl/mathgl/mgl32"

// Submission is one queued draw request.
type Submission struct {
	Mesh      Mesh
	Material  Material
	Transform mgl32.Mat4
	Camera    CameraHandle
}

// SubmissionQueue keeps submissions in insertion order, which is also the draw order.
type SubmissionQueue struct {
	items []Submission
}

func NewSubmissionQueue(capacity int) *SubmissionQueue {
	return &SubmissionQueue{items: make([]Submission, 0, capacity)}
}

func (q *SubmissionQueue) Push(s Submission) {
	q.items = append(q.items, s)
}

func (q *SubmissionQueue) Len() int { return len(q.items) }

func (q *SubmissionQueue) At(i int) Submission { return q.items[i] }

// Items returns the queued submissions. The slice is only valid until the next Clear.
func (q *SubmissionQueue) Items() []Submission { return q.items }

// Clear empties the queue but keeps its capacity for the next pass.
func (q *SubmissionQueue) Clear() {
	clear(q.items)
	q.items = q.items[:0]
}
