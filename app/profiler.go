package app

import (
	"fmt"
	"sort"
	"time"
)

// Profiler times named CPU scopes of a frame and keeps named counters.
type Profiler struct {
	Scopes     map[string]time.Duration
	StartTimes map[string]time.Time
	Counts     map[string]int
	Order      []string

	now func() time.Time
}

func NewProfiler() *Profiler {
	return &Profiler{
		Scopes:     make(map[string]time.Duration),
		StartTimes: make(map[string]time.Time),
		Counts:     make(map[string]int),
		now:        time.Now,
	}
}

func (p *Profiler) BeginScope(name string) {
	if _, ok := p.Scopes[name]; !ok {
		p.Order = append(p.Order, name)
		p.Scopes[name] = 0
	}
	p.StartTimes[name] = p.now()
}

func (p *Profiler) EndScope(name string) {
	if start, ok := p.StartTimes[name]; ok {
		p.Scopes[name] = p.now().Sub(start)
		delete(p.StartTimes, name)
	}
}

func (p *Profiler) SetCount(name string, count int) {
	p.Counts[name] = count
}

// Reset zeroes the timings but keeps the scope order stable across frames.
func (p *Profiler) Reset() {
	for k := range p.Scopes {
		p.Scopes[k] = 0
	}
}

// Lines renders the timings in first-seen order followed by the counters sorted by name.
func (p *Profiler) Lines() []string {
	lines := make([]string, 0, len(p.Order)+len(p.Counts))
	for _, name := range p.Order {
		ms := float64(p.Scopes[name].Microseconds()) / 1000.0
		lines = append(lines, fmt.Sprintf("%-8s %.2f ms", name, ms))
	}

	keys := make([]string, 0, len(p.Counts))
	for k := range p.Counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%-8s %d", k, p.Counts[k]))
	}
	return lines
}
