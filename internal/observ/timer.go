package observ

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Phase records the accumulated duration of one pipeline phase.
type Phase struct {
	Name  string
	Count int
	Dur   time.Duration
}

// Timer accumulates phase durations across concurrent workers. Phases are
// reported in the order they were first observed.
type Timer struct {
	mu     sync.Mutex
	order  []string
	phases map[string]*Phase
	start  time.Time
}

// NewTimer creates a Timer whose wall clock starts now.
func NewTimer() *Timer {
	return &Timer{phases: make(map[string]*Phase, 4), start: time.Now()}
}

// Track adds dur to phase name.
func (t *Timer) Track(name string, dur time.Duration) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.phases[name]
	if !ok {
		p = &Phase{Name: name}
		t.phases[name] = p
		t.order = append(t.order, name)
	}
	p.Count++
	p.Dur += dur
}

// Measure runs fn and tracks its duration under name.
func (t *Timer) Measure(name string, fn func() error) error {
	started := time.Now()
	err := fn()
	t.Track(name, time.Since(started))
	return err
}

// PhaseReport is the serialisable form of a Phase.
type PhaseReport struct {
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	DurationMS float64 `json:"duration_ms"`
}

// Report aggregates the timer.
type Report struct {
	WallMS float64       `json:"wall_ms"`
	Phases []PhaseReport `json:"phases"`
}

func (t *Timer) Report() Report {
	if t == nil {
		return Report{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	r := Report{WallMS: durationToMillis(time.Since(t.start))}
	for _, name := range t.order {
		p := t.phases[name]
		r.Phases = append(r.Phases, PhaseReport{Name: p.Name, Count: p.Count, DurationMS: durationToMillis(p.Dur)})
	}
	return r
}

// Summary renders the report for --timings. Phase times are summed over
// workers and may exceed the wall time.
func (t *Timer) Summary() string {
	r := t.Report()
	var sb strings.Builder
	sb.WriteString("timings:\n")
	for _, p := range r.Phases {
		fmt.Fprintf(&sb, "  %-12s %9.2f ms  (%d)\n", p.Name, p.DurationMS, p.Count)
	}
	fmt.Fprintf(&sb, "  %-12s %9.2f ms\n", "wall", r.WallMS)
	return sb.String()
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
