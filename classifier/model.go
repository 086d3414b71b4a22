package classifier

import (
	"fmt"
	"math"
)

// Model is an immutable binary classifier over a fixed-width input.
// Implementations are safe for concurrent use.
type Model interface {
	// Width is the expected input length.
	Width() int
	// Classes lists class names in the order Probabilities reports them.
	Classes() []string
	// Decision returns the signed margin for the second class.
	Decision(x []float64) float64
	// Probabilities returns one probability per class, summing to 1.
	Probabilities(x []float64) []float64
}

// Scaler standardizes inputs as (x - Mean) / Scale before evaluation.
type Scaler struct {
	Mean  []float64 `json:"mean" msgpack:"mean"`
	Scale []float64 `json:"scale" msgpack:"scale"`
}

func (s *Scaler) apply(x []float64) []float64 {
	if s == nil {
		return x
	}
	out := make([]float64, len(x))
	for i, v := range x {
		scale := s.Scale[i]
		if scale == 0 {
			scale = 1
		}
		out[i] = (v - s.Mean[i]) / scale
	}
	return out
}

func (s *Scaler) validate(width int) error {
	if s == nil {
		return nil
	}
	if len(s.Mean) != width || len(s.Scale) != width {
		return fmt.Errorf("scaler has %d/%d entries, want %d", len(s.Mean), len(s.Scale), width)
	}
	return nil
}

// Node is one entry of a flattened decision tree. Internal nodes send
// x[Feature] <= Threshold to Left, everything else to Right. Leaves have
// Left < 0 and carry per-class Value counts or fractions.
type Node struct {
	Feature   int       `json:"feature" msgpack:"feature"`
	Threshold float64   `json:"threshold" msgpack:"threshold"`
	Left      int       `json:"left" msgpack:"left"`
	Right     int       `json:"right" msgpack:"right"`
	Value     []float64 `json:"value,omitempty" msgpack:"value,omitempty"`
}

// IsLeaf reports whether the node terminates a path.
func (n Node) IsLeaf() bool { return n.Left < 0 }

// Tree is a decision tree stored as a flat node array rooted at index 0.
type Tree struct {
	Nodes []Node `json:"nodes" msgpack:"nodes"`
}

// leaf walks the tree for x and returns the normalized class distribution.
func (t Tree) leaf(x []float64) []float64 {
	i := 0
	for steps := 0; steps <= len(t.Nodes); steps++ {
		n := t.Nodes[i]
		if n.IsLeaf() {
			return normalize(n.Value)
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
	// unreachable for trees that passed validate
	return nil
}

func (t Tree) validate(width, classes int) error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("empty tree")
	}
	for i, n := range t.Nodes {
		if n.IsLeaf() {
			if len(n.Value) != classes {
				return fmt.Errorf("leaf %d has %d values, want %d", i, len(n.Value), classes)
			}
			continue
		}
		if n.Feature < 0 || n.Feature >= width {
			return fmt.Errorf("node %d splits on feature %d outside width %d", i, n.Feature, width)
		}
		// children must come after their parent so the walk cannot loop
		if n.Left <= i || n.Left >= len(t.Nodes) || n.Right <= i || n.Right >= len(t.Nodes) {
			return fmt.Errorf("node %d has invalid children %d/%d", i, n.Left, n.Right)
		}
	}
	return nil
}

func normalize(v []float64) []float64 {
	out := make([]float64, len(v))
	var sum float64
	for _, x := range v {
		sum += x
	}
	if sum <= 0 {
		for i := range out {
			out[i] = 1 / float64(len(out))
		}
		return out
	}
	for i, x := range v {
		out[i] = x / sum
	}
	return out
}

// Forest averages leaf distributions across its trees.
type Forest struct {
	width   int
	classes []string
	scaler  *Scaler
	trees   []Tree
}

func (f *Forest) Width() int        { return f.width }
func (f *Forest) Classes() []string { return append([]string(nil), f.classes...) }

func (f *Forest) Probabilities(x []float64) []float64 {
	x = f.scaler.apply(x)
	out := make([]float64, len(f.classes))
	for _, t := range f.trees {
		for i, p := range t.leaf(x) {
			out[i] += p
		}
	}
	for i := range out {
		out[i] /= float64(len(f.trees))
	}
	return out
}

// Decision is the vote margin of the second class over the first.
func (f *Forest) Decision(x []float64) float64 {
	p := f.Probabilities(x)
	return p[1] - p[0]
}

// Logistic is a linear model with a sigmoid link.
type Logistic struct {
	width   int
	classes []string
	scaler  *Scaler
	weights []float64
	bias    float64
}

func (l *Logistic) Width() int        { return l.width }
func (l *Logistic) Classes() []string { return append([]string(nil), l.classes...) }

func (l *Logistic) Decision(x []float64) float64 {
	x = l.scaler.apply(x)
	z := l.bias
	for i, w := range l.weights {
		z += w * x[i]
	}
	return z
}

func (l *Logistic) Probabilities(x []float64) []float64 {
	p := 1 / (1 + math.Exp(-l.Decision(x)))
	return []float64{1 - p, p}
}
