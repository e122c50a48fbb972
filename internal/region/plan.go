package region

import (
	"errors"
	"fmt"
)

// Document names the implicit root region: the whole flattened text.
const Document = "document"

// Sentinel errors for region plans.
var (
	// ErrDuplicateRegion is returned when two regions share a name.
	ErrDuplicateRegion = errors.New("region already defined")

	// ErrUnknownParent is returned when a region names a parent that does not exist.
	ErrUnknownParent = errors.New("unknown parent region")

	// ErrDependencyCycle is returned when parent links form a cycle.
	ErrDependencyCycle = errors.New("region dependency cycle detected")
)

// Spec declares one named region carved from its parent.
// An empty Parent means the region is carved from the whole document.
type Spec struct {
	Name     string
	Parent   string
	Boundary *Boundary
}

// Plan is a set of region specs ordered so that every parent is carved before
// its children.
type Plan struct {
	ordered []Spec
	index   map[string]int
}

// NewPlan validates specs and orders them by dependency. Regions at the same
// depth keep their declaration order.
func NewPlan(specs []Spec) (*Plan, error) {
	byName := make(map[string]Spec, len(specs))
	order := make([]string, 0, len(specs))
	for _, s := range specs {
		if s.Name == "" || s.Name == Document {
			return nil, fmt.Errorf("invalid region name %q", s.Name)
		}
		if s.Boundary == nil {
			return nil, fmt.Errorf("region %q has no boundary", s.Name)
		}
		if _, exists := byName[s.Name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRegion, s.Name)
		}
		if s.Parent == Document {
			s.Parent = ""
		}
		byName[s.Name] = s
		order = append(order, s.Name)
	}

	inDegree := make(map[string]int, len(order))
	for _, name := range order {
		parent := byName[name].Parent
		if parent == "" {
			continue
		}
		if _, ok := byName[parent]; !ok {
			return nil, fmt.Errorf("%w: region %q depends on %q", ErrUnknownParent, name, parent)
		}
		inDegree[name]++
	}

	// Kahn's algorithm; declaration order breaks ties so plans are stable.
	var queue []string
	for _, name := range order {
		if inDegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	p := &Plan{index: make(map[string]int, len(order))}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]

		p.index[name] = len(p.ordered)
		p.ordered = append(p.ordered, byName[name])

		for _, child := range order {
			if byName[child].Parent == name {
				inDegree[child]--
				if inDegree[child] == 0 {
					queue = append(queue, child)
				}
			}
		}
	}

	if len(p.ordered) != len(order) {
		return nil, ErrDependencyCycle
	}
	return p, nil
}

// Specs returns the region specs in carving order.
func (p *Plan) Specs() []Spec {
	out := make([]Spec, len(p.ordered))
	copy(out, p.ordered)
	return out
}

// Has reports whether name is a region of this plan or the document root.
func (p *Plan) Has(name string) bool {
	if name == Document || name == "" {
		return true
	}
	_, ok := p.index[name]
	return ok
}

// Carve extracts every region of the plan from text. Children of an absent
// region are absent too. The result is owned by the caller.
func (p *Plan) Carve(text string) Regions {
	out := Regions{text: text, byName: make(map[string]string, len(p.ordered))}
	for _, s := range p.ordered {
		source := text
		if s.Parent != "" {
			source = out.byName[s.Parent]
		}
		out.byName[s.Name] = Extract(source, s.Boundary)
	}
	return out
}

// Regions holds the carved text of one document.
type Regions struct {
	text   string
	byName map[string]string
}

// Get returns the text of a region. Document returns the whole text.
func (r Regions) Get(name string) string {
	if name == Document || name == "" {
		return r.text
	}
	return r.byName[name]
}

// Found reports whether a region was carved with non-empty text.
func (r Regions) Found(name string) bool {
	return r.Get(name) != ""
}
