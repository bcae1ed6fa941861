package features

// Set is an ordered name→value feature map. Names keep their first
// insertion order, which is the vector order used when a model ships
// without a feature schema.
type Set struct {
	names  []string
	values map[string]float64
}

func NewSet() *Set {
	return &Set{values: make(map[string]float64)}
}

func (s *Set) Put(name string, value float64) {
	if _, ok := s.values[name]; !ok {
		s.names = append(s.names, name)
	}
	s.values[name] = value
}

func (s *Set) PutBool(name string, value bool) {
	if value {
		s.Put(name, 1)
		return
	}
	s.Put(name, 0)
}

// Merge copies every feature of o into s, overwriting equal names.
func (s *Set) Merge(o *Set) {
	if o == nil {
		return
	}
	for _, name := range o.names {
		s.Put(name, o.values[name])
	}
}

func (s *Set) Get(name string) (float64, bool) {
	v, ok := s.values[name]
	return v, ok
}

func (s *Set) Len() int {
	return len(s.names)
}

func (s *Set) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Values returns the feature values in insertion order.
func (s *Set) Values() []float64 {
	out := make([]float64, len(s.names))
	for i, name := range s.names {
		out[i] = s.values[name]
	}
	return out
}

// Ordered returns the values laid out by schema. Names the set does not
// hold are filled with 0.
func (s *Set) Ordered(schema []string) []float64 {
	out := make([]float64, len(schema))
	for i, name := range schema {
		out[i] = s.values[name]
	}
	return out
}

func (s *Set) Map() map[string]float64 {
	out := make(map[string]float64, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}
