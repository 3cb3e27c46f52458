package runtime

// Stack is a LIFO operand stack.
type Stack struct {
	values []Value
}

func (s *Stack) Push(values ...Value) {
	s.values = append(s.values, values...)
}

// Pop removes the top n values and returns them in push order. When fewer than n
// values are present it returns false and leaves the stack untouched.
func (s *Stack) Pop(n int) ([]Value, bool) {
	if n < 0 || len(s.values) < n {
		return nil, false
	}
	start := len(s.values) - n
	out := make([]Value, n)
	copy(out, s.values[start:])
	clear(s.values[start:])
	s.values = s.values[:start]
	return out, true
}

func (s *Stack) Peek() (Value, bool) {
	if len(s.values) == 0 {
		return nil, false
	}
	return s.values[len(s.values)-1], true
}

func (s *Stack) Len() int { return len(s.values) }

func (s *Stack) Empty() bool { return len(s.values) == 0 }

// Values returns a copy of the stack, bottom first.
func (s *Stack) Values() []Value {
	out := make([]Value, len(s.values))
	copy(out, s.values)
	return out
}
