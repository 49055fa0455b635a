package enabledby

// Set is a set of active feature symbols.
type Set map[string]struct{}

// NewSet returns a set holding the given symbols.
func NewSet(symbols ...string) Set {
	s := make(Set, len(symbols))
	for _, sym := range symbols {
		s[sym] = struct{}{}
	}
	return s
}

// Has reports whether the symbol is active.
func (s Set) Has(symbol string) bool {
	_, ok := s[symbol]
	return ok
}

// IsEnabled evaluates the expression against the active feature set.
func IsEnabled(active Set, e Expr) bool {
	switch v := e.(type) {
	case Literal:
		return bool(v)
	case Symbol:
		return active.Has(string(v))
	case And:
		for _, x := range v {
			if !IsEnabled(active, x) {
				return false
			}
		}
		return true
	case Or:
		for _, x := range v {
			if IsEnabled(active, x) {
				return true
			}
		}
		return false
	case Not:
		return !IsEnabled(active, v.X)
	}
	return false
}

// Evaluate parses a raw enabled-by value and evaluates it against the active
// symbols.
func Evaluate(active []string, raw any) (bool, error) {
	e, err := Parse(raw)
	if err != nil {
		return false, err
	}
	return IsEnabled(NewSet(active...), e), nil
}
