package mclog

// compiledFilter is an include/exclude set of event types.
type compiledFilter struct {
	include map[EventType]struct{}
	exclude map[EventType]struct{}
}

func newCompiledFilter(include, exclude []EventType) *compiledFilter {
	f := &compiledFilter{}
	if len(include) > 0 {
		f.include = make(map[EventType]struct{}, len(include))
		for _, t := range include {
			f.include[t] = struct{}{}
		}
	}
	if len(exclude) > 0 {
		f.exclude = make(map[EventType]struct{}, len(exclude))
		for _, t := range exclude {
			f.exclude[t] = struct{}{}
		}
	}
	return f
}

// Allows reports whether events of type t pass the filter. Exclude takes
// precedence over include; an empty include set allows everything.
func (f *compiledFilter) Allows(t EventType) bool {
	if f == nil {
		return true
	}
	if _, ok := f.exclude[t]; ok {
		return false
	}
	if len(f.include) == 0 {
		return true
	}
	_, ok := f.include[t]
	return ok
}
