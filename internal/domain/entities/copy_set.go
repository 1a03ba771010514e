package entities

// CopySet records which base filenames have been copied during one closure run.
// It only grows; entries are never removed.
type CopySet struct {
	sources map[string]string
}

// NewCopySet creates an empty copy set
func NewCopySet() *CopySet {
	return &CopySet{sources: make(map[string]string)}
}

// Has reports whether name was already copied
func (s *CopySet) Has(name string) bool {
	_, ok := s.sources[name]
	return ok
}

// Mark records name as copied from source. Marking an existing name is a no-op.
func (s *CopySet) Mark(name, source string) {
	if s.Has(name) {
		return
	}
	s.sources[name] = source
}

// Source returns the path name was first copied from
func (s *CopySet) Source(name string) (string, bool) {
	src, ok := s.sources[name]
	return src, ok
}

// Len returns the number of copied filenames
func (s *CopySet) Len() int {
	return len(s.sources)
}
