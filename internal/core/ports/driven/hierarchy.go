package driven

// TypeHierarchy answers class inheritance questions without reflecting
// over live types.
type TypeHierarchy interface {
	// Ancestry returns class followed by its ancestors, most specific
	// first. Unknown classes yield a chain of just the class itself.
	Ancestry(class string) []string

	// Subclasses returns every known strict descendant of class.
	Subclasses(class string) []string
}
