package entities

// Inspection is the outcome of querying an artifact's external dependencies.
// A failed inspection carries Err and no dependencies; callers decide whether
// to treat it as an empty list.
type Inspection struct {
	Path         string
	Dependencies []string
	Err          error
}

// Failed reports whether the inspector could not process the artifact
func (i Inspection) Failed() bool {
	return i.Err != nil
}

// ClosureReport summarizes one dependency closure run
type ClosureReport struct {
	Destination string
	Copied      []CopiedArtifact
	// Failures lists artifacts whose dependencies could not be inspected
	Failures []Inspection
	// Collisions lists artifacts skipped because a different file with the
	// same base filename was already copied
	Collisions []Collision
}

// CopiedArtifact is one file written into the destination
type CopiedArtifact struct {
	Name   string
	Source string
	Target string
}

// Collision records two distinct sources sharing one base filename
type Collision struct {
	Name    string
	Kept    string
	Skipped string
}

// Names returns the copied base filenames in copy order
func (r *ClosureReport) Names() []string {
	names := make([]string, 0, len(r.Copied))
	for _, c := range r.Copied {
		names = append(names, c.Name)
	}
	return names
}

// Targets returns the destination paths of all copied files in copy order
func (r *ClosureReport) Targets() []string {
	targets := make([]string, 0, len(r.Copied))
	for _, c := range r.Copied {
		targets = append(targets, c.Target)
	}
	return targets
}
