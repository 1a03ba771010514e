package entities

// Recipe represents a bundle recipe loaded from YAML
type Recipe struct {
	Name         string
	Version      string
	Description  string
	Requirements []Requirement
	Options      []PackageOption
	Imports      map[string][]ImportRule // keyed by normalized OS name
	Bundle       BundleConfig
	Hooks        RecipeHooks
}

// Requirement is a dependency package reference, optionally limited to platforms
type Requirement struct {
	Ref     string // "name/version"
	Name    string
	Version string
	OS      []string
	Arch    []string
}

// PackageOption sets an option on a required package, optionally limited to platforms
type PackageOption struct {
	Package string
	Name    string
	Value   string
	OS      []string
	Arch    []string
}

// ImportRule copies files matching Pattern from each package's Src directory to Dst
type ImportRule struct {
	Pattern    string
	Src        string
	Dst        string
	KeepFolder bool     // insert the package name below Dst
	Packages   []string // restrict to these requirements; empty means all
}

// BundleConfig describes the self-contained macOS bundle step
type BundleConfig struct {
	Seeds             []string // globs relative to the output directory
	Destination       string   // directory receiving the dependency closure
	InstallNamePrefix string
	NonSystemPatterns []string
}

// RecipeHooks holds optional shell scripts run during a bundle build
type RecipeHooks struct {
	PostFix        string
	PostPackage    string
	TimeoutMinutes int
}

// ImportsFor returns the import rules declared for the given OS
func (r *Recipe) ImportsFor(osName string) []ImportRule {
	if r.Imports == nil {
		return nil
	}
	return r.Imports[osName]
}

// AppliesTo reports whether a requirement is active for the platform
func (q Requirement) AppliesTo(p Platform) bool {
	return matchesPlatform(q.OS, q.Arch, p)
}

// AppliesTo reports whether an option is active for the platform
func (o PackageOption) AppliesTo(p Platform) bool {
	return matchesPlatform(o.OS, o.Arch, p)
}

func matchesPlatform(osList, archList []string, p Platform) bool {
	return containsOrEmpty(osList, p.OS) && containsOrEmpty(archList, p.Arch)
}

func containsOrEmpty(list []string, value string) bool {
	if len(list) == 0 {
		return true
	}
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
