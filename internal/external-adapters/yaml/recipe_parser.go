// Package yaml provides YAML-based recipe parsing and repository implementations.
package yaml

import (
	"fmt"
	"os"
	"strings"

	"github.com/ochairo/depbundle/internal/domain/entities"
	"gopkg.in/yaml.v3"
)

// yamlRecipe represents the raw YAML structure
type yamlRecipe struct {
	Name        string                      `yaml:"name"`
	Version     string                      `yaml:"version"`
	Description string                      `yaml:"description"`
	Requires    []yamlRequirement           `yaml:"requires"`
	Options     []yamlOption                `yaml:"options"`
	Imports     map[string][]yamlImportRule `yaml:"imports"`
	Bundle      yamlBundle                  `yaml:"bundle"`
	Hooks       yamlHooks                   `yaml:"hooks"`
}

// yamlRequirement accepts either a bare "name/version" string or a mapping
type yamlRequirement struct {
	Ref  string   `yaml:"ref"`
	OS   []string `yaml:"os"`
	Arch []string `yaml:"arch"`
}

type yamlOption struct {
	Package string   `yaml:"package"`
	Name    string   `yaml:"name"`
	Value   string   `yaml:"value"`
	OS      []string `yaml:"os"`
	Arch    []string `yaml:"arch"`
}

type yamlImportRule struct {
	Pattern    string   `yaml:"pattern"`
	Src        string   `yaml:"src"`
	Dst        string   `yaml:"dst"`
	KeepFolder bool     `yaml:"keep_folder"`
	Packages   []string `yaml:"packages"`
}

type yamlBundle struct {
	Seeds             []string `yaml:"seeds"`
	Destination       string   `yaml:"destination"`
	InstallNamePrefix string   `yaml:"install_name_prefix"`
	NonSystemPatterns []string `yaml:"non_system_patterns"`
}

type yamlHooks struct {
	PostFix        string `yaml:"post_fix"`
	PostPackage    string `yaml:"post_package"`
	TimeoutMinutes int    `yaml:"timeout_minutes"`
}

// UnmarshalYAML decodes the short string form as well as the mapping form
func (r *yamlRequirement) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		r.Ref = node.Value
		return nil
	}

	type plain yamlRequirement
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*r = yamlRequirement(p)
	return nil
}

// RecipeParser parses YAML recipe files
type RecipeParser struct{}

// NewRecipeParser creates a new YAML parser
func NewRecipeParser() *RecipeParser {
	return &RecipeParser{}
}

// ParseFile parses a YAML recipe file into a Recipe entity
func (p *RecipeParser) ParseFile(filePath string) (*entities.Recipe, error) {
	//nolint:gosec // G304: filePath is recipe definition path from repository
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	return p.Parse(data)
}

// Parse parses YAML bytes into a Recipe entity
func (p *RecipeParser) Parse(data []byte) (*entities.Recipe, error) {
	var yamlDef yamlRecipe
	if err := yaml.Unmarshal(data, &yamlDef); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if yamlDef.Name == "" {
		return nil, fmt.Errorf("recipe must have a name")
	}

	requirements, err := convertRequirements(yamlDef.Requires)
	if err != nil {
		return nil, err
	}

	options, err := convertOptions(yamlDef.Options)
	if err != nil {
		return nil, err
	}

	imports, err := convertImports(yamlDef.Imports)
	if err != nil {
		return nil, err
	}

	def := &entities.Recipe{
		Name:         yamlDef.Name,
		Version:      yamlDef.Version,
		Description:  yamlDef.Description,
		Requirements: requirements,
		Options:      options,
		Imports:      imports,
		Bundle:       convertBundle(yamlDef.Bundle),
		Hooks: entities.RecipeHooks{
			PostFix:        yamlDef.Hooks.PostFix,
			PostPackage:    yamlDef.Hooks.PostPackage,
			TimeoutMinutes: yamlDef.Hooks.TimeoutMinutes,
		},
	}

	return def, nil
}

func convertRequirements(yr []yamlRequirement) ([]entities.Requirement, error) {
	requirements := make([]entities.Requirement, 0, len(yr))
	for _, r := range yr {
		name, version, ok := strings.Cut(strings.TrimSpace(r.Ref), "/")
		if !ok || name == "" || version == "" {
			return nil, fmt.Errorf("requirement %q must be of the form name/version", r.Ref)
		}

		osList, err := normalizeOSList(r.OS)
		if err != nil {
			return nil, fmt.Errorf("requirement %s: %w", r.Ref, err)
		}

		requirements = append(requirements, entities.Requirement{
			Ref:     name + "/" + version,
			Name:    name,
			Version: version,
			OS:      osList,
			Arch:    normalizeArchList(r.Arch),
		})
	}
	return requirements, nil
}

func convertOptions(yo []yamlOption) ([]entities.PackageOption, error) {
	options := make([]entities.PackageOption, 0, len(yo))
	for _, o := range yo {
		osList, err := normalizeOSList(o.OS)
		if err != nil {
			return nil, fmt.Errorf("option %s:%s: %w", o.Package, o.Name, err)
		}
		options = append(options, entities.PackageOption{
			Package: o.Package,
			Name:    o.Name,
			Value:   o.Value,
			OS:      osList,
			Arch:    normalizeArchList(o.Arch),
		})
	}
	return options, nil
}

func convertImports(yi map[string][]yamlImportRule) (map[string][]entities.ImportRule, error) {
	imports := make(map[string][]entities.ImportRule, len(yi))
	for osName, rules := range yi {
		normalized := entities.NormalizeOS(osName)
		if normalized == "" {
			return nil, fmt.Errorf("imports: unknown operating system %q", osName)
		}

		for _, r := range rules {
			if r.Pattern == "" {
				return nil, fmt.Errorf("imports for %s: rule must have a pattern", osName)
			}
			imports[normalized] = append(imports[normalized], entities.ImportRule{
				Pattern:    r.Pattern,
				Src:        r.Src,
				Dst:        r.Dst,
				KeepFolder: r.KeepFolder,
				Packages:   r.Packages,
			})
		}
	}
	return imports, nil
}

func convertBundle(yb yamlBundle) entities.BundleConfig {
	return entities.BundleConfig{
		Seeds:             yb.Seeds,
		Destination:       yb.Destination,
		InstallNamePrefix: yb.InstallNamePrefix,
		NonSystemPatterns: yb.NonSystemPatterns,
	}
}

func normalizeOSList(names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		normalized := entities.NormalizeOS(n)
		if normalized == "" {
			return nil, fmt.Errorf("unknown operating system %q", n)
		}
		out = append(out, normalized)
	}
	return out, nil
}

func normalizeArchList(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, entities.NormalizeArch(n))
	}
	return out
}
