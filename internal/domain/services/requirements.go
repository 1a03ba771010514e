package services

import (
	"github.com/ochairo/depbundle/internal/domain/entities"
)

// ResolvedRequirements is the platform-specific view of a recipe
type ResolvedRequirements struct {
	Platform     entities.Platform
	Requirements []entities.Requirement
	Options      []entities.PackageOption
	Imports      []entities.ImportRule
}

// Refs returns the requirement references in declaration order
func (r *ResolvedRequirements) Refs() []string {
	refs := make([]string, 0, len(r.Requirements))
	for _, req := range r.Requirements {
		refs = append(refs, req.Ref)
	}
	return refs
}

// Names returns the required package names in declaration order
func (r *ResolvedRequirements) Names() []string {
	names := make([]string, 0, len(r.Requirements))
	for _, req := range r.Requirements {
		names = append(names, req.Name)
	}
	return names
}

// OptionsFor returns the options applying to one package
func (r *ResolvedRequirements) OptionsFor(pkg string) map[string]string {
	opts := make(map[string]string)
	for _, o := range r.Options {
		if o.Package == pkg {
			opts[o.Name] = o.Value
		}
	}
	return opts
}

// ResolveRequirements filters a recipe's requirements, options and imports
// down to those active on the given platform
func ResolveRequirements(recipe *entities.Recipe, platform entities.Platform) *ResolvedRequirements {
	resolved := &ResolvedRequirements{
		Platform: platform,
		Imports:  recipe.ImportsFor(platform.OS),
	}

	for _, req := range recipe.Requirements {
		if req.AppliesTo(platform) {
			resolved.Requirements = append(resolved.Requirements, req)
		}
	}

	for _, opt := range recipe.Options {
		if opt.AppliesTo(platform) {
			resolved.Options = append(resolved.Options, opt)
		}
	}

	return resolved
}
