package entities

// InstallNameChangeKind distinguishes install id updates from dependency rewrites
type InstallNameChangeKind string

const (
	// ChangeID sets the artifact's own install name (install_name_tool -id)
	ChangeID InstallNameChangeKind = "id"
	// ChangeDependency rewrites a referenced library path (install_name_tool -change)
	ChangeDependency InstallNameChangeKind = "change"
)

// InstallNameChange is one planned rewrite of a binary's link metadata
type InstallNameChange struct {
	Kind InstallNameChangeKind
	Old  string // original reference, empty for ChangeID
	New  string
}
