package scaffolding

import "fmt"

// Manifest is the metadata description of a module, rendered to the
// framework's __manifest__.py format.
type Manifest struct {
	Name        string
	Version     string
	Summary     string
	Description string
	Author      string
	Category    string
	License     string
	Depends     []string
	Data        []string
	Demo        []string
	Installable bool
	AutoInstall bool
	Application bool
}

// NewManifest builds a manifest with the conventions the scaffolder
// uses: module version is "<odoo version>.1.0.0".
func NewManifest(name, odooVersion, author, license string, depends []string, application bool) *Manifest {
	return &Manifest{
		Name:        name,
		Version:     fmt.Sprintf("%s.1.0.0", odooVersion),
		Author:      author,
		Category:    "Uncategorized",
		License:     license,
		Depends:     depends,
		Installable: true,
		Application: application,
	}
}
