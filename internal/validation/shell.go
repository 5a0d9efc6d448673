// Package validation provides input validation for values that end up
// inside remote shell commands or on the local filesystem, preventing
// command injection and path traversal.
package validation

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var moduleNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

var modelNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*(\.[a-z][a-z0-9_]*)*$`)

// ValidateShellArgument rejects values containing shell metacharacters.
// Remote commands are assembled as argv for ssh, but the remote side
// still interprets the string through a shell, so these characters
// cannot be allowed through.
func ValidateShellArgument(arg string) error {
	if arg == "" {
		return fmt.Errorf("argument cannot be empty")
	}

	dangerous := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\\", "\"", "'", "\n"}
	for _, char := range dangerous {
		if strings.Contains(arg, char) {
			return fmt.Errorf("argument %q contains dangerous character %q", arg, char)
		}
	}

	return nil
}

// ValidateRemotePath validates a path used on the remote host.
func ValidateRemotePath(path string) error {
	if err := ValidateShellArgument(path); err != nil {
		return err
	}
	if strings.Contains(path, "..") {
		return fmt.Errorf("path %q contains traversal", path)
	}
	return nil
}

// ValidateModuleName checks an Odoo module technical name.
func ValidateModuleName(name string) error {
	if name == "" {
		return fmt.Errorf("module name cannot be empty")
	}
	if !moduleNamePattern.MatchString(name) {
		return fmt.Errorf("module name %q must be lowercase letters, digits and underscores, starting with a letter", name)
	}
	return nil
}

// ValidateModelName checks a dotted Odoo model name such as "sale.order".
func ValidateModelName(name string) error {
	if name == "" {
		return fmt.Errorf("model name cannot be empty")
	}
	if !modelNamePattern.MatchString(name) {
		return fmt.Errorf("model name %q must be dot-separated lowercase identifiers", name)
	}
	return nil
}

// ValidateLocalPath rejects local paths that escape the working tree
// through .. components after cleaning.
func ValidateLocalPath(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}
	cleaned := filepath.Clean(path)
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return fmt.Errorf("path %q escapes the working directory", path)
	}
	return nil
}
