// Package scmrev derives version metadata from a git checkout and renders it
// as a C header that is rewritten only when its content changes.
package scmrev

import (
	"fmt"
	"regexp"
)

// Placeholder values written when git cannot be located.
const (
	PlaceholderRevision = "SCM_REV_STR"
	PlaceholderDescribe = "SCM_DESC_STR"
	PlaceholderBranch   = "SCM_BRANCH_STR"
)

// stableBranches are the release and trunk lines flagged as SCM_IS_MASTER.
var stableBranches = map[string]bool{
	"master": true,
	"stable": true,
}

// describeSuffix matches the "-<count>-g<hash>" tail of `git describe --long`
// output, keeping an optional "-dirty" marker in group 2.
var describeSuffix = regexp.MustCompile(`(-\d+)?-[^-]+(-dirty)?$`)

// Info is the version metadata embedded in the header.
type Info struct {
	Revision string `json:"revision" yaml:"revision"`
	Describe string `json:"describe" yaml:"describe"`
	Branch   string `json:"branch" yaml:"branch"`
	Stable   bool   `json:"stable" yaml:"stable"`

	// Tool is the git command the values came from; empty for placeholders.
	Tool string `json:"tool,omitempty" yaml:"tool,omitempty"`
}

// PlaceholderInfo returns the values used when git is unavailable.
func PlaceholderInfo() Info {
	return Info{
		Revision: PlaceholderRevision,
		Describe: PlaceholderDescribe,
		Branch:   PlaceholderBranch,
	}
}

// IsStableBranch reports whether branch is master or stable.
func IsStableBranch(branch string) bool {
	return stableBranches[branch]
}

// StableFlag serializes a stability flag as "1" or "0".
func StableFlag(stable bool) string {
	if stable {
		return "1"
	}
	return "0"
}

// SanitizeDescribe drops the commit count and abbreviated hash from describe
// output while keeping a trailing "-dirty":
//
//	v1.4-0-gabc123        -> v1.4
//	v1.4-12-gabc123-dirty -> v1.4-dirty
//
// Strings without a hyphenated tail are returned unchanged.
func SanitizeDescribe(describe string) string {
	return describeSuffix.ReplaceAllString(describe, "$2")
}

// BuildHeaderText renders the four #define lines. Values are inserted verbatim.
func BuildHeaderText(revision, describe, branch, stableFlag string) string {
	return fmt.Sprintf("#define SCM_REV_STR \"%s\"\n", revision) +
		fmt.Sprintf("#define SCM_DESC_STR \"%s\"\n", describe) +
		fmt.Sprintf("#define SCM_BRANCH_STR \"%s\"\n", branch) +
		fmt.Sprintf("#define SCM_IS_MASTER %s\n", stableFlag)
}

// Header renders info as header text.
func (i Info) Header() string {
	return BuildHeaderText(i.Revision, i.Describe, i.Branch, StableFlag(i.Stable))
}
