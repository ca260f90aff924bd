package slot

import (
	"strings"

	laminarerrors "laminar.dev/laminar/internal/errors"
)

// maxBranchNameBytes caps derived ref names well under git's limits.
const maxBranchNameBytes = 250

// ValidateSlotName checks a slot name for branch compatibility: non-empty,
// alphanumeric plus hyphen and underscore, no leading or trailing hyphen.
func ValidateSlotName(slot string) error {
	if slot == "" {
		return laminarerrors.NewValidationError("slot name cannot be empty")
	}
	if strings.HasPrefix(slot, "-") || strings.HasSuffix(slot, "-") {
		return laminarerrors.NewValidationError("slot name cannot start or end with a hyphen")
	}
	for _, c := range slot {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_':
		default:
			return laminarerrors.NewValidationError(
				"slot name can only contain alphanumeric characters, hyphens, and underscores; invalid character %q", c)
		}
	}
	return nil
}

// SanitizeBranchName makes a branch name safe to embed in a ref: collapse
// repeated slashes, replace characters git forbids in ref names with "-",
// cap the length, strip trailing dots and outer slashes. Idempotent, so
// sanitizing an already-derived name is a no-op.
func SanitizeBranchName(name string) string {
	result := name

	for strings.Contains(result, "//") {
		result = strings.ReplaceAll(result, "//", "/")
	}

	var b strings.Builder
	b.Grow(len(result))
	for i := 0; i < len(result); i++ {
		c := result[i]
		switch {
		case c < 0x20 || c == 0x7F:
			b.WriteByte('-')
		case c == '~' || c == '^' || c == ':' || c == '?' || c == '*' || c == '[' || c == '\\' || c == ' ':
			b.WriteByte('-')
		default:
			b.WriteByte(c)
		}
	}
	result = b.String()

	result = strings.ReplaceAll(result, "..", "-")
	result = strings.ReplaceAll(result, "@{", "-")

	if len(result) > maxBranchNameBytes {
		result = result[:maxBranchNameBytes]
	}

	result = strings.TrimRight(result, ".")
	result = strings.Trim(result, "/")

	return result
}

// DeriveBranchName builds the remote branch name for a slot on a branch.
// The "--" separator keeps the derived names out of the branch's own ref
// directory namespace.
func DeriveBranchName(branch, slot string) string {
	return SanitizeBranchName(branch) + "--" + slot
}
