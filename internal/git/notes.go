package git

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"

	laminarerrors "laminar.dev/laminar/internal/errors"
)

// CommitMetadata is the per-commit record stored in git notes. The slot is
// the commit's stable identity; the PR number is recorded once a pull
// request exists for it.
type CommitMetadata struct {
	PR   *int   `json:"pr,omitempty"`
	Slot string `json:"slot"`
}

// ParseMetadata parses note content into CommitMetadata. Notes can end up
// concatenated when git merges note objects during rewrites; when the
// content as a whole is not valid JSON, the first balanced JSON object is
// extracted and parsed instead. The second return value is the recovered
// content to write back, or "" when no rewrite is needed. The caller owns
// the write-back.
func ParseMetadata(content string) (*CommitMetadata, string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, "", fmt.Errorf("empty note content")
	}

	var meta CommitMetadata
	if err := json.Unmarshal([]byte(trimmed), &meta); err == nil {
		return &meta, "", nil
	}

	recovered, ok := extractFirstJSONObject(trimmed)
	if !ok {
		return nil, "", fmt.Errorf("no parseable JSON object in note content")
	}
	if err := json.Unmarshal([]byte(recovered), &meta); err != nil {
		return nil, "", fmt.Errorf("recovered object is not valid metadata: %w", err)
	}
	return &meta, recovered, nil
}

// extractFirstJSONObject returns the first balanced-brace object in s,
// tracking string literals and escapes so braces inside values don't count.
func extractFirstJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
	}
	return "", false
}

// ReadNote reads the raw note content for a commit from the given notes
// ref. Returns ("", false, nil) when the commit has no note.
func ReadNote(notesRef, sha string) (string, bool, error) {
	repo, err := GetDefaultRepo()
	if err != nil {
		return "", false, err
	}

	goGitMu.Lock()
	defer goGitMu.Unlock()

	ref, err := repo.Reference(plumbing.ReferenceName(notesRef), true)
	if err != nil {
		// Notes ref doesn't exist yet - no notes at all
		return "", false, nil
	}

	commit, err := repo.CommitObject(ref.Hash())
	if err != nil {
		return "", false, fmt.Errorf("failed to read notes commit: %w", err)
	}

	tree, err := commit.Tree()
	if err != nil {
		return "", false, fmt.Errorf("failed to read notes tree: %w", err)
	}

	// Notes trees are flat (file named by the full SHA) until git fans
	// them out into prefix directories; try both layouts.
	paths := []string{sha, sha[:2] + "/" + sha[2:], sha[:2] + "/" + sha[2:4] + "/" + sha[4:]}
	for _, path := range paths {
		file, err := tree.File(path)
		if err != nil {
			continue
		}
		reader, err := file.Reader()
		if err != nil {
			return "", false, fmt.Errorf("failed to open note blob: %w", err)
		}
		content, err := io.ReadAll(reader)
		reader.Close()
		if err != nil {
			return "", false, fmt.Errorf("failed to read note blob: %w", err)
		}
		return string(content), true, nil
	}

	return "", false, nil
}

// ReadMetadata reads and parses the metadata note for a commit, healing
// corrupted notes in place when recovery succeeds. Returns (nil, nil) when
// the commit has no note.
func ReadMetadata(notesRef, sha string) (*CommitMetadata, error) {
	content, found, err := ReadNote(notesRef, sha)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	meta, rewritten, err := ParseMetadata(content)
	if err != nil {
		return nil, laminarerrors.NewCorruptMetadataError(sha, content)
	}
	if rewritten != "" {
		if err := WriteNote(notesRef, sha, rewritten); err != nil {
			return nil, fmt.Errorf("failed to heal note for %s: %w", sha[:7], err)
		}
	}
	return meta, nil
}

// WriteMetadata serializes and stores metadata for a commit.
func WriteMetadata(notesRef, sha string, meta *CommitMetadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	return WriteNote(notesRef, sha, string(data))
}

// WriteNote stores raw note content for a commit, replacing any existing note.
func WriteNote(notesRef, sha, content string) error {
	_, err := RunGitCommand("notes", "--ref", notesRef, "add", "-f", "-m", content, sha)
	if err != nil {
		return fmt.Errorf("failed to write note for %s: %w", sha[:7], err)
	}
	return nil
}

// RemoveNote deletes the note for a commit. Removing a missing note is not
// an error.
func RemoveNote(notesRef, sha string) error {
	_, err := RunGitCommand("notes", "--ref", notesRef, "remove", "--ignore-missing", sha)
	if err != nil {
		return fmt.Errorf("failed to remove note for %s: %w", sha[:7], err)
	}
	return nil
}

// PushNotes force-pushes the notes ref to the remote so metadata is shared
// across clones.
func PushNotes(ctx context.Context, remote, notesRef string) error {
	refspec := fmt.Sprintf("+%s:%s", notesRef, notesRef)
	_, err := RunGitCommandWithContext(ctx, "push", remote, refspec)
	if err != nil {
		return fmt.Errorf("failed to push notes to %s: %w", remote, err)
	}
	return nil
}

// EnsureNotesRewriteConfig configures git to carry notes across amend and
// rebase so metadata follows commits through rewrites. Idempotent.
func EnsureNotesRewriteConfig(notesRef string) error {
	existing, err := RunGitCommandLines("config", "--get-all", "notes.rewriteRef")
	if err != nil {
		// --get-all exits non-zero when the key is unset
		existing = nil
	}
	registered := false
	for _, ref := range existing {
		if strings.TrimSpace(ref) == notesRef {
			registered = true
			break
		}
	}
	if !registered {
		if _, err := RunGitCommand("config", "--add", "notes.rewriteRef", notesRef); err != nil {
			return fmt.Errorf("failed to register notes rewrite ref: %w", err)
		}
	}

	for _, key := range []string{"notes.rewrite.amend", "notes.rewrite.rebase"} {
		if _, err := RunGitCommand("config", key, "true"); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}
	return nil
}
