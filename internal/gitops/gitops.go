// Package gitops versions a data directory with the git binary.
package gitops

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Author identifies who commits on behalf of extrato.
type Author struct {
	Name  string
	Email string
}

func (a Author) String() string {
	return fmt.Sprintf("%s <%s>", a.Name, a.Email)
}

// Init creates a git repository at dir and writes ignore patterns to .gitignore.
func Init(dir string, ignore ...string) error {
	if _, err := run(dir, "init", "--quiet"); err != nil {
		return err
	}
	if len(ignore) == 0 {
		return nil
	}
	content := strings.Join(ignore, "\n") + "\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	return nil
}

// IsRepo reports whether dir is the root of a git repository.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// Commit stages paths (everything when none are given) and commits them.
// Returns the short hash, or "" when there was nothing to commit.
func Commit(dir, message string, author Author, paths ...string) (string, error) {
	add := []string{"add", "-A", "--"}
	if len(paths) == 0 {
		add = append(add, ".")
	} else {
		add = append(add, paths...)
	}
	if _, err := run(dir, add...); err != nil {
		return "", err
	}

	// diff --cached --quiet exits 0 when the index matches HEAD.
	if _, err := run(dir, "diff", "--cached", "--quiet"); err == nil {
		return "", nil
	}

	if _, err := run(dir, "commit", "--quiet", "-m", message, "--author", author.String()); err != nil {
		return "", err
	}

	out, err := run(dir, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func run(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	// Commits must not depend on the caller's git identity.
	cmd.Env = append(os.Environ(), "GIT_COMMITTER_NAME=extrato", "GIT_COMMITTER_EMAIL=extrato@localhost")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %s: %w", args[0], strings.TrimSpace(stderr.String()), err)
	}
	return string(out), nil
}
