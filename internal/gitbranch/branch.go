// Package gitbranch finds the current git branch of a directory. Every
// resolver is best-effort: any failure means "no branch".
package gitbranch

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Resolver returns the branch for dir, or false when there is none.
type Resolver interface {
	Resolve(ctx context.Context, dir string) (string, bool)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, dir string) (string, bool)

func (f ResolverFunc) Resolve(ctx context.Context, dir string) (string, bool) {
	return f(ctx, dir)
}

// Default reads HEAD directly and falls back to the git binary, bounded by
// timeout.
func Default(timeout time.Duration) Resolver {
	return WithTimeout(Chain{HeadResolver{}, CommandResolver{}}, timeout)
}

// HeadResolver reads .git/HEAD without spawning git.
type HeadResolver struct{}

func (HeadResolver) Resolve(ctx context.Context, dir string) (string, bool) {
	if dir == "" {
		return "", false
	}
	gitDir, ok := findGitDir(dir)
	if !ok || ctx.Err() != nil {
		return "", false
	}
	data, err := os.ReadFile(filepath.Join(gitDir, "HEAD"))
	if err != nil {
		return "", false
	}
	return parseHead(string(data))
}

// parseHead understands "ref: refs/heads/<branch>" and detached hashes.
func parseHead(head string) (string, bool) {
	head = strings.TrimSpace(head)
	if ref, ok := strings.CutPrefix(head, "ref: "); ok {
		branch, ok := strings.CutPrefix(strings.TrimSpace(ref), "refs/heads/")
		if !ok || branch == "" {
			return "", false
		}
		return branch, true
	}
	if len(head) >= 7 && isHex(head) {
		return head[:7], true
	}
	return "", false
}

// findGitDir walks up from dir looking for .git, which is a directory in a
// normal checkout and a "gitdir: <path>" file in worktrees and submodules.
func findGitDir(dir string) (string, bool) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		candidate := filepath.Join(dir, ".git")
		if info, err := os.Stat(candidate); err == nil {
			if info.IsDir() {
				return candidate, true
			}
			return readGitFile(candidate)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func readGitFile(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	target, ok := strings.CutPrefix(strings.TrimSpace(string(data)), "gitdir:")
	if !ok {
		return "", false
	}
	target = strings.TrimSpace(target)
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(path), target)
	}
	return target, true
}

func isHex(s string) bool {
	for _, c := range s {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return false
		}
	}
	return true
}

// CommandResolver asks the git binary.
type CommandResolver struct{}

func (CommandResolver) Resolve(ctx context.Context, dir string) (string, bool) {
	if dir == "" {
		return "", false
	}
	if branch := runGit(ctx, dir, "branch", "--show-current"); branch != "" {
		return branch, true
	}
	// Detached HEAD - get short commit
	if hash := runGit(ctx, dir, "rev-parse", "--short", "HEAD"); hash != "" {
		return hash, true
	}
	return "", false
}

func runGit(ctx context.Context, dir string, args ...string) string {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return ""
	}
	return strings.TrimSpace(out.String())
}

// Chain tries each resolver in order.
type Chain []Resolver

func (c Chain) Resolve(ctx context.Context, dir string) (string, bool) {
	for _, r := range c {
		if ctx.Err() != nil {
			return "", false
		}
		if branch, ok := r.Resolve(ctx, dir); ok {
			return branch, true
		}
	}
	return "", false
}

// WithTimeout bounds r by d. The inner lookup keeps running in its
// goroutine after a timeout but its answer is dropped; the process exits
// right after rendering anyway.
func WithTimeout(r Resolver, d time.Duration) Resolver {
	return ResolverFunc(func(ctx context.Context, dir string) (string, bool) {
		if d > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d)
			defer cancel()
		}
		type result struct {
			branch string
			ok     bool
		}
		done := make(chan result, 1)
		go func() {
			branch, ok := r.Resolve(ctx, dir)
			done <- result{branch, ok}
		}()
		select {
		case res := <-done:
			return res.branch, res.ok
		case <-ctx.Done():
			return "", false
		}
	})
}
