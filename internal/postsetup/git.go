package postsetup

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/agentx-labs/create-agentx/internal/branding"
	"github.com/agentx-labs/create-agentx/internal/scaffold"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

// DefaultBranch is the initial branch of generated repositories.
const DefaultBranch = "main"

// GitIdentity is the author of the initial commit.
type GitIdentity struct {
	Name  string
	Email string
}

// GlobalGitIdentity reads user.name and user.email from the user's global
// git configuration.
func GlobalGitIdentity() (GitIdentity, error) {
	cfg, err := gitconfig.LoadConfig(gitconfig.GlobalScope)
	if err != nil {
		return GitIdentity{}, fmt.Errorf("loading global git config: %w", err)
	}
	return GitIdentity{Name: cfg.User.Name, Email: cfg.User.Email}, nil
}

// ResolveIdentity fills the fields of configured that are empty from
// global, then falls back to the CLI name. A failing lookup is ignored.
func ResolveIdentity(configured GitIdentity, global func() (GitIdentity, error)) GitIdentity {
	id := configured
	if (id.Name == "" || id.Email == "") && global != nil {
		if g, err := global(); err == nil {
			if id.Name == "" {
				id.Name = g.Name
			}
			if id.Email == "" {
				id.Email = g.Email
			}
		}
	}
	if id.Name == "" {
		id.Name = branding.CLIName()
	}
	return id
}

// GitStep initializes a repository in the generated project and commits
// every file. It works directly on the filesystem, so no git binary is needed.
type GitStep struct {
	fs       billy.Filesystem
	identity GitIdentity
	now      func() time.Time
}

// NewGitStep creates the git step.
func NewGitStep(fsys billy.Filesystem, identity GitIdentity) *GitStep {
	return &GitStep{fs: fsys, identity: identity, now: time.Now}
}

func (s *GitStep) Name() string { return StepGit }

func (s *GitStep) Skip(gen *scaffold.GenerationContext) (bool, string) {
	if gen.Flags.SkipGit {
		return true, "disabled by --skip-git"
	}
	if insideWorkTree(s.fs, gen.TargetDir) {
		return true, "already inside a git repository"
	}
	return false, ""
}

func (s *GitStep) Run(ctx context.Context, gen *scaffold.GenerationContext) error {
	wt, err := s.fs.Chroot(gen.TargetDir)
	if err != nil {
		return fmt.Errorf("opening work tree: %w", err)
	}
	dot, err := wt.Chroot(git.GitDirName)
	if err != nil {
		return fmt.Errorf("opening %s: %w", git.GitDirName, err)
	}

	repo, err := git.InitWithOptions(filesystem.NewStorage(dot, cache.NewObjectLRUDefault()), wt, git.InitOptions{
		DefaultBranch: plumbing.NewBranchReferenceName(DefaultBranch),
	})
	if err != nil {
		return fmt.Errorf("initializing repository: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	w, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("opening worktree: %w", err)
	}
	if err := w.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return fmt.Errorf("staging files: %w", err)
	}

	_, err = w.Commit(branding.CommitMessage(), &git.CommitOptions{
		Author: &object.Signature{
			Name:  s.identity.Name,
			Email: s.identity.Email,
			When:  s.now(),
		},
	})
	if err != nil {
		return fmt.Errorf("creating initial commit: %w", err)
	}
	return nil
}

// insideWorkTree reports whether dir or any of its parents holds a .git entry.
func insideWorkTree(fsys billy.Filesystem, dir string) bool {
	d := filepath.Clean(dir)
	for {
		if _, err := fsys.Stat(fsys.Join(d, git.GitDirName)); err == nil {
			return true
		}
		parent := filepath.Dir(d)
		if parent == d {
			return false
		}
		d = parent
	}
}
