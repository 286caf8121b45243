package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/borntyping/switchbox/internal/config"
	"github.com/borntyping/switchbox/internal/engine"
	"github.com/borntyping/switchbox/internal/git"
	gh "github.com/borntyping/switchbox/internal/github"
)

var cfg = config.New()

// run opens the repository, overlays file configuration, builds the engine and
// exits with the code op returns. Every command that touches a repository
// funnels through here so flag precedence and failure handling stay identical.
func run(cmd *cobra.Command, op func(ctx context.Context, eng *engine.Engine) int) {
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(3)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Runtime.Timeout)

	repo, err := git.Open(ctx, cfg.Runtime.Path, git.WithVerbose(cfg.Runtime.Verbose, os.Stderr))
	if err != nil {
		cancel()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(3)
	}

	if err := overlayFiles(cmd, repo.Root()); err != nil {
		cancel()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(3)
	}

	eng := engine.New(repo, cfg, gitHubLookup(cfg.Runtime.Verbose))
	code := op(ctx, eng)
	cancel()
	os.Exit(code)
}

// overlayFiles applies the user-level and then the repository-level
// configuration file, so the repository file wins key by key. Flags the user
// set explicitly win over both.
func overlayFiles(cmd *cobra.Command, root string) error {
	user, err := config.LoadUserFile()
	if err != nil {
		return err
	}
	repo, err := config.LoadFile(root)
	if err != nil {
		return err
	}
	if user == nil && repo == nil {
		return nil
	}

	user.Apply(cfg, cmd.Flags().Changed)
	repo.Apply(cfg, cmd.Flags().Changed)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration file: %w", err)
	}
	return nil
}

// gitHubLookup resolves a default branch by asking the forge about the remote
// it points at. Remotes on other hosts are skipped. A token is optional;
// without one only public repositories resolve.
func gitHubLookup(verbose bool) engine.BranchLookup {
	return func(ctx context.Context, remoteURL string) (string, bool, error) {
		remote, ok := gh.ParseRemoteURL(remoteURL)
		if !ok {
			return "", false, nil
		}
		token, _, err := gh.ResolveAuthToken(ctx, "")
		if err != nil {
			return "", false, err
		}
		client, err := gh.NewClient(ctx, token, gh.WithVerbose(verbose, os.Stderr))
		if err != nil {
			return "", false, err
		}
		branch, err := client.DefaultBranch(ctx, remote.Owner, remote.Name)
		if err != nil {
			return "", false, err
		}
		return branch, true, nil
	}
}
