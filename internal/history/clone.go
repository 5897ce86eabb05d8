package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gitsight/go-vcsurl"
	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
	"github.com/hashicorp/go-hclog"

	crssh "golang.org/x/crypto/ssh"

	"github.com/detagtor/detagtor/pkg/shared/files"
)

// CloneOptions configures fetching a remote repository before indexing.
type CloneOptions struct {
	URL             string
	TargetDir       string
	AuthType        string // "", "http", "ssh-key" or "ssh-agent"
	Username        string
	Token           string
	SSHKey          string
	SSHKeyPassword  string
	InsecureHostKey bool
	InsecureTLS     bool
	Timeout         time.Duration
}

// Clone fetches the repository at opts.URL into opts.TargetDir with its
// full tag history. An existing clone in the target directory is updated
// instead. Returns the directory the repository ended up in.
func Clone(ctx context.Context, logger hclog.Logger, opts CloneOptions) (string, error) {
	info, err := vcsurl.Parse(opts.URL)
	if err != nil {
		return "", fmt.Errorf("failed to parse VCS URL %q: %w", opts.URL, err)
	}

	auth, err := setupAuth(logger, opts)
	if err != nil {
		return "", err
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 10 * time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	output := logger.StandardWriter(&hclog.StandardLoggerOptions{
		InferLevels: true,
		ForceLevel:  hclog.Debug,
	})

	logger.Debug("cloning repository", "repository", info.Name, "cloneURL", opts.URL, "targetDir", opts.TargetDir)
	_, err = git.PlainCloneContext(ctx, opts.TargetDir, false, &git.CloneOptions{
		Auth:            auth,
		URL:             opts.URL,
		Progress:        output,
		Tags:            git.AllTags,
		InsecureSkipTLS: opts.InsecureTLS,
	})
	if err == nil {
		logger.Info("repository cloned", "repository", info.Name, "targetDir", opts.TargetDir)
		return opts.TargetDir, nil
	}
	if !errors.Is(err, git.ErrRepositoryAlreadyExists) {
		return "", fmt.Errorf("error occurred during clone: %w", err)
	}

	logger.Info("repository already exists, fetching tags", "targetDir", opts.TargetDir)
	repo, err := git.PlainOpen(opts.TargetDir)
	if err != nil {
		return "", fmt.Errorf("cannot open existing repository: %w", err)
	}
	err = repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName:      "origin",
		Auth:            auth,
		Progress:        output,
		RefSpecs:        []gitconfig.RefSpec{"+refs/tags/*:refs/tags/*"},
		InsecureSkipTLS: opts.InsecureTLS,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return "", fmt.Errorf("error occurred during fetch: %w", err)
	}

	return opts.TargetDir, nil
}

// setupAuth builds the transport auth method for the configured type.
func setupAuth(logger hclog.Logger, opts CloneOptions) (transport.AuthMethod, error) {
	switch opts.AuthType {
	case "":
		return nil, nil
	case "http":
		logger.Debug("setting up HTTP basic authentication")
		return &http.BasicAuth{Username: opts.Username, Password: opts.Token}, nil
	case "ssh-key":
		logger.Debug("setting up SSH key authentication")
		keyPath, err := files.ExpandPath(opts.SSHKey)
		if err != nil {
			return nil, fmt.Errorf("failed to expand SSH key path: %w", err)
		}
		keys, err := ssh.NewPublicKeysFromFile("git", keyPath, opts.SSHKeyPassword)
		if err != nil {
			return nil, fmt.Errorf("failed to set up SSH key authentication: %w", err)
		}
		if opts.InsecureHostKey {
			keys.HostKeyCallbackHelper = ssh.HostKeyCallbackHelper{
				HostKeyCallback: crssh.InsecureIgnoreHostKey(),
			}
		}
		return keys, nil
	case "ssh-agent":
		logger.Debug("setting up SSH agent authentication")
		agent, err := ssh.NewSSHAgentAuth("git")
		if err != nil {
			return nil, fmt.Errorf("failed to set up SSH agent authentication: %w", err)
		}
		if opts.InsecureHostKey {
			agent.HostKeyCallbackHelper = ssh.HostKeyCallbackHelper{
				HostKeyCallback: crssh.InsecureIgnoreHostKey(),
			}
		}
		return agent, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAuthType, opts.AuthType)
	}
}
