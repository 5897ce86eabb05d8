package index

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/gitsight/go-vcsurl"
	"github.com/hashicorp/go-hclog"

	"github.com/detagtor/detagtor/internal/history"
	"github.com/detagtor/detagtor/pkg/shared/config"
)

// isRemoteURL reports whether target names a remote repository rather
// than a local path.
func isRemoteURL(target string) bool {
	return strings.HasPrefix(target, "http://") ||
		strings.HasPrefix(target, "https://") ||
		strings.HasPrefix(target, "ssh://") ||
		strings.HasPrefix(target, "git@")
}

// repoNameFromTarget derives a short repository name for artifact naming.
func repoNameFromTarget(target string) string {
	if isRemoteURL(target) {
		if info, err := vcsurl.Parse(target); err == nil && info.Name != "" {
			return info.Name
		}
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		abs = target
	}
	name := filepath.Base(abs)
	return strings.TrimSuffix(name, ".git")
}

// cloneRepository fetches the remote repository before indexing.
func cloneRepository(ctx context.Context, log hclog.Logger, o *RunOptionsIndex) (string, error) {
	targetDir := o.TargetDir
	if targetDir == "" {
		dir, err := os.MkdirTemp("", "detagtor-index-*")
		if err != nil {
			return "", err
		}
		targetDir = dir
	}

	return history.Clone(ctx, log, history.CloneOptions{
		URL:         o.Repository,
		TargetDir:   targetDir,
		AuthType:    o.AuthType,
		Username:    o.Username,
		Token:       o.Token,
		SSHKey:      o.SSHKey,
		Timeout:     AppConfig.GitClient.Timeout,
		InsecureTLS: config.GetBoolValue(AppConfig, "GitClient.InsecureTLS", false),
	})
}
