package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateIndexArgs(t *testing.T) {
	testCases := []struct {
		name    string
		opts    RunOptionsIndex
		args    []string
		wantErr bool
	}{
		{
			name: "local path",
			opts: RunOptionsIndex{Threads: 4},
			args: []string{"/path/to/repo"},
		},
		{
			name:    "no args",
			opts:    RunOptionsIndex{Threads: 4},
			args:    nil,
			wantErr: true,
		},
		{
			name:    "too many args",
			opts:    RunOptionsIndex{Threads: 4},
			args:    []string{"a", "b"},
			wantErr: true,
		},
		{
			name:    "zero threads",
			opts:    RunOptionsIndex{Threads: 0},
			args:    []string{"/repo"},
			wantErr: true,
		},
		{
			name:    "unknown auth type",
			opts:    RunOptionsIndex{Threads: 1, AuthType: "kerberos"},
			args:    []string{"/repo"},
			wantErr: true,
		},
		{
			name:    "ssh-key auth without key",
			opts:    RunOptionsIndex{Threads: 1, AuthType: "ssh-key"},
			args:    []string{"git@github.com:a/b.git"},
			wantErr: true,
		},
		{
			name: "ssh-key auth with key",
			opts: RunOptionsIndex{Threads: 1, AuthType: "ssh-key", SSHKey: "~/.ssh/id_ed25519"},
			args: []string{"git@github.com:a/b.git"},
		},
		{
			name:    "http auth without credentials",
			opts:    RunOptionsIndex{Threads: 1, AuthType: "http"},
			args:    []string{"https://github.com/a/b.git"},
			wantErr: true,
		},
		{
			name:    "s3 key without bucket",
			opts:    RunOptionsIndex{Threads: 1, S3Key: "index.json"},
			args:    []string{"/repo"},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateIndexArgs(&tc.opts, tc.args)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.args[0], tc.opts.Repository)
			}
		})
	}
}

func TestIsRemoteURL(t *testing.T) {
	assert.True(t, isRemoteURL("https://github.com/juice-shop/juice-shop.git"))
	assert.True(t, isRemoteURL("git@github.com:juice-shop/juice-shop.git"))
	assert.True(t, isRemoteURL("ssh://git@github.com/a/b.git"))
	assert.False(t, isRemoteURL("/home/user/repo"))
	assert.False(t, isRemoteURL("./repo"))
}

func TestRepoNameFromTarget(t *testing.T) {
	assert.Equal(t, "juice-shop", repoNameFromTarget("https://github.com/juice-shop/juice-shop.git"))
	assert.Equal(t, "repo", repoNameFromTarget("/home/user/repo"))
	assert.Equal(t, "repo", repoNameFromTarget("/home/user/repo.git"))
}
