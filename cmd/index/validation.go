package index

import (
	"fmt"
)

// validateIndexArgs checks the index command arguments and fills the
// positional repository target into the options.
func validateIndexArgs(o *RunOptionsIndex, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("exactly one repository path or URL is required")
	}
	o.Repository = args[0]

	if o.Threads < 1 {
		return fmt.Errorf("threads must be at least 1, got %d", o.Threads)
	}

	switch o.AuthType {
	case "", "http", "ssh-key", "ssh-agent":
	default:
		return fmt.Errorf("unsupported auth type %q", o.AuthType)
	}
	if o.AuthType == "ssh-key" && o.SSHKey == "" {
		return fmt.Errorf("--ssh-key is required for auth type ssh-key")
	}
	if o.AuthType == "http" && (o.Username == "" || o.Token == "") {
		return fmt.Errorf("--username and --token are required for auth type http")
	}

	if o.S3Bucket == "" && (o.S3Key != "" || o.S3Region != "") {
		return fmt.Errorf("--s3-key and --s3-region require --s3-bucket")
	}
	return nil
}
