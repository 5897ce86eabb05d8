package detect

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var errEmptyIndex = errors.New("index contains no observable paths")

// validateDetectArgs checks the detect command arguments and fills the
// positional target URL into the options. The base URL gets a trailing
// slash so relative paths resolve under it.
func validateDetectArgs(o *RunOptionsDetect, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("exactly one target URL is required")
	}

	u, err := url.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid target URL %q: %w", args[0], err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("target URL must use http or https, got %q", args[0])
	}
	o.URL = args[0]
	if !strings.HasSuffix(o.URL, "/") {
		o.URL += "/"
	}

	if o.Input == "" {
		return fmt.Errorf("--input is required")
	}
	if o.Threads < 1 {
		return fmt.Errorf("threads must be at least 1, got %d", o.Threads)
	}
	if o.RateLimit < 0 {
		return fmt.Errorf("rate-limit must not be negative, got %f", o.RateLimit)
	}
	if o.Top < 0 {
		return fmt.Errorf("top must not be negative, got %d", o.Top)
	}
	return nil
}
