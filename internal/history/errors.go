package history

import "errors"

var (
	ErrNoTagsFound     = errors.New("repository has no tags")
	ErrUnknownAuthType = errors.New("unknown auth type")
)
