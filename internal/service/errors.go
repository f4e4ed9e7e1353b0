package service

import "errors"

var (
	ErrMalformedHistory = errors.New("malformed survey history")
	ErrInvalidReply     = errors.New("user_id and post_id are required")
)
