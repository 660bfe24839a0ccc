package core

import "errors"

// ErrBadEndpoint is returned by a PushClient when the subscription endpoint
// cannot be turned into a request at all. The coordinator deactivates such
// subscriptions immediately instead of scoring them.
var ErrBadEndpoint = errors.New("unusable subscription endpoint")
