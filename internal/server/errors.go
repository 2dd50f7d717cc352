package server

import "errors"

var ErrQueueRequired = errors.New("server: queue is required")
