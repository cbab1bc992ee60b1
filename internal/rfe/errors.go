package rfe

import "errors"

// ErrDuplicateApp is returned by AddApp when name is already registered.
var ErrDuplicateApp = errors.New("rfe: app already registered under that name")

// ErrAppNotFound is returned by SetAppRate when name has not been
// registered via AddApp.
var ErrAppNotFound = errors.New("rfe: app not registered under that name")
