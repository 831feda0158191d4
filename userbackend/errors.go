package userbackend

import "errors"

// ErrNoUsers is returned when provisioning yields no users at all.
var ErrNoUsers = errors.New("no users provisioned")
