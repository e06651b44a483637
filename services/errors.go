package services

import "errors"

var (
	ErrDeviceRequired = errors.New("device id is required")
	ErrForbidden      = errors.New("not allowed to modify this item")
)
