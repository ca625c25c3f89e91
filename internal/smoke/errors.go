package smoke

import "errors"

var (
	ErrUnhealthy    = errors.New("service is not healthy")
	ErrStatus       = errors.New("unexpected response status")
	ErrVerification = errors.New("verification failed")
)
