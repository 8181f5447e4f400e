package util

import "errors"

var ErrAIProviderDisabled = errors.New("AI provider not configured")
