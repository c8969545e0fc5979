package utils

import (
	"io"

	"github.com/Structurer/nav-front-build/internal/logger"
)

// CloseLogged closes c and logs a failure under what.
func CloseLogged(c io.Closer, what string, log logger.Logger) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		log.Warn("failed to close "+what, logger.Error(err))
	}
}
