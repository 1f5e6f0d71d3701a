package services

import (
	"errors"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

func classify(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidReference):
		return log.ErrorTypeNotFound
	case errors.Is(err, core.ErrStorage):
		return log.ErrorTypeStorage
	case errors.Is(err, core.ErrInvalidAmount), errors.Is(err, core.ErrEmptyCategory), errors.Is(err, core.ErrInvalidPeriod):
		return log.ErrorTypeValidation
	}
	return log.ErrorTypeInternal
}
