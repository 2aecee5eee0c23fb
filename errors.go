package visux

import (
	"github.com/pkg/errors"
)

var (
	ErrValidation           = errors.New(`validation failed`)
	ErrNotFound             = errors.New(`not found`)
	ErrUnsupportedChartType = errors.New(`unsupported chart type`)
	ErrUnsupportedRender    = errors.New(`chart type cannot be rendered`)
)

func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrUnsupportedChartType)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
