package utils

import (
	"errors"
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetID parses a positive integer path parameter.
func GetID(ctx *gin.Context, name string) (uint, error) {
	raw := ctx.Param(name)

	if raw == "" {
		return 0, errors.New("ID not found")
	}

	id, err := strconv.ParseUint(raw, 10, 32)

	if err != nil || id == 0 {
		return 0, errors.New("Invalid ID")
	}

	return uint(id), nil
}

// QueryFloat parses a float query parameter, returning fallback when it is
// absent, malformed or not finite.
func QueryFloat(ctx *gin.Context, name string, fallback float64) float64 {
	raw := ctx.Query(name)

	if raw == "" {
		return fallback
	}

	value, err := strconv.ParseFloat(raw, 64)

	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return fallback
	}

	return value
}
