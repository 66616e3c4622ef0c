package entity

import (
	"errors"
)

var (
	ErrVillageNotFound  = errors.New("village not found")
	ErrBuildingNotFound = errors.New("building not found")
	ErrUnitNotFound     = errors.New("unit type not found")
	ErrMovementNotFound = errors.New("movement not found")
	ErrJobNotFound      = errors.New("queue job not found")
)
