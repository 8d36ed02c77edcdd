package game

import "errors"

var (
	ErrUnknownKind      = errors.New("unknown kind")
	ErrInsufficientMana = errors.New("insufficient mana")
	ErrOutOfBounds      = errors.New("cell out of bounds")
	ErrCasterDead       = errors.New("caster is dead")
	ErrNoPath           = errors.New("path not found")
	ErrOutOfRange       = errors.New("target out of range")
	ErrCasting          = errors.New("cast in progress")
	ErrUnknownLevel     = errors.New("unknown level")
	ErrInvalidTarget    = errors.New("target is not a live structure")
)
