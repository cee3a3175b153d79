package catalog

import (
	"errors"

	"github.com/MrSnakeDoc/promptvault/internal/validation"
)

// ErrPromptNotFound is returned by operations addressing an unknown prompt.
var ErrPromptNotFound = errors.New("prompt not found")

// ValidationError is returned when user input is refused. State is left
// untouched.
type ValidationError = validation.Error
