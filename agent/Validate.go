package agent

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct checks the validate tags of the fields of a Config
func ValidateStruct(c Config) error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid %v config: %w", c.Type(), err)
	}
	return nil
}
