package serverutils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest runs struct tag validation and flattens violations into a
// single 400 AppError.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		var violations []string
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				violations = append(violations, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
			}
			return BadRequest(strings.Join(violations, "; "))
		}
		return BadRequest(err.Error())
	}
	return nil
}
