// Файл: pkg/customvalidator/validator.go

package customvalidator

import (
	"github.com/go-playground/validator/v10"

	"repair-system/pkg/constants"
	"repair-system/pkg/utils"
)

// RegisterCustomValidations регистрирует прикладные правила валидации
// в переданном экземпляре валидатора.
func RegisterCustomValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("ru_phone", isRussianPhoneNumber); err != nil {
		return err
	}
	if err := v.RegisterValidation("ticket_status", isTicketStatus); err != nil {
		return err
	}
	if err := v.RegisterValidation("ticket_priority", isTicketPriority); err != nil {
		return err
	}
	if err := v.RegisterValidation("staff_role", isStaffRole); err != nil {
		return err
	}
	return nil
}

func isRussianPhoneNumber(fl validator.FieldLevel) bool {
	return utils.NormalizePhone(fl.Field().String()) != ""
}

func isTicketStatus(fl validator.FieldLevel) bool {
	return constants.IsValidStatus(fl.Field().String())
}

func isTicketPriority(fl validator.FieldLevel) bool {
	return constants.IsValidPriority(fl.Field().String())
}

func isStaffRole(fl validator.FieldLevel) bool {
	return constants.IsValidRole(fl.Field().String())
}
