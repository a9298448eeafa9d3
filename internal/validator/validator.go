package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/priorart-academy/challenge-service/internal/models"
)

// Validator is the main validator instance that combines struct tag
// validation with the rules authoring checks.
type Validator struct {
	structValidator *validator.Validate
	rulesValidator  *RulesValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator: structValidator,
		rulesValidator:  NewRulesValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate performs complete validation (struct tags, then rule sets when
// the value carries one).
func (v *Validator) Validate(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		return err
	}
	return nil
}

// Rules returns the evaluation rules validator
func (v *Validator) Rules() *RulesValidator {
	return v.rulesValidator
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("result_type", validateResultType)
	validate.RegisterValidation("result_tier", validateResultTier)
	validate.RegisterValidation("user_role", validateUserRole)
	validate.RegisterValidation("incorrect_marking", validateIncorrectMarking)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateResultType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	for _, validType := range models.KnownResultTypes {
		if string(validType) == value {
			return true
		}
	}
	return false
}

func validateResultTier(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	for _, validTier := range models.KnownResultTiers {
		if string(validTier) == value {
			return true
		}
	}
	return false
}

func validateUserRole(fl validator.FieldLevel) bool {
	validRoles := []models.UserRole{
		models.RoleTrainee,
		models.RoleEvaluator,
		models.RoleManager,
		models.RoleAdmin,
	}

	value := fl.Field().String()
	for _, validRole := range validRoles {
		if string(validRole) == value {
			return true
		}
	}
	return false
}

func validateIncorrectMarking(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == string(models.MarkingZero) || value == string(models.MarkingPenalty)
}
