package ration

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/iwvelando/ration-formulator/pkg/mathutil"
)

// ScalingRequest asks for a ration sized for one animal. Required numeric
// fields are pointers so that an absent value is distinguishable from zero.
type ScalingRequest struct {
	Animal         AnimalCategory     `json:"animal" yaml:"animal" validate:"required,animal"`
	Weight         *float64           `json:"weight" yaml:"weight" validate:"required,finite,gte=0"`
	Activity       string             `json:"activity,omitempty" yaml:"activity,omitempty"`
	PriceOverrides map[string]float64 `json:"prices,omitempty" yaml:"prices,omitempty" validate:"omitempty,dive,keys,required,endkeys,finite,gte=0"`
	UpperBounds    map[string]float64 `json:"max,omitempty" yaml:"max,omitempty" validate:"omitempty,dive,keys,required,endkeys,finite,gte=0"`
}

// TargetRequest asks for a ration meeting explicit nutrient targets,
// bypassing requirement scaling.
type TargetRequest struct {
	Protein        *float64           `json:"protein" yaml:"protein" validate:"required,finite,gte=0"`
	Fiber          *float64           `json:"fiber" yaml:"fiber" validate:"required,finite,gte=0"`
	PriceOverrides map[string]float64 `json:"prices,omitempty" yaml:"prices,omitempty" validate:"omitempty,dive,keys,required,endkeys,finite,gte=0"`
	Minimums       map[string]float64 `json:"min,omitempty" yaml:"min,omitempty" validate:"omitempty,dive,keys,required,endkeys,finite,gte=0"`
	UpperBounds    map[string]float64 `json:"max,omitempty" yaml:"max,omitempty" validate:"omitempty,dive,keys,required,endkeys,finite,gte=0"`
}

// Validator checks requests before any problem is built. It is safe for
// concurrent use.
type Validator struct {
	validate *validator.Validate
}

// NewValidator returns a Validator with the ration-specific rules registered.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		switch fl.Field().Kind() {
		case reflect.Float32, reflect.Float64:
			return mathutil.IsFinite(fl.Field().Float())
		default:
			return true
		}
	})
	_ = v.RegisterValidation("animal", func(fl validator.FieldLevel) bool {
		return AnimalCategory(fl.Field().String()).Valid()
	})
	return &Validator{validate: v}
}

// ValidateScalingRequest checks a ScalingRequest.
func (v *Validator) ValidateScalingRequest(req ScalingRequest) error {
	return v.check(req)
}

// ValidateTargetRequest checks a TargetRequest.
func (v *Validator) ValidateTargetRequest(req TargetRequest) error {
	return v.check(req)
}

func (v *Validator) check(req any) error {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return internalError(err)
	}
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, describe(fe))
	}
	return &Error{
		Reason:  ReasonInvalidInput,
		Message: strings.Join(messages, "; "),
		Cause:   err,
	}
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "animal":
		return fmt.Sprintf("invalid animal type %q (expected one of %s)", fe.Value(), joinCategories())
	case "finite":
		return fmt.Sprintf("%s must be a finite number", field)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

func joinCategories() string {
	names := make([]string, 0, len(animalCategories))
	for _, category := range animalCategories {
		names = append(names, string(category))
	}
	return strings.Join(names, ", ")
}

// ParseQuantities converts textual name=value pairs, such as price overrides
// taken from a command line, into numbers. Values that do not parse are
// rejected as invalid input rather than defaulted.
func ParseQuantities(kind string, raw map[string]string) (map[string]float64, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	parsed := make(map[string]float64, len(raw))
	for name, text := range raw {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, invalidInput("%s requires an ingredient name", kind)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return nil, &Error{
				Reason:  ReasonInvalidInput,
				Message: fmt.Sprintf("%s for %q is not a number: %q", kind, name, text),
				Cause:   err,
			}
		}
		parsed[name] = value
	}
	return parsed, nil
}

// ParsePriceOverrides converts textual price overrides into numbers.
func ParsePriceOverrides(raw map[string]string) (map[string]float64, error) {
	return ParseQuantities("price override", raw)
}
