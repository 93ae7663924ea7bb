package engine

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yourusername/sharpeye/internal/models"
	"github.com/yourusername/sharpeye/internal/oddsmath"
)

// NewRequestValidator returns a validator that knows the request tags,
// including americanodds, and reports fields by their JSON names.
func NewRequestValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("americanodds", func(fl validator.FieldLevel) bool {
		return oddsmath.ValidAmerican(int(fl.Field().Int()))
	})

	return v
}

func (e *Engine) validateRequest(req models.PredictionRequest) error {
	if err := e.validate.Struct(req); err != nil {
		return toValidationError(err)
	}
	return checkOpponent(req.OpponentID, "opponent_id")
}

func (e *Engine) validateBoard(req models.BoardRequest) error {
	if err := e.validate.Struct(req); err != nil {
		return toValidationError(err)
	}
	if e.cfg.BoardMaxProps > 0 && len(req.Props) > e.cfg.BoardMaxProps {
		return models.NewValidationError("props", fmt.Sprintf("at most %d props per board", e.cfg.BoardMaxProps))
	}
	for i, p := range req.Props {
		if err := checkOpponent(p.OpponentID, fmt.Sprintf("props[%d].opponent_id", i)); err != nil {
			return err
		}
	}
	return nil
}

func checkOpponent(abbr, field string) error {
	if _, ok := models.TeamNames[strings.ToUpper(abbr)]; !ok {
		return models.NewValidationError(field, fmt.Sprintf("unknown team %q", abbr))
	}
	return nil
}

func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	out := &models.ValidationError{Fields: make([]models.FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, models.FieldError{
			Field:  fieldPath(fe.Namespace()),
			Reason: reason(fe),
		})
	}
	return out
}

// fieldPath drops the struct name prefix from a validator namespace
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "americanodds":
		return "must be American odds with magnitude of at least 100"
	case "datetime":
		return "must be a date formatted " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	case "len":
		return "must be " + fe.Param() + " characters"
	case "gt":
		return "must be greater than " + fe.Param()
	case "min", "max":
		return fmt.Sprintf("failed %s=%s", fe.Tag(), fe.Param())
	default:
		return "failed " + fe.Tag() + " check"
	}
}
