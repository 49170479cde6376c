package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"taskboard/internal/auth"
	"taskboard/internal/model"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators installs the custom binding tags used by request
// structs and reports fields by their JSON names.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected binding validator engine")
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		return auth.ValidatePasswordStrength(fl.Field().String()) == nil
	}); err != nil {
		return err
	}
	return v.RegisterValidation("taskstatus", func(fl validator.FieldLevel) bool {
		return model.TaskStatus(fl.Field().String()).Valid()
	})
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request body"
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "email must be a valid email address"
	case "strongpassword":
		return auth.ErrWeakPassword.Error()
	case "taskstatus":
		return model.ErrInvalidStatus.Error()
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

// Progress is a lenient progress value: JSON numbers (fractions are
// truncated) and numeric strings are accepted, anything else is ignored.
type Progress struct {
	Value int
	Valid bool
}

func (p *Progress) UnmarshalJSON(data []byte) error {
	*p = Progress{}
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil
		}
		f = parsed
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}

	// Clamp before the int conversion so huge values stay well defined.
	f = math.Max(math.Min(f, model.MaxProgress*10), model.MinProgress-model.MaxProgress*10)
	p.Value = int(f)
	p.Valid = true
	return nil
}

// Int returns nil when the progress was absent or unusable.
func (p *Progress) Int() *int {
	if p == nil || !p.Valid {
		return nil
	}
	v := p.Value
	return &v
}
