package middleware

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/netbill/backend/internal/domain/notify"
)

// SetupValidator registers custom validation tags on gin's binding
// validator. Call once at startup.
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	// Field names in validation errors come from the json/form tags.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	_ = v.RegisterValidation("kenyanphone", func(fl validator.FieldLevel) bool {
		_, err := notify.NormalizeKenyanPhone(fl.Field().String())
		return err == nil
	})
}
