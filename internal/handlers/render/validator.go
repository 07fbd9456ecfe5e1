package render

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/nkiryanov/qrgen/internal/models"
)

const (
	minQRSize = models.MinSize
	maxQRSize = models.MaxSize
)

func configureValidator(validate *validator.Validate) {
	_ = validate.RegisterValidation("qrsize", validateQRSize)
	validate.RegisterTagNameFunc(useJSONTagNames)
}

func useJSONTagNames(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	// skip if tag key says it should be ignored
	if name == "-" {
		return ""
	}
	return name
}

// Size has to fit the range the preview slider offers
func validateQRSize(fl validator.FieldLevel) bool {
	size := fl.Field().Int()
	return size >= minQRSize && size <= maxQRSize
}
