// internal/api/validation/validation.go
// 請求驗證 - 設定 gin 的 validator 並將錯誤轉為欄位訊息

package validation

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

var (
	setupOnce  sync.Once
	setupErr   error
	translator ut.Translator
)

// ErrTranslatorNotFound 找不到指定語系的翻譯器
var ErrTranslatorNotFound = errors.New("translator not found")

// Setup 註冊自訂規則與英文錯誤訊息到 gin 的 validator (只會執行一次)
func Setup() error {
	setupOnce.Do(func() {
		setupErr = setup()
	})
	return setupErr
}

func setup() error {
	validate, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected validator engine")
	}

	// 錯誤訊息使用 JSON 欄位名稱
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := validate.RegisterValidation("notblank", validators.NotBlank); err != nil {
		return err
	}

	enLang := en.New()
	uni := ut.New(enLang, enLang)
	enTrans, found := uni.GetTranslator("en")
	if !found {
		return ErrTranslatorNotFound
	}

	if err := enTranslations.RegisterDefaultTranslations(validate, enTrans); err != nil {
		return err
	}

	err := validate.RegisterTranslation("notblank", enTrans,
		func(ut ut.Translator) error {
			return ut.Add("notblank", "{0} must not be blank", false)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, err := ut.T(fe.Tag(), fe.Field())
			if err != nil {
				return fe.Error()
			}
			return t
		},
	)
	if err != nil {
		return err
	}

	translator = enTrans
	return nil
}

// FieldErrors 將綁定錯誤轉為 欄位 → 訊息
// 非驗證錯誤 (例如 JSON 格式錯誤) 回傳 nil
func FieldErrors(err error) map[string]string {
	var validateErrs validator.ValidationErrors
	if !errors.As(err, &validateErrs) {
		return nil
	}

	fields := make(map[string]string, len(validateErrs))
	for _, fe := range validateErrs {
		if translator != nil {
			fields[fe.Field()] = fe.Translate(translator)
		} else {
			fields[fe.Field()] = fe.Error()
		}
	}
	return fields
}

// Message 產生給使用者的錯誤摘要
func Message(err error) string {
	if fields := FieldErrors(err); len(fields) > 0 {
		return "request validation failed"
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr), errors.Is(err, io.ErrUnexpectedEOF):
		return "request body must be a valid JSON object"
	case errors.Is(err, io.EOF):
		return "request body is required"
	default:
		return "invalid request body"
	}
}
