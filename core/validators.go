package core

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	Validate   *validator.Validate
	Translator ut.Translator

	// custom validation tags & texts

	// alphaAccents: human names. Letters (accents included) and spaces only;
	// digits and punctuation are rejected.
	alphaAccentsTag   = "alpha_accents"
	alphaAccentsText  = "only letters are allowed"
	alphaAccentsRegex = regexp.MustCompile(`^\pL+( \pL+)*$`)

	// nameChars: entity names (groups, projects). Letters, accents, spaces,
	// hyphens and underscores.
	nameCharsTag   = "name_chars"
	nameCharsText  = "only letters, hyphens and underscores are allowed"
	nameCharsRegex = regexp.MustCompile(`^[\pL_-]+( [\pL_-]+)*$`)

	// repoName: code-host repository names. ASCII letters, digits, hyphens
	// and underscores; no spaces, no accents.
	repoNameTag   = "repo_name"
	repoNameText  = "only alphanumeric characters, hyphens and underscores are allowed"
	repoNameRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"
)

// Instantiate the validator for use.
func init() {
	Validate = validator.New()

	// Register the english error messages for validation errors.
	_en := en.New()
	uni := ut.New(_en, _en)
	Translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(Validate, Translator)

	// Use JSON tag names for errors instead of Go struct names.
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = Validate.RegisterValidation(alphaAccentsTag, regexValidation(alphaAccentsRegex))
	RegisterCustomTranslation(alphaAccentsTag, alphaAccentsText)

	_ = Validate.RegisterValidation(nameCharsTag, regexValidation(nameCharsRegex))
	RegisterCustomTranslation(nameCharsTag, nameCharsText)

	_ = Validate.RegisterValidation(repoNameTag, regexValidation(repoNameRegex))
	RegisterCustomTranslation(repoNameTag, repoNameText)

	RegisterCustomTranslation(requiredTag, requiredText, true)
	RegisterCustomTranslation(requiredWithTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = Validate.RegisterTranslation(
		tag, Translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

func regexValidation(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// TranslateValidationErrors flattens validator errors into our own taxonomy so
// callers outside the HTTP boundary see the same kind of error everywhere.
func TranslateValidationErrors(err error) error {
	vErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	flds := make([]FieldError, 0, len(vErrs))
	for _, vErr := range vErrs {
		flds = append(flds, FieldError{Field: vErr.Field(), Error: vErr.Translate(Translator)})
	}
	return NewValidationError(err, flds...)
}
