package user

import (
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Prajjwal2051/Viewly-sub002/core"
)

func newValidator(t *testing.T) (*validator.Validate, ut.Translator) {
	t.Helper()
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)

	pwds, err := readCommonPasswords()
	require.NoError(t, err)
	commonPasswords = pwds
	return validate, translator
}

func fieldErrors(t *testing.T, err error, translator ut.Translator) map[string]string {
	t.Helper()
	if err == nil {
		return nil
	}
	vErrs, ok := err.(validator.ValidationErrors)
	require.True(t, ok, "unexpected error type %T", err)
	errs := make(map[string]string, len(vErrs))
	for _, e := range vErrs {
		errs[e.Field()] = e.Translate(translator)
	}
	return errs
}

func TestNewUser_Validate(t *testing.T) {
	validate, translator := newValidator(t)

	tests := []struct {
		name string
		nu   NewUser
		want map[string]string
	}{
		{
			name: "required fields",
			want: map[string]string{
				"fullName": "this field is required",
				"username": "this field is required",
				"email":    "this field is required",
				"password": pwdMinLenText,
			},
		},
		{
			name: "invalid username & email",
			nu:   NewUser{FullName: "Jane Doe", Username: "ja ne", Email: "lol", Password: "Vi3wly!Rocks"},
			want: map[string]string{
				"username": alphaNumUnderMsg,
				"email":    "email must be a valid email address",
			},
		},
		{name: "whitespace", nu: NewUser{FullName: "Jane", Username: "jane", Email: "jane@test.io", Password: "Vi3w ly!R"}, want: map[string]string{"password": pwdNoSpaceText}},
		{name: "numeric", nu: NewUser{FullName: "Jane", Username: "jane", Email: "jane@test.io", Password: "1234567890"}, want: map[string]string{"password": pwdNotAllNumText}},
		{name: "complexity", nu: NewUser{FullName: "Jane", Username: "jane", Email: "jane@test.io", Password: "viewly123"}, want: map[string]string{"password": pwdComplexityText}},
		{name: "similar", nu: NewUser{FullName: "Jane", Username: "janedoe_99", Email: "jane@test.io", Password: "JaneDoe_99"}, want: map[string]string{"password": pwdAttrSimText}},
		{name: "common", nu: NewUser{FullName: "Jane", Username: "jane", Email: "jane@test.io", Password: "P@$$w0rd"}, want: map[string]string{"password": pwdNoCommonText}},
		{name: "cleaned & valid", nu: NewUser{FullName: "  Jane Doe ", Username: " Jane_Doe ", Email: "JANE@Test.io", Password: "Vi3wly!Rocks"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.nu.Validate(validate)
			assert.Equal(t, tt.want, fieldErrors(t, err, translator))
		})
	}

	t.Run("cleaning", func(t *testing.T) {
		nu := NewUser{FullName: "  Jane Doe ", Username: " Jane_Doe ", Email: "JANE@Test.io", Password: "Vi3wly!Rocks"}
		require.NoError(t, nu.Validate(validate))
		assert.Equal(t, "Jane Doe", nu.FullName)
		assert.Equal(t, "jane_doe", nu.Username)
		assert.Equal(t, "jane@test.io", nu.Email)
	})
}

func TestChangePassword_Validate(t *testing.T) {
	validate, translator := newValidator(t)
	usr := User{FullName: "Jane Doe", Username: "janedoe", Email: "jane@test.io"}

	tests := []struct {
		name string
		cp   ChangePassword
		want map[string]string
	}{
		{
			name: "mismatch",
			cp:   ChangePassword{OldPassword: "old", NewPassword: "Vi3wly!Rocks", ConfirmPassword: "Vi3wly!Rock"},
			want: map[string]string{"confirmPassword": "confirmPassword must be equal to NewPassword"},
		},
		{
			name: "similar to username",
			cp:   ChangePassword{OldPassword: "old", NewPassword: "Janedoe#1", ConfirmPassword: "Janedoe#1"},
			want: map[string]string{"newPassword": pwdAttrSimText},
		},
		{name: "valid", cp: ChangePassword{OldPassword: "old", NewPassword: "Vi3wly!Rocks", ConfirmPassword: "Vi3wly!Rocks"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cp.Validate(validate, usr)
			assert.Equal(t, tt.want, fieldErrors(t, err, translator))
		})
	}
}

func TestUpdateAccount_Validate(t *testing.T) {
	validate, _ := newValidator(t)

	err := (&UpdateAccount{}).Validate(validate)
	vErr, ok := err.(*core.ValidationError)
	require.True(t, ok)
	assert.Len(t, vErr.Fields, 2)

	ua := UpdateAccount{Email: " Jane@Test.IO "}
	assert.NoError(t, ua.Validate(validate))
	assert.Equal(t, "jane@test.io", ua.Email)
}

const alphaNumUnderMsg = "only alphanumeric characters and underscores are allowed"
