package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type signup struct {
	Correo     string `json:"correo" validate:"required,mailshape"`
	Contrasena string `json:"contrasena" validate:"required,min=8"`
	Edad       int    `json:"edad" validate:"gte=1,lte=120"`
	Reset      string `validate:"omitempty,strongpassword" errorMsg:"weak"`
}

func TestValidateStruct(t *testing.T) {
	v := New()

	errs := ValidateStruct(v, signup{Correo: "ana@mail.com", Contrasena: "12345678", Edad: 30})
	assert.Empty(t, errs)

	errs = ValidateStruct(v, &signup{Correo: "ana@mail", Contrasena: "123", Edad: 0, Reset: "abc"})
	assert.Equal(t, map[string]string{
		"correo":     "Correo electrónico inválido",
		"contrasena": "El valor mínimo es 8",
		"edad":       "El valor debe ser mayor o igual a 1",
		"reset":      "weak",
	}, errs)
}

func TestIsMailShape(t *testing.T) {
	cases := map[string]bool{
		"ana@mail.com":   true,
		"a@b.co":         true,
		"ana@@mail.com":  false,
		"ana@mail":       false,
		"ana.mail.com":   false,
		"@mail.com":      false,
		"ana@mail.com@x": false,
	}
	for in, want := range cases {
		assert.Equal(t, want, IsMailShape(in), in)
	}
}

func TestCheckPassword(t *testing.T) {
	assert.True(t, CheckPassword("Secreta#123").OK())

	// Length counts characters, not bytes.
	assert.False(t, CheckPassword("Aa1!úúú").MinLength)
	assert.True(t, CheckPassword("Aa1!úúúú").OK())

	rules := CheckPassword("secreta")
	assert.False(t, rules.MinLength)
	assert.False(t, rules.HasUpperCase)
	assert.True(t, rules.HasLowerCase)
	assert.False(t, rules.HasNumber)
	assert.False(t, rules.HasSpecialChar)
	assert.False(t, rules.OK())
}

func TestCamelToSnake(t *testing.T) {
	assert.Equal(t, "usuario_id", camelToSnake("UsuarioId"))
	assert.Equal(t, "reset", camelToSnake("Reset"))
}
