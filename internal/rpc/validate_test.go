package rpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/votopopular/civic-api/internal/apperr"
)

type Branding struct {
	Accent *string `json:"accentColor" validate:"omitempty,rgbhex"`
}

type profileInput struct {
	Slug string  `json:"municipalityId" validate:"required,slug"`
	CPF  *string `json:"cpf" validate:"omitempty,cpf"`
	CEP  *string `json:"zipCode" validate:"omitempty,cep"`
	Branding
}

func TestValidator_DomainRules(t *testing.T) {
	v := NewValidator()
	good, bad := "529.982.247-25", "111.111.111-11"
	cep := "36880-000"

	assert.NoError(t, v.Struct(&profileInput{Slug: "muriae-mg", CPF: &good, CEP: &cep}))
	assert.NoError(t, v.Struct(&profileInput{Slug: "muriae-mg"}), "nil pointers are skipped")

	red := "red"
	err := validationError(v.Struct(&profileInput{Slug: "Muriaé MG", CPF: &bad, Branding: Branding{Accent: &red}}))
	require.Error(t, err)
	fields := apperr.From(err).Fields
	assert.Equal(t, "must contain only lowercase letters, digits and hyphens", fields["municipalityId"])
	assert.Equal(t, "invalid CPF", fields["cpf"])
	assert.Equal(t, "must be a #RRGGBB colour", fields["accentColor"])
}
