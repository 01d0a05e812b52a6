package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidCPF(t *testing.T) {
	valid := []string{"529.982.247-25", "52998224725", "111.444.777-35"}
	for _, c := range valid {
		assert.True(t, ValidCPF(c), c)
	}

	invalid := []string{"", "123", "529.982.247-26", "11111111111", "00000000000", "529.982.247"}
	for _, c := range invalid {
		assert.False(t, ValidCPF(c), c)
	}
}

func TestValidCEP(t *testing.T) {
	assert.True(t, ValidCEP("36880-000"))
	assert.True(t, ValidCEP("36880000"))
	assert.False(t, ValidCEP("3688-000"))
	assert.False(t, ValidCEP("36880-00a"))
}

func TestValidSlug(t *testing.T) {
	assert.True(t, ValidSlug("muriae-mg"))
	assert.True(t, ValidSlug("sp"))
	assert.False(t, ValidSlug("Muriaé MG"))
	assert.False(t, ValidSlug("muriae_mg"))
	assert.False(t, ValidSlug(""))
}

func TestValidColorAndLogo(t *testing.T) {
	assert.True(t, ValidColor("#0066cc"))
	assert.False(t, ValidColor("#06c"))
	assert.False(t, ValidColor("0066cc"))

	assert.True(t, ValidLogoURL("https://cdn.example.com/logo.png"))
	assert.False(t, ValidLogoURL("/logo.png"))
	assert.False(t, ValidLogoURL("javascript:alert(1)"))
}
