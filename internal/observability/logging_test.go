package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskCPF(t *testing.T) {
	tests := []struct {
		name     string
		cpf      string
		expected string
	}{
		{
			name:     "valid 11-digit CPF",
			cpf:      "12345678901",
			expected: "123.***.789-**",
		},
		{
			name:     "another valid CPF",
			cpf:      "03561350712",
			expected: "035.***.507-**",
		},
		{
			name:     "CPF too short",
			cpf:      "123456789",
			expected: "***.***.***-**",
		},
		{
			name:     "empty CPF",
			cpf:      "",
			expected: "***.***.***-**",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MaskCPF(tt.cpf))
		})
	}
}

func TestMaskDocument(t *testing.T) {
	assert.Equal(t, "529.***.247-**", MaskDocument("529.982.247-25"))
	assert.Equal(t, "11.***.***/****-81", MaskDocument("11.222.333/0001-81"))
	assert.Equal(t, "***.***.***-**", MaskDocument("123"))
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "m****@rio.rj.gov.br", MaskEmail("maria@rio.rj.gov.br"))
	assert.Equal(t, "****", MaskEmail("sem-arroba"))
	assert.Equal(t, "****", MaskEmail("@dominio.com"))
}
