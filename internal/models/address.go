package models

// Address is the result of a postal code (CEP) lookup.
type Address struct {
	CEP        string `json:"cep"`
	Logradouro string `json:"logradouro"`
	Bairro     string `json:"bairro"`
	Cidade     string `json:"cidade"`
	UF         string `json:"uf"`
}

// ViaCEPResponse mirrors the ViaCEP JSON payload.
type ViaCEPResponse struct {
	CEP         string      `json:"cep"`
	Logradouro  string      `json:"logradouro"`
	Complemento string      `json:"complemento"`
	Bairro      string      `json:"bairro"`
	Localidade  string      `json:"localidade"`
	UF          string      `json:"uf"`
	Erro        interface{} `json:"erro,omitempty"`
}

// NotFound reports whether ViaCEP flagged the CEP as unknown. The flag has
// been sent both as a boolean and as the string "true".
func (r *ViaCEPResponse) NotFound() bool {
	switch v := r.Erro.(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}

// ToAddress converts the payload to an Address.
func (r *ViaCEPResponse) ToAddress() *Address {
	return &Address{
		CEP:        r.CEP,
		Logradouro: r.Logradouro,
		Bairro:     r.Bairro,
		Cidade:     r.Localidade,
		UF:         r.UF,
	}
}
