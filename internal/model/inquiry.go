package model

// Inquiry is a contact-form submission from the marketing site.
type Inquiry struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Company   string `json:"company"`
	Service   string `json:"service"`
	Budget    string `json:"budget"`
	Timeline  string `json:"timeline"`
	Message   string `json:"message"`
	Subscribe bool   `json:"subscribe"`
}
