package validation

import "strings"

// FieldErrors maps a request field to the single message shown next to it.
type FieldErrors map[string]string

// Add records msg for field unless the field already has a message.
func (f FieldErrors) Add(field, msg string) {
	if _, ok := f[field]; !ok {
		f[field] = msg
	}
}

// Empty reports whether no field failed.
func (f FieldErrors) Empty() bool {
	return len(f) == 0
}

// ContactInput is the user-editable part of a contact.
type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message,omitempty"`
}

// NormalizeContact trims every field and lowercases the email.
func NormalizeContact(in ContactInput) ContactInput {
	return ContactInput{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:   strings.TrimSpace(in.Phone),
		Message: strings.TrimSpace(in.Message),
	}
}

// ValidateContact checks name, email and phone. Message is free text.
func ValidateContact(in ContactInput) FieldErrors {
	errs := FieldErrors{}

	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		errs.Add("name", "Name is required")
	case !ValidateName(name):
		errs.Add("name", "Name must be at least 2 characters")
	}

	email := strings.TrimSpace(in.Email)
	switch {
	case email == "":
		errs.Add("email", "Email is required")
	case !ValidateEmail(email):
		errs.Add("email", "Please enter a valid email address")
	}

	if res := ValidatePhone(in.Phone); !res.Valid {
		errs.Add("phone", res.Reason)
	}

	return errs
}

// ValidateSignup checks the fields of a new account.
func ValidateSignup(name, email, password string) FieldErrors {
	errs := FieldErrors{}

	switch n := strings.TrimSpace(name); {
	case n == "":
		errs.Add("name", "Name is required")
	case !ValidateName(n):
		errs.Add("name", "Name must be at least 2 characters")
	}

	switch e := strings.TrimSpace(email); {
	case e == "":
		errs.Add("email", "Email is required")
	case !ValidateEmail(e):
		errs.Add("email", "Please enter a valid email address")
	}

	switch {
	case password == "":
		errs.Add("password", "Password is required")
	case len(password) < MinPasswordLength:
		errs.Add("password", "Password must be at least 6 characters")
	}

	return errs
}
