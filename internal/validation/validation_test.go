package validation

import (
	"strings"
	"testing"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr error
	}{
		{
			name:    "valid email",
			email:   "user@example.com",
			wantErr: nil,
		},
		{
			name:    "valid with subdomain",
			email:   "user@mail.example.co.uk",
			wantErr: nil,
		},
		{
			name:    "trims whitespace",
			email:   "  user@example.com  ",
			wantErr: nil,
		},
		{
			name:    "empty",
			email:   "",
			wantErr: ErrEmailEmpty,
		},
		{
			name:    "missing at sign",
			email:   "userexample.com",
			wantErr: ErrEmailInvalid,
		},
		{
			name:    "missing domain dot",
			email:   "user@example",
			wantErr: ErrEmailInvalid,
		},
		{
			name:    "whitespace inside",
			email:   "us er@example.com",
			wantErr: ErrEmailInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Email(tt.email)
			if err != tt.wantErr {
				t.Errorf("Email(%q) = %v, want %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{
			name:    "valid name",
			input:   "Ada Lovelace",
			wantErr: nil,
		},
		{
			name:    "minimum length",
			input:   "Al",
			wantErr: nil,
		},
		{
			name:    "too short",
			input:   "A",
			wantErr: ErrNameTooShort,
		},
		{
			name:    "whitespace only",
			input:   "   ",
			wantErr: ErrNameTooShort,
		},
		{
			name:    "too long",
			input:   strings.Repeat("a", 101),
			wantErr: ErrNameTooLong,
		},
		{
			name:    "max length valid",
			input:   strings.Repeat("a", 100),
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Name(tt.input)
			if err != tt.wantErr {
				t.Errorf("Name(%q) = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{
			name:     "valid password",
			password: "Sup3rSecret",
			wantErr:  nil,
		},
		{
			name:     "minimum complexity",
			password: "Aa345678",
			wantErr:  nil,
		},
		{
			name:     "too short",
			password: "Aa1",
			wantErr:  ErrPasswordTooShort,
		},
		{
			name:     "empty",
			password: "",
			wantErr:  ErrPasswordTooShort,
		},
		{
			name:     "no uppercase",
			password: "lowercase1234",
			wantErr:  ErrPasswordWeak,
		},
		{
			name:     "no lowercase",
			password: "UPPERCASE1234",
			wantErr:  ErrPasswordWeak,
		},
		{
			name:     "no digit",
			password: "NoDigitsHere",
			wantErr:  ErrPasswordWeak,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Password(tt.password)
			if err != tt.wantErr {
				t.Errorf("Password(%q) = %v, want %v", tt.password, err, tt.wantErr)
			}
		})
	}
}

func TestKeyName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{
			name:    "valid key name",
			input:   "openai-production",
			wantErr: nil,
		},
		{
			name:    "minimum length",
			input:   "abc",
			wantErr: nil,
		},
		{
			name:    "too short",
			input:   "ab",
			wantErr: ErrKeyNameTooShort,
		},
		{
			name:    "whitespace does not count",
			input:   " a ",
			wantErr: ErrKeyNameTooShort,
		},
		{
			name:    "too long",
			input:   strings.Repeat("a", 101),
			wantErr: ErrKeyNameTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := KeyName(tt.input)
			if err != tt.wantErr {
				t.Errorf("KeyName(%q) = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestKeySecret(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		wantErr error
	}{
		{
			name:    "valid secret",
			secret:  "sk-" + strings.Repeat("a", 45),
			wantErr: nil,
		},
		{
			name:    "exactly 32",
			secret:  strings.Repeat("a", 32),
			wantErr: nil,
		},
		{
			name:    "too short",
			secret:  strings.Repeat("a", 31),
			wantErr: ErrKeySecretTooShort,
		},
		{
			name:    "empty",
			secret:  "",
			wantErr: ErrKeySecretTooShort,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := KeySecret(tt.secret)
			if err != tt.wantErr {
				t.Errorf("KeySecret(%q) = %v, want %v", tt.secret, err, tt.wantErr)
			}
		})
	}
}
