package validation

import (
	"strings"
	"testing"
)

func TestSessionName(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr error
	}{
		{"valid", "research notes", nil},
		{"single_char", "a", nil},
		{"max_length", strings.Repeat("x", 100), nil},
		{"empty", "", ErrSessionNameEmpty},
		{"whitespace_only", "   ", ErrSessionNameEmpty},
		{"too_long", strings.Repeat("x", 101), ErrSessionNameTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := SessionName(tt.in); err != tt.wantErr {
				t.Errorf("SessionName(%q) = %v, want %v", tt.in, err, tt.wantErr)
			}
		})
	}
}

func TestPassword(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr error
	}{
		{"valid", "longenough", nil},
		{"exactly_eight", "12345678", nil},
		{"too_short", "short", ErrPasswordTooShort},
		{"empty", "", ErrPasswordTooShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Password(tt.in); err != tt.wantErr {
				t.Errorf("Password(%q) = %v, want %v", tt.in, err, tt.wantErr)
			}
		})
	}
}

func TestCaptureText(t *testing.T) {
	if err := CaptureText("some selected text"); err != nil {
		t.Errorf("CaptureText() = %v, want nil", err)
	}
	if err := CaptureText(""); err != ErrCaptureTextEmpty {
		t.Errorf("CaptureText(\"\") = %v, want ErrCaptureTextEmpty", err)
	}
	if err := CaptureText(" \n\t "); err != ErrCaptureTextEmpty {
		t.Errorf("CaptureText(whitespace) = %v, want ErrCaptureTextEmpty", err)
	}
}

func TestSecretName(t *testing.T) {
	if err := SecretName("groq_api_key"); err != nil {
		t.Errorf("SecretName() = %v, want nil", err)
	}
	if err := SecretName(""); err != ErrSecretNameEmpty {
		t.Errorf("SecretName(\"\") = %v, want ErrSecretNameEmpty", err)
	}
}
