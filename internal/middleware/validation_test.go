package middleware

import (
	"strings"
	"testing"
)

func TestValidateText(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr error
	}{
		{
			name:    "empty is valid at this layer",
			text:    "",
			wantErr: nil,
		},
		{
			name:    "plain text",
			text:    "the quick brown fox",
			wantErr: nil,
		},
		{
			name:    "unicode text",
			text:    "héllo wörld",
			wantErr: nil,
		},
		{
			name:    "too long",
			text:    strings.Repeat("a", MaxTextLength+1),
			wantErr: ErrTextTooLong,
		},
		{
			name:    "invalid utf-8",
			text:    string([]byte{0xff, 0xfe, 0xfd}),
			wantErr: ErrTextInvalidEncoding,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateText(tt.text)
			if err != tt.wantErr {
				t.Errorf("ValidateText() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateTitle(t *testing.T) {
	if err := ValidateTitle("My Essay"); err != nil {
		t.Errorf("ValidateTitle(valid) = %v, want nil", err)
	}
	if err := ValidateTitle(strings.Repeat("t", MaxTitleLength+1)); err != ErrTitleTooLong {
		t.Errorf("ValidateTitle(long) = %v, want %v", err, ErrTitleTooLong)
	}
}

func TestValidateReason(t *testing.T) {
	if err := ValidateReason("plagiarized my document"); err != nil {
		t.Errorf("ValidateReason(valid) = %v, want nil", err)
	}
	if err := ValidateReason(strings.Repeat("r", MaxReasonLength+1)); err != ErrReasonTooLong {
		t.Errorf("ValidateReason(long) = %v, want %v", err, ErrReasonTooLong)
	}
}

func TestValidateBlacklistWord(t *testing.T) {
	if err := ValidateBlacklistWord("spamword"); err != nil {
		t.Errorf("ValidateBlacklistWord(valid) = %v, want nil", err)
	}
	if err := ValidateBlacklistWord(strings.Repeat("w", MaxBlacklistWordLength+1)); err != ErrWordTooLong {
		t.Errorf("ValidateBlacklistWord(long) = %v, want %v", err, ErrWordTooLong)
	}
}

func TestValidateEndpointURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr error
	}{
		{
			name:    "valid https",
			url:     "https://example.com/hooks",
			wantErr: nil,
		},
		{
			name:    "valid http",
			url:     "http://example.com/hooks",
			wantErr: nil,
		},
		{
			name:    "javascript scheme blocked",
			url:     "javascript:alert('xss')",
			wantErr: ErrEndpointURLInvalid,
		},
		{
			name:    "data scheme blocked",
			url:     "data:text/html,<h1>test</h1>",
			wantErr: ErrEndpointURLInvalid,
		},
		{
			name:    "file scheme blocked",
			url:     "file:///etc/passwd",
			wantErr: ErrEndpointURLInvalid,
		},
		{
			name:    "too long URL",
			url:     "https://example.com/" + strings.Repeat("a", 1100),
			wantErr: ErrEndpointURLTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEndpointURL(tt.url)
			if err != tt.wantErr {
				t.Errorf("ValidateEndpointURL(%q) = %v, want %v", tt.url, err, tt.wantErr)
			}
		})
	}
}
