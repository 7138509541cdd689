// Package middleware provides HTTP middleware for the Redink API.
package middleware

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// Validation limits.
const (
	// MaxTextLength is the maximum byte length for submitted text.
	MaxTextLength = 65536

	// MaxTitleLength is the maximum length for document titles.
	MaxTitleLength = 256

	// MaxReasonLength is the maximum length for complaint reasons.
	MaxReasonLength = 2048

	// MaxBlacklistWordLength is the maximum length for a proposed blacklist word.
	MaxBlacklistWordLength = 64

	// MaxEndpointURLLength is the maximum length for notify endpoint URLs.
	MaxEndpointURLLength = 1024
)

// Validation errors.
var (
	ErrTextTooLong          = errors.New("text exceeds maximum length")
	ErrTextInvalidEncoding  = errors.New("text is not valid UTF-8")
	ErrTitleTooLong         = errors.New("title exceeds maximum length")
	ErrReasonTooLong        = errors.New("reason exceeds maximum length")
	ErrWordTooLong          = errors.New("word exceeds maximum length")
	ErrEndpointURLTooLong   = errors.New("endpoint URL exceeds maximum length")
	ErrEndpointURLInvalid   = errors.New("endpoint URL is invalid")
	ErrEndpointURLUnsafe    = errors.New("endpoint URL uses unsafe scheme")
)

// ValidateText validates user-submitted text before it reaches the pricing rules.
func ValidateText(text string) error {
	if len(text) > MaxTextLength {
		return ErrTextTooLong
	}
	if !utf8.ValidString(text) {
		return ErrTextInvalidEncoding
	}
	return nil
}

// ValidateTitle validates a document title.
func ValidateTitle(title string) error {
	if len(title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	return nil
}

// ValidateReason validates a complaint reason.
func ValidateReason(reason string) error {
	if len(reason) > MaxReasonLength {
		return ErrReasonTooLong
	}
	return nil
}

// ValidateBlacklistWord validates a proposed blacklist word.
func ValidateBlacklistWord(word string) error {
	if len(word) > MaxBlacklistWordLength {
		return ErrWordTooLong
	}
	return nil
}

// ValidateEndpointURL validates a notify endpoint target URL.
func ValidateEndpointURL(url string) error {
	if len(url) > MaxEndpointURLLength {
		return ErrEndpointURLTooLong
	}

	lowerURL := strings.ToLower(url)
	if !strings.HasPrefix(lowerURL, "http://") && !strings.HasPrefix(lowerURL, "https://") {
		return ErrEndpointURLInvalid
	}

	// Block dangerous schemes (in case of URL encoding tricks)
	forbiddenSchemes := []string{"javascript:", "data:", "vbscript:", "file:"}
	for _, scheme := range forbiddenSchemes {
		if strings.Contains(lowerURL, scheme) {
			return ErrEndpointURLUnsafe
		}
	}

	return nil
}
