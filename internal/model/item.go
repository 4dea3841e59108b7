package model

import (
	"errors"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrBlankName is returned when an item name is empty after trimming.
var ErrBlankName = errors.New("name cannot be blank")

// Item is the domain model for a shopping list entry.
// ID is assigned by the store and never changes after creation.
type Item struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	IsBought bool   `json:"is_bought"`
}

// NormalizeName trims surrounding whitespace and NFC-normalizes s so that
// visually identical names are stored identically.
func NormalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// ValidateName returns the normalized name, or ErrBlankName if nothing is left.
func ValidateName(s string) (string, error) {
	name := NormalizeName(s)
	if name == "" {
		return "", ErrBlankName
	}
	return name, nil
}
