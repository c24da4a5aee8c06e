package crud

import (
	"math/rand"
	"strings"
)

const maxCodeAttempts = 20

// GenerateCode fills every '#' in template with a random digit.
func GenerateCode(template string) string {
	var b strings.Builder
	b.Grow(len(template))
	for _, r := range template {
		if r == '#' {
			b.WriteByte(byte('0' + rand.Intn(10)))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// UniqueCode draws codes from template until taken reports false. After
// maxCodeAttempts collisions the template is widened by one digit.
func UniqueCode(template string, taken func(string) (bool, error)) (string, error) {
	for {
		for i := 0; i < maxCodeAttempts; i++ {
			code := GenerateCode(template)
			used, err := taken(code)
			if err != nil {
				return "", err
			}
			if !used {
				return code, nil
			}
		}
		template += "#"
	}
}

// MatchesTemplate reports whether code could have been produced by template.
func MatchesTemplate(code, template string) bool {
	if len(code) != len(template) {
		return false
	}
	for i := 0; i < len(template); i++ {
		switch template[i] {
		case '#':
			if code[i] < '0' || code[i] > '9' {
				return false
			}
		default:
			if code[i] != template[i] {
				return false
			}
		}
	}
	return true
}
