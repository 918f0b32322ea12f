package utils

import "strings"

// FirstNonBlank devuelve el primer valor que no sea vacío ni solo espacios (recortado).
func FirstNonBlank(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
