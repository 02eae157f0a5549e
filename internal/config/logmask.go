// SPDX-License-Identifier: MIT

package config

import (
	"reflect"
	"strings"
)

// sensitiveKeywords contains keywords that indicate sensitive fields.
// Any field name containing these keywords (case-insensitive) will be masked.
var sensitiveKeywords = []string{
	"password",
	"secret",
	"token",
	"apikey",
	"api_key",
	"credential",
}

// MaskSecrets recursively masks sensitive fields in the given data structure.
// Structs are rendered as maps keyed by their yaml tag so the output mirrors
// the configuration file layout. Empty secrets stay empty.
func MaskSecrets(data any) any {
	if data == nil {
		return nil
	}

	val := reflect.ValueOf(data)
	for val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	}

	switch val.Kind() {
	case reflect.Map:
		result := make(map[string]any)
		iter := val.MapRange()
		for iter.Next() {
			key := iter.Key().String()
			result[key] = maskValue(key, iter.Value())
		}
		return result

	case reflect.Slice, reflect.Array:
		result := make([]any, val.Len())
		for i := 0; i < val.Len(); i++ {
			result[i] = MaskSecrets(val.Index(i).Interface())
		}
		return result

	case reflect.Struct:
		result := make(map[string]any)
		typ := val.Type()
		for i := 0; i < val.NumField(); i++ {
			field := typ.Field(i)
			if !field.IsExported() {
				continue
			}
			name := field.Name
			if tag, _, _ := strings.Cut(field.Tag.Get("yaml"), ","); tag != "" {
				if tag == "-" {
					continue
				}
				name = tag
			}
			result[name] = maskValue(name, val.Field(i))
		}
		return result

	default:
		return val.Interface()
	}
}

func maskValue(key string, v reflect.Value) any {
	if !isSensitiveKey(key) {
		return MaskSecrets(v.Interface())
	}
	if v.Kind() == reflect.String && v.Len() == 0 {
		return ""
	}
	return "***"
}

// isSensitiveKey checks if a key name contains any sensitive keyword.
func isSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)
	for _, keyword := range sensitiveKeywords {
		if strings.Contains(lowerKey, keyword) {
			return true
		}
	}
	return false
}
