package middleware

import (
	"net/http"
	"strings"
)

const methodOverrideField = "_method"

// MethodOverride lets HTML forms issue PUT, PATCH and DELETE through a POST
// carrying a _method field or an X-HTTP-Method-Override header.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			next.ServeHTTP(w, r)
			return
		}

		method := r.Header.Get("X-HTTP-Method-Override")
		if method == "" && strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
			method = r.PostFormValue(methodOverrideField)
		}

		switch method = strings.ToUpper(method); method {
		case http.MethodPut, http.MethodPatch, http.MethodDelete:
			r.Method = method
		}

		next.ServeHTTP(w, r)
	})
}
