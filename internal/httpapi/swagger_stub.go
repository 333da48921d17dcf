//go:build !swagger

package httpapi

import "github.com/go-chi/chi/v5"

// MountSwagger registers nothing: /swagger/ routes exist only in builds
// tagged swagger.
func MountSwagger(chi.Router) {}
