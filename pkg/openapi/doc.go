// Package openapi derives rule declarations from the request body schemas of
// OpenAPI 3 operations, so a form posting to an API can be validated with the
// constraints the API itself enforces.
package openapi
