// Package handlers implements the HTTP API of the price matcher: health
// probes, target management, ad-hoc resolution, batch runs, latest results
// and the HTML report.
package handlers

import (
	"reflect"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shopspring/decimal"
)

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
}

// StatusResponse is a generic status response body.
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// registerSchemas teaches the API registry that money travels as a
// decimal string such as "599.99".
func registerSchemas(api huma.API) {
	api.OpenAPI().Components.Schemas.RegisterTypeAlias(
		reflect.TypeFor[decimal.Decimal](),
		reflect.TypeFor[string](),
	)
}
