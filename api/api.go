// Package api embeds the OpenAPI document of the control API.
package api

import _ "embed"

//go:embed openapi.yaml
var Spec []byte
