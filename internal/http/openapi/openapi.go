// Package openapi embeds the OpenAPI description of the HTTP API.
package openapi

import _ "embed"

// YAML is served at /openapi.yaml.
//
//go:embed openapi.yaml
var YAML []byte
