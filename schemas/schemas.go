// Package schemas embeds the JSON Schemas shipped with the binary.
package schemas

import _ "embed"

// Layout is the JSON Schema for layout override files.
//
//go:embed layout.schema.json
var Layout string
