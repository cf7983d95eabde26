// Package schemas holds the JSON Schema documents shipped with instctl.
package schemas

import _ "embed"

// Installables is the default schema for installables documents, used when no
// schema path is supplied on the command line.
//
//go:embed installables.schema.json
var Installables []byte
