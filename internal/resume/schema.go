package resume

import _ "embed"

// Schema is the JSON schema of a canonical Record. The enrichment prompt
// shows it to the model and the assembler validates against it.
//
//go:embed schema.json
var Schema []byte
