package scoreapplicationbatch

import "screening-workers/internal/common/validation"

const inputSchema = `{
  "type": "object",
  "properties": {
    "rows": {
      "type": "array",
      "items": {"type": "object"}
    }
  },
  "required": ["rows"]
}`

var schema = validation.MustCompile(inputSchema)

func GetInputSchema() *validation.Schema {
	return schema
}
