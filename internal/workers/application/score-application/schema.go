package scoreapplication

import "screening-workers/internal/common/validation"

const inputSchema = `{
  "type": "object",
  "properties": {
    "applicationId": {"type": ["string", "number"]},
    "applicant": {"type": "object", "minProperties": 1},
    "scores": {
      "type": "object",
      "properties": {
        "value_proposition": {"type": ["number", "string"]},
        "market_growth_potential": {"type": ["number", "string"]},
        "team_expertise": {"type": ["number", "string"]}
      },
      "required": ["value_proposition", "market_growth_potential", "team_expertise"],
      "additionalProperties": false
    }
  },
  "oneOf": [
    {"required": ["applicant"]},
    {"required": ["scores"]}
  ]
}`

var schema = validation.MustCompile(inputSchema)

func GetInputSchema() *validation.Schema {
	return schema
}
