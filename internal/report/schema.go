package report

// Schema is the JSON Schema (Draft 2020-12) for the timing report
// written by WriteJSON.
const Schema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://github.com/unbound-force/flowerbox/timing-report.schema.json",
  "title": "Flowerbox Timing Report",
  "description": "Output schema for flowerbox run --format=json",
  "type": "object",
  "required": ["version", "name", "command", "start", "end", "elapsed", "elapsed_ms"],
  "additionalProperties": false,
  "properties": {
    "version": {
      "type": "string",
      "description": "Flowerbox version that produced the report"
    },
    "name": {
      "type": "string",
      "description": "Name shown in the start and end boxes"
    },
    "command": {
      "type": "array",
      "items": { "type": "string" },
      "description": "Command line that was timed"
    },
    "start": {
      "type": "string",
      "format": "date-time",
      "description": "Start time (RFC 3339)"
    },
    "end": {
      "type": "string",
      "format": "date-time",
      "description": "End time (RFC 3339)"
    },
    "elapsed": {
      "type": "string",
      "pattern": "^(-?[0-9]+ days?, )?-?[0-9]+:[0-9]{2}:[0-9]{2}(\\.[0-9]{6})?$",
      "description": "Elapsed time as H:MM:SS.ffffff"
    },
    "elapsed_ms": {
      "type": "integer",
      "minimum": 0,
      "description": "Elapsed time in milliseconds"
    }
  }
}`
