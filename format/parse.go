package format

import "encoding/json"

// tryParseMapping attempts to parse data as a JSON object, returning nil
// when it isn't one: structured payloads get typed rendering, everything
// else is treated as opaque text.
func tryParseMapping(data string) map[string]interface{} {
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return nil
	}
	return m
}
