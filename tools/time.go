package tools

import (
	"context"
	"fmt"
	"time"
)

func currentTimeTool() Definition {
	return Definition{
		Schema: Schema{
			Name:        "get_current_time",
			Description: "Returns the current date and time in a given timezone.",
			Parameters: []Param{
				{Name: "timezone", Type: "string", Required: false},
			},
		},
		Handler: handleCurrentTime,
	}
}

func handleCurrentTime(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
	tz, _ := args["timezone"].(string)
	if tz == "" {
		tz = "UTC"
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("get_current_time: unknown timezone %q: %w", tz, err)
	}

	now := time.Now().In(loc)
	return map[string]interface{}{
		"timezone":  tz,
		"datetime":  now.Format(time.RFC3339),
		"formatted": now.Format("Monday, January 2, 2006 15:04:05 MST"),
	}, nil
}
