package worker

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/gyunggyung/Tiny-MoA/tools"
)

// ToolWorker resolves a tool and arguments from a description via a small
// keyword-to-tool inference table, then delegates to the Tool Dispatcher
// in raw-result mode — no LLM post-processing of the payload.
type ToolWorker struct {
	dispatcher *tools.Dispatcher
}

// NewToolWorker builds a ToolWorker over dispatcher.
func NewToolWorker(dispatcher *tools.Dispatcher) *ToolWorker {
	return &ToolWorker{dispatcher: dispatcher}
}

// cityNames is the small keyword-to-city map used when inferring a
// get_weather argument from free text.
var cityNames = []string{
	"seoul", "tokyo", "new york", "london", "paris", "berlin", "beijing",
	"shanghai", "busan", "osaka", "moscow", "sydney", "toronto", "singapore",
}

// explicitToolPrefixes are the "tool_name: argument" description shapes a
// planned task may carry; a matching prefix names the tool directly and
// the remainder is the argument.
var explicitToolPrefixes = []string{
	"execute_command", "search_web", "search_news", "search_wikipedia",
	"get_weather", "read_url", "calculate", "get_current_time",
}

func inferToolAndArg(description string) (toolName, argHint string) {
	for _, name := range explicitToolPrefixes {
		if strings.HasPrefix(description, name+":") {
			return name, strings.TrimSpace(description[len(name)+1:])
		}
	}

	lower := strings.ToLower(description)

	switch {
	case strings.Contains(lower, "version") || strings.Contains(lower, "installed"):
		return "execute_command", description
	case strings.Contains(lower, "weather"):
		for _, city := range cityNames {
			if idx := strings.Index(lower, city); idx >= 0 {
				return "get_weather", description[idx : idx+len(city)]
			}
		}
		return "get_weather", "Seoul"
	case strings.Contains(lower, "news") || strings.Contains(lower, "headline"):
		return "search_news", description
	case strings.Contains(lower, "wikipedia"):
		return "search_wikipedia", description
	case strings.Contains(lower, "calculate") || strings.Contains(lower, "compute"):
		return "calculate", description
	case strings.Contains(lower, "time") || strings.Contains(lower, "timezone"):
		return "get_current_time", description
	case strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://"):
		return "read_url", description
	default:
		return "search_web", description
	}
}

func (w *ToolWorker) Execute(ctx context.Context, description string) (string, error) {
	toolName, argHint := inferToolAndArg(description)
	result := w.dispatcher.Dispatch(ctx, tools.Call{Name: toolName, ArgHint: argHint, Text: description})
	if !result.Success {
		return "", errToolFailed(result.Error)
	}

	raw, err := json.Marshal(result.Payload)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

type toolFailure string

func (e toolFailure) Error() string { return string(e) }
func errToolFailed(msg string) error {
	return toolFailure(msg)
}
