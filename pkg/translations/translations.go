package translations

import (
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// TranslationHelperFunc returns the text for key, or defaultValue when no
// override is configured.
type TranslationHelperFunc func(key string, defaultValue string) string

// NullTranslationHelper always returns the default value.
func NullTranslationHelper(_ string, defaultValue string) string {
	return defaultValue
}

// TranslationHelper returns a helper that reads overrides from viper, so
// TOOL_GET_PORTFOLIO_STATS_DESCRIPTION is overridden by the
// GITHUB_MCP_TOOL_GET_PORTFOLIO_STATS_DESCRIPTION environment variable.
// The second return value reports every key resolved so far.
func TranslationHelper() (TranslationHelperFunc, func() map[string]string) {
	var mu sync.Mutex
	used := map[string]string{}

	helper := func(key string, defaultValue string) string {
		key = strings.ToUpper(key)
		value := viper.GetString("mcp_" + strings.ToLower(key))
		if value == "" {
			value = defaultValue
		}

		mu.Lock()
		used[key] = value
		mu.Unlock()
		return value
	}

	dump := func() map[string]string {
		mu.Lock()
		defer mu.Unlock()
		out := make(map[string]string, len(used))
		for k, v := range used {
			out[k] = v
		}
		return out
	}

	return helper, dump
}
