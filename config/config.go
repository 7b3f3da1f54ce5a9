package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/rpupo63/blogpress/database"
	"github.com/rpupo63/blogpress/feed"
)

func New() map[string]string {
	environ := os.Environ()
	envAsMap := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry != "" {
			key, value := split(entry)
			envAsMap[key] = value
		}
	}
	return envAsMap
}

// assumes entry is not the empty string
func split(entry string) (key, value string) {
	parts := strings.SplitN(entry, "=", 2)
	if len(parts) < 2 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

func GetString(config map[string]string, key string, defaultValue string) string {
	if config == nil {
		return defaultValue
	}

	if val, ok := config[key]; ok {
		return val
	}
	return defaultValue
}

func GetInt(config map[string]string, key string, defaultValue int) int {
	if config == nil {
		return defaultValue
	}

	s, ok := config[key]
	if !ok {
		return defaultValue
	}

	asInt, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}

	return asInt
}

// GetBool accepts the values understood by strconv.ParseBool; anything else yields defaultValue.
func GetBool(config map[string]string, key string, defaultValue bool) bool {
	if config == nil {
		return defaultValue
	}

	s, ok := config[key]
	if !ok {
		return defaultValue
	}

	asBool, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return defaultValue
	}

	return asBool
}

// LoadFeedConfig reads the feed options. Unset title and subtitle fall back to the feed defaults.
func LoadFeedConfig(config map[string]string) feed.Config {
	return feed.Config{
		Title:             GetString(config, "BLOG_TITLE", ""),
		Subtitle:          GetString(config, "BLOG_SUBTITLE", ""),
		Rights:            GetString(config, "BLOG_RIGHTS", ""),
		LogoURL:           GetString(config, "BLOG_LOGO_URL", ""),
		MountPath:         GetString(config, "BLOG_MOUNT_PATH", ""),
		IncludeCategories: GetBool(config, "FEED_INCLUDE_CATEGORIES", false),
	}
}

func LoadSearchPolicy(config map[string]string) database.SearchPolicy {
	return database.SearchPolicy{
		CaseSensitive:   GetBool(config, "SEARCH_CASE_SENSITIVE", false),
		IncludeContents: GetBool(config, "SEARCH_INCLUDE_CONTENTS", true),
	}
}
