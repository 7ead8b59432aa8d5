package utils

import (
	"strings"

	ua "github.com/mssola/user_agent"
)

// ClientInfo is the part of a User-Agent worth logging.
type ClientInfo struct {
	Browser  string `json:"browser"`
	OS       string `json:"os"`
	Platform string `json:"platform"`
	Mobile   bool   `json:"mobile"`
	Bot      bool   `json:"bot"`
}

// ParseUserAgent parses a User-Agent string and extracts client information
func ParseUserAgent(userAgent string) ClientInfo {
	if strings.TrimSpace(userAgent) == "" {
		return ClientInfo{Browser: "unknown", OS: "unknown", Platform: "unknown"}
	}

	parser := ua.New(userAgent)
	name, version := parser.Browser()
	browser := name
	if version != "" {
		browser = name + " " + version
	}

	info := ClientInfo{
		Browser:  browser,
		OS:       parser.OS(),
		Platform: parser.Platform(),
		Mobile:   parser.Mobile(),
		Bot:      parser.Bot(),
	}
	if info.OS == "" {
		info.OS = "unknown"
	}
	if info.Platform == "" {
		info.Platform = "unknown"
	}
	return info
}
