package models

import (
	"fmt"
	"strings"
)

// RunOption decides what happens to inactive load balancers
type RunOption string

const (
	RunList   RunOption = "list"
	RunDelete RunOption = "delete"
)

// ParseRunOption parses a run option case-insensitively
func ParseRunOption(s string) (RunOption, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "list":
		return RunList, nil
	case "delete":
		return RunDelete, nil
	default:
		return "", fmt.Errorf("unknown run option %q (expected list or delete)", s)
	}
}

// ListFormat selects how the inventory is reported
type ListFormat string

const (
	FormatTabled ListFormat = "tabled"
	FormatCSV    ListFormat = "csv"
	FormatFile   ListFormat = "file" // one CSV file per account and kind
)

// ParseListFormat parses an output format case-insensitively
func ParseListFormat(s string) (ListFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tabled", "table":
		return FormatTabled, nil
	case "csv":
		return FormatCSV, nil
	case "file":
		return FormatFile, nil
	default:
		return "", fmt.Errorf("unknown format %q (expected tabled, csv or file)", s)
	}
}
