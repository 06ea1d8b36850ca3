package filer

import (
	"fmt"
	"strings"
)

type NamingConvention string

const (
	// NamingNormalized replaces separators in member names with underscores.
	NamingNormalized NamingConvention = "normalized"
	// NamingVerbatim keeps member text as typed.
	NamingVerbatim NamingConvention = "verbatim"
)

const fileExtension = ".wav"

// ParseNamingConvention falls back to NamingNormalized for unknown values.
func ParseNamingConvention(v string) NamingConvention {
	if NamingConvention(strings.ToLower(strings.TrimSpace(v))) == NamingVerbatim {
		return NamingVerbatim
	}
	return NamingNormalized
}

// FileName builds "{group}_{members}.wav".
func FileName(group, members string, convention NamingConvention) string {
	group = strings.TrimSpace(group)
	if convention == NamingVerbatim {
		return fmt.Sprintf("%s_%s%s", group, members, fileExtension)
	}
	return fmt.Sprintf("%s_%s%s", group, normalizeMembers(members), fileExtension)
}

func isSeparator(r rune) bool {
	switch r {
	case ',', '，', '、', '・', '･', ' ', '　', '\t', '/', '\\':
		return true
	}
	return false
}

// normalizeMembers turns every run of separators into a single underscore.
func normalizeMembers(members string) string {
	return strings.Join(strings.FieldsFunc(members, isSeparator), "_")
}
