package filer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileName(t *testing.T) {
	tests := []struct {
		name       string
		group      string
		members    string
		convention NamingConvention
		want       string
	}{
		{"comma", "3班", "佐藤,田中", NamingNormalized, "3班_佐藤_田中.wav"},
		{"comma and space", "3班", "佐藤, 田中", NamingNormalized, "3班_佐藤_田中.wav"},
		{"japanese separators", "1班", "佐藤、田中　鈴木", NamingNormalized, "1班_佐藤_田中_鈴木.wav"},
		{"full-width comma", "1班", "佐藤，田中", NamingNormalized, "1班_佐藤_田中.wav"},
		{"path separators", "1班", "a/b\\c", NamingNormalized, "1班_a_b_c.wav"},
		{"middle dot", "2班", "佐藤・田中・鈴木", NamingNormalized, "2班_佐藤_田中_鈴木.wav"},
		{"half-width middle dot", "2班", "佐藤･田中", NamingNormalized, "2班_佐藤_田中.wav"},
		{"middle dot verbatim", "2班", "佐藤・田中", NamingVerbatim, "2班_佐藤・田中.wav"},
		{"verbatim", "3班", "佐藤,田中", NamingVerbatim, "3班_佐藤,田中.wav"},
		{"group trimmed", " 3班 ", "佐藤", NamingNormalized, "3班_佐藤.wav"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, FileName(tt.group, tt.members, tt.convention))
		})
	}
}

func TestParseNamingConvention(t *testing.T) {
	require.Equal(t, NamingVerbatim, ParseNamingConvention(" Verbatim "))
	require.Equal(t, NamingNormalized, ParseNamingConvention("normalized"))
	require.Equal(t, NamingNormalized, ParseNamingConvention(""))
}
