package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	testCases := []struct {
		name  string
		rules *Rules
		path  string
		want  bool
	}{
		{
			name:  "no rules include everything",
			rules: &Rules{},
			path:  "src/app.js",
			want:  true,
		},
		{
			name:  "default excludes .git",
			rules: Default(),
			path:  ".git/config",
			want:  false,
		},
		{
			name:  "default keeps regular files",
			rules: Default(),
			path:  "assets/logo.png",
			want:  true,
		},
		{
			name:  "include by extension",
			rules: &Rules{Include: []string{"*.js"}},
			path:  "js/vendor/jquery.js",
			want:  true,
		},
		{
			name:  "include by extension rejects others",
			rules: &Rules{Include: []string{"*.js"}},
			path:  "js/app.css",
			want:  false,
		},
		{
			name:  "brace alternates",
			rules: &Rules{Include: []string{"*.{css,js}"}},
			path:  "theme/main.css",
			want:  true,
		},
		{
			name:  "exclude wins over include",
			rules: &Rules{Include: []string{"*.js"}, Exclude: []string{"*.min.js"}},
			path:  "js/app.min.js",
			want:  false,
		},
		{
			name:  "include prefix",
			rules: &Rules{IncludePrefix: []string{"public"}},
			path:  "public/js/app.js",
			want:  true,
		},
		{
			name:  "include prefix rejects siblings",
			rules: &Rules{IncludePrefix: []string{"public"}},
			path:  "publicity/app.js",
			want:  false,
		},
		{
			name:  "exclude prefix",
			rules: &Rules{ExcludePrefix: []string{"vendor"}},
			path:  "vendor/lib.js",
			want:  false,
		},
		{
			name:  "exclude dir matches any segment",
			rules: &Rules{ExcludeDir: []string{"node_modules"}},
			path:  "src/node_modules/left-pad/index.js",
			want:  false,
		},
		{
			name:  "leading dot slash is normalized",
			rules: &Rules{IncludePrefix: []string{"./static"}},
			path:  "./static/app.js",
			want:  true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.rules.Match(tc.path))
		})
	}
}

func TestNormalize(t *testing.T) {
	testCases := []struct {
		input string
		want  string
	}{
		{input: "./js/app.js", want: "js/app.js"},
		{input: "js\\app.js", want: "js/app.js"},
		{input: "/js/app.js", want: "js/app.js"},
		{input: "js/./app.js", want: "js/app.js"},
		{input: "js/app.js", want: "js/app.js"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, Normalize(tc.input), "input %q", tc.input)
	}
}
