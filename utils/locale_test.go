package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLocale(t *testing.T) {
	tests := []struct {
		input, canonical, lang, area string
	}{
		{"en", "en", "en", ""},
		{"EN_us", "en-US", "en", "US"},
		{"zh-cn.UTF-8", "zh-CN", "zh", "CN"},
		{"pt-", "pt", "pt", ""},
		{"", "", "", ""},
	}

	for _, tt := range tests {
		canonical, lang, area := NormalizeLocale(tt.input)
		assert.Equal(t, tt.canonical, canonical, tt.input)
		assert.Equal(t, tt.lang, lang, tt.input)
		assert.Equal(t, tt.area, area, tt.input)
	}
}

func TestCheckLocale(t *testing.T) {
	assert.NoError(t, CheckLocale("en-US"))
	assert.NoError(t, CheckLocale("zh"))
	assert.Error(t, CheckLocale("not a locale"))
}

func TestEscapeRegExp(t *testing.T) {
	assert.Equal(t, `en\x2dUS`, EscapeRegExp("en-US"))
	assert.Equal(t, `a\.b\*c\/d`, EscapeRegExp("a.b*c/d"))
	assert.Equal(t, `\(x\)\[y\]\{z\}`, EscapeRegExp("(x)[y]{z}"))
}
