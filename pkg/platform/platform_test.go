package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    []string
	}{
		{"Mixed Case", "我要推广到 tiktok 和 Instagram", []string{TikTok, Instagram}},
		{"Chinese Synonym", "发到抖音吧", []string{TikTok}},
		{"Synonym Dedup", "TikTok 还有抖音", []string{TikTok}},
		{"Table Order Wins", "Twitter, Facebook", []string{Facebook, X}},
		{"Abbreviations", "fb and ins", []string{Facebook, Instagram}},
		{"Nothing", "随便看看", []string{}},
		{"Loose X Match", "next", []string{X}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.message))
		})
	}
}

func TestExtract_Idempotent(t *testing.T) {
	msg := "TIKTOK / INSTAGRAM / X"
	assert.Equal(t, Extract(msg), Extract(msg))
}

func TestCanonical(t *testing.T) {
	assert.Equal(t, []string{TikTok, Facebook, Instagram, X}, Canonical())
}
