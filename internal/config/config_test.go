package config

import (
	"reflect"
	"testing"
)

func TestParseTokenMethods(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected map[string]string
	}{
		{
			name: "empty input falls back to demo tokens",
			raw:  "",
			expected: map[string]string{
				"test_spt_visa": "pm_card_visa",
				"test_spt_3ds2": "pm_card_authenticationRequired",
			},
		},
		{
			name: "custom pairs override the defaults",
			raw:  "spt_master=pm_card_mastercard,spt_amex=pm_card_amex",
			expected: map[string]string{
				"spt_master": "pm_card_mastercard",
				"spt_amex":   "pm_card_amex",
			},
		},
		{
			name:     "malformed pairs are skipped",
			raw:      "spt_ok=pm_ok,garbage,=pm_orphan,spt_empty=",
			expected: map[string]string{"spt_ok": "pm_ok"},
		},
		{
			name:     "whitespace around pairs is tolerated",
			raw:      " spt_a=pm_a , spt_b=pm_b ",
			expected: map[string]string{"spt_a": "pm_a", "spt_b": "pm_b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseTokenMethods(tt.raw)
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("parseTokenMethods(%q) = %v; want %v", tt.raw, result, tt.expected)
			}
		})
	}
}
