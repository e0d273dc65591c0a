package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Books":              "Books",
		"Home & Garden":      "Home-Garden",
		"  Kids   Toys  ":    "Kids-Toys",
		"Crème Brûlée":       "Creme-Brulee",
		"a--b":               "a-b",
		"v1.2_beta~rc":       "v1.2_beta~rc",
		"!!!":                "",
		"Tabs\tand\nlines":   "Tabs-and-lines",
		"-leading-trailing-": "leading-trailing",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestSlugifyIsDeterministic(t *testing.T) {
	assert.Equal(t, Slugify("Électronique Grand Public"), Slugify("Électronique Grand Public"))
}
