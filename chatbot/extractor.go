package chatbot

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	lakh  = 100_000
	crore = 10_000_000
)

var (
	bhkPattern = regexp.MustCompile(`(\d+)\s*(?:bhk|bedroom|bed)`)

	// unit alternation lists the longer spellings first so "lakh" is never
	// read as "l" followed by junk.
	rangePattern   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*-\s*(\d+(?:\.\d+)?)\s*(lakhs?|lacs?|crores?|cr|l)\b`)
	ceilingPattern = regexp.MustCompile(`\b(?:under|below|less than|up to|upto)\s*(?:rs\.?\s*|₹\s*)?(\d+(?:\.\d+)?)\s*(lakhs?|lacs?|crores?|cr|l)\b`)
	amountPattern  = regexp.MustCompile(`\b(\d+(?:\.\d+)?)\s*(lakhs?|lacs?|crores?|cr|l)\b`)

	cityPattern = regexp.MustCompile(`\bin\s+(\w+)|(\w+)\s+city\b|\bnear\s+(\w+)`)

	browseKeywords = []string{"property", "properties", "house", "flat", "apartment", "show", "available", "latest", "new"}
)

// Criteria is what could be read out of a chat message. Nil or empty fields
// were not mentioned.
type Criteria struct {
	BHK      *int
	MinPrice *float64
	MaxPrice *float64
	City     string

	// Browse is set when no field was extracted but the text asks to see
	// listings in general ("show me new properties").
	Browse bool
}

func (c Criteria) Empty() bool {
	return c.BHK == nil && c.MinPrice == nil && c.MaxPrice == nil && c.City == ""
}

// HasIntent reports whether the message is a property search at all.
func (c Criteria) HasIntent() bool {
	return !c.Empty() || c.Browse
}

// Extract parses free text into search criteria. Each rule fires
// independently. A price range takes precedence over a ceiling; a bare
// amount with a unit ("2 bhk 80 lakh") is read as a ceiling.
func Extract(text string) Criteria {
	lower := strings.ToLower(text)
	var c Criteria

	if m := bhkPattern.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			c.BHK = &n
		}
	}

	if m := rangePattern.FindStringSubmatch(lower); m != nil {
		lo, hi := scale(m[1], m[3]), scale(m[2], m[3])
		if lo > hi {
			lo, hi = hi, lo
		}
		c.MinPrice, c.MaxPrice = &lo, &hi
	} else if m := ceilingPattern.FindStringSubmatch(lower); m != nil {
		max := scale(m[1], m[2])
		c.MaxPrice = &max
	} else if m := amountPattern.FindStringSubmatch(lower); m != nil {
		max := scale(m[1], m[2])
		c.MaxPrice = &max
	}

	c.City = extractCity(lower)

	if c.Empty() {
		c.Browse = containsAny(lower, browseKeywords...)
	}
	return c
}

func extractCity(lower string) string {
	for _, m := range cityPattern.FindAllStringSubmatch(lower, -1) {
		for _, g := range m[1:] {
			if g != "" && !isNumeric(g) {
				return g
			}
		}
	}
	return ""
}

func scale(amount, unit string) float64 {
	v, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return 0
	}
	if strings.HasPrefix(unit, "cr") {
		return v * crore
	}
	return v * lakh
}

func isNumeric(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
