// Package template implements the two expression languages embedded in dialog graphs.
//
// Display templates interleave literal text with {{ expr }} segments:
//
//	Hello {{ NAME }}, your daily rate is {{ Rates.Amount(country=COUNTRY) * DAYS }}.
//
// Logic templates are a single {{ }} boolean expression used by LOGIC nodes:
//
//	{{ AGE >= 18 AND "berlin" == CITY }}
//
// AND and OR share one precedence level and evaluate left to right; use
// parentheses to group mixed chains. String equality ignores case and
// surrounding whitespace. Division by zero yields 0.
//
// Parsing is hand written (recursive descent) and parsed templates can be
// shared through a Cache.
package template
