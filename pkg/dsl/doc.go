/*
Package dsl builds dialog graphs in Go code instead of editor exports.

It is handy for tests, generated dialogs and small embedded flows:

	b := dsl.New("age", "Age check")

	b.Add("start").Start().Go("ask")

	b.Add("ask").
		Variable("How old are you?", "AGE", template.TypeNumber, "check")

	b.Add("check").
		Logic("{{ AGE").
		Branch(">= 18 }}", "adult").
		Default("minor")

	b.Add("adult").Info("Welcome, you are {{ AGE }}.")
	b.Add("minor").Info("Come back later.")

	loader, err := b.Build()
	// ... pass loader to diagraph.New("", diagraph.WithGraphStore(loader))
*/
package dsl
