/*
Package dsl builds slot-filling templates in Go instead of YAML or JSON files.

The builder fills in the conventional prompt keys, so a template only needs ids, kinds and
the texts it wants to override:

	b := dsl.New("signup")

	b.Main("name", domain.KindName).Label("Full name")
	b.Main("dob", domain.KindDate).
		Label("Date of birth").
		Subs("dob_day", "dob_month", "dob_year").
		Confirm()
	b.Sub("dob_day", domain.KindNumber).Label("Day")
	b.Sub("dob_month", domain.KindNumber).Label("Month")
	b.Sub("dob_year", domain.KindNumber).Label("Year")

	b.Message("ask.name", "What's your name?")

	tpl, err := b.Build()

Build runs the same validation as a template file, so a built template is accepted by every
loader and transport.
*/
package dsl
