// Package schema loads and validates slot-filling templates.
//
// A template is a YAML or JSON document:
//
//	version: slotfill/v1
//	id: registration
//	nodes:
//	  - id: dob
//	    label: Date of birth
//	    type: main
//	    kind: date
//	    subs: [dob_day, dob_month, dob_year]
//	    steps:
//	      ask:
//	        base: ask.dob
//	        noInput: [ask.dob.ni1, ask.dob.ni2, ask.dob.ni3]
//	        noMatch: [ask.dob.nm1, ask.dob.nm2, ask.dob.nm3]
//	      success: [ok.dob]
//
// Validate works on the raw document and reports every problem found as an Issue,
// so authors can fix a template in one pass. Decode turns a valid document into a Template.
package schema
