package domain

// Kind is the semantic type of a field. It selects the detector used by mixed-initiative
// extraction and the decomposition used by composite extraction.
type Kind string

const (
	KindDate    Kind = "date"
	KindName    Kind = "name"
	KindEmail   Kind = "email"
	KindPhone   Kind = "phone"
	KindAddress Kind = "address"
	KindGeneric Kind = "generic"
	KindPostal  Kind = "postal"
	KindNumber  Kind = "number"
)

// constrainedKinds lists the kinds with a rigid surface format, in the priority order used when
// several of them compete for the same utterance.
var constrainedKinds = []Kind{KindDate, KindEmail, KindPhone, KindPostal, KindNumber}

// ConstrainedKinds returns the constrained-format kinds in priority order.
func ConstrainedKinds() []Kind {
	out := make([]Kind, len(constrainedKinds))
	copy(out, constrainedKinds)
	return out
}

// IsConstrained reports whether values of this kind follow a recognisable format.
func (k Kind) IsConstrained() bool {
	for _, c := range constrainedKinds {
		if c == k {
			return true
		}
	}
	return false
}

// IsKnown reports whether k is one of the kinds a template may declare.
func (k Kind) IsKnown() bool {
	switch k {
	case KindDate, KindName, KindEmail, KindPhone, KindAddress, KindGeneric, KindPostal, KindNumber:
		return true
	}
	return false
}

// Part names a canonical sub-component of a composite kind (day of a date, city of an address).
// Sub nodes are bound to parts through their label or id.
type Part string

const (
	PartDay     Part = "day"
	PartMonth   Part = "month"
	PartYear    Part = "year"
	PartFirst   Part = "first"
	PartLast    Part = "last"
	PartStreet  Part = "street"
	PartNumber  Part = "number"
	PartCity    Part = "city"
	PartPostal  Part = "postal"
	PartCountry Part = "country"
	PartPrefix  Part = "prefix"
)
