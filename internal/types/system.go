package types

// SystemNamespace is the built-in namespace of primitive and terminology types.
const SystemNamespace = "System"

// System types.
var (
	Any        = Named(SystemNamespace, "Any")
	Boolean    = Named(SystemNamespace, "Boolean")
	Integer    = Named(SystemNamespace, "Integer")
	Long       = Named(SystemNamespace, "Long")
	Decimal    = Named(SystemNamespace, "Decimal")
	String     = Named(SystemNamespace, "String")
	Date       = Named(SystemNamespace, "Date")
	DateTime   = Named(SystemNamespace, "DateTime")
	Time       = Named(SystemNamespace, "Time")
	Quantity   = Named(SystemNamespace, "Quantity")
	Code       = Named(SystemNamespace, "Code")
	Concept    = Named(SystemNamespace, "Concept")
	Vocabulary = Named(SystemNamespace, "Vocabulary")
	ValueSet   = Named(SystemNamespace, "ValueSet")
	CodeSystem = Named(SystemNamespace, "CodeSystem")
)

var orderedTypes = map[NamedType]bool{
	Integer:  true,
	Long:     true,
	Decimal:  true,
	String:   true,
	Date:     true,
	DateTime: true,
	Time:     true,
	Quantity: true,
}

// IsOrdered reports whether values of t support <, <=, > and >= and can
// therefore be used as sort keys.
func IsOrdered(t DataType) bool {
	n, ok := t.(NamedType)
	return ok && orderedTypes[n]
}

// IsVocabulary reports whether t is a value set, code system or the
// abstract vocabulary type.
func IsVocabulary(t DataType) bool {
	n, ok := t.(NamedType)
	return ok && (n == Vocabulary || n == ValueSet || n == CodeSystem)
}

// IsTerminology reports whether t is usable as the codes operand of a
// terminology-filtered retrieve: a vocabulary, a Code or Concept, or a list
// of Codes or Concepts.
func IsTerminology(t DataType) bool {
	if IsVocabulary(t) || Equal(t, Code) || Equal(t, Concept) {
		return true
	}
	if elem, ok := ElementType(t); ok {
		return Equal(elem, Code) || Equal(elem, Concept)
	}
	return false
}

// systemClasses returns the built-in System namespace. Only the structured
// terminology and quantity types carry elements.
func systemClasses() []*ClassInfo {
	simple := []NamedType{Any, Boolean, Integer, Long, Decimal, String, Date, DateTime, Time, Vocabulary, ValueSet, CodeSystem}
	classes := make([]*ClassInfo, 0, len(simple)+3)
	for _, t := range simple {
		classes = append(classes, &ClassInfo{Namespace: SystemNamespace, Name: t.Name})
	}
	classes = append(classes,
		&ClassInfo{Namespace: SystemNamespace, Name: "Code", Elements: []ElementInfo{
			{Name: "code", Type: String},
			{Name: "system", Type: String},
			{Name: "version", Type: String},
			{Name: "display", Type: String},
		}},
		&ClassInfo{Namespace: SystemNamespace, Name: "Concept", Elements: []ElementInfo{
			{Name: "codes", Type: ListOf(Code)},
			{Name: "display", Type: String},
		}},
		&ClassInfo{Namespace: SystemNamespace, Name: "Quantity", Elements: []ElementInfo{
			{Name: "value", Type: Decimal},
			{Name: "unit", Type: String},
		}},
	)
	return classes
}
