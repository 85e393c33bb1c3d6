package schema

// Field is a typed reference to a column of a specific entity.
type Field struct {
	Entity string
	Column string
}

func (f Field) String() string {
	return f.Entity + "." + f.Column
}

// Path is a property path from a root entity through a relation to an
// attribute, e.g. Case.child.national_id. When the attribute is declared
// only by variants of the relation's target, the path is polymorphic.
type Path struct {
	Root     string
	Relation string
	Attr     string
}

func (p Path) String() string {
	return p.Root + "." + p.Relation + "." + p.Attr
}

// Field references used by the resolver.
var (
	CaseID             = Field{EntityCase, ColID}
	CaseCode           = Field{EntityCase, ColCaseCode}
	CaseValidationCode = Field{EntityCase, ColValidationCode}

	ChildID        = Field{EntityChild, ColID}
	ChildBirthType = Field{EntityChild, ColBirthType}

	LiveBirthID         = Field{EntityLiveBirth, ColID}
	LiveBirthNationalID = Field{EntityLiveBirth, ColNationalID}
	LiveBirthAge        = Field{EntityLiveBirth, ColLiveAge}

	AdoptiveID         = Field{EntityAdoptive, ColID}
	AdoptiveNationalID = Field{EntityAdoptive, ColNationalID}
	AdoptiveAge        = Field{EntityAdoptive, ColAdoptAge}

	// ChildNationalID reaches a variant-only attribute through the abstract child.
	ChildNationalID = Path{EntityCase, RelChild, ColNationalID}
)
