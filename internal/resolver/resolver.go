package resolver

import (
	"github.com/roach88/polyquery/internal/ir"
	"github.com/roach88/polyquery/internal/queryir"
	"github.com/roach88/polyquery/internal/schema"
)

// ByCaseCodeOrValidation matches cases by case code or validation code.
func ByCaseCodeOrValidation(code, validation *string) queryir.Predicate {
	return queryir.OrTrue(queryir.AnyOf(
		equalsString(schema.CaseCode, code),
		equalsString(schema.CaseValidationCode, validation),
	))
}

// ByCaseCodeOrBirthType matches cases by case code or the child's birth type.
// Birth type lives on child_info, which the case reaches without a variant join.
func ByCaseCodeOrBirthType(code *string, bt *ir.BirthType) queryir.Predicate {
	return queryir.OrTrue(queryir.AnyOf(
		equalsString(schema.CaseCode, code),
		equalsBirthType(bt),
	))
}

// CodeBirthType pairs a case code with a birth type. Either may be nil.
type CodeBirthType struct {
	Code      *string
	BirthType *ir.BirthType
}

// ByCaseCodeAndBirthTypePairs matches cases whose code and birth type both
// equal those of one of the pairs:
//
//	(code = X AND birth_type = N) OR (code = Y AND birth_type = A)
//
// A pair with neither member set matches every case.
func ByCaseCodeAndBirthTypePairs(pairs ...CodeBirthType) queryir.Predicate {
	clauses := make([]queryir.Predicate, 0, len(pairs))
	for _, p := range pairs {
		clause := queryir.AllOf(equalsString(schema.CaseCode, p.Code), equalsBirthType(p.BirthType))
		if clause == nil {
			return queryir.True{}
		}
		clauses = append(clauses, clause)
	}
	return queryir.OrTrue(queryir.AnyOf(clauses...))
}

// ByCaseCodeOrChildNationalIDNaive matches by case code or child.national_id,
// read through the abstract child. The national id is declared only by the
// variant tables, so without joins this clause cannot match anything.
func ByCaseCodeOrChildNationalIDNaive(code, nationalID *string) queryir.Predicate {
	var nidPred queryir.Predicate
	if nationalID != nil {
		nidPred = queryir.PathEquals{Path: schema.ChildNationalID, Value: ir.IRString(*nationalID)}
	}
	return queryir.OrTrue(queryir.AnyOf(
		equalsString(schema.CaseCode, code),
		nidPred,
	))
}

// ByCaseCodeOrChildNationalID matches by case code or by the child id
// appearing in a per-variant sub-select filtered by national id.
func ByCaseCodeOrChildNationalID(code, nationalID *string) queryir.Predicate {
	var nidPred queryir.Predicate
	if nationalID != nil {
		nidPred = queryir.AnyOf(
			childIn(schema.LiveBirthID, schema.LiveBirthNationalID, ir.IRString(*nationalID)),
			childIn(schema.AdoptiveID, schema.AdoptiveNationalID, ir.IRString(*nationalID)),
		)
	}
	return queryir.OrTrue(queryir.AnyOf(
		equalsString(schema.CaseCode, code),
		nidPred,
	))
}

// ByCaseCodeOrVariantNationalID references the national id columns of both
// variants directly. It is only reachable inside ExplicitJoinQuery.
func ByCaseCodeOrVariantNationalID(code, nationalID *string) queryir.Predicate {
	var nidPred queryir.Predicate
	if nationalID != nil {
		nidPred = queryir.AnyOf(
			equalsString(schema.LiveBirthNationalID, nationalID),
			equalsString(schema.AdoptiveNationalID, nationalID),
		)
	}
	return queryir.OrTrue(queryir.AnyOf(
		equalsString(schema.CaseCode, code),
		nidPred,
	))
}

// CaseQuery selects case ids matching pred. A nil pred matches every case.
func CaseQuery(pred queryir.Predicate) queryir.Select {
	return queryir.Select{
		From:   schema.EntityCase,
		Filter: queryir.OrTrue(pred),
	}
}

// ExplicitJoinQuery selects case ids matching pred, with both variant tables
// left-joined on the shared key. Cases of either variant are kept, so pred
// may reference attributes of both variants.
func ExplicitJoinQuery(pred queryir.Predicate) queryir.Select {
	return queryir.Select{
		From: schema.EntityCase,
		Joins: []queryir.Join{
			queryir.SharedKeyJoin(queryir.JoinLeftOuter, schema.ChildID, schema.LiveBirthID),
			queryir.SharedKeyJoin(queryir.JoinLeftOuter, schema.ChildID, schema.AdoptiveID),
		},
		Filter: queryir.OrTrue(pred),
	}
}

// ByLiveBirthNationalID selects live-birth cases, optionally by national id.
func ByLiveBirthNationalID(nationalID *string) queryir.Select {
	return treat(schema.LiveBirthID, equalsString(schema.LiveBirthNationalID, nationalID))
}

// ByAdoptiveNationalID selects adoptive cases, optionally by national id.
func ByAdoptiveNationalID(nationalID *string) queryir.Select {
	return treat(schema.AdoptiveID, equalsString(schema.AdoptiveNationalID, nationalID))
}

// ByLiveBirthAge selects live-birth cases, optionally by age at reporting.
func ByLiveBirthAge(age *int64) queryir.Select {
	return treat(schema.LiveBirthID, equalsInt(schema.LiveBirthAge, age))
}

// ByAdoptiveAge selects adoptive cases, optionally by age at adoption.
func ByAdoptiveAge(age *int64) queryir.Select {
	return treat(schema.AdoptiveID, equalsInt(schema.AdoptiveAge, age))
}

func treat(variantKey schema.Field, pred queryir.Predicate) queryir.Select {
	return queryir.Select{
		From:   schema.EntityCase,
		Joins:  []queryir.Join{queryir.Treat(variantKey)},
		Filter: queryir.OrTrue(pred),
	}
}

func childIn(variantKey, attr schema.Field, v ir.IRValue) queryir.Predicate {
	return queryir.In{
		Field: schema.ChildID,
		Sub: queryir.Select{
			From:    variantKey.Entity,
			Columns: []schema.Field{variantKey},
			Filter:  queryir.Equals{Field: attr, Value: v},
		},
	}
}

func equalsString(f schema.Field, v *string) queryir.Predicate {
	if v == nil {
		return nil
	}
	return queryir.Equals{Field: f, Value: ir.IRString(*v)}
}

func equalsBirthType(bt *ir.BirthType) queryir.Predicate {
	if bt == nil {
		return nil
	}
	return queryir.Equals{Field: schema.ChildBirthType, Value: ir.BirthTypeValue(*bt)}
}

func equalsInt(f schema.Field, v *int64) queryir.Predicate {
	if v == nil {
		return nil
	}
	return queryir.Equals{Field: f, Value: ir.IRInt(*v)}
}
