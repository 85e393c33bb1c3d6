package ir

import (
	"fmt"
	"strings"
)

// BirthType classifies a child record. The value is the stored code.
type BirthType string

const (
	BirthStillbirth BirthType = "S"
	BirthNormal     BirthType = "N"
	BirthAdoptive   BirthType = "A"
	BirthPrebirth   BirthType = "P"
)

// BirthTypeLabels holds the display labels of a birth type.
// ML and SPLE are optional label sets; an empty string means no label.
type BirthTypeLabels struct {
	Description string `json:"description"`
	ML          string `json:"ml,omitempty"`
	SPLE        string `json:"sple,omitempty"`
}

var birthTypeLabels = map[BirthType]BirthTypeLabels{
	BirthStillbirth: {Description: "Stillbirth", ML: "Stillbirth", SPLE: "Stillbirth"},
	BirthNormal:     {Description: "Normal Birth", ML: "Live Birth", SPLE: "Biological"},
	BirthAdoptive:   {Description: "Adoptive", SPLE: "Adoptive"},
	BirthPrebirth:   {Description: "Prebirth", SPLE: "Biological"},
}

// BirthTypes lists every birth type in declaration order.
var BirthTypes = []BirthType{BirthStillbirth, BirthNormal, BirthAdoptive, BirthPrebirth}

// Valid reports whether b is a known code.
func (b BirthType) Valid() bool {
	_, ok := birthTypeLabels[b]
	return ok
}

// Labels returns the display labels for b.
func (b BirthType) Labels() (BirthTypeLabels, bool) {
	l, ok := birthTypeLabels[b]
	return l, ok
}

// String returns the description, or the raw code for unknown values.
func (b BirthType) String() string {
	if l, ok := birthTypeLabels[b]; ok {
		return l.Description
	}
	return string(b)
}

// ParseBirthType accepts a stored code ("N") or a description ("normal birth"),
// case-insensitively.
func ParseBirthType(s string) (BirthType, error) {
	s = strings.TrimSpace(s)
	if bt := BirthType(strings.ToUpper(s)); bt.Valid() {
		return bt, nil
	}
	for _, bt := range BirthTypes {
		if strings.EqualFold(birthTypeLabels[bt].Description, s) {
			return bt, nil
		}
	}
	return "", fmt.Errorf("unknown birth type %q", s)
}

// UnmarshalText parses a code or description with ParseBirthType, so YAML
// and JSON documents accept the same spellings as the command line. Empty
// text leaves b unset.
func (b *BirthType) UnmarshalText(text []byte) error {
	if strings.TrimSpace(string(text)) == "" {
		*b = ""
		return nil
	}
	bt, err := ParseBirthType(string(text))
	if err != nil {
		return err
	}
	*b = bt
	return nil
}
