package models

import (
	"errors"
)

type UserRole string

const (
	UserRoleAdmin    UserRole = "A"
	UserRoleEmployee UserRole = "E"
)

func ParseUserRole(s string) (UserRole, error) {
	switch s {
	case "A":
		return UserRoleAdmin, nil
	case "E":
		return UserRoleEmployee, nil
	default:
		return "", errors.New("invalid user role")
	}
}

type BatteryType string

const (
	BatteryTypePP    BatteryType = "PP"
	BatteryTypeMcSmf BatteryType = "MC_SMF"
)

func ParseBatteryType(s string) (BatteryType, error) {
	switch s {
	case "PP":
		return BatteryTypePP, nil
	case "MC_SMF":
		return BatteryTypeMcSmf, nil
	default:
		return "", errors.New("invalid battery type")
	}
}

// Well-known SKU labels. Anything else on a sale is an RML lot label.
const (
	SkuPureLead = "Pure Lead"
	SkuHighLead = "High Lead"
)

// Refining input sources. Anything that is neither manual nor SANTOSH is
// treated as an RML lot label.
const (
	InputSourceManual  = "manual"
	InputSourceSantosh = "SANTOSH"
)

type InputSourceClass string

const (
	InputSourceClassManual  InputSourceClass = "manual"
	InputSourceClassSantosh InputSourceClass = "santosh"
	InputSourceClassRml     InputSourceClass = "rml"
)

// ClassifyInputSource partitions a refining batch's input source into the
// exact three classes the stock math depends on. An empty source means a
// plain manual charge.
//
// CRITICAL: this must stay a three-way split. Collapsing SANTOSH into
// "non-manual" double-counts internal consumption against RML stock and
// breaks the receivable offset.
func ClassifyInputSource(source string) InputSourceClass {
	switch source {
	case "", InputSourceManual:
		return InputSourceClassManual
	case InputSourceSantosh:
		return InputSourceClassSantosh
	default:
		return InputSourceClassRml
	}
}
