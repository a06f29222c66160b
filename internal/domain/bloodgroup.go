package domain

import "fmt"

// BloodGroup enumerates the ABO/Rh blood groups.
type BloodGroup string

const (
	BloodGroupAPos  BloodGroup = "A+"
	BloodGroupANeg  BloodGroup = "A-"
	BloodGroupBPos  BloodGroup = "B+"
	BloodGroupBNeg  BloodGroup = "B-"
	BloodGroupABPos BloodGroup = "AB+"
	BloodGroupABNeg BloodGroup = "AB-"
	BloodGroupOPos  BloodGroup = "O+"
	BloodGroupONeg  BloodGroup = "O-"
)

// BloodGroups lists every valid group in display order.
var BloodGroups = []BloodGroup{
	BloodGroupAPos, BloodGroupANeg,
	BloodGroupBPos, BloodGroupBNeg,
	BloodGroupABPos, BloodGroupABNeg,
	BloodGroupOPos, BloodGroupONeg,
}

// ParseBloodGroup validates a raw string against the known groups.
func ParseBloodGroup(s string) (BloodGroup, error) {
	for _, g := range BloodGroups {
		if string(g) == s {
			return g, nil
		}
	}
	return "", fmt.Errorf("%w: unknown blood group %q", ErrInvalidInput, s)
}
