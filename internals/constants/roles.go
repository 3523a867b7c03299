package constants

import "fmt"

const (
	RoleAdmin      = "admin"
	RoleEnumerator = "enumerator"
)

// Role error templates
const (
	ErrOnlyAdminsCanAccess      = "only admins may access %s"
	ErrOnlyEnumeratorsCanAccess = "only enumerators or admins may access %s"
)

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}

func RoleErrorEnumerator(feature string) string {
	return fmt.Sprintf(ErrOnlyEnumeratorsCanAccess, feature)
}

var (
	AdminOnly = []string{
		RoleAdmin,
	}

	EnumeratorAndAbove = []string{
		RoleEnumerator,
		RoleAdmin,
	}
)
