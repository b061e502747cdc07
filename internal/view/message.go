// ABOUTME: Turns controller errors into the text shown to the user
// ABOUTME: Message wording depends on the operation that failed and the error kind

package view

import (
	"errors"
	"fmt"

	"github.com/2389/itemdesk/internal/gateway"
)

// Op identifies the user-facing operation an error came from.
type Op int

const (
	OpLogin Op = iota
	OpRegister
	OpLoadList
	OpLoadItem
	OpCreate
	OpUpdate
	OpDelete
)

var opVerbs = map[Op]string{
	OpCreate: "create",
	OpUpdate: "update",
	OpDelete: "delete",
}

// Message formats err for display. It returns "" for a nil error.
func Message(op Op, err error) string {
	if err == nil {
		return ""
	}

	var gwErr *gateway.Error
	if !errors.As(err, &gwErr) {
		return err.Error()
	}

	switch gwErr.Kind {
	case gateway.KindValidation, gateway.KindTransportFailure:
		return gwErr.Detail
	}

	switch op {
	case OpLogin:
		return "Login failed: " + gwErr.Detail
	case OpRegister:
		return "Registration failed: " + gwErr.Detail
	case OpLoadItem:
		return fmt.Sprintf("HTTP error! status: %d - %s", gwErr.Status, gwErr.Detail)
	case OpLoadList:
		return fmt.Sprintf("HTTP error! status: %d", gwErr.Status)
	default:
		return fmt.Sprintf("Failed to %s item: %d", opVerbs[op], gwErr.Status)
	}
}
