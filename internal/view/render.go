// ABOUTME: Terminal rendering of the session, list, and detail views
// ABOUTME: Uses fatih/color for headings, errors, and success lines

package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/2389/itemdesk/internal/catalog"
	"github.com/2389/itemdesk/internal/detailview"
	"github.com/2389/itemdesk/internal/listview"
	"github.com/2389/itemdesk/internal/session"
)

// Success lines shown once a credential has been stored.
const (
	LoginSuccess        = "Login successful! Redirecting..."
	RegistrationSuccess = "Registration successful! Redirecting..."
)

// Renderer writes views to a terminal.
type Renderer struct {
	w      io.Writer
	cyan   *color.Color
	green  *color.Color
	red    *color.Color
	yellow *color.Color
	faint  *color.Color
}

// NewRenderer creates a renderer writing to w. Colors are emitted only
// when useColor is set.
func NewRenderer(w io.Writer, useColor bool) *Renderer {
	r := &Renderer{
		w:      w,
		cyan:   color.New(color.FgCyan, color.Bold),
		green:  color.New(color.FgGreen),
		red:    color.New(color.FgRed),
		yellow: color.New(color.FgYellow),
		faint:  color.New(color.Faint),
	}
	for _, c := range []*color.Color{r.cyan, r.green, r.red, r.yellow, r.faint} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

// Price formats a price with two decimals, or "" when absent.
func Price(p *float64) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("$%.2f", *p)
}

// Session renders the auth view.
func (r *Renderer) Session(st session.State) {
	title := "Sign in"
	op := OpLogin
	if st.Mode == session.ModeRegister {
		title = "Create account"
		op = OpRegister
	}
	r.cyan.Fprintf(r.w, "\n  %s\n", title)

	switch st.Phase {
	case session.PhaseSubmitting:
		r.faint.Fprintln(r.w, "  Submitting...")
	case session.PhaseAuthenticated:
		if st.Mode == session.ModeRegister {
			r.green.Fprintf(r.w, "  %s\n", RegistrationSuccess)
		} else {
			r.green.Fprintf(r.w, "  %s\n", LoginSuccess)
		}
	case session.PhaseFailed:
		r.red.Fprintf(r.w, "  %s\n", Message(op, st.Err))
	}
	fmt.Fprintln(r.w)
}

// List renders the list view, including the creation form when open.
func (r *Renderer) List(st listview.State) {
	switch st.Phase {
	case listview.PhaseLoading:
		r.faint.Fprintln(r.w, "  Loading items...")
		return
	case listview.PhaseError:
		r.red.Fprintln(r.w, "  Error Loading Items")
		fmt.Fprintf(r.w, "  %s\n", Message(OpLoadList, st.Err))
		r.faint.Fprintln(r.w, "  Type 'retry' to try again.")
		return
	}

	if st.Form.Open {
		r.form("New item", st.Form.Draft)
		if st.Form.Submitting {
			r.faint.Fprintln(r.w, "  Adding...")
		}
		if st.Form.Err != nil {
			r.red.Fprintf(r.w, "  %s\n", Message(OpCreate, st.Form.Err))
		}
	}

	r.cyan.Fprintln(r.w, "\n  Items List")
	r.faint.Fprintf(r.w, "  Fetched %d items from API\n\n", len(st.Items))
	for _, it := range st.Items {
		r.yellow.Fprintf(r.w, "  [%s] ", it.ID)
		fmt.Fprint(r.w, it.Name)
		if p := Price(it.Price); p != "" {
			r.green.Fprintf(r.w, "  %s", p)
		}
		fmt.Fprintln(r.w)
		if it.Description != "" {
			r.faint.Fprintf(r.w, "      %s\n", firstLine(it.Description))
		}
	}
	fmt.Fprintln(r.w)
}

// Detail renders the detail view in view or edit mode.
func (r *Renderer) Detail(st detailview.State) {
	switch st.Phase {
	case detailview.PhaseLoading:
		r.faint.Fprintln(r.w, "  Loading item...")
		return
	case detailview.PhaseError:
		r.red.Fprintln(r.w, "  Error Loading Item")
		fmt.Fprintf(r.w, "  %s\n", Message(OpLoadItem, st.Err))
		r.faint.Fprintln(r.w, "  Type 'retry' to try again, or 'list' to go back.")
		return
	}
	if st.Resource == nil {
		return
	}

	if st.Mode == detailview.ModeEdit {
		r.form("Edit item "+st.ID, st.Draft)
		if st.Saving {
			r.faint.Fprintln(r.w, "  Saving...")
		}
	} else {
		res := st.Resource
		r.cyan.Fprintf(r.w, "\n  %s\n", res.Name)
		r.yellow.Fprintf(r.w, "  ID: %s\n", res.ID)
		if p := Price(res.Price); p != "" {
			r.green.Fprintf(r.w, "  Price: %s\n", p)
		}
		if res.Description != "" {
			fmt.Fprintln(r.w)
			for _, line := range strings.Split(res.Description, "\n") {
				fmt.Fprintf(r.w, "  %s\n", line)
			}
		}
	}
	if st.Deleting {
		r.faint.Fprintln(r.w, "  Deleting...")
	}

	if st.ActionErr != nil {
		op := OpUpdate
		if st.Action == detailview.ActionDelete {
			op = OpDelete
		}
		r.red.Fprintf(r.w, "  %s\n", Message(op, st.ActionErr))
	}
	fmt.Fprintln(r.w)
}

func (r *Renderer) form(title string, d catalog.Draft) {
	r.cyan.Fprintf(r.w, "\n  %s\n", title)
	fmt.Fprintf(r.w, "  name:        %s\n", d.Name)
	fmt.Fprintf(r.w, "  description: %s\n", d.Description)
	fmt.Fprintf(r.w, "  price:       %s\n", d.Price)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}
