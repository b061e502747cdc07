// ABOUTME: Tests for error message wording, terminal rendering, and HTML export
// ABOUTME: Rendering is checked with colors disabled so output is plain text

package view

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/itemdesk/internal/catalog"
	"github.com/2389/itemdesk/internal/detailview"
	"github.com/2389/itemdesk/internal/gateway"
	"github.com/2389/itemdesk/internal/listview"
	"github.com/2389/itemdesk/internal/session"
)

func failed(status int, detail string) error {
	return &gateway.Error{Kind: gateway.KindRequestFailed, Status: status, Detail: detail}
}

func TestMessage(t *testing.T) {
	expired := &gateway.Error{Kind: gateway.KindSessionExpired, Status: http.StatusUnauthorized, Detail: "Could not validate credentials"}
	transport := &gateway.Error{Kind: gateway.KindTransportFailure, Detail: "request failed", Err: errors.New("connection refused")}

	tests := []struct {
		name string
		op   Op
		err  error
		want string
	}{
		{"nil", OpLogin, nil, ""},
		{"login", OpLogin, failed(401, "Invalid Credentials"), "Login failed: Invalid Credentials"},
		{"register", OpRegister, failed(400, "Username already registered"), "Registration failed: Username already registered"},
		{"load item", OpLoadItem, failed(404, "Item not found"), "HTTP error! status: 404 - Item not found"},
		{"load item expired", OpLoadItem, expired, "HTTP error! status: 401 - Could not validate credentials"},
		{"load list", OpLoadList, failed(500, "Internal Server Error"), "HTTP error! status: 500"},
		{"create", OpCreate, failed(422, "price: Input should be a valid number"), "Failed to create item: 422"},
		{"update", OpUpdate, failed(500, "boom"), "Failed to update item: 500"},
		{"delete", OpDelete, expired, "Failed to delete item: 401"},
		{"validation", OpRegister, gateway.ValidationError("Passwords do not match"), "Passwords do not match"},
		{"transport", OpLoadList, transport, "request failed"},
		{"plain error", OpUpdate, detailview.ErrNotLoaded, "item not loaded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Message(tt.op, tt.err))
		})
	}
}

func TestPrice(t *testing.T) {
	p := 12.5
	zero := 0.0
	assert.Equal(t, "$12.50", Price(&p))
	assert.Equal(t, "$0.00", Price(&zero))
	assert.Equal(t, "", Price(nil))
}

func render(f func(r *Renderer)) string {
	var buf bytes.Buffer
	f(NewRenderer(&buf, false))
	return buf.String()
}

func TestRenderSession(t *testing.T) {
	out := render(func(r *Renderer) {
		r.Session(session.State{Phase: session.PhaseAuthenticated, Mode: session.ModeRegister})
	})
	assert.Contains(t, out, "Create account")
	assert.Contains(t, out, RegistrationSuccess)
	assert.NotContains(t, out, "\x1b[")

	out = render(func(r *Renderer) {
		r.Session(session.State{Phase: session.PhaseFailed, Mode: session.ModeLogin, Err: failed(401, "Invalid Credentials")})
	})
	assert.Contains(t, out, "Login failed: Invalid Credentials")
}

func TestRenderList(t *testing.T) {
	price := 2.5
	st := listview.State{
		Phase: listview.PhaseReady,
		Items: []catalog.Resource{
			{ID: "1", Name: "widget", Description: "small\nand round", Price: &price},
			{ID: "2", Name: "gizmo"},
		},
		Form: listview.Form{Open: true, Draft: catalog.Draft{Name: "draft"}, Err: failed(422, "bad")},
	}

	out := render(func(r *Renderer) { r.List(st) })

	assert.Contains(t, out, "Fetched 2 items from API")
	assert.Contains(t, out, "[1] widget  $2.50")
	assert.Contains(t, out, "small ...")
	assert.NotContains(t, out, "and round")
	assert.Contains(t, out, "name:        draft")
	assert.Contains(t, out, "Failed to create item: 422")
}

func TestRenderListError(t *testing.T) {
	out := render(func(r *Renderer) {
		r.List(listview.State{Phase: listview.PhaseError, Err: failed(503, "")})
	})
	assert.Contains(t, out, "Error Loading Items")
	assert.Contains(t, out, "HTTP error! status: 503")
}

func TestRenderDetail(t *testing.T) {
	price := 3.0
	res := &catalog.Resource{ID: "42", Name: "widget", Description: "line one\nline two", Price: &price}

	out := render(func(r *Renderer) {
		r.Detail(detailview.State{ID: "42", Phase: detailview.PhaseReady, Resource: res})
	})
	assert.Contains(t, out, "ID: 42")
	assert.Contains(t, out, "Price: $3.00")
	assert.Contains(t, out, "  line two")

	out = render(func(r *Renderer) {
		r.Detail(detailview.State{
			ID:        "42",
			Phase:     detailview.PhaseReady,
			Resource:  res,
			Mode:      detailview.ModeEdit,
			Draft:     catalog.Draft{Name: "renamed", Price: "3"},
			Action:    detailview.ActionSave,
			ActionErr: failed(500, ""),
		})
	})
	assert.Contains(t, out, "Edit item 42")
	assert.Contains(t, out, "name:        renamed")
	assert.Contains(t, out, "Failed to update item: 500")

	out = render(func(r *Renderer) {
		r.Detail(detailview.State{ID: "42", Phase: detailview.PhaseReady, Resource: res, Action: detailview.ActionDelete, ActionErr: failed(500, "")})
	})
	assert.Contains(t, out, "Failed to delete item: 500")
}

func TestExport(t *testing.T) {
	price := 9.99
	items := []catalog.Resource{
		{ID: "1", Name: "<b>widget</b>", Description: "**bold** text <script>alert(1)</script>", Price: &price},
		{ID: "2", Name: "gizmo"},
	}

	var buf bytes.Buffer
	err := Export(&buf, "Catalog", items, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, err)
	out := buf.String()

	assert.Contains(t, out, "<title>Catalog</title>")
	assert.Contains(t, out, "2 items, exported Tue, 02 Jan 2024 03:04:05 UTC")
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.Contains(t, out, "&lt;b&gt;widget&lt;/b&gt;")
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, `<span class="price">$9.99</span>`)
	assert.Equal(t, 1, strings.Count(out, `class="price"`))
}

func TestExportEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, "Catalog", nil, time.Now()))
	assert.Contains(t, buf.String(), "No items.")
}
