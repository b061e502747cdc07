// Package catalog holds the item model shared by the itemdesk controllers and
// the typed calls for the /api endpoints.
//
// Resource ids are numeric on the wire but treated as opaque strings here.
// A Draft is the editable, string-typed shadow of a Resource; CreatePayload
// and UpdatePayload turn a draft into the request body the way the catalog
// web client does, including its loose price parsing.
package catalog
