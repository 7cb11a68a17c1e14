// Package fieldlist exposes the dynamic fields of stored templates over HTTP
// so instance editors can build their override forms.
//
// Routes respond to GET and HEAD only:
//
//	{base}/templates                 published template summaries
//	{base}/templates/{id}/fields     [{"fieldId","label","type"}, ...]
//	{base}/templates/{id}/keys       {"keys": [...]} for older editors
//
// Unknown ids and records that are not synced templates yield an empty list.
// Authorization is delegated to a GuardFunc; JWTGuard covers bearer tokens.
package fieldlist
