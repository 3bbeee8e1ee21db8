package sessions

// Account identifies who a session belongs to. Providers may reuse the
// DisplayName as the ID when they have no stable account identifier.
type Account struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// Session is a resolved credential bundle issued by a provider. The broker
// only ever reads sessions, it never mutates one. AccessToken is an opaque
// secret and must never be logged or compared.
type Session struct {
	ID          string   `json:"id"`
	AccessToken string   `json:"accessToken"`
	Scopes      []string `json:"scopes"`
	Account     Account  `json:"account"`
}

// Change describes a delta in a provider's session list. The broker
// re-broadcasts changes without inspecting them; the fields carry whatever
// the originating provider chose to populate.
type Change struct {
	Added   []Session `json:"added,omitempty"`
	Removed []Session `json:"removed,omitempty"`
	Changed []Session `json:"changed,omitempty"`
}
