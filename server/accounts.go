package server

import "context"

// defaultAccounts seeds the directory when no accounts are configured, so
// the harness is usable with zero setup.
var defaultAccounts = []Account{
	{
		ID:              "1234",
		Name:            "Ada Lovelace",
		GivenName:       "Ada",
		Email:           "ada@idp.example",
		Picture:         "https://idp.example/avatars/ada.png",
		ApprovedClients: []string{DefaultClientID},
	},
	{
		ID:        "5678",
		Name:      "Alan Turing",
		GivenName: "Alan",
		Email:     "alan@idp.example",
		Picture:   "https://idp.example/avatars/alan.png",
	},
}

// Directory serves the fixed set of mock identity accounts. The set is built
// once at startup and never mutated afterwards, so every request observes
// the same accounts in the same order.
type Directory struct {
	accounts []Account
	byID     map[string]Account
}

// NewDirectory builds the directory from configuration, falling back to the
// built-in accounts when none are configured.
func NewDirectory(cfgs []AccountConfig) *Directory {
	accounts := make([]Account, 0, len(cfgs))
	for _, cfg := range cfgs {
		accounts = append(accounts, Account{
			ID:              cfg.ID,
			Name:            cfg.Name,
			GivenName:       cfg.GivenName,
			Email:           cfg.Email,
			Picture:         cfg.Picture,
			ApprovedClients: cfg.ApprovedClients,
		})
	}
	if len(accounts) == 0 {
		accounts = append(accounts, defaultAccounts...)
	}

	byID := make(map[string]Account, len(accounts))
	for _, acct := range accounts {
		byID[acct.ID] = acct
	}

	return &Directory{accounts: accounts, byID: byID}
}

// Accounts returns every account in directory order. The context mirrors a
// real account lookup; no I/O happens here.
func (d *Directory) Accounts(ctx context.Context) []Account {
	out := make([]Account, len(d.accounts))
	copy(out, d.accounts)
	return out
}

// Lookup returns the account with the given id.
func (d *Directory) Lookup(ctx context.Context, id string) (Account, bool) {
	acct, ok := d.byID[id]
	return acct, ok
}
