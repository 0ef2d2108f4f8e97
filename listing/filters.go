package listing

// Filters narrows listings read from a store. Zero value reads all listings.
type Filters struct {
	ID            int64  `json:"id"`
	WalletAddress string `json:"wallet_address"`
	Kind          Kind   `json:"kind"`
	Status        Status `json:"status"`
	Category      string `json:"category"`
	ActiveOnly    bool   `json:"active_only"`
}

// Match tells if the listing passes the filters at given point in time expressed
// in microseconds since epoch.
func (f *Filters) Match(l *Listing, nowMicro int64) bool {
	if f.ID != 0 && l.ID != f.ID {
		return false
	}
	if f.WalletAddress != "" && l.WalletAddress != f.WalletAddress {
		return false
	}
	if f.Kind != "" && l.Kind != f.Kind {
		return false
	}
	if f.Status != "" && l.Status != f.Status {
		return false
	}
	if f.Category != "" && l.Category != f.Category {
		return false
	}
	if f.ActiveOnly {
		if l.Status != StatusConfirmed || l.ExpiresAt.UnixMicro() <= nowMicro {
			return false
		}
	}
	return true
}
