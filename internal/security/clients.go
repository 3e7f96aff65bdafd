package security

// In-memory client registry for the token endpoint (replace with DB/config later).
// These are the storefront's own frontends, not payment providers.
type Client struct {
	ID      string
	Secret  string
	Perms   []string // e.g. {"cart.write","orders.write","payments.write"}
	Enabled bool
}

var Clients = map[string]Client{
	"web-store":      {ID: "web-store", Secret: "web-store-secret", Perms: []string{"cart.read", "cart.write", "orders.read", "orders.write", "payments.write"}, Enabled: true},
	"mobile-store":   {ID: "mobile-store", Secret: "mobile-store-secret", Perms: []string{"cart.read", "cart.write", "orders.read", "orders.write", "payments.write"}, Enabled: true},
	"svc-backoffice": {ID: "svc-backoffice", Secret: "backoffice-secret", Perms: []string{"orders.read"}, Enabled: true},
}
