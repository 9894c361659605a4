package api

// ProxyMode is the daemon's routing mode.
type ProxyMode string

const (
	ModeRule   ProxyMode = "rule"
	ModeGlobal ProxyMode = "global"
	ModeDirect ProxyMode = "direct"
)

// Next cycles rule -> global -> direct -> rule.
func (m ProxyMode) Next() ProxyMode {
	switch m {
	case ModeRule:
		return ModeGlobal
	case ModeGlobal:
		return ModeDirect
	default:
		return ModeRule
	}
}

// ConfigResponse is the daemon configuration from GET /configs.
type ConfigResponse struct {
	Port      int       `json:"port"`
	SocksPort int       `json:"socks-port"`
	RedirPort int       `json:"redir-port"`
	MixedPort int       `json:"mixed-port"`
	AllowLAN  bool      `json:"allow-lan"`
	Mode      ProxyMode `json:"mode"`
	LogLevel  string    `json:"log-level"`
}

// Proxy is a single entry from GET /proxies: either a selectable group
// (Selector, URLTest, Fallback, LoadBalance) or a leaf node.
type Proxy struct {
	Name    string         `json:"name"`
	Type    string         `json:"type"`
	Now     string         `json:"now"`
	All     []string       `json:"all"`
	UDP     bool           `json:"udp"`
	History []DelayHistory `json:"history"`
}

// DelayHistory is one past delay sample the daemon recorded for a node.
type DelayHistory struct {
	Time      string `json:"time"`
	Delay     int    `json:"delay"`
	MeanDelay int    `json:"meanDelay"`
}

// groupTypes are the proxy types a user can interact with as a routing target.
var groupTypes = map[string]bool{
	"Selector":    true,
	"URLTest":     true,
	"Fallback":    true,
	"LoadBalance": true,
	"Smart":       true,
}

// IsGroup reports whether the proxy is a selectable group.
func (p Proxy) IsGroup() bool { return groupTypes[p.Type] }

// untestableTypes never answer a delay probe meaningfully.
var untestableTypes = map[string]bool{
	"Direct":     true,
	"Reject":     true,
	"RejectDrop": true,
	"Compatible": true,
	"Pass":       true,
}

// IsTestable reports whether probing the proxy's latency makes sense.
func (p Proxy) IsTestable() bool { return !untestableTypes[p.Type] && !p.IsGroup() }

// ProxiesResponse is the body of GET /proxies.
type ProxiesResponse struct {
	Proxies map[string]Proxy `json:"proxies"`
}

// DelayResponse is the body of GET /proxies/{name}/delay.
type DelayResponse struct {
	Delay int `json:"delay"`
}

// Rule is one routing rule from GET /rules.
type Rule struct {
	Type    string `json:"type"`
	Payload string `json:"payload"`
	Proxy   string `json:"proxy"`
}

// RulesResponse is the body of GET /rules.
type RulesResponse struct {
	Rules []Rule `json:"rules"`
}

// Provider is one proxy provider from GET /providers/proxies.
type Provider struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	VehicleType string  `json:"vehicleType"`
	UpdatedAt   string  `json:"updatedAt"`
	Proxies     []Proxy `json:"proxies"`

	SubscriptionInfo *SubscriptionInfo `json:"subscriptionInfo"`
}

// SubscriptionInfo carries subscription quota data, all byte counts.
type SubscriptionInfo struct {
	Upload   int64 `json:"Upload"`
	Download int64 `json:"Download"`
	Total    int64 `json:"Total"`
	Expire   int64 `json:"Expire"`
}

// ProvidersResponse is the body of GET /providers/proxies.
type ProvidersResponse struct {
	Providers map[string]Provider `json:"providers"`
}

// ConnectionMetadata describes one tracked connection's endpoints.
type ConnectionMetadata struct {
	Network         string `json:"network"`
	Type            string `json:"type"`
	SourceIP        string `json:"sourceIP"`
	DestinationIP   string `json:"destinationIP"`
	SourcePort      string `json:"sourcePort"`
	DestinationPort string `json:"destinationPort"`
	Host            string `json:"host"`
	ProcessPath     string `json:"processPath"`
}

// Connection is one live connection from GET /connections.
type Connection struct {
	ID       string             `json:"id"`
	Metadata ConnectionMetadata `json:"metadata"`
	Upload   int64              `json:"upload"`
	Download int64              `json:"download"`
	Start    string             `json:"start"`
	Chains   []string           `json:"chains"`
	Rule     string             `json:"rule"`
}

// ConnectionsResponse is the body of GET /connections.
type ConnectionsResponse struct {
	DownloadTotal int64        `json:"downloadTotal"`
	UploadTotal   int64        `json:"uploadTotal"`
	Connections   []Connection `json:"connections"`
}

// LogEntry is one line from the streaming GET /logs endpoint.
type LogEntry struct {
	Type    string `json:"type"`
	Payload string `json:"payload"`
}
