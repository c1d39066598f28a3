package env

import (
	"net/url"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

const appID = "deckmem"

// MachineID retrieves the unique ID identifying the machine, hashed with
// the application ID so the raw ID isn't exposed on the broker.
func MachineID() string {
	id, err := machineid.ProtectedID(appID)
	if err != nil {
		glog.Warningf("machine id unavailable: %v", err)
		return ""
	}
	return id
}

// WithClientID adds a client-id derived from role and machine ID to MQTT
// URLs which don't have one. Other URLs are returned unchanged.
func WithClientID(rawURL, role string) string {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "mqtt" && u.Scheme != "ssl") {
		return rawURL
	}
	query := u.Query()
	if query.Get("client-id") != "" {
		return rawURL
	}
	clientID := role
	if id := MachineID(); id != "" {
		if len(id) > 12 {
			id = id[:12]
		}
		clientID += ":" + id
	}
	query.Set("client-id", clientID)
	u.RawQuery = query.Encode()
	return u.String()
}
