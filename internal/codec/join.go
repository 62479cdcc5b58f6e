package codec

import (
	"fmt"
	"strings"
)

// JoinRequest is the decoded body of POST /nodes/join.
type JoinRequest struct {
	// PublicURL is nil unless the joining data node advertised one
	// explicitly (the three-token form).
	PublicURL *string
	URL       string
	ID        string
}

// DecodeJoin is the sole place a peer is permitted to lie about its own
// callback URL: the body is "[public_url ][host:]port id", space-separated,
// at most three tokens. When host is omitted, sourceIP (the request's
// remote address) is substituted.
func DecodeJoin(data []byte, sourceIP string) (JoinRequest, error) {
	fields := strings.Fields(string(data))
	var publicURL *string
	var hostport, id string
	switch len(fields) {
	case 2:
		hostport, id = fields[0], fields[1]
	case 3:
		pub := fields[0]
		publicURL = &pub
		hostport, id = fields[1], fields[2]
	default:
		return JoinRequest{}, errorf("DecodeJoin", "expected 2 or 3 fields, got %d", len(fields))
	}
	if id == "" {
		return JoinRequest{}, errorf("DecodeJoin", "empty id")
	}
	host, port, err := splitHostPort(hostport, sourceIP)
	if err != nil {
		return JoinRequest{}, err
	}
	return JoinRequest{
		PublicURL: publicURL,
		URL:       fmt.Sprintf("http://%s:%s/", host, port),
		ID:        id,
	}, nil
}

func splitHostPort(hostport, sourceIP string) (host, port string, err error) {
	if i := strings.LastIndex(hostport, ":"); i >= 0 {
		host, port = hostport[:i], hostport[i+1:]
	} else {
		host, port = sourceIP, hostport
	}
	if host == "" {
		host = sourceIP
	}
	if port == "" {
		return "", "", errorf("splitHostPort", "missing port in %q", hostport)
	}
	return host, port, nil
}
