// Package dispatch defines the explicit handler registry both the data
// node and the name node build at construction time: {path: (decode,
// invoke, encode)}, where invoke is a closure capturing the owning
// service instance.
package dispatch

// Entry is one dispatch-table row: decode turns a raw request body (plus
// the caller's source IP, which no current entry reads; /nodes/join is
// served outside the table) into the op's argument value; invoke performs
// the operation; encode turns the result into a response body and content
// type.
type Entry struct {
	Decode func(body []byte, sourceIP string) (interface{}, error)
	Invoke func(args interface{}) (interface{}, error)
	Encode func(result interface{}) (body []byte, contentType string)
}

// Table is a URL path to Entry registry, consulted by the HTTP front end.
type Table map[string]Entry
