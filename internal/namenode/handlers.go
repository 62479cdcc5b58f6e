package namenode

import (
	"context"

	"github.com/nicolagi/dfs/internal/codec"
	"github.com/nicolagi/dfs/internal/dispatch"
	"github.com/nicolagi/dfs/internal/peer"
)

// Handlers builds the client-facing dispatch table: the VFS operation set,
// split into fan-out mutations and read redirects, plus the two aggregated
// reads and add_node. /nodes/join and /nodes/leave fall outside this
// table's shape (they need the request source IP or a query parameter) and
// are registered separately; see joinHandler and leaveHandler.
func (d *Dispatcher) Handlers() dispatch.Table {
	t := dispatch.Table{}

	t["mkfs"] = mutationEntry(d, func(body []byte) (interface{}, error) { return nil, nil },
		func(ctx context.Context, n peer.Node, _ interface{}) error { return n.Mkfs(ctx) })

	t["cd"] = mutationEntry(d, decodePathArg,
		func(ctx context.Context, n peer.Node, args interface{}) error { return n.Cd(ctx, args.(string)) })

	t["mkdir"] = mutationEntry(d, decodePathArg,
		func(ctx context.Context, n peer.Node, args interface{}) error { return n.Mkdir(ctx, args.(string)) })

	t["rmdir"] = mutationEntry(d, decodePathFlagArg,
		func(ctx context.Context, n peer.Node, args interface{}) error {
			a := args.(pathFlagArg)
			return n.Rmdir(ctx, a.path, a.flag)
		})

	t["touch"] = mutationEntry(d, decodePathArg,
		func(ctx context.Context, n peer.Node, args interface{}) error { return n.Touch(ctx, args.(string)) })

	t["tee"] = mutationEntry(d, decodePathBlobArg,
		func(ctx context.Context, n peer.Node, args interface{}) error {
			a := args.(pathBlobArg)
			return n.Tee(ctx, a.path, a.blob)
		})

	t["rm"] = mutationEntry(d, decodePathArg,
		func(ctx context.Context, n peer.Node, args interface{}) error { return n.Rm(ctx, args.(string)) })

	t["cp"] = mutationEntry(d, decodeTwoStringArg,
		func(ctx context.Context, n peer.Node, args interface{}) error {
			a := args.(twoStringArg)
			return n.Cp(ctx, a.first, a.second)
		})

	t["mv"] = mutationEntry(d, decodeTwoStringArg,
		func(ctx context.Context, n peer.Node, args interface{}) error {
			a := args.(twoStringArg)
			return n.Mv(ctx, a.first, a.second)
		})

	t["ls"] = redirectEntry(d, "ls")
	t["cat"] = redirectEntry(d, "cat")
	t["stat"] = redirectEntry(d, "stat")

	t["df"] = dispatch.Entry{
		Decode: func(body []byte, _ string) (interface{}, error) { return nil, nil },
		Invoke: func(interface{}) (interface{}, error) { return d.AggregateDF(context.Background()), nil },
		Encode: func(result interface{}) ([]byte, string) {
			return codec.EncodeMatrix(result.([][]string)), "application/octet-stream"
		},
	}

	t["status"] = dispatch.Entry{
		Decode: func(body []byte, _ string) (interface{}, error) { return nil, nil },
		Invoke: func(interface{}) (interface{}, error) { return d.Status(), nil },
		Encode: func(result interface{}) ([]byte, string) {
			return codec.EncodeMatrix(result.([][]string)), "application/octet-stream"
		},
	}

	t["add_node"] = dispatch.Entry{
		Decode: func(body []byte, _ string) (interface{}, error) {
			publicURL, url, id, err := decodeAddNode(body)
			return addNodeArg{publicURL, url, id}, err
		},
		Invoke: func(args interface{}) (interface{}, error) {
			a := args.(addNodeArg)
			return nil, d.AddNode(a.publicURL, a.url, a.id)
		},
		Encode: func(interface{}) ([]byte, string) { return nil, "application/octet-stream" },
	}

	return t
}

type pathFlagArg struct {
	path string
	flag bool
}

type pathBlobArg struct {
	path string
	blob []byte
}

type twoStringArg struct {
	first  string
	second string
}

type addNodeArg struct {
	publicURL *string
	url       string
	id        string
}

func decodePathArg(body []byte) (interface{}, error) { return codec.DecodePath(body) }

func decodePathFlagArg(body []byte) (interface{}, error) {
	path, flag, err := codec.DecodePathFlag(body)
	return pathFlagArg{path, flag}, err
}

func decodePathBlobArg(body []byte) (interface{}, error) {
	path, blob, err := codec.DecodePathBlob(body)
	return pathBlobArg{path, blob}, err
}

func decodeTwoStringArg(body []byte) (interface{}, error) {
	first, second, err := codec.DecodeTwoStrings(body)
	return twoStringArg{first, second}, err
}

// mutationEntry builds a dispatch.Entry that fans out op to every ALIVE
// member and always succeeds from the client's point of view: per-member
// failures are absorbed by FanOut, not surfaced here.
func mutationEntry(d *Dispatcher, decode func(body []byte) (interface{}, error), op func(ctx context.Context, n peer.Node, args interface{}) error) dispatch.Entry {
	return dispatch.Entry{
		Decode: func(body []byte, _ string) (interface{}, error) { return decode(body) },
		Invoke: func(args interface{}) (interface{}, error) {
			d.FanOut(context.Background(), func(ctx context.Context, n peer.Node) error {
				return op(ctx, n, args)
			})
			return nil, nil
		},
		Encode: func(interface{}) ([]byte, string) { return nil, "application/octet-stream" },
	}
}

// redirectEntry builds a dispatch.Entry returning the chosen member's
// public URL for opPath in the response body, rather than performing the
// operation itself.
func redirectEntry(d *Dispatcher, opPath string) dispatch.Entry {
	return dispatch.Entry{
		Decode: func(body []byte, _ string) (interface{}, error) { return nil, nil },
		Invoke: func(interface{}) (interface{}, error) {
			return d.RedirectURL(context.Background(), opPath)
		},
		Encode: func(result interface{}) ([]byte, string) {
			return codec.Encode(result.(string)), "application/octet-stream"
		},
	}
}
