package datanode

import (
	"bytes"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/nicolagi/dfs/internal/codec"
	"github.com/nicolagi/dfs/internal/dispatch"
)

func logOp(op, path string) *log.Entry {
	return log.WithFields(log.Fields{"component": "datanode", "op": op, "path": path})
}

func warnIfErr(entry *log.Entry, err error) {
	if err != nil {
		entry.WithError(err).Warn("operation failed")
	} else {
		entry.Debug("operation completed")
	}
}

// Handlers builds the dispatch table for every endpoint a data node
// exposes.
func (s *Service) Handlers() dispatch.Table {
	t := dispatch.Table{}

	t["mkfs"] = dispatch.Entry{
		Decode: func(body []byte, _ string) (interface{}, error) { return nil, nil },
		Invoke: func(interface{}) (interface{}, error) {
			err := s.fs.Mkfs()
			warnIfErr(logOp("mkfs", ""), err)
			return nil, err
		},
		Encode: func(interface{}) ([]byte, string) { return nil, "application/octet-stream" },
	}

	t["df"] = dispatch.Entry{
		Decode: func(body []byte, _ string) (interface{}, error) { return nil, nil },
		Invoke: func(interface{}) (interface{}, error) {
			total, used, free, err := s.fs.DF()
			return [3]uint64{total, used, free}, err
		},
		Encode: func(result interface{}) ([]byte, string) {
			v := result.([3]uint64)
			return codec.Encode([]string{
				strconv.FormatUint(v[0], 10),
				strconv.FormatUint(v[1], 10),
				strconv.FormatUint(v[2], 10),
			}), "application/octet-stream"
		},
	}

	t["cd"] = dispatch.Entry{
		Decode: decodePath,
		Invoke: func(args interface{}) (interface{}, error) {
			path := args.(string)
			err := s.fs.Cd(path)
			warnIfErr(logOp("cd", path), err)
			return nil, err
		},
		Encode: encodeNothing,
	}

	t["ls"] = dispatch.Entry{
		Decode: decodeOptionalPath,
		Invoke: func(args interface{}) (interface{}, error) {
			return s.fs.Ls(args.(string))
		},
		Encode: func(result interface{}) ([]byte, string) {
			return codec.Encode(result.([]string)), "application/octet-stream"
		},
	}

	t["mkdir"] = dispatch.Entry{
		Decode: decodePath,
		Invoke: func(args interface{}) (interface{}, error) {
			path := args.(string)
			err := s.fs.Mkdir(path)
			warnIfErr(logOp("mkdir", path), err)
			return nil, err
		},
		Encode: encodeNothing,
	}

	t["rmdir"] = dispatch.Entry{
		Decode: func(body []byte, _ string) (interface{}, error) {
			path, force, err := codec.DecodePathFlag(body)
			return pathFlagArgs{path, force}, err
		},
		Invoke: func(args interface{}) (interface{}, error) {
			a := args.(pathFlagArgs)
			err := s.fs.Rmdir(a.path, a.flag)
			warnIfErr(logOp("rmdir", a.path), err)
			return nil, err
		},
		Encode: encodeNothing,
	}

	t["touch"] = dispatch.Entry{
		Decode: decodePath,
		Invoke: func(args interface{}) (interface{}, error) {
			path := args.(string)
			err := s.fs.Touch(path)
			warnIfErr(logOp("touch", path), err)
			return nil, err
		},
		Encode: encodeNothing,
	}

	t["cat"] = dispatch.Entry{
		Decode: decodePath,
		Invoke: func(args interface{}) (interface{}, error) {
			return s.fs.Cat(args.(string))
		},
		Encode: func(result interface{}) ([]byte, string) {
			return result.([]byte), "application/octet-stream"
		},
	}

	t["tee"] = dispatch.Entry{
		Decode: func(body []byte, _ string) (interface{}, error) {
			path, blob, err := codec.DecodePathBlob(body)
			return pathBlobArgs{path, blob}, err
		},
		Invoke: func(args interface{}) (interface{}, error) {
			a := args.(pathBlobArgs)
			err := s.fs.Tee(a.path, a.blob)
			warnIfErr(logOp("tee", a.path), err)
			return nil, err
		},
		Encode: encodeNothing,
	}

	t["rm"] = dispatch.Entry{
		Decode: decodePath,
		Invoke: func(args interface{}) (interface{}, error) {
			path := args.(string)
			err := s.fs.Rm(path)
			warnIfErr(logOp("rm", path), err)
			return nil, err
		},
		Encode: encodeNothing,
	}

	t["stat"] = dispatch.Entry{
		Decode: decodePath,
		Invoke: func(args interface{}) (interface{}, error) {
			canonical, size, mode, err := s.fs.Stat(args.(string))
			return statResult{canonical, size, mode}, err
		},
		Encode: func(result interface{}) ([]byte, string) {
			r := result.(statResult)
			return codec.Encode([]string{
				r.path,
				strconv.FormatInt(r.size, 10),
				strconv.FormatUint(uint64(r.mode), 10),
			}), "application/octet-stream"
		},
	}

	t["cp"] = dispatch.Entry{
		Decode: decodeTwoStrings,
		Invoke: func(args interface{}) (interface{}, error) {
			a := args.(twoStringArgs)
			err := s.fs.Cp(a.first, a.second)
			warnIfErr(logOp("cp", a.first+" -> "+a.second), err)
			return nil, err
		},
		Encode: encodeNothing,
	}

	t["mv"] = dispatch.Entry{
		Decode: decodeTwoStrings,
		Invoke: func(args interface{}) (interface{}, error) {
			a := args.(twoStringArgs)
			err := s.fs.Mv(a.first, a.second)
			warnIfErr(logOp("mv", a.first+" -> "+a.second), err)
			return nil, err
		},
		Encode: encodeNothing,
	}

	t["snap"] = dispatch.Entry{
		Decode: func(body []byte, _ string) (interface{}, error) { return nil, nil },
		Invoke: func(interface{}) (interface{}, error) {
			var buf bytes.Buffer
			if err := s.fs.Snapshot(&buf); err != nil {
				return nil, err
			}
			return buf.Bytes(), nil
		},
		Encode: func(result interface{}) ([]byte, string) {
			return result.([]byte), "application/gzip"
		},
	}

	t["sync"] = dispatch.Entry{
		Decode: decodePath,
		Invoke: func(args interface{}) (interface{}, error) {
			donorURL := args.(string)
			return nil, s.syncFrom(donorURL)
		},
		Encode: encodeNothing,
	}

	t["ping_alive"] = dispatch.Entry{
		Decode: func(body []byte, _ string) (interface{}, error) { return nil, nil },
		Invoke: func(interface{}) (interface{}, error) { return s.PingAlive(), nil },
		Encode: func(result interface{}) ([]byte, string) {
			return codec.Encode(result.(bool)), "application/octet-stream"
		},
	}

	t["join_namespace"] = dispatch.Entry{
		Decode: decodePath,
		Invoke: func(args interface{}) (interface{}, error) {
			return nil, s.JoinNamespace(args.(string))
		},
		Encode: encodeNothing,
	}

	t["leave_namespace"] = dispatch.Entry{
		Decode: func(body []byte, _ string) (interface{}, error) { return nil, nil },
		Invoke: func(interface{}) (interface{}, error) {
			s.LeaveNamespace()
			return nil, nil
		},
		Encode: encodeNothing,
	}

	return t
}

type pathFlagArgs struct {
	path string
	flag bool
}

type pathBlobArgs struct {
	path string
	blob []byte
}

type twoStringArgs struct {
	first  string
	second string
}

type statResult struct {
	path string
	size int64
	mode uint32
}

func decodePath(body []byte, _ string) (interface{}, error) {
	return codec.DecodePath(body)
}

func decodeOptionalPath(body []byte, _ string) (interface{}, error) {
	return codec.DecodeOptionalPath(body)
}

func decodeTwoStrings(body []byte, _ string) (interface{}, error) {
	first, second, err := codec.DecodeTwoStrings(body)
	return twoStringArgs{first, second}, err
}

func encodeNothing(interface{}) ([]byte, string) { return nil, "application/octet-stream" }
