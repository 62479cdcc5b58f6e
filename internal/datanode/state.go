package datanode

import (
	"fmt"
	"os"
	"strings"
)

// state is the sidecar file persisted next to fs_root, named
// "{fs_root}.state", holding "{id}\n{namenode_url}". namenodeURL is empty
// when the node has not joined a cluster.
type state struct {
	id          string
	namenodeURL string
}

func statePath(fsRoot string) string {
	return strings.TrimRight(fsRoot, "/") + ".state"
}

func loadState(fsRoot string) (state, bool, error) {
	data, err := os.ReadFile(statePath(fsRoot))
	if os.IsNotExist(err) {
		return state{}, false, nil
	}
	if err != nil {
		return state{}, false, errorf("loadState", err, "%q", fsRoot)
	}
	lines := strings.SplitN(string(data), "\n", 2)
	st := state{id: strings.TrimSpace(lines[0])}
	if len(lines) == 2 {
		st.namenodeURL = strings.TrimSpace(lines[1])
	}
	return st, true, nil
}

func saveState(fsRoot string, st state) error {
	content := fmt.Sprintf("%s\n%s", st.id, st.namenodeURL)
	if err := os.WriteFile(statePath(fsRoot), []byte(content), 0600); err != nil {
		return errorf("saveState", err, "%q", fsRoot)
	}
	return nil
}
